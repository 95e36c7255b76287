package engine

import (
	"math/rand/v2"
	"time"
)

// Shuffler reorders cards in place. Injected so games can be replayed from a seed.
type Shuffler interface {
	Shuffle(cards []Card)
}

// RandShuffler is a Fisher-Yates shuffle over a PCG source.
type RandShuffler struct {
	rng *rand.Rand
}

// NewShuffler returns a deterministic shuffler for the given seed.
func NewShuffler(seed uint64) *RandShuffler {
	return &RandShuffler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandomShuffler seeds from the wall clock.
func NewRandomShuffler() *RandShuffler {
	return NewShuffler(uint64(time.Now().UnixNano()))
}

// Shuffle performs an in-place Fisher-Yates shuffle.
func (s *RandShuffler) Shuffle(cards []Card) {
	for i := len(cards) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// reshuffleDiscard moves the whole discard pile into the deck and shuffles it.
// Only called when the deck is empty.
func reshuffleDiscard(g *GameState, sh Shuffler) bool {
	if len(g.Discard) == 0 {
		return false
	}
	g.Deck = append(g.Deck, g.Discard...)
	g.Discard = g.Discard[:0]
	sh.Shuffle(g.Deck)
	return true
}

// drawCard pops the top (last) card of the deck, reshuffling the discard
// pile first if the deck is empty. ok is false when no card is left anywhere.
func drawCard(g *GameState, sh Shuffler) (Card, bool) {
	if len(g.Deck) == 0 && !reshuffleDiscard(g, sh) {
		return Card{}, false
	}
	top := len(g.Deck) - 1
	c := g.Deck[top]
	g.Deck = g.Deck[:top]
	return c, true
}
