package engine

import "fmt"

// CardKind identifies what a deck card does when played.
type CardKind string

const (
	CardNumber     CardKind = "number"
	CardWake       CardKind = "wake"        // King
	CardSteal      CardKind = "steal"       // Knight
	CardBlockSteal CardKind = "block_steal" // Dragon
	CardBlockSleep CardKind = "block_sleep" // Wand
	CardSleep      CardKind = "sleep"       // Potion
	CardReveal     CardKind = "reveal"      // Jester
)

// IsAction reports whether the kind is one of the action cards.
func (k CardKind) IsAction() bool {
	switch k {
	case CardWake, CardSteal, CardBlockSteal, CardBlockSleep, CardSleep, CardReveal:
		return true
	}
	return false
}

// Card is a single deck card. Value is only meaningful for number cards.
type Card struct {
	ID    string   `json:"id"`
	Kind  CardKind `json:"kind"`
	Value uint8    `json:"value,omitempty"`
}

// IsNumber reports whether the card is a number card.
func (c Card) IsNumber() bool { return c.Kind == CardNumber }

func (c Card) String() string {
	if c.IsNumber() {
		return fmt.Sprintf("%d", c.Value)
	}
	return string(c.Kind)
}

// Deck population.
const (
	NumberMin        = 1
	NumberMax        = 10
	NumberCopies     = 4
	NumQueens        = 12
	DefaultHandSize  = 5
	numberCardsTotal = (NumberMax - NumberMin + 1) * NumberCopies
)

// actionCounts is the fixed number of copies of each action card.
var actionCounts = []struct {
	Kind  CardKind
	Count int
}{
	{CardWake, 8},
	{CardSteal, 4},
	{CardBlockSteal, 3},
	{CardBlockSleep, 3},
	{CardSleep, 4},
	{CardReveal, 5},
}

// DeckSize returns the number of cards NewDeck produces.
func DeckSize() int {
	n := numberCardsTotal
	for _, a := range actionCounts {
		n += a.Count
	}
	return n
}

// NewDeck builds the full, unshuffled deck. Card IDs are stable so that a
// seeded shuffle reproduces the same game.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize())
	for v := NumberMin; v <= NumberMax; v++ {
		for c := 1; c <= NumberCopies; c++ {
			deck = append(deck, Card{
				ID:    fmt.Sprintf("number-%d-%d", v, c),
				Kind:  CardNumber,
				Value: uint8(v),
			})
		}
	}
	for _, a := range actionCounts {
		for c := 1; c <= a.Count; c++ {
			deck = append(deck, Card{ID: fmt.Sprintf("%s-%d", a.Kind, c), Kind: a.Kind})
		}
	}
	return deck
}

// Queen is a scoring token. Queens never enter the deck.
type Queen struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
	Awake  bool   `json:"awake"`
}

// Queen identities with special rules.
const (
	QueenRose = "queen-rose" // waking her from the pool grants a bonus pick
	QueenCat  = "queen-cat"
	QueenDog  = "queen-dog"
)

var queenCatalog = []Queen{
	{ID: QueenRose, Name: "Rose Queen", Points: 5},
	{ID: "queen-cake", Name: "Cake Queen", Points: 5},
	{ID: "queen-rainbow", Name: "Rainbow Queen", Points: 5},
	{ID: "queen-starfish", Name: "Starfish Queen", Points: 5},
	{ID: "queen-moon", Name: "Moon Queen", Points: 10},
	{ID: "queen-sunflower", Name: "Sunflower Queen", Points: 10},
	{ID: "queen-ladybug", Name: "Ladybug Queen", Points: 10},
	{ID: "queen-peacock", Name: "Peacock Queen", Points: 10},
	{ID: QueenCat, Name: "Cat Queen", Points: 15},
	{ID: QueenDog, Name: "Dog Queen", Points: 15},
	{ID: "queen-pancake", Name: "Pancake Queen", Points: 15},
	{ID: "queen-heart", Name: "Heart Queen", Points: 20},
}

// NewSleepingQueens returns all 12 queens, asleep.
func NewSleepingQueens() []Queen {
	qs := make([]Queen, len(queenCatalog))
	copy(qs, queenCatalog)
	return qs
}

// LookupQueen returns the catalog entry for id.
func LookupQueen(id string) (Queen, bool) {
	for _, q := range queenCatalog {
		if q.ID == id {
			return q, true
		}
	}
	return Queen{}, false
}

// exclusivePair returns the queen that may not be held together with id.
func exclusivePair(id string) (string, bool) {
	switch id {
	case QueenCat:
		return QueenDog, true
	case QueenDog:
		return QueenCat, true
	}
	return "", false
}
