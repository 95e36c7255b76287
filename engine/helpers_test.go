package engine

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// newTestEngine returns an engine with a fixed seed and a controllable clock.
func newTestEngine(t *testing.T) (*Engine, *FixedClock) {
	t.Helper()
	clock := &FixedClock{T: t0}
	return New(WithShuffler(NewShuffler(42)), WithClock(clock)), clock
}

// newStartedGame seats one player per id and deals.
func newStartedGame(t *testing.T, e *Engine, ids ...string) *GameState {
	t.Helper()
	g := e.NewGame("game-1", "ROOM01")
	var err error
	for _, id := range ids {
		if g, err = e.AddPlayer(g, id, id); err != nil {
			t.Fatalf("AddPlayer(%s): %v", id, err)
		}
	}
	if g, err = e.Start(g); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return g
}

// pullCard removes the card with id from wherever it currently is.
func pullCard(g *GameState, id string) (Card, bool) {
	take := func(cards []Card) ([]Card, Card, bool) {
		for i, c := range cards {
			if c.ID == id {
				return append(cards[:i], cards[i+1:]...), c, true
			}
		}
		return cards, Card{}, false
	}
	var c Card
	var ok bool
	if g.Deck, c, ok = take(g.Deck); ok {
		return c, true
	}
	if g.Discard, c, ok = take(g.Discard); ok {
		return c, true
	}
	for i := range g.Players {
		if g.Players[i].Hand, c, ok = take(g.Players[i].Hand); ok {
			return c, true
		}
	}
	return Card{}, false
}

// rigHand puts the named cards into seat's hand. Displaced cards go to the
// bottom of the deck so the hand stays at its size and nothing is lost.
func rigHand(t *testing.T, g *GameState, seat int, ids ...string) {
	t.Helper()
	hand := make([]Card, 0, g.Rules.HandSize+len(ids))
	for _, id := range ids {
		c, ok := pullCard(g, id)
		if !ok {
			t.Fatalf("rigHand: card %s not found", id)
		}
		hand = append(hand, c)
	}
	p := &g.Players[seat]
	hand = append(hand, p.Hand...)
	if size := g.Rules.HandSize; len(hand) > size {
		g.Deck = append(append([]Card(nil), hand[size:]...), g.Deck...)
		hand = hand[:size]
	}
	p.Hand = hand
}

// stackDeck moves the named cards to the top of the deck; the last id is
// drawn first.
func stackDeck(t *testing.T, g *GameState, ids ...string) {
	t.Helper()
	for _, id := range ids {
		c, ok := pullCard(g, id)
		if !ok {
			t.Fatalf("stackDeck: card %s not found", id)
		}
		g.Deck = append(g.Deck, c)
	}
}

// seatQueen wakes queenID straight into seat's queens.
func seatQueen(t *testing.T, g *GameState, seat int, queenID string) {
	t.Helper()
	i := g.sleepingIndex(queenID)
	if i < 0 {
		t.Fatalf("seatQueen: %s is not asleep", queenID)
	}
	q := g.SleepingQueens[i]
	g.SleepingQueens = append(g.SleepingQueens[:i], g.SleepingQueens[i+1:]...)
	q.Awake = true
	g.Players[seat].Queens = append(g.Players[seat].Queens, q)
	g.Players[seat].recomputeScore()
}

var moveSeq int

func mv(kind MoveKind, player string, cards ...string) Move {
	moveSeq++
	return Move{
		Kind:      kind,
		ID:        fmt.Sprintf("move-%d", moveSeq),
		PlayerID:  player,
		Timestamp: t0,
		CardIDs:   cards,
	}
}

func onQueen(m Move, queenID string) Move {
	m.TargetQueenID = queenID
	return m
}

// mustApply applies m and fails the test on any error.
func mustApply(t *testing.T, e *Engine, g *GameState, m Move) (*GameState, Outcome) {
	t.Helper()
	next, out, err := e.ApplyMove(g, m)
	if err != nil {
		t.Fatalf("ApplyMove(%s by %s): %v", m.Kind, m.PlayerID, err)
	}
	checkInvariants(t, next)
	return next, out
}

// expectReject applies m and requires a validation error with code.
func expectReject(t *testing.T, e *Engine, g *GameState, m Move, code ErrorCode) {
	t.Helper()
	before := g.Checksum()
	next, _, err := e.ApplyMove(g, m)
	if err == nil {
		t.Fatalf("ApplyMove(%s by %s): want %s rejection, got nil", m.Kind, m.PlayerID, code)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("ApplyMove(%s by %s): want *ValidationError, got %T: %v", m.Kind, m.PlayerID, err, err)
	}
	if ve.Code != code {
		t.Fatalf("ApplyMove(%s by %s): want code %s, got %s (%s)", m.Kind, m.PlayerID, code, ve.Code, ve.Message)
	}
	if next != g || g.Checksum() != before {
		t.Fatalf("rejected %s changed the snapshot", m.Kind)
	}
}

// checkInvariants verifies queen and card conservation and mutual exclusion.
func checkInvariants(t *testing.T, g *GameState) {
	t.Helper()
	if n := g.QueenCount(); n != NumQueens {
		t.Fatalf("queen count: want %d, got %d", NumQueens, n)
	}
	if n := g.CardCount(); n != DeckSize() {
		t.Fatalf("card count: want %d, got %d", DeckSize(), n)
	}
	if !exclusionHolds(g) {
		t.Fatal("cat and dog queens share an owner")
	}
}
