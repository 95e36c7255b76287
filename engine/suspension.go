package engine

import "time"

// Suspension records that normal turn order is interrupted until a specific
// player submits a specific follow-up move. GameState holds at most one.
//
// The interface is closed: only the variants in this file implement it.
type Suspension interface {
	// Owner is the player whose sequence is in progress. Owners do not
	// refill their hand until the sequence completes.
	Owner() string
	// Awaiting is the player who must submit the next move.
	Awaiting() string
	// Blocking reports whether the suspension stops the turn from advancing.
	Blocking() bool

	suspensionKind() string
	clone() Suspension
}

// AttackKind distinguishes the two blockable attacks.
type AttackKind string

const (
	AttackSteal AttackKind = "steal"
	AttackSleep AttackKind = "sleep"
)

// DefenseCard returns the card kind that blocks this attack.
func (k AttackKind) DefenseCard() CardKind {
	if k == AttackSleep {
		return CardBlockSleep
	}
	return CardBlockSteal
}

// PendingAttack is an unresolved steal or sleep that the target may block
// until Deadline.
type PendingAttack struct {
	Kind       AttackKind `json:"kind"`
	AttackerID string     `json:"attackerId"`
	TargetID   string     `json:"targetId"`
	QueenID    string     `json:"queenId"`
	CardID     string     `json:"cardId"`
	Deadline   time.Time  `json:"deadline"`
}

func (a *PendingAttack) Owner() string          { return a.AttackerID }
func (a *PendingAttack) Awaiting() string       { return a.TargetID }
func (a *PendingAttack) Blocking() bool         { return true }
func (a *PendingAttack) suspensionKind() string { return "pending_attack" }
func (a *PendingAttack) clone() Suspension      { c := *a; return &c }

// RevealInProgress waits for TargetID to pick a sleeping queen after
// RevealerID revealed a number card.
type RevealInProgress struct {
	RevealerID string `json:"revealerId"`
	TargetID   string `json:"targetId"`
	Revealed   Card   `json:"revealed"`
}

func (r *RevealInProgress) Owner() string          { return r.RevealerID }
func (r *RevealInProgress) Awaiting() string       { return r.TargetID }
func (r *RevealInProgress) Blocking() bool         { return true }
func (r *RevealInProgress) suspensionKind() string { return "reveal_in_progress" }
func (r *RevealInProgress) clone() Suspension      { c := *r; return &c }

// BonusPick waits for PlayerID to wake one extra queen.
type BonusPick struct {
	PlayerID string `json:"playerId"`
}

func (b *BonusPick) Owner() string          { return b.PlayerID }
func (b *BonusPick) Awaiting() string       { return b.PlayerID }
func (b *BonusPick) Blocking() bool         { return true }
func (b *BonusPick) suspensionKind() string { return "bonus_pick" }
func (b *BonusPick) clone() Suspension      { c := *b; return &c }

// StagedCards is the current player's tentative card selection. It does not
// interrupt turn order and is dropped by the player's next card play.
type StagedCards struct {
	PlayerID string   `json:"playerId"`
	CardIDs  []string `json:"cardIds"`
}

func (s *StagedCards) Owner() string          { return "" }
func (s *StagedCards) Awaiting() string       { return s.PlayerID }
func (s *StagedCards) Blocking() bool         { return false }
func (s *StagedCards) suspensionKind() string { return "staged_cards" }
func (s *StagedCards) clone() Suspension {
	return &StagedCards{PlayerID: s.PlayerID, CardIDs: append([]string(nil), s.CardIDs...)}
}

// blockingSuspension returns the active suspension if it interrupts turn order.
func (g *GameState) blockingSuspension() Suspension {
	if g.Suspension != nil && g.Suspension.Blocking() {
		return g.Suspension
	}
	return nil
}

// Attack returns the active pending attack, or nil.
func (g *GameState) Attack() *PendingAttack {
	a, _ := g.Suspension.(*PendingAttack)
	return a
}

// Reveal returns the active reveal sequence, or nil.
func (g *GameState) Reveal() *RevealInProgress {
	r, _ := g.Suspension.(*RevealInProgress)
	return r
}

// Bonus returns the active bonus pick, or nil.
func (g *GameState) Bonus() *BonusPick {
	b, _ := g.Suspension.(*BonusPick)
	return b
}

// Staged returns the current staged selection, or nil.
func (g *GameState) Staged() *StagedCards {
	s, _ := g.Suspension.(*StagedCards)
	return s
}
