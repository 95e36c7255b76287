package engine

import "time"

// MoveKind identifies which command a move maps to.
type MoveKind string

const (
	MoveWakeQueen  MoveKind = "wake_queen"
	MoveStealQueen MoveKind = "steal_queen"
	MoveBlock      MoveKind = "block"
	MoveAllow      MoveKind = "allow_attack"
	MoveSleepQueen MoveKind = "sleep_queen"
	MoveReveal     MoveKind = "reveal"
	MoveRevealPick MoveKind = "reveal_pick"
	MoveBonusPick  MoveKind = "bonus_pick"
	MoveEquation   MoveKind = "equation"
	MoveDiscard    MoveKind = "discard"
	MoveStage      MoveKind = "stage"
	MoveClearStage MoveKind = "clear_stage"
)

// AllMoveKinds lists every move kind in a stable order.
var AllMoveKinds = []MoveKind{
	MoveWakeQueen, MoveStealQueen, MoveBlock, MoveAllow, MoveSleepQueen,
	MoveReveal, MoveRevealPick, MoveBonusPick, MoveEquation, MoveDiscard,
	MoveStage, MoveClearStage,
}

// Move is the canonical, already-normalised input to the engine.
type Move struct {
	Kind           MoveKind  `json:"kind"`
	ID             string    `json:"id"`
	PlayerID       string    `json:"playerId"`
	Timestamp      time.Time `json:"timestamp"`
	CardIDs        []string  `json:"cardIds,omitempty"`
	TargetQueenID  string    `json:"targetQueenId,omitempty"`
	TargetPlayerID string    `json:"targetPlayerId,omitempty"`
}

// cardID returns the single claimed card, or "" if there isn't exactly one.
func (m Move) cardID() string {
	if len(m.CardIDs) != 1 {
		return ""
	}
	return m.CardIDs[0]
}
