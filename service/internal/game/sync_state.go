// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/sleepingqueens/engine"
)

// ObfPlayerState represents the state of a single player, obfuscated for a specific observer.
type ObfPlayerState struct {
	PlayerID      uuid.UUID      `json:"playerId"`
	Username      string         `json:"username"`
	Position      int            `json:"position"`
	HandSize      int            `json:"handSize"`
	Queens        []engine.Queen `json:"queens"` // Awake queens are face up for everyone.
	Score         int            `json:"score"`
	Connected     bool           `json:"connected"`
	IsCurrentTurn bool           `json:"isCurrentTurn"`
	// Hand is populated only for the player requesting the state ('self').
	Hand []engine.Card `json:"hand,omitempty"`
}

// ObfSuspension is the public part of whatever the game is waiting on.
type ObfSuspension struct {
	Type       string       `json:"type"`
	AwaitingID uuid.UUID    `json:"awaitingId"`
	ActorID    uuid.UUID    `json:"actorId,omitempty"` // Attacker or revealer.
	AttackKind string       `json:"attackKind,omitempty"`
	QueenID    string       `json:"queenId,omitempty"`
	Deadline   int64        `json:"deadline,omitempty"` // unix ms
	Revealed   *engine.Card `json:"revealed,omitempty"`
	// StagedCardIDs is only shown to the player who staged them.
	StagedCardIDs []string `json:"stagedCardIds,omitempty"`
}

// ObfGameState represents the overall game state, obfuscated for a specific observer.
type ObfGameState struct {
	GameID          uuid.UUID    `json:"gameId"`
	RoomCode        string       `json:"roomCode"`
	HostID          uuid.UUID    `json:"hostId"`
	Phase           string       `json:"phase"`
	Version         uint64       `json:"version"`
	TurnID          int          `json:"turnId"`
	CurrentPlayerID uuid.UUID    `json:"currentPlayerId"`
	AwaitedPlayerID uuid.UUID    `json:"awaitedPlayerId"`
	DeckSize        int          `json:"deckSize"`
	DiscardSize     int          `json:"discardSize"`
	DiscardTop      *engine.Card `json:"discardTop,omitempty"`
	// SleepingQueenIDs lists face-down queens by id only.
	SleepingQueenIDs []string          `json:"sleepingQueenIds"`
	Players          []ObfPlayerState  `json:"players"`
	Suspension       *ObfSuspension    `json:"suspension,omitempty"`
	AvailableMoves   []engine.MoveKind `json:"availableMoves,omitempty"` // Hints for the requesting player.
	WinnerID         uuid.UUID         `json:"winnerId,omitempty"`
	Rules            engine.Rules      `json:"rules"`
}

// GetCurrentObfuscatedGameState builds the view of the game forUser is
// allowed to see: their own hand, everyone's counts and awake queens.
// This function assumes the game lock is HELD by the caller.
func (g *QueensGame) GetCurrentObfuscatedGameState(forUser uuid.UUID) ObfGameState {
	st := g.State
	self := forUser.String()
	obf := ObfGameState{
		GameID:           g.ID,
		RoomCode:         g.RoomCode,
		HostID:           g.HostID,
		Phase:            string(st.Phase),
		Version:          st.Version,
		TurnID:           g.TurnID,
		DeckSize:         len(st.Deck),
		DiscardSize:      len(st.Discard),
		SleepingQueenIDs: sleepingQueenIDs(st),
		Rules:            st.Rules,
		AvailableMoves:   engine.AvailableMoves(st, self),
	}
	if n := len(st.Discard); n > 0 {
		top := st.Discard[n-1]
		obf.DiscardTop = &top
	}
	if st.Phase == engine.PhasePlaying {
		obf.CurrentPlayerID = playerUUID(st.CurrentPlayerID())
		obf.AwaitedPlayerID = playerUUID(engine.AwaitedPlayer(st))
	}
	if st.WinnerID != "" {
		obf.WinnerID = playerUUID(st.WinnerID)
	}
	obf.Suspension = obfSuspension(st, self)

	obf.Players = make([]ObfPlayerState, len(st.Players))
	for i, p := range st.Players {
		ps := ObfPlayerState{
			PlayerID:      playerUUID(p.ID),
			Username:      p.Name,
			Position:      p.Position,
			HandSize:      len(p.Hand),
			Queens:        append([]engine.Queen{}, p.Queens...),
			Score:         p.Score,
			Connected:     p.Connected,
			IsCurrentTurn: st.Phase == engine.PhasePlaying && st.CurrentPlayer == i,
		}
		if p.ID == self {
			ps.Hand = append([]engine.Card{}, p.Hand...)
		}
		obf.Players[i] = ps
	}
	return obf
}

func obfSuspension(st *engine.GameState, self string) *ObfSuspension {
	switch {
	case st.Attack() != nil:
		a := st.Attack()
		return &ObfSuspension{
			Type:       st.SuspensionKind(),
			AwaitingID: playerUUID(a.TargetID),
			ActorID:    playerUUID(a.AttackerID),
			AttackKind: string(a.Kind),
			QueenID:    a.QueenID,
			Deadline:   a.Deadline.UnixMilli(),
		}
	case st.Reveal() != nil:
		r := st.Reveal()
		card := r.Revealed
		return &ObfSuspension{
			Type:       st.SuspensionKind(),
			AwaitingID: playerUUID(r.TargetID),
			ActorID:    playerUUID(r.RevealerID),
			Revealed:   &card,
		}
	case st.Bonus() != nil:
		return &ObfSuspension{Type: st.SuspensionKind(), AwaitingID: playerUUID(st.Bonus().PlayerID)}
	case st.Staged() != nil:
		s := st.Staged()
		obf := &ObfSuspension{Type: st.SuspensionKind(), AwaitingID: playerUUID(s.PlayerID)}
		if s.PlayerID == self {
			obf.StagedCardIDs = append([]string{}, s.CardIDs...)
		}
		return obf
	}
	return nil
}
