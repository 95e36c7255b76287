// internal/game/engine_adapter.go
package game

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/sleepingqueens/engine"
	"github.com/jason-s-yu/sleepingqueens/service/internal/models"
	"github.com/sirupsen/logrus"
)

// defenseGrace is added to the remaining window before the timer submits
// allow_attack, so the engine's clock is past the deadline when it checks.
const defenseGrace = 50 * time.Millisecond

// playerUUID maps an engine player id back to the service id.
func playerUUID(engineID string) uuid.UUID {
	id, err := uuid.Parse(engineID)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func eventUser(engineID string) *EventUser {
	if engineID == "" {
		return nil
	}
	return &EventUser{ID: playerUUID(engineID)}
}

// HandleAction normalises a client action and submits it to the engine.
// Assumes lock is held by the caller.
func (g *QueensGame) HandleAction(ctx context.Context, playerID uuid.UUID, action models.GameAction) {
	if g.GameOver {
		g.log.WithFields(logrus.Fields{"player": playerID, "action": action.ActionType}).Debug("action ignored, game over")
		return
	}
	if !g.Started {
		g.rejectAction(playerID, action.ActionType, string(engine.CodeNotPlaying), "The game has not started.")
		return
	}
	p := g.getPlayerByID(playerID)
	if p == nil || !p.Connected {
		g.log.WithField("player", playerID).Debug("action from unknown or disconnected player")
		return
	}

	m, err := NormalizeAction(g.State, playerID.String(), action)
	if err != nil {
		g.rejectAction(playerID, action.ActionType, "bad_request", err.Error())
		return
	}
	g.submitMove(ctx, m)
}

// submitMove runs one canonical move through dedupe, the engine, storage
// and broadcast. The returned error has already been reported to the mover.
// Assumes lock is held by the caller.
func (g *QueensGame) submitMove(ctx context.Context, m engine.Move) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	actor := playerUUID(m.PlayerID)
	entry := g.log.WithFields(logrus.Fields{"player": m.PlayerID, "move": m.Kind, "moveId": m.ID})

	if g.Moves != nil {
		seen, err := g.Moves.Seen(ctx, g.State.ID, m.ID)
		if err != nil {
			entry.WithError(err).Warn("move log unavailable, relying on snapshot id")
		} else if seen {
			entry.Debug("duplicate move dropped")
			g.sendSyncState(actor)
			return nil
		}
	}

	prev := g.State
	next, out, err := g.engine.ApplyMove(prev, m)
	if err != nil {
		var ie *engine.InternalError
		if errors.As(err, &ie) {
			entry.WithField("panic", ie.Cause).WithField("stack", string(ie.Stack)).Error("engine failed applying move")
			g.rejectAction(actor, string(m.Kind), "internal", "The server could not apply that move.")
			return err
		}
		var ve *engine.ValidationError
		if errors.As(err, &ve) {
			entry.WithField("code", ve.Code).Info("move rejected")
			g.rejectAction(actor, string(m.Kind), string(ve.Code), ve.Message)
			return err
		}
		entry.WithError(err).Warn("move failed")
		g.rejectAction(actor, string(m.Kind), "error", err.Error())
		return err
	}
	if out.Replayed {
		entry.Debug("move already applied")
		g.sendSyncState(actor)
		return nil
	}

	g.State = next
	g.saveSnapshot()
	if g.Moves != nil {
		if err := g.Moves.MarkApplied(ctx, next.ID, m.ID); err != nil {
			entry.WithError(err).Warn("record move id")
		}
	}
	g.logAction(actor, string(m.Kind), movePayload(m, out))
	entry.WithField("version", next.Version).Debug(out.Description)

	g.emitEventsForOutcome(prev, next, out)
	g.syncDefenseTimer()
	if next.IsOver() {
		g.EndGame()
	}
	return nil
}

func movePayload(m engine.Move, out engine.Outcome) map[string]interface{} {
	p := map[string]interface{}{"moveId": m.ID}
	if len(m.CardIDs) > 0 {
		p["cardIds"] = m.CardIDs
	}
	if m.TargetQueenID != "" {
		p["queenId"] = m.TargetQueenID
	}
	if out.Description != "" {
		p["description"] = out.Description
	}
	return p
}

// rejectAction tells the mover why nothing happened.
// Assumes lock is held by caller.
func (g *QueensGame) rejectAction(playerID uuid.UUID, actionType, code, message string) {
	g.fireEventToPlayer(playerID, GameEvent{
		Type: EventPrivateMoveRejected,
		Payload: map[string]interface{}{
			"action":  actionType,
			"code":    code,
			"message": message,
		},
	})
}

// emitEventsForOutcome broadcasts what a move did, then re-syncs everyone.
// Assumes lock is held by caller.
func (g *QueensGame) emitEventsForOutcome(prev, next *engine.GameState, out engine.Outcome) {
	actor := eventUser(out.PlayerID)

	queens := make([]EventQueen, 0, len(out.QueenMoves))
	for _, qm := range out.QueenMoves {
		q, _ := engine.LookupQueen(qm.QueenID)
		queens = append(queens, EventQueen{
			ID:     qm.QueenID,
			Name:   q.Name,
			Points: q.Points,
			From:   eventUser(qm.From),
			To:     eventUser(qm.To),
		})
	}
	g.fireEvent(GameEvent{
		Type:   EventPlayerMove,
		User:   actor,
		Queens: queens,
		Payload: map[string]interface{}{
			"kind":        out.Kind,
			"description": out.Description,
			"version":     next.Version,
		},
	})

	switch {
	case out.Attack != nil && (out.Kind == engine.MoveBlock || out.Kind == engine.MoveAllow):
		g.fireEvent(GameEvent{
			Type:   EventAttackResolved,
			User:   eventUser(out.Attack.AttackerID),
			Target: eventUser(out.Attack.TargetID),
			Payload: map[string]interface{}{
				"kind":    out.Attack.Kind,
				"queenId": out.Attack.QueenID,
				"blocked": out.Blocked,
			},
		})
	case next.Attack() != nil && prev.Attack() == nil:
		a := next.Attack()
		g.fireEvent(GameEvent{
			Type:   EventAttackPending,
			User:   eventUser(a.AttackerID),
			Target: eventUser(a.TargetID),
			Payload: map[string]interface{}{
				"kind":     a.Kind,
				"queenId":  a.QueenID,
				"deadline": a.Deadline.UnixMilli(),
			},
		})
	}

	if out.Excluded != "" {
		q, _ := engine.LookupQueen(out.Excluded)
		g.fireEvent(GameEvent{
			Type:    EventQueenExcluded,
			User:    actor,
			Queens:  []EventQueen{{ID: q.ID, Name: q.Name, Points: q.Points}},
			Payload: map[string]interface{}{"queenId": out.Excluded},
		})
	}
	if out.Revealed != nil {
		ev := GameEvent{Type: EventReveal, User: actor, Card: out.Revealed}
		if r := next.Reveal(); r != nil {
			ev.Target = eventUser(r.TargetID)
		}
		g.fireEvent(ev)
	}
	if out.Bonus {
		g.fireEvent(GameEvent{Type: EventBonusPick, User: actor})
	}

	if AwaitedChanged(prev, next) {
		g.TurnID++
		g.broadcastPlayerTurn()
	}
	g.broadcastSyncStateToAll()
}

// AwaitedChanged reports whether a different player is expected to move.
func AwaitedChanged(prev, next *engine.GameState) bool {
	return engine.AwaitedPlayer(prev) != engine.AwaitedPlayer(next) ||
		prev.SuspensionKind() != next.SuspensionKind()
}

// broadcastPlayerTurn announces the awaited player and prompts them
// privately when a suspension needs an answer.
// Assumes lock is held by caller.
func (g *QueensGame) broadcastPlayerTurn() {
	if g.GameOver || g.State.Phase != engine.PhasePlaying {
		return
	}
	awaited := engine.AwaitedPlayer(g.State)
	g.fireEvent(GameEvent{
		Type: EventGamePlayerTurn,
		User: eventUser(awaited),
		Payload: map[string]interface{}{
			"turn":       g.TurnID,
			"current":    g.State.CurrentPlayerID(),
			"suspension": g.State.SuspensionKind(),
		},
	})
	g.promptAwaitedPlayer()
}

// syncDefenseTimer arms, keeps or cancels the timer that lets an attack go
// through once the target's window has passed.
// Assumes lock is held by caller.
func (g *QueensGame) syncDefenseTimer() {
	a := g.State.Attack()
	if a == nil {
		g.stopDefenseTimer()
		return
	}
	if g.defenseTimer != nil {
		return
	}
	g.attackSeq++
	seq := g.attackSeq
	wait := a.Remaining(g.engine.Now()) + defenseGrace
	g.log.WithFields(logrus.Fields{"target": a.TargetID, "wait": wait}).Debug("defense timer armed")

	g.defenseTimer = time.AfterFunc(wait, func() {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		g.expireAttack(seq)
	})
}

func (g *QueensGame) stopDefenseTimer() {
	if g.defenseTimer != nil {
		g.defenseTimer.Stop()
		g.defenseTimer = nil
	}
	g.attackSeq++
}

// expireAttack submits allow_attack for the attacker once the window has
// closed. A timer armed for an attack that was since resolved does nothing.
// Assumes lock is held by caller.
func (g *QueensGame) expireAttack(expectedSeq int) {
	if g.GameOver || expectedSeq != g.attackSeq {
		return
	}
	if g.defenseTimer != nil {
		g.defenseTimer.Stop()
		g.defenseTimer = nil
	}
	a := g.State.Attack()
	if a == nil {
		return
	}
	if a.WindowOpen(g.engine.Now()) {
		// Clock lagging the timer; try again shortly.
		g.syncDefenseTimer()
		return
	}
	g.log.WithField("target", a.TargetID).Info("defense window expired")
	m := engine.Move{
		Kind:     engine.MoveAllow,
		ID:       uuid.NewString(),
		PlayerID: a.AttackerID,
	}
	g.submitMove(context.Background(), m)
}
