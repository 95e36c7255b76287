// internal/game/special_actions.go
package game

import (
	"github.com/jason-s-yu/sleepingqueens/engine"
)

// promptAwaitedPlayer tells the player a blocking suspension is waiting on
// what they have to answer and which moves will be accepted.
// Assumes lock is held by caller.
func (g *QueensGame) promptAwaitedPlayer() {
	if g.GameOver || g.State.Phase != engine.PhasePlaying {
		return
	}
	var (
		recipient string
		ev        = GameEvent{Type: EventPrivateChoice}
		payload   = map[string]interface{}{"suspension": g.State.SuspensionKind()}
	)
	switch {
	case g.State.Attack() != nil:
		a := g.State.Attack()
		recipient = a.TargetID
		ev.User = eventUser(a.AttackerID)
		ev.Target = eventUser(a.TargetID)
		payload["kind"] = a.Kind
		payload["queenId"] = a.QueenID
		payload["deadline"] = a.Deadline.UnixMilli()
		payload["defenseCard"] = a.Kind.DefenseCard()
	case g.State.Reveal() != nil:
		r := g.State.Reveal()
		recipient = r.TargetID
		ev.User = eventUser(r.RevealerID)
		ev.Target = eventUser(r.TargetID)
		card := r.Revealed
		ev.Card = &card
	case g.State.Bonus() != nil:
		b := g.State.Bonus()
		recipient = b.PlayerID
		ev.User = eventUser(b.PlayerID)
	default:
		return
	}
	payload["options"] = engine.AvailableMoves(g.State, recipient)
	if needsQueenChoice(g.State) {
		payload["queenIds"] = sleepingQueenIDs(g.State)
	}
	ev.Payload = payload
	g.fireEventToPlayer(playerUUID(recipient), ev)
}

func needsQueenChoice(g *engine.GameState) bool {
	return g.Reveal() != nil || g.Bonus() != nil
}

func sleepingQueenIDs(g *engine.GameState) []string {
	ids := make([]string, len(g.SleepingQueens))
	for i, q := range g.SleepingQueens {
		ids[i] = q.ID
	}
	return ids
}
