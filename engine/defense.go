package engine

import "time"

// armAttack opens a defense window against target. The attacker's card has
// already been discarded; no queen moves until the attack resolves.
func armAttack(g *GameState, kind AttackKind, attackerID, targetID, queenID, cardID string, now time.Time) *PendingAttack {
	a := &PendingAttack{
		Kind:       kind,
		AttackerID: attackerID,
		TargetID:   targetID,
		QueenID:    queenID,
		CardID:     cardID,
		Deadline:   now.Add(time.Duration(g.Rules.DefenseWindow) * time.Millisecond),
	}
	g.Suspension = a
	return a
}

// WindowOpen reports whether the target may still block at now.
func (a *PendingAttack) WindowOpen(now time.Time) bool {
	return !now.After(a.Deadline)
}

// Remaining returns the time left in the window, never negative.
func (a *PendingAttack) Remaining(now time.Time) time.Duration {
	if d := a.Deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

// completeAttack performs the transfer a pending attack described and
// clears it.
func completeAttack(g *GameState, a *PendingAttack, out *Outcome) {
	target := g.PlayerIndex(a.TargetID)
	invariant(target >= 0, "pending attack target %s left the game", a.TargetID)
	q := takeOwnedQueen(g, target, a.QueenID)

	switch a.Kind {
	case AttackSteal:
		attacker := g.PlayerIndex(a.AttackerID)
		invariant(attacker >= 0, "pending attack attacker %s left the game", a.AttackerID)
		giveQueen(g, attacker, q, a.TargetID, out)
	case AttackSleep:
		putToSleep(g, q, a.TargetID, out)
	default:
		invariant(false, "unknown attack kind %q", a.Kind)
	}
	g.Suspension = nil
}

// blockAttack discards the defender's card and cancels the attack.
func blockAttack(g *GameState, a *PendingAttack, defenseCardID string) Card {
	target := g.PlayerIndex(a.TargetID)
	invariant(target >= 0, "pending attack target %s left the game", a.TargetID)
	c := discardFromHand(g, target, defenseCardID)
	g.Suspension = nil
	return c
}
