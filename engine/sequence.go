package engine

// RevealTarget returns the seat that picks a queen when actor reveals a
// number card of value n: counting n seats clockwise with the revealer as
// seat one.
func RevealTarget(actor, n, numPlayers int) int {
	if numPlayers <= 0 {
		return 0
	}
	return ((actor+n-1)%numPlayers + numPlayers) % numPlayers
}

// beginReveal discards the actor's reveal card and turns over the top card of
// the deck. A number card arms a reveal sequence for the computed seat; an
// action card goes into the actor's hand and the actor keeps the turn.
func beginReveal(g *GameState, actor int, cardID string, sh Shuffler, out *Outcome) {
	discardFromHand(g, actor, cardID)
	c, ok := drawCard(g, sh)
	invariant(ok, "no card to reveal")
	out.Revealed = &c

	p := &g.Players[actor]
	if !c.IsNumber() {
		p.Hand = append(p.Hand, c)
		out.KeepTurn = true
		out.Description = p.Name + " revealed " + c.String() + " and plays again"
		return
	}

	g.Discard = append(g.Discard, c)
	if len(g.SleepingQueens) == 0 {
		out.Description = p.Name + " revealed " + c.String() + " but no queens are asleep"
		return
	}
	target := RevealTarget(actor, int(c.Value), len(g.Players))
	g.Suspension = &RevealInProgress{
		RevealerID: p.ID,
		TargetID:   g.Players[target].ID,
		Revealed:   c,
	}
	out.Description = p.Name + " revealed " + c.String() + "; " + g.Players[target].Name + " picks a queen"
}

// finishReveal lets the chosen seat wake queenID, then gives the revealer a
// replacement card.
func finishReveal(g *GameState, r *RevealInProgress, queenID string, sh Shuffler, out *Outcome) {
	picker := g.PlayerIndex(r.TargetID)
	revealer := g.PlayerIndex(r.RevealerID)
	invariant(picker >= 0, "reveal picker %s left the game", r.TargetID)
	invariant(revealer >= 0, "revealer %s left the game", r.RevealerID)

	q := takeSleepingQueen(g, queenID)
	giveQueen(g, picker, q, "", out)
	g.Suspension = nil
	drawInto(g, revealer, 1, sh)
	out.Description = g.Players[picker].Name + " woke " + q.Name
}

// armBonus grants seat an extra pick when the queen just woken carries the
// bonus and another queen is still asleep.
func armBonus(g *GameState, seat int, wokenID string) bool {
	if wokenID != QueenRose || len(g.SleepingQueens) == 0 {
		return false
	}
	g.Suspension = &BonusPick{PlayerID: g.Players[seat].ID}
	return true
}

func finishBonus(g *GameState, b *BonusPick, queenID string, out *Outcome) {
	seat := g.PlayerIndex(b.PlayerID)
	invariant(seat >= 0, "bonus beneficiary %s left the game", b.PlayerID)
	q := takeSleepingQueen(g, queenID)
	giveQueen(g, seat, q, "", out)
	g.Suspension = nil
	out.Description = g.Players[seat].Name + " took " + q.Name + " as a bonus"
}
