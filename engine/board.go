package engine

// Low-level mutations used by commands. Each assumes validation already ran
// and panics through invariant when it did not.

// QueenMove records a queen changing place. An empty From or To is the
// sleeping pool.
type QueenMove struct {
	QueenID string `json:"queenId"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
}

func discardFromHand(g *GameState, seat int, cardID string) Card {
	p := &g.Players[seat]
	i := p.handIndex(cardID)
	invariant(i >= 0, "card %s not in %s's hand", cardID, p.ID)
	c := p.Hand[i]
	p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
	g.Discard = append(g.Discard, c)
	return c
}

func takeSleepingQueen(g *GameState, queenID string) Queen {
	i := g.sleepingIndex(queenID)
	invariant(i >= 0, "queen %s is not asleep", queenID)
	q := g.SleepingQueens[i]
	g.SleepingQueens = append(g.SleepingQueens[:i], g.SleepingQueens[i+1:]...)
	return q
}

func takeOwnedQueen(g *GameState, seat int, queenID string) Queen {
	p := &g.Players[seat]
	i := p.queenIndex(queenID)
	invariant(i >= 0, "queen %s not owned by %s", queenID, p.ID)
	q := p.Queens[i]
	p.Queens = append(p.Queens[:i], p.Queens[i+1:]...)
	p.recomputeScore()
	return q
}

// giveQueen hands q to seat awake, then applies the exclusion rule. from is
// the previous holder, "" for the sleeping pool. It reports whether the
// player kept the queen.
func giveQueen(g *GameState, seat int, q Queen, from string, out *Outcome) bool {
	p := &g.Players[seat]
	q.Awake = true
	p.Queens = append(p.Queens, q)
	p.recomputeScore()
	out.QueenMoves = append(out.QueenMoves, QueenMove{QueenID: q.ID, From: from, To: p.ID})

	if resolveExclusion(g, seat, q.ID) {
		out.QueenMoves = append(out.QueenMoves, QueenMove{QueenID: q.ID, From: p.ID})
		out.Excluded = q.ID
		return false
	}
	return true
}

func putToSleep(g *GameState, q Queen, from string, out *Outcome) {
	q.Awake = false
	g.SleepingQueens = append(g.SleepingQueens, q)
	out.QueenMoves = append(out.QueenMoves, QueenMove{QueenID: q.ID, From: from})
}

// drawInto draws up to n cards into seat's hand without exceeding the hand
// size. It stops early if the supply runs out.
func drawInto(g *GameState, seat, n int, sh Shuffler) int {
	p := &g.Players[seat]
	drawn := 0
	for drawn < n && len(p.Hand) < g.Rules.HandSize {
		c, ok := drawCard(g, sh)
		if !ok {
			break
		}
		p.Hand = append(p.Hand, c)
		drawn++
	}
	return drawn
}

// refillHands tops every hand up to the hand size, skipping the owner of an
// unfinished sequence.
func refillHands(g *GameState, sh Shuffler) {
	skip := ""
	if s := g.blockingSuspension(); s != nil {
		skip = s.Owner()
	}
	for i := range g.Players {
		if g.Players[i].ID == skip {
			continue
		}
		drawInto(g, i, g.Rules.HandSize, sh)
	}
}
