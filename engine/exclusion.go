package engine

// resolveExclusion enforces that the Cat and Dog queens never share an
// owner. It is called right after seat acquired acquiredID; if seat now holds
// both halves of the pair, the newly acquired queen goes back to sleep and
// the existing one stays. It reports whether the queen was sent back.
func resolveExclusion(g *GameState, seat int, acquiredID string) bool {
	other, ok := exclusivePair(acquiredID)
	if !ok {
		return false
	}
	p := &g.Players[seat]
	if p.queenIndex(other) < 0 {
		return false
	}
	q := takeOwnedQueen(g, seat, acquiredID)
	q.Awake = false
	g.SleepingQueens = append(g.SleepingQueens, q)
	return true
}

// exclusionHolds reports whether no player owns both exclusive queens.
func exclusionHolds(g *GameState) bool {
	for i := range g.Players {
		p := &g.Players[i]
		if p.queenIndex(QueenCat) >= 0 && p.queenIndex(QueenDog) >= 0 {
			return false
		}
	}
	return true
}
