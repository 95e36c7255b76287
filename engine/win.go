package engine

// WinReason says which condition decided the game.
type WinReason string

const (
	WinByQueens WinReason = "queens"
	WinByPoints WinReason = "points"
	WinBySupply WinReason = "supply_exhausted"
)

// WinResult is the outcome of a win check.
type WinResult struct {
	Decided  bool      `json:"decided"`
	WinnerID string    `json:"winnerId,omitempty"`
	Reason   WinReason `json:"reason,omitempty"`
}

// Thresholds returns the queen-count and point targets for a table size.
// Larger tables need fewer queens.
func Thresholds(numPlayers int) (queens, points int) {
	if numPlayers >= 4 {
		return 4, 40
	}
	return 5, 50
}

// EvaluateWin checks the win conditions in seat order. The first player to
// reach either threshold wins. Once every queen is awake the strict points
// leader wins; a tie at the top leaves the game undecided.
func EvaluateWin(g *GameState) WinResult {
	if len(g.Players) == 0 {
		return WinResult{}
	}
	queens, points := Thresholds(len(g.Players))
	for i := range g.Players {
		p := &g.Players[i]
		if len(p.Queens) >= queens {
			return WinResult{Decided: true, WinnerID: p.ID, Reason: WinByQueens}
		}
		if p.Score >= points {
			return WinResult{Decided: true, WinnerID: p.ID, Reason: WinByPoints}
		}
	}

	if len(g.SleepingQueens) > 0 {
		return WinResult{}
	}
	best, bestScore, tied := -1, -1, false
	for i := range g.Players {
		switch s := g.Players[i].Score; {
		case s > bestScore:
			best, bestScore, tied = i, s, false
		case s == bestScore:
			tied = true
		}
	}
	if tied {
		return WinResult{}
	}
	return WinResult{Decided: true, WinnerID: g.Players[best].ID, Reason: WinBySupply}
}
