package engine

// Phase is the lifecycle stage of a game.
type Phase string

const (
	PhaseWaiting Phase = "waiting"
	PhasePlaying Phase = "playing"
	PhaseEnded   Phase = "ended"
)

// Player holds one seat's hand and queens.
type Player struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Hand      []Card  `json:"hand"`
	Queens    []Queen `json:"queens"`
	Score     int     `json:"score"`
	Position  int     `json:"position"`
	Connected bool    `json:"connected"`
}

// recomputeScore sets Score to the sum of owned queen points.
func (p *Player) recomputeScore() {
	s := 0
	for _, q := range p.Queens {
		s += q.Points
	}
	p.Score = s
}

// handIndex returns the index of the card with the given id, or -1.
func (p *Player) handIndex(cardID string) int {
	for i, c := range p.Hand {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}

// queenIndex returns the index of the owned queen with the given id, or -1.
func (p *Player) queenIndex(queenID string) int {
	for i, q := range p.Queens {
		if q.ID == queenID {
			return i
		}
	}
	return -1
}

// HasKind reports whether the hand holds at least one card of kind k.
func (p *Player) HasKind(k CardKind) bool {
	for _, c := range p.Hand {
		if c.Kind == k {
			return true
		}
	}
	return false
}

// Rules holds the tunable constants of a game.
type Rules struct {
	HandSize      int   `json:"handSize"`
	MinPlayers    int   `json:"minPlayers"`
	MaxPlayers    int   `json:"maxPlayers"`
	DefenseWindow int64 `json:"defenseWindowMs"`
}

// DefaultRules returns the standard table rules.
func DefaultRules() Rules {
	return Rules{
		HandSize:      DefaultHandSize,
		MinPlayers:    2,
		MaxPlayers:    5,
		DefenseWindow: 5000,
	}
}

// GameState is a complete snapshot of one game. Transitions never modify a
// snapshot in place; they produce a new one via Clone.
type GameState struct {
	ID             string     `json:"id"`
	RoomCode       string     `json:"roomCode"`
	Phase          Phase      `json:"phase"`
	Players        []Player   `json:"players"`
	SleepingQueens []Queen    `json:"sleepingQueens"`
	Deck           []Card     `json:"deck"`
	Discard        []Card     `json:"discard"`
	CurrentPlayer  int        `json:"currentPlayer"`
	Version        uint64     `json:"version"`
	LastMoveID     string     `json:"lastMoveId,omitempty"`
	Suspension     Suspension `json:"-"`
	WinnerID       string     `json:"winnerId,omitempty"`
	Rules          Rules      `json:"rules"`
}

// Clone returns a deep copy of the snapshot.
func (g *GameState) Clone() *GameState {
	c := *g
	c.Players = make([]Player, len(g.Players))
	for i, p := range g.Players {
		p.Hand = append([]Card(nil), p.Hand...)
		p.Queens = append([]Queen(nil), p.Queens...)
		c.Players[i] = p
	}
	c.SleepingQueens = append([]Queen(nil), g.SleepingQueens...)
	c.Deck = append([]Card(nil), g.Deck...)
	c.Discard = append([]Card(nil), g.Discard...)
	if g.Suspension != nil {
		c.Suspension = g.Suspension.clone()
	}
	return &c
}

// PlayerIndex returns the seat index of playerID, or -1.
func (g *GameState) PlayerIndex(playerID string) int {
	for i := range g.Players {
		if g.Players[i].ID == playerID {
			return i
		}
	}
	return -1
}

// PlayerByID returns a pointer to the seat for playerID, or nil.
func (g *GameState) PlayerByID(playerID string) *Player {
	if i := g.PlayerIndex(playerID); i >= 0 {
		return &g.Players[i]
	}
	return nil
}

// CurrentPlayerID returns the id of the player whose turn it is.
func (g *GameState) CurrentPlayerID() string {
	if g.CurrentPlayer < 0 || g.CurrentPlayer >= len(g.Players) {
		return ""
	}
	return g.Players[g.CurrentPlayer].ID
}

// sleepingIndex returns the index of the sleeping queen with id, or -1.
func (g *GameState) sleepingIndex(queenID string) int {
	for i, q := range g.SleepingQueens {
		if q.ID == queenID {
			return i
		}
	}
	return -1
}

// QueenOwner returns the seat index holding queenID, or -1 if it is asleep
// or unknown.
func (g *GameState) QueenOwner(queenID string) int {
	for i := range g.Players {
		if g.Players[i].queenIndex(queenID) >= 0 {
			return i
		}
	}
	return -1
}

// QueenCount returns the number of queens in the pool plus all players.
func (g *GameState) QueenCount() int {
	n := len(g.SleepingQueens)
	for _, p := range g.Players {
		n += len(p.Queens)
	}
	return n
}

// CardCount returns deck + discard + all hands.
func (g *GameState) CardCount() int {
	n := len(g.Deck) + len(g.Discard)
	for _, p := range g.Players {
		n += len(p.Hand)
	}
	return n
}

// IsOver reports whether the game has ended.
func (g *GameState) IsOver() bool { return g.Phase == PhaseEnded }
