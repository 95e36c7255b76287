package engine

// ---------------------------------------------------------------------------
// Lobby and deal. These run outside the move pipeline: they do not check
// turn order and only the deal bumps Version.
// ---------------------------------------------------------------------------

// NewGame builds a waiting game with a shuffled deck and all twelve queens
// asleep.
func (e *Engine) NewGame(id, roomCode string) *GameState {
	deck := NewDeck()
	e.shuffler.Shuffle(deck)
	return &GameState{
		ID:             id,
		RoomCode:       roomCode,
		Phase:          PhaseWaiting,
		Players:        []Player{},
		SleepingQueens: NewSleepingQueens(),
		Deck:           deck,
		Discard:        []Card{},
		Rules:          e.rules,
	}
}

// AddPlayer seats a new player at the end of the table.
func (e *Engine) AddPlayer(g *GameState, id, name string) (*GameState, error) {
	if g.Phase != PhaseWaiting {
		return g, reject(CodeNotPlaying, "game already started")
	}
	if g.PlayerIndex(id) >= 0 {
		return g, reject(CodeBadTarget, "player %s already joined", id)
	}
	if len(g.Players) >= g.Rules.MaxPlayers {
		return g, reject(CodeBadTarget, "table is full (%d players)", g.Rules.MaxPlayers)
	}
	next := g.Clone()
	next.Players = append(next.Players, Player{
		ID:        id,
		Name:      name,
		Hand:      []Card{},
		Queens:    []Queen{},
		Position:  len(next.Players),
		Connected: true,
	})
	return next, nil
}

// RemovePlayer unseats a player before the game starts.
func (e *Engine) RemovePlayer(g *GameState, id string) (*GameState, error) {
	if g.Phase != PhaseWaiting {
		return g, reject(CodeNotPlaying, "cannot leave a running game")
	}
	seat := g.PlayerIndex(id)
	if seat < 0 {
		return g, reject(CodeUnknownPlayer, "player %s is not in this game", id)
	}
	next := g.Clone()
	next.Players = append(next.Players[:seat], next.Players[seat+1:]...)
	for i := range next.Players {
		next.Players[i].Position = i
	}
	return next, nil
}

// SetConnected records a player's connection status. Turn order is not
// affected; a disconnected player keeps their seat.
func (e *Engine) SetConnected(g *GameState, id string, connected bool) *GameState {
	seat := g.PlayerIndex(id)
	if seat < 0 || g.Players[seat].Connected == connected {
		return g
	}
	next := g.Clone()
	next.Players[seat].Connected = connected
	return next
}

// Abandon ends a game nobody is left to play. No winner is recorded and
// any pending suspension is dropped.
func (e *Engine) Abandon(g *GameState) *GameState {
	if g.Phase == PhaseEnded {
		return g
	}
	next := g.Clone()
	next.Phase = PhaseEnded
	next.Suspension = nil
	next.Version = g.Version + 1
	return next
}

// Start deals HandSize cards to each player one at a time, starting from
// seat 0, and opens play with seat 0.
func (e *Engine) Start(g *GameState) (*GameState, error) {
	if g.Phase != PhaseWaiting {
		return g, reject(CodeNotPlaying, "game already started")
	}
	if len(g.Players) < g.Rules.MinPlayers {
		return g, reject(CodeCardCount, "need at least %d players, have %d", g.Rules.MinPlayers, len(g.Players))
	}
	if need, have := g.Rules.HandSize*len(g.Players), len(g.Deck)+len(g.Discard); need > have {
		return g, reject(CodeCardCount, "dealing %d cards to %d players needs %d cards, deck has %d",
			g.Rules.HandSize, len(g.Players), need, have)
	}
	next := g.Clone()
	for c := 0; c < next.Rules.HandSize; c++ {
		for p := range next.Players {
			card, ok := drawCard(next, e.shuffler)
			invariant(ok, "deck ran out while dealing")
			next.Players[p].Hand = append(next.Players[p].Hand, card)
		}
	}
	next.Phase = PhasePlaying
	next.CurrentPlayer = 0
	next.Version = g.Version + 1
	return next, nil
}
