package engine

// CanAct reports whether playerID currently has the right to submit a move:
// it is their turn, or an active suspension is waiting on them (a pending
// attack's target, a reveal's chosen picker, a bonus beneficiary).
func CanAct(g *GameState, playerID string) bool {
	if g.CurrentPlayerID() == playerID {
		return true
	}
	if s := g.blockingSuspension(); s != nil {
		return s.Awaiting() == playerID
	}
	return false
}

// ActingPlayers returns every player CanAct would accept, current player
// first.
func ActingPlayers(g *GameState) []string {
	var ids []string
	if id := g.CurrentPlayerID(); id != "" {
		ids = append(ids, id)
	}
	if s := g.blockingSuspension(); s != nil && s.Awaiting() != g.CurrentPlayerID() {
		ids = append(ids, s.Awaiting())
	}
	return ids
}

// AwaitedPlayer returns the player the game is waiting on: the suspension's
// awaited player if one is active, otherwise the current player.
func AwaitedPlayer(g *GameState) string {
	if s := g.blockingSuspension(); s != nil {
		return s.Awaiting()
	}
	return g.CurrentPlayerID()
}

// NextSeat returns the seat after current in turn order.
func NextSeat(current, numPlayers int) int {
	if numPlayers == 0 {
		return 0
	}
	return (current + 1) % numPlayers
}

// advanceTurn moves the turn to the next seat and drops any staged
// selection left by the previous player.
func advanceTurn(g *GameState) {
	g.CurrentPlayer = NextSeat(g.CurrentPlayer, len(g.Players))
	if g.Staged() != nil {
		g.Suspension = nil
	}
}

// shouldAdvance decides whether the move just executed ends the turn.
// The turn never moves while a blocking suspension is still active; a move
// that cleared one (block, allow, reveal pick, bonus pick) ends the
// original player's turn.
func shouldAdvance(next *GameState, out Outcome) bool {
	if out.KeepTurn {
		return false
	}
	return next.blockingSuspension() == nil
}

// requireTurn rejects the move unless it is actor's normal turn and no
// sequence is waiting on another move.
func requireTurn(g *GameState, actor int) error {
	if s := g.blockingSuspension(); s != nil {
		return reject(CodeSuspended, "waiting for %s to resolve %s", s.Awaiting(), s.suspensionKind())
	}
	if g.CurrentPlayer != actor {
		return reject(CodeNotYourTurn, "it is not your turn")
	}
	return nil
}

// AvailableMoves lists the move kinds playerID could legally attempt right
// now, based on the suspension state and the cards in hand. It is a hint
// for clients; ValidateMove remains authoritative.
func AvailableMoves(g *GameState, playerID string) []MoveKind {
	if g.Phase != PhasePlaying {
		if g.Phase == PhaseEnded && g.Attack() != nil {
			return []MoveKind{MoveAllow}
		}
		return nil
	}
	p := g.PlayerByID(playerID)
	if p == nil {
		return nil
	}

	switch s := g.blockingSuspension().(type) {
	case *PendingAttack:
		var kinds []MoveKind
		if s.TargetID == playerID {
			if p.HasKind(s.Kind.DefenseCard()) {
				kinds = append(kinds, MoveBlock)
			}
			kinds = append(kinds, MoveAllow)
		} else {
			kinds = append(kinds, MoveAllow) // only valid once the window closes
		}
		return kinds
	case *RevealInProgress:
		if s.TargetID == playerID {
			return []MoveKind{MoveRevealPick}
		}
		return nil
	case *BonusPick:
		if s.PlayerID == playerID {
			return []MoveKind{MoveBonusPick}
		}
		return nil
	}

	if g.CurrentPlayerID() != playerID {
		return nil
	}

	var kinds []MoveKind
	hasOwnQueens, hasOtherQueens := len(p.Queens) > 0, false
	for i := range g.Players {
		if g.Players[i].ID != playerID && len(g.Players[i].Queens) > 0 {
			hasOtherQueens = true
		}
	}
	if p.HasKind(CardWake) && len(g.SleepingQueens) > 0 {
		kinds = append(kinds, MoveWakeQueen)
	}
	if p.HasKind(CardSteal) && hasOtherQueens {
		kinds = append(kinds, MoveStealQueen)
	}
	if p.HasKind(CardSleep) && (hasOwnQueens || hasOtherQueens) {
		kinds = append(kinds, MoveSleepQueen)
	}
	if p.HasKind(CardReveal) {
		kinds = append(kinds, MoveReveal)
	}
	if handHasEquation(p.Hand) {
		kinds = append(kinds, MoveEquation)
	}
	if len(p.Hand) > 0 {
		kinds = append(kinds, MoveDiscard, MoveStage)
	}
	if s := g.Staged(); s != nil && s.PlayerID == playerID {
		kinds = append(kinds, MoveClearStage)
	}
	return kinds
}
