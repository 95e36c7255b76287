package engine

import "time"

// validator checks a move against a snapshot without modifying it.
type validator func(g *GameState, m Move, now time.Time) error

// actorSeat runs the checks shared by every move: the game is running and
// the submitting player is seated.
func actorSeat(g *GameState, m Move) (int, error) {
	if g.Phase != PhasePlaying {
		return -1, reject(CodeNotPlaying, "game is %s", g.Phase)
	}
	seat := g.PlayerIndex(m.PlayerID)
	if seat < 0 {
		return -1, reject(CodeUnknownPlayer, "player %s is not in this game", m.PlayerID)
	}
	return seat, nil
}

// turnSeat is actorSeat plus the turn check for moves that start something.
func turnSeat(g *GameState, m Move) (int, error) {
	seat, err := actorSeat(g, m)
	if err != nil {
		return -1, err
	}
	if !CanAct(g, m.PlayerID) {
		return -1, reject(CodeNotYourTurn, "it is not your turn")
	}
	if err := requireTurn(g, seat); err != nil {
		return -1, err
	}
	return seat, nil
}

// handCard returns the single claimed card, checking it is held and of kind.
func handCard(p *Player, m Move, kind CardKind) (Card, error) {
	id := m.cardID()
	if id == "" {
		return Card{}, reject(CodeCardCount, "%s takes exactly one card, got %d", m.Kind, len(m.CardIDs))
	}
	i := p.handIndex(id)
	if i < 0 {
		return Card{}, reject(CodeCardNotInHand, "card %s is not in your hand", id)
	}
	if c := p.Hand[i]; c.Kind != kind {
		return Card{}, reject(CodeWrongCardKind, "%s needs a %s card, got %s", m.Kind, kind, c.Kind)
	}
	return p.Hand[i], nil
}

// handCards resolves every claimed id to a distinct card in hand.
func handCards(p *Player, ids []string) ([]Card, error) {
	seen := make(map[string]bool, len(ids))
	cards := make([]Card, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, reject(CodeCardCount, "card %s listed twice", id)
		}
		seen[id] = true
		i := p.handIndex(id)
		if i < 0 {
			return nil, reject(CodeCardNotInHand, "card %s is not in your hand", id)
		}
		cards = append(cards, p.Hand[i])
	}
	return cards, nil
}

func sleepingTarget(g *GameState, m Move) error {
	if m.TargetQueenID == "" {
		return reject(CodeBadTarget, "no queen chosen")
	}
	if g.sleepingIndex(m.TargetQueenID) < 0 {
		return reject(CodeBadTarget, "queen %s is not asleep", m.TargetQueenID)
	}
	return nil
}

// ownedTarget checks the target queen is awake and, if the move names a
// target player, that they hold it. It returns the holder's seat.
func ownedTarget(g *GameState, m Move) (int, error) {
	if m.TargetQueenID == "" {
		return -1, reject(CodeBadTarget, "no queen chosen")
	}
	owner := g.QueenOwner(m.TargetQueenID)
	if owner < 0 {
		return -1, reject(CodeBadTarget, "queen %s is not awake", m.TargetQueenID)
	}
	if m.TargetPlayerID != "" && g.Players[owner].ID != m.TargetPlayerID {
		return -1, reject(CodeBadTarget, "queen %s is not held by %s", m.TargetQueenID, m.TargetPlayerID)
	}
	return owner, nil
}

func validateWake(g *GameState, m Move, _ time.Time) error {
	seat, err := turnSeat(g, m)
	if err != nil {
		return err
	}
	if _, err := handCard(&g.Players[seat], m, CardWake); err != nil {
		return err
	}
	return sleepingTarget(g, m)
}

func validateSteal(g *GameState, m Move, _ time.Time) error {
	seat, err := turnSeat(g, m)
	if err != nil {
		return err
	}
	if _, err := handCard(&g.Players[seat], m, CardSteal); err != nil {
		return err
	}
	owner, err := ownedTarget(g, m)
	if err != nil {
		return err
	}
	if owner == seat {
		return reject(CodeBadTarget, "cannot steal your own queen")
	}
	return nil
}

func validateSleep(g *GameState, m Move, _ time.Time) error {
	seat, err := turnSeat(g, m)
	if err != nil {
		return err
	}
	if _, err := handCard(&g.Players[seat], m, CardSleep); err != nil {
		return err
	}
	_, err = ownedTarget(g, m)
	return err
}

func validateBlock(g *GameState, m Move, now time.Time) error {
	seat, err := actorSeat(g, m)
	if err != nil {
		return err
	}
	a := g.Attack()
	if a == nil {
		return reject(CodeNoAttack, "there is no attack to block")
	}
	if a.TargetID != m.PlayerID {
		return reject(CodeNotYourTurn, "only %s can block this attack", a.TargetID)
	}
	if !a.WindowOpen(now) {
		return reject(CodeWindowClosed, "the defense window has closed")
	}
	_, err = handCard(&g.Players[seat], m, a.Kind.DefenseCard())
	return err
}

// validateAllow accepts the target's concession at any time, and anyone's
// once the window has elapsed. It also runs after the game ended so a
// scheduled resolution never errors.
func validateAllow(g *GameState, m Move, now time.Time) error {
	if g.Phase != PhasePlaying && g.Phase != PhaseEnded {
		return reject(CodeNotPlaying, "game is %s", g.Phase)
	}
	if g.PlayerIndex(m.PlayerID) < 0 {
		return reject(CodeUnknownPlayer, "player %s is not in this game", m.PlayerID)
	}
	a := g.Attack()
	if a == nil {
		return reject(CodeNoAttack, "there is no attack to allow")
	}
	if m.PlayerID != a.TargetID && a.WindowOpen(now) {
		return reject(CodeWindowOpen, "%s may still block for %s", a.TargetID, a.Remaining(now))
	}
	return nil
}

func validateReveal(g *GameState, m Move, _ time.Time) error {
	seat, err := turnSeat(g, m)
	if err != nil {
		return err
	}
	_, err = handCard(&g.Players[seat], m, CardReveal)
	return err
}

func validateRevealPick(g *GameState, m Move, _ time.Time) error {
	if _, err := actorSeat(g, m); err != nil {
		return err
	}
	r := g.Reveal()
	if r == nil {
		return reject(CodeNoSequence, "no reveal is waiting for a pick")
	}
	if r.TargetID != m.PlayerID {
		return reject(CodeNotYourTurn, "%s picks the queen for this reveal", r.TargetID)
	}
	return sleepingTarget(g, m)
}

func validateBonusPick(g *GameState, m Move, _ time.Time) error {
	if _, err := actorSeat(g, m); err != nil {
		return err
	}
	b := g.Bonus()
	if b == nil {
		return reject(CodeNoSequence, "no bonus pick is pending")
	}
	if b.PlayerID != m.PlayerID {
		return reject(CodeNotYourTurn, "the bonus pick belongs to %s", b.PlayerID)
	}
	return sleepingTarget(g, m)
}

func validateEquation(g *GameState, m Move, _ time.Time) error {
	seat, err := turnSeat(g, m)
	if err != nil {
		return err
	}
	if len(m.CardIDs) < 3 {
		return reject(CodeCardCount, "an equation needs at least 3 cards, got %d", len(m.CardIDs))
	}
	cards, err := handCards(&g.Players[seat], m.CardIDs)
	if err != nil {
		return err
	}
	values := make([]int, len(cards))
	for i, c := range cards {
		if !c.IsNumber() {
			return reject(CodeWrongCardKind, "card %s is not a number card", c.ID)
		}
		values[i] = int(c.Value)
	}
	if !ValidEquation(values) {
		return reject(CodeInvalidEquation, "cards %v do not form an addition equation", values)
	}
	if m.TargetQueenID != "" {
		if _, ok := LookupQueen(m.TargetQueenID); !ok {
			return reject(CodeBadTarget, "unknown queen %s", m.TargetQueenID)
		}
	}
	return nil
}

func validateDiscard(g *GameState, m Move, _ time.Time) error {
	seat, err := turnSeat(g, m)
	if err != nil {
		return err
	}
	cards, err := handCards(&g.Players[seat], m.CardIDs)
	if err != nil {
		return err
	}
	switch len(cards) {
	case 1:
		return nil
	case 2:
		if cards[0].IsNumber() && cards[1].IsNumber() && cards[0].Value == cards[1].Value {
			return nil
		}
		return reject(CodeWrongCardKind, "a two-card discard must be a pair of equal numbers")
	default:
		return reject(CodeCardCount, "discard takes one card or a pair, got %d", len(cards))
	}
}

func validateStage(g *GameState, m Move, _ time.Time) error {
	seat, err := turnSeat(g, m)
	if err != nil {
		return err
	}
	if len(m.CardIDs) == 0 {
		return reject(CodeCardCount, "nothing to stage")
	}
	_, err = handCards(&g.Players[seat], m.CardIDs)
	return err
}

func validateClearStage(g *GameState, m Move, _ time.Time) error {
	if _, err := turnSeat(g, m); err != nil {
		return err
	}
	if s := g.Staged(); s == nil || s.PlayerID != m.PlayerID {
		return reject(CodeNoSequence, "no staged cards to clear")
	}
	return nil
}
