package engine

import (
	"fmt"
	"strings"
	"time"
)

// Outcome describes what a move did, for history and broadcast.
type Outcome struct {
	Kind        MoveKind       `json:"kind"`
	PlayerID    string         `json:"playerId"`
	Description string         `json:"description"`
	KeepTurn    bool           `json:"keepTurn,omitempty"`
	QueenMoves  []QueenMove    `json:"queenMoves,omitempty"`
	Revealed    *Card          `json:"revealed,omitempty"`
	Excluded    string         `json:"excluded,omitempty"`
	Attack      *PendingAttack `json:"attack,omitempty"`
	Blocked     bool           `json:"blocked,omitempty"`
	Bonus       bool           `json:"bonus,omitempty"`
	Win         *WinResult     `json:"win,omitempty"`
	Replayed    bool           `json:"replayed,omitempty"`
}

// Command is one move kind's validation and state transition.
type Command interface {
	Kind() MoveKind
	// Validate reports why the move cannot be applied, or nil.
	Validate(g *GameState) error
	CanExecute(g *GameState) bool
	// Execute returns a new snapshot; g is never modified. It assumes
	// Validate passed and panics on a broken invariant.
	Execute(g *GameState) (*GameState, Outcome)
}

// cmdEnv is what every command sees besides the snapshot.
type cmdEnv struct {
	move     Move
	now      time.Time
	shuffler Shuffler
}

func (c cmdEnv) Kind() MoveKind { return c.move.Kind }

func (c cmdEnv) begin(g *GameState) (*GameState, Outcome) {
	next := g.Clone()
	return next, Outcome{Kind: c.move.Kind, PlayerID: c.move.PlayerID}
}

// beginPlay is begin for moves that play cards; it drops the actor's staged
// selection.
func (c cmdEnv) beginPlay(g *GameState) (*GameState, Outcome, int) {
	next, out := c.begin(g)
	if next.Staged() != nil {
		next.Suspension = nil
	}
	seat := next.PlayerIndex(c.move.PlayerID)
	invariant(seat >= 0, "player %s not seated", c.move.PlayerID)
	return next, out, seat
}

func newCommand(m Move, now time.Time, sh Shuffler) (Command, error) {
	env := cmdEnv{move: m, now: now, shuffler: sh}
	switch m.Kind {
	case MoveWakeQueen:
		return wakeCommand{env}, nil
	case MoveStealQueen:
		return stealCommand{env}, nil
	case MoveBlock:
		return blockCommand{env}, nil
	case MoveAllow:
		return allowCommand{env}, nil
	case MoveSleepQueen:
		return sleepCommand{env}, nil
	case MoveReveal:
		return revealCommand{env}, nil
	case MoveRevealPick:
		return revealPickCommand{env}, nil
	case MoveBonusPick:
		return bonusPickCommand{env}, nil
	case MoveEquation:
		return equationCommand{env}, nil
	case MoveDiscard:
		return discardCommand{env}, nil
	case MoveStage:
		return stageCommand{env}, nil
	case MoveClearStage:
		return clearStageCommand{env}, nil
	default:
		return nil, reject(CodeUnknownMove, "unknown move kind %q", m.Kind)
	}
}

type wakeCommand struct{ cmdEnv }

func (c wakeCommand) Validate(g *GameState) error  { return validateWake(g, c.move, c.now) }
func (c wakeCommand) CanExecute(g *GameState) bool { return c.Validate(g) == nil }
func (c wakeCommand) Execute(g *GameState) (*GameState, Outcome) {
	next, out, seat := c.beginPlay(g)
	discardFromHand(next, seat, c.move.cardID())
	q := takeSleepingQueen(next, c.move.TargetQueenID)
	giveQueen(next, seat, q, "", &out)
	name := next.Players[seat].Name
	out.Description = name + " woke " + q.Name
	if out.Excluded != "" {
		out.Description += ", who fell back asleep"
	}
	if armBonus(next, seat, q.ID) {
		out.Bonus = true
		out.Description += " and earns a bonus pick"
	}
	return next, out
}

type stealCommand struct{ cmdEnv }

func (c stealCommand) Validate(g *GameState) error  { return validateSteal(g, c.move, c.now) }
func (c stealCommand) CanExecute(g *GameState) bool { return c.Validate(g) == nil }
func (c stealCommand) Execute(g *GameState) (*GameState, Outcome) {
	next, out, seat := c.beginPlay(g)
	discardFromHand(next, seat, c.move.cardID())
	owner := next.QueenOwner(c.move.TargetQueenID)
	invariant(owner >= 0, "queen %s has no owner", c.move.TargetQueenID)
	attacker, target := &next.Players[seat], &next.Players[owner]
	qn := queenName(c.move.TargetQueenID)

	if target.HasKind(CardBlockSteal) {
		out.Attack = armAttack(next, AttackSteal, attacker.ID, target.ID, c.move.TargetQueenID, c.move.cardID(), c.now)
		out.Description = fmt.Sprintf("%s is stealing %s from %s", attacker.Name, qn, target.Name)
		return next, out
	}
	q := takeOwnedQueen(next, owner, c.move.TargetQueenID)
	giveQueen(next, seat, q, target.ID, &out)
	out.Description = fmt.Sprintf("%s stole %s from %s", attacker.Name, qn, target.Name)
	return next, out
}

type sleepCommand struct{ cmdEnv }

func (c sleepCommand) Validate(g *GameState) error  { return validateSleep(g, c.move, c.now) }
func (c sleepCommand) CanExecute(g *GameState) bool { return c.Validate(g) == nil }
func (c sleepCommand) Execute(g *GameState) (*GameState, Outcome) {
	next, out, seat := c.beginPlay(g)
	discardFromHand(next, seat, c.move.cardID())
	owner := next.QueenOwner(c.move.TargetQueenID)
	invariant(owner >= 0, "queen %s has no owner", c.move.TargetQueenID)
	attacker, target := &next.Players[seat], &next.Players[owner]
	qn := queenName(c.move.TargetQueenID)

	if owner != seat && target.HasKind(CardBlockSleep) {
		out.Attack = armAttack(next, AttackSleep, attacker.ID, target.ID, c.move.TargetQueenID, c.move.cardID(), c.now)
		out.Description = fmt.Sprintf("%s is putting %s's %s to sleep", attacker.Name, target.Name, qn)
		return next, out
	}
	q := takeOwnedQueen(next, owner, c.move.TargetQueenID)
	putToSleep(next, q, target.ID, &out)
	out.Description = fmt.Sprintf("%s put %s's %s to sleep", attacker.Name, target.Name, qn)
	return next, out
}

type blockCommand struct{ cmdEnv }

func (c blockCommand) Validate(g *GameState) error  { return validateBlock(g, c.move, c.now) }
func (c blockCommand) CanExecute(g *GameState) bool { return c.Validate(g) == nil }
func (c blockCommand) Execute(g *GameState) (*GameState, Outcome) {
	next, out := c.begin(g)
	a := next.Attack()
	invariant(a != nil, "block without a pending attack")
	card := blockAttack(next, a, c.move.cardID())
	out.Blocked = true
	out.Attack = a
	out.Description = fmt.Sprintf("%s blocked with %s", playerName(next, a.TargetID), card)
	return next, out
}

type allowCommand struct{ cmdEnv }

func (c allowCommand) Validate(g *GameState) error  { return validateAllow(g, c.move, c.now) }
func (c allowCommand) CanExecute(g *GameState) bool { return c.Validate(g) == nil }
func (c allowCommand) Execute(g *GameState) (*GameState, Outcome) {
	next, out := c.begin(g)
	a := next.Attack()
	invariant(a != nil, "allow without a pending attack")
	completeAttack(next, a, &out)
	out.Attack = a
	switch a.Kind {
	case AttackSteal:
		out.Description = fmt.Sprintf("%s took %s from %s", playerName(next, a.AttackerID), queenName(a.QueenID), playerName(next, a.TargetID))
	default:
		out.Description = fmt.Sprintf("%s's %s went to sleep", playerName(next, a.TargetID), queenName(a.QueenID))
	}
	return next, out
}

type revealCommand struct{ cmdEnv }

func (c revealCommand) Validate(g *GameState) error  { return validateReveal(g, c.move, c.now) }
func (c revealCommand) CanExecute(g *GameState) bool { return c.Validate(g) == nil }
func (c revealCommand) Execute(g *GameState) (*GameState, Outcome) {
	next, out, seat := c.beginPlay(g)
	beginReveal(next, seat, c.move.cardID(), c.shuffler, &out)
	return next, out
}

type revealPickCommand struct{ cmdEnv }

func (c revealPickCommand) Validate(g *GameState) error  { return validateRevealPick(g, c.move, c.now) }
func (c revealPickCommand) CanExecute(g *GameState) bool { return c.Validate(g) == nil }
func (c revealPickCommand) Execute(g *GameState) (*GameState, Outcome) {
	next, out := c.begin(g)
	r := next.Reveal()
	invariant(r != nil, "reveal pick without a reveal")
	finishReveal(next, r, c.move.TargetQueenID, c.shuffler, &out)
	return next, out
}

type bonusPickCommand struct{ cmdEnv }

func (c bonusPickCommand) Validate(g *GameState) error  { return validateBonusPick(g, c.move, c.now) }
func (c bonusPickCommand) CanExecute(g *GameState) bool { return c.Validate(g) == nil }
func (c bonusPickCommand) Execute(g *GameState) (*GameState, Outcome) {
	next, out := c.begin(g)
	b := next.Bonus()
	invariant(b != nil, "bonus pick without a bonus")
	finishBonus(next, b, c.move.TargetQueenID, &out)
	return next, out
}

type equationCommand struct{ cmdEnv }

func (c equationCommand) Validate(g *GameState) error  { return validateEquation(g, c.move, c.now) }
func (c equationCommand) CanExecute(g *GameState) bool { return c.Validate(g) == nil }
func (c equationCommand) Execute(g *GameState) (*GameState, Outcome) {
	next, out, seat := c.beginPlay(g)
	played := discardAll(next, seat, c.move.CardIDs)
	drawInto(next, seat, len(c.move.CardIDs), c.shuffler)
	out.Description = fmt.Sprintf("%s played %s", next.Players[seat].Name, joinCards(played))

	if id := c.move.TargetQueenID; id != "" && next.sleepingIndex(id) >= 0 {
		q := takeSleepingQueen(next, id)
		giveQueen(next, seat, q, "", &out)
		out.Description += " and woke " + q.Name
		if out.Excluded != "" {
			out.Description += ", who fell back asleep"
		}
	}
	return next, out
}

type discardCommand struct{ cmdEnv }

func (c discardCommand) Validate(g *GameState) error  { return validateDiscard(g, c.move, c.now) }
func (c discardCommand) CanExecute(g *GameState) bool { return c.Validate(g) == nil }
func (c discardCommand) Execute(g *GameState) (*GameState, Outcome) {
	next, out, seat := c.beginPlay(g)
	played := discardAll(next, seat, c.move.CardIDs)
	drawInto(next, seat, len(c.move.CardIDs), c.shuffler)
	out.Description = fmt.Sprintf("%s discarded %s", next.Players[seat].Name, joinCards(played))
	return next, out
}

type stageCommand struct{ cmdEnv }

func (c stageCommand) Validate(g *GameState) error  { return validateStage(g, c.move, c.now) }
func (c stageCommand) CanExecute(g *GameState) bool { return c.Validate(g) == nil }
func (c stageCommand) Execute(g *GameState) (*GameState, Outcome) {
	next, out := c.begin(g)
	next.Suspension = &StagedCards{PlayerID: c.move.PlayerID, CardIDs: append([]string(nil), c.move.CardIDs...)}
	out.KeepTurn = true
	out.Description = fmt.Sprintf("%s selected %d cards", playerName(next, c.move.PlayerID), len(c.move.CardIDs))
	return next, out
}

type clearStageCommand struct{ cmdEnv }

func (c clearStageCommand) Validate(g *GameState) error  { return validateClearStage(g, c.move, c.now) }
func (c clearStageCommand) CanExecute(g *GameState) bool { return c.Validate(g) == nil }
func (c clearStageCommand) Execute(g *GameState) (*GameState, Outcome) {
	next, out := c.begin(g)
	next.Suspension = nil
	out.KeepTurn = true
	out.Description = playerName(next, c.move.PlayerID) + " cleared their selection"
	return next, out
}

func discardAll(g *GameState, seat int, ids []string) []Card {
	played := make([]Card, 0, len(ids))
	for _, id := range ids {
		played = append(played, discardFromHand(g, seat, id))
	}
	return played
}

func joinCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

func playerName(g *GameState, id string) string {
	if p := g.PlayerByID(id); p != nil && p.Name != "" {
		return p.Name
	}
	return id
}

func queenName(id string) string {
	if q, ok := LookupQueen(id); ok {
		return q.Name
	}
	return id
}
