// Package engine implements the Sleeping Queens rules: move validation,
// state transitions over immutable snapshots, turn order with its
// interruptions, timed defense windows, reveal and bonus sequences, and
// win detection. It performs no I/O.
package engine

import (
	"errors"
	"runtime/debug"
	"time"
)

// Engine applies moves to game snapshots. It holds only injected
// dependencies, so one Engine can serve any number of games.
type Engine struct {
	shuffler Shuffler
	clock    Clock
	rules    Rules
}

// Option configures an Engine.
type Option func(*Engine)

// WithShuffler sets the card shuffler.
func WithShuffler(sh Shuffler) Option { return func(e *Engine) { e.shuffler = sh } }

// WithClock sets the time source for defense windows.
func WithClock(c Clock) Option { return func(e *Engine) { e.clock = c } }

// WithRules sets the rules used for new games.
func WithRules(r Rules) Option { return func(e *Engine) { e.rules = r } }

// New returns an Engine with a random shuffler, the system clock and
// default rules unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{rules: DefaultRules()}
	for _, o := range opts {
		o(e)
	}
	if e.shuffler == nil {
		e.shuffler = NewRandomShuffler()
	}
	if e.clock == nil {
		e.clock = SystemClock{}
	}
	return e
}

// Rules returns the rules new games are created with.
func (e *Engine) Rules() Rules { return e.rules }

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time { return e.clock.Now() }

// ValidateMove reports whether m could be applied to g right now.
func (e *Engine) ValidateMove(g *GameState, m Move) error {
	if g == nil {
		return reject(CodeNotPlaying, "no game")
	}
	cmd, err := newCommand(m, e.clock.Now(), e.shuffler)
	if err != nil {
		return err
	}
	return cmd.Validate(g)
}

// ApplyMove validates m and returns the resulting snapshot. On any error the
// returned snapshot is g itself, unchanged. A move whose id matches the last
// applied move is acknowledged without effect.
func (e *Engine) ApplyMove(g *GameState, m Move) (next *GameState, out Outcome, err error) {
	if g == nil {
		return nil, Outcome{}, reject(CodeNotPlaying, "no game")
	}
	if m.ID != "" && m.ID == g.LastMoveID {
		return g, Outcome{Kind: m.Kind, PlayerID: m.PlayerID, Replayed: true, Description: "move already applied"}, nil
	}

	cmd, err := newCommand(m, e.clock.Now(), e.shuffler)
	if err != nil {
		return g, Outcome{}, err
	}
	if err := cmd.Validate(g); err != nil {
		return g, Outcome{}, err
	}

	defer func() {
		if r := recover(); r != nil {
			next, out = g, Outcome{}
			err = &InternalError{Move: m.Kind, Cause: r, Stack: debug.Stack()}
		}
	}()

	next, out = cmd.Execute(g)
	refillHands(next, e.shuffler)
	if next.Phase == PhasePlaying {
		if shouldAdvance(next, out) {
			advanceTurn(next)
		}
		if next.Attack() == nil {
			if res := EvaluateWin(next); res.Decided {
				next.Phase = PhaseEnded
				next.WinnerID = res.WinnerID
				out.Win = &res
			}
		}
	}
	next.Version = g.Version + 1
	next.LastMoveID = m.ID

	invariant(next.QueenCount() == NumQueens, "queen count %d after %s", next.QueenCount(), m.Kind)
	invariant(exclusionHolds(next), "exclusive queens share an owner after %s", m.Kind)
	return next, out, nil
}

// EvaluateWin checks g for a winner without changing it.
func (e *Engine) EvaluateWin(g *GameState) WinResult { return EvaluateWin(g) }

// IsInternal reports whether err came from a failed transition rather than
// a rejected move.
func IsInternal(err error) bool { return errors.Is(err, ErrInternal) }
