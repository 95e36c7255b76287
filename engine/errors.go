package engine

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a rejected move.
type ErrorCode string

const (
	CodeNotPlaying      ErrorCode = "not_playing"
	CodeNotYourTurn     ErrorCode = "not_your_turn"
	CodeUnknownPlayer   ErrorCode = "unknown_player"
	CodeUnknownMove     ErrorCode = "unknown_move"
	CodeSuspended       ErrorCode = "suspended"
	CodeCardNotInHand   ErrorCode = "card_not_in_hand"
	CodeWrongCardKind   ErrorCode = "wrong_card_kind"
	CodeCardCount       ErrorCode = "card_count"
	CodeBadTarget       ErrorCode = "bad_target"
	CodeInvalidEquation ErrorCode = "invalid_equation"
	CodeNoAttack        ErrorCode = "no_pending_attack"
	CodeWindowClosed    ErrorCode = "defense_window_closed"
	CodeWindowOpen      ErrorCode = "defense_window_open"
	CodeNoSequence      ErrorCode = "no_sequence"
)

// ValidationError is a rejected move. It is a normal result, not a bug.
type ValidationError struct {
	Code    ErrorCode
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func reject(code ErrorCode, format string, args ...any) error {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is a rejected move.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrInternal marks an invariant violation inside a command's Execute.
var ErrInternal = errors.New("internal engine error")

// InternalError carries the recovered panic from a failed transition.
type InternalError struct {
	Move  MoveKind
	Cause any
	Stack []byte
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrInternal, e.Move, e.Cause)
}

func (e *InternalError) Unwrap() error { return ErrInternal }

// invariant panics when a condition that validation guarantees does not hold.
func invariant(ok bool, format string, args ...any) {
	if !ok {
		panic(fmt.Sprintf(format, args...))
	}
}
