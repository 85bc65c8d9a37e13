package holdem

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalAction    = errors.New("illegal action")
	ErrHandSettled      = errors.New("hand already settled")
	ErrInvalidConfig    = errors.New("invalid config")
	ErrInvalidCards     = errors.New("invalid cards")
	ErrNotEnoughPlayers = errors.New("not enough players")
)

// IllegalActionError is returned for out-of-turn actions, unknown action
// kinds and malformed amounts. The hand is left untouched.
type IllegalActionError struct {
	Seat   uint16
	Kind   ActionKind
	Reason string
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("illegal action %s by seat %d: %s", e.Kind, e.Seat, e.Reason)
}

func (e *IllegalActionError) Unwrap() error { return ErrIllegalAction }

func illegal(seat uint16, kind ActionKind, format string, args ...any) error {
	return &IllegalActionError{Seat: seat, Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }
