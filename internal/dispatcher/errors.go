package dispatcher

import (
	"errors"
	"fmt"
)

var (
	ErrNoHandler       = errors.New("dispatcher: no handler for action")
	ErrActionCancelled = errors.New("dispatcher: action cancelled")
	ErrPanic           = errors.New("dispatcher: handler panic")

	// ErrInvalidAction is matched by every *ParseError.
	ErrInvalidAction = errors.New("dispatcher: invalid action")
)

// ParseError reports an action name ParseAction rejected.
type ParseError struct {
	Name   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dispatcher: action %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("dispatcher: action %q: %s", e.Name, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrInvalidAction }

// PanicError carries a recovered handler panic and the stack at the point
// of recovery.
type PanicError struct {
	Action Action
	Value  any
	Stack  []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("dispatcher: %s panicked: %v", e.Action, e.Value)
}

func (e *PanicError) Is(target error) bool { return target == ErrPanic }
