package engine

import (
	"errors"
	"fmt"
)

// Errors returned by engine operations.
var (
	// ErrInvalidToken indicates a token outside the calculator alphabet.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidAction indicates an unknown memory action.
	ErrInvalidAction = errors.New("invalid memory action")
)

// OperationError describes a rejected entry point call.
type OperationError struct {
	Op    Op     // Operation that was rejected
	Input string // Token or action name
	Err   error  // Underlying error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Input, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
