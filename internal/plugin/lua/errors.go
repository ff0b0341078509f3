package lua

import (
	"errors"
	"fmt"
)

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a script runs past its timeout.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrUnknownMacro is returned when running a macro that was never defined.
	ErrUnknownMacro = errors.New("unknown macro")

	// ErrNotStarted is returned when a Host is used before Start.
	ErrNotStarted = errors.New("lua host not started")

	// ErrExecutorClosed is returned when attempting to use a closed executor.
	ErrExecutorClosed = errors.New("lua executor is closed")

	// ErrQueueFull is returned by ExecuteAsync when the queue has no room.
	ErrQueueFull = errors.New("lua executor queue full")
)

// ScriptError is a failure while loading or running a script.
type ScriptError struct {
	Script string // File or chunk name
	Macro  string // Macro name, empty while loading
	Err    error
}

func (e *ScriptError) Error() string {
	if e.Macro != "" {
		return fmt.Sprintf("script %s: macro %s: %v", e.Script, e.Macro, e.Err)
	}
	return fmt.Sprintf("script %s: %v", e.Script, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
