package dispatcher

import "fmt"

// Status indicates the outcome of an action.
type Status uint8

const (
	// StatusOK indicates the action changed the calculator.
	StatusOK Status = iota
	// StatusNoOp indicates the action had no effect.
	StatusNoOp
	// StatusError indicates the action failed.
	StatusError
	// StatusCancelled indicates a hook cancelled the action.
	StatusCancelled
	// StatusQuit indicates the application should exit.
	StatusQuit
)

// String returns a string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoOp:
		return "no-op"
	case StatusError:
		return "error"
	case StatusCancelled:
		return "cancelled"
	case StatusQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Result is the outcome of a dispatched action.
type Result struct {
	Status  Status
	Message string
	Err     error
}

// OK returns a successful result.
func OK() Result { return Result{Status: StatusOK} }

// NoOp returns a result for an action that changed nothing.
func NoOp() Result { return Result{Status: StatusNoOp} }

// Quit returns a result requesting shutdown.
func Quit() Result { return Result{Status: StatusQuit} }

// Error returns a failed result.
func Error(err error) Result {
	return Result{Status: StatusError, Message: err.Error(), Err: err}
}

// Errorf returns a failed result with a formatted error.
func Errorf(format string, args ...any) Result {
	return Error(fmt.Errorf(format, args...))
}

// Cancelled returns a result for an action stopped by a hook.
func Cancelled(msg string) Result {
	return Result{Status: StatusCancelled, Message: msg, Err: ErrActionCancelled}
}

// IsError reports whether the result is a failure.
func (r Result) IsError() bool {
	return r.Status == StatusError
}
