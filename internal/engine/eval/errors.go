package eval

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is.
var (
	// ErrSyntax indicates the expression is not valid arithmetic.
	ErrSyntax = errors.New("syntax error")

	// ErrRange indicates the result is not a finite number.
	ErrRange = errors.New("result out of range")
)

// EvaluationError reports a malformed expression.
type EvaluationError struct {
	Expr string // Normalized expression that failed to parse
	Pos  int    // Byte offset of the offending token
	Msg  string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate %q: %s at offset %d", e.Expr, e.Msg, e.Pos)
}

func (e *EvaluationError) Unwrap() error {
	return ErrSyntax
}

// RangeError reports a non-finite result such as a division by zero or an
// overflow.
type RangeError struct {
	Expr  string
	Value float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("evaluate %q: result %v is not finite", e.Expr, e.Value)
}

func (e *RangeError) Unwrap() error {
	return ErrRange
}
