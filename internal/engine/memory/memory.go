// Package memory provides the calculator's accumulator register.
//
// The register is independent of the display. It is read by recall,
// changed by add, subtract and clear, and survives clearing the display.
package memory

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAction is returned by ParseAction for unrecognized names.
var ErrUnknownAction = errors.New("unknown memory action")

// Action names a memory operation.
type Action string

// Memory actions.
const (
	ActionRecall   Action = "recall"
	ActionAdd      Action = "store-add"
	ActionSubtract Action = "store-subtract"
	ActionClear    Action = "clear"
)

// Actions lists every memory action in button order.
var Actions = []Action{ActionClear, ActionRecall, ActionAdd, ActionSubtract}

// Label returns the short button label for the action ("MC", "MR", "M+", "M-").
func (a Action) Label() string {
	switch a {
	case ActionRecall:
		return "MR"
	case ActionAdd:
		return "M+"
	case ActionSubtract:
		return "M-"
	case ActionClear:
		return "MC"
	default:
		return string(a)
	}
}

// Valid reports whether a is one of the defined actions.
func (a Action) Valid() bool {
	switch a {
	case ActionRecall, ActionAdd, ActionSubtract, ActionClear:
		return true
	}
	return false
}

// ParseAction parses an action name. Both the long names and the button
// labels are accepted, case-insensitively: "recall"/"mr", "store-add"/"m+",
// "store-subtract"/"m-", "clear"/"mc".
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "recall", "mr":
		return ActionRecall, nil
	case "store-add", "add", "m+":
		return ActionAdd, nil
	case "store-subtract", "subtract", "m-":
		return ActionSubtract, nil
	case "clear", "mc":
		return ActionClear, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Register is a single float64 accumulator with an activity flag.
// The zero value is an empty, inactive register.
type Register struct {
	value  float64
	active bool
}

// NewRegister creates an empty register.
func NewRegister() *Register {
	return &Register{}
}

// Value returns the accumulated value.
func (r *Register) Value() float64 {
	return r.value
}

// Active reports whether add or subtract was applied since the last clear.
func (r *Register) Active() bool {
	return r.active
}

// Add adds v to the accumulator and marks the register active.
func (r *Register) Add(v float64) {
	r.value += v
	r.active = true
}

// Subtract subtracts v from the accumulator and marks the register active.
func (r *Register) Subtract(v float64) {
	r.value -= v
	r.active = true
}

// Clear resets the accumulator to zero and marks the register inactive.
func (r *Register) Clear() {
	r.value = 0
	r.active = false
}
