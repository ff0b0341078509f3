package dispatcher

import (
	"strings"

	"github.com/dshills/keycalc/internal/engine/memory"
)

// Kind is the verb of an action.
type Kind string

// Action kinds.
const (
	KindAppend     Kind = "append"
	KindCalculate  Kind = "calculate"
	KindClear      Kind = "clear"
	KindBackspace  Kind = "backspace"
	KindToggleSign Kind = "toggle-sign"
	KindMemory     Kind = "memory"
	KindQuit       Kind = "quit"
	KindScript     Kind = "script"
)

// Sources of actions.
const (
	SourceKeyboard = "keyboard"
	SourceMouse    = "mouse"
	SourceMCP      = "mcp"
	SourceScript   = "script"
	SourceLine     = "line"
)

// Action is a request to the calculator.
type Action struct {
	// Kind selects the handler.
	Kind Kind

	// Arg is the token for append, the memory action for memory, and the
	// macro name for script.
	Arg string

	// Control is the ID of the on-screen control that originated the action,
	// empty when no control corresponds to it.
	Control string

	// Source tells where the action came from (SourceKeyboard, SourceMouse...).
	Source string
}

var argKinds = map[Kind]bool{
	KindAppend: true,
	KindMemory: true,
	KindScript: true,
}

var bareKinds = map[Kind]bool{
	KindCalculate:  true,
	KindClear:      true,
	KindBackspace:  true,
	KindToggleSign: true,
	KindQuit:       true,
}

// ParseAction parses an action name such as "append:7" or "memory:m+".
// Memory arguments are normalized to their long form.
func ParseAction(s string) (Action, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(s), ":")
	kind := Kind(name)

	switch {
	case argKinds[kind]:
		if !hasArg || arg == "" {
			return Action{}, &ParseError{Name: s, Reason: "needs an argument"}
		}
	case bareKinds[kind]:
		if hasArg {
			return Action{}, &ParseError{Name: s, Reason: "takes no argument"}
		}
	default:
		return Action{}, &ParseError{Name: s, Reason: "unknown action"}
	}

	if kind == KindMemory {
		ma, err := memory.ParseAction(arg)
		if err != nil {
			return Action{}, &ParseError{Name: s, Err: err}
		}
		arg = string(ma)
	}

	return Action{Kind: kind, Arg: arg}, nil
}

// MustParseAction is ParseAction for known-valid names.
func MustParseAction(s string) Action {
	a, err := ParseAction(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the action name in the form ParseAction accepts.
func (a Action) String() string {
	if a.Arg == "" {
		return string(a.Kind)
	}
	return string(a.Kind) + ":" + a.Arg
}

// WithControl returns a copy of the action carrying the originating control.
func (a Action) WithControl(control string) Action {
	a.Control = control
	return a
}

// WithSource returns a copy of the action with its source set.
func (a Action) WithSource(source string) Action {
	a.Source = source
	return a
}
