package engine

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/keycalc/internal/engine/display"
	"github.com/dshills/keycalc/internal/engine/eval"
	"github.com/dshills/keycalc/internal/engine/memory"
)

// Op identifies an entry point of the calculator.
type Op string

// Calculator operations.
const (
	OpAppend     Op = "append"
	OpClear      Op = "clear"
	OpBackspace  Op = "backspace"
	OpToggleSign Op = "toggle-sign"
	OpCalculate  Op = "calculate"
	OpMemory     Op = "memory"
)

// State is a read-only snapshot of a calculator session.
type State struct {
	// Display is the current display text.
	Display string

	// History is the annotation shown next to the display ("12+7 =").
	History string

	// LastCalculation is the display text captured before the last evaluation.
	LastCalculation string

	// Memory is the memory register value.
	Memory float64

	// MemoryActive drives the memory indicator.
	MemoryActive bool
}

// IsError reports whether the display holds the Error sentinel.
func (s State) IsError() bool {
	return s.Display == display.ErrorText
}

// Change describes one completed operation.
type Change struct {
	Op     Op
	Token  string        // Appended token, for OpAppend
	Action memory.Action // Memory action, for OpMemory
	Before State
	After  State

	// Err is the evaluation failure of an OpCalculate, an *eval.EvaluationError
	// or an *eval.RangeError. It was absorbed into the Error sentinel.
	Err error
}

// Changed reports whether the operation modified the session state.
func (c Change) Changed() bool {
	return c.Before != c.After
}

// Observer receives every completed operation.
type Observer func(Change)

// Calculator is a calculator session.
type Calculator struct {
	mu sync.Mutex

	id              string
	display         *display.Buffer
	memory          *memory.Register
	lastCalculation string
	history         string

	initialDisplay string
	logger         *slog.Logger

	obsMu     sync.RWMutex
	observers []Observer
}

// New creates a calculator session showing "0" with an empty memory.
func New(opts ...Option) *Calculator {
	c := &Calculator{
		id:     uuid.NewString(),
		memory: memory.NewRegister(),
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.display = display.NewBuffer(display.WithText(c.initialDisplay))
	return c
}

// ID returns the session identifier.
func (c *Calculator) ID() string {
	return c.id
}

// OnChange registers an observer and returns a function that removes it.
func (c *Calculator) OnChange(fn Observer) func() {
	if fn == nil {
		return func() {}
	}

	c.obsMu.Lock()
	defer c.obsMu.Unlock()

	c.observers = append(c.observers, fn)
	idx := len(c.observers) - 1

	return func() {
		c.obsMu.Lock()
		defer c.obsMu.Unlock()
		if idx < len(c.observers) {
			c.observers[idx] = nil
		}
	}
}

// Append adds a digit, decimal point, operator or percent token to the display.
func (c *Calculator) Append(token string) error {
	c.mu.Lock()
	before := c.stateLocked()
	_, err := c.display.Append(token)
	after := c.stateLocked()
	c.mu.Unlock()

	if err != nil {
		if errors.Is(err, display.ErrInvalidToken) {
			err = ErrInvalidToken
		}
		return &OperationError{Op: OpAppend, Input: token, Err: err}
	}

	c.notify(Change{Op: OpAppend, Token: token, Before: before, After: after})
	return nil
}

// Clear resets the display to "0" and clears the history annotation.
// Memory is left alone.
func (c *Calculator) Clear() {
	c.mu.Lock()
	before := c.stateLocked()
	c.display.Reset()
	c.lastCalculation = ""
	c.history = ""
	after := c.stateLocked()
	c.mu.Unlock()

	c.notify(Change{Op: OpClear, Before: before, After: after})
}

// Backspace removes the last character of the display.
func (c *Calculator) Backspace() {
	c.mu.Lock()
	before := c.stateLocked()
	c.display.Backspace()
	after := c.stateLocked()
	c.mu.Unlock()

	c.notify(Change{Op: OpBackspace, Before: before, After: after})
}

// ToggleSign negates the whole display text.
func (c *Calculator) ToggleSign() {
	c.mu.Lock()
	before := c.stateLocked()
	c.display.ToggleSign()
	after := c.stateLocked()
	c.mu.Unlock()

	c.notify(Change{Op: OpToggleSign, Before: before, After: after})
}

// Calculate evaluates the display text and shows the formatted result.
//
// On the Error sentinel it only resets the display to "0". A malformed
// expression shows "Error" and clears the history annotation; a non-finite
// result shows "Error" and keeps the annotation "<expr> =".
func (c *Calculator) Calculate() {
	c.mu.Lock()
	before := c.stateLocked()

	var evalErr error
	if !c.display.ClearError() {
		evalErr = c.calculateLocked()
	}

	after := c.stateLocked()
	c.mu.Unlock()

	c.notify(Change{Op: OpCalculate, Before: before, After: after, Err: evalErr})
}

func (c *Calculator) calculateLocked() error {
	expr := c.display.Text()
	c.lastCalculation = expr

	v, err := eval.Evaluate(expr)
	if err != nil {
		c.display.SetError()

		var rangeErr *eval.RangeError
		if errors.As(err, &rangeErr) {
			c.history = expr + " ="
			c.logger.Debug("result out of range", "expr", expr, "value", rangeErr.Value)
		} else {
			c.history = ""
			c.logger.Debug("malformed expression", "expr", expr, "error", err)
		}
		return err
	}

	c.display.Set(eval.FormatResult(v))
	c.history = expr + " ="
	return nil
}

// HandleMemory applies a memory action.
//
// The Error sentinel is reset to "0" first. Unless the action is
// ActionClear, it is skipped when the display does not start with a number.
func (c *Calculator) HandleMemory(action memory.Action) error {
	if !action.Valid() {
		return &OperationError{Op: OpMemory, Input: string(action), Err: ErrInvalidAction}
	}

	c.mu.Lock()
	before := c.stateLocked()
	c.display.ClearError()
	c.memoryLocked(action)
	after := c.stateLocked()
	c.mu.Unlock()

	c.notify(Change{Op: OpMemory, Action: action, Before: before, After: after})
	return nil
}

func (c *Calculator) memoryLocked(action memory.Action) {
	current, ok := eval.ParseLeadingFloat(c.display.Text())
	if !ok && action != memory.ActionClear {
		return
	}

	switch action {
	case memory.ActionClear:
		c.memory.Clear()
	case memory.ActionRecall:
		c.display.Set(eval.FormatResult(c.memory.Value()))
	case memory.ActionAdd:
		c.memory.Add(current)
	case memory.ActionSubtract:
		c.memory.Subtract(current)
	}
}

// State returns a snapshot of the session.
func (c *Calculator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Display returns the current display text.
func (c *Calculator) Display() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.display.Text()
}

// History returns the history annotation, empty when hidden.
func (c *Calculator) History() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history
}

// LastCalculation returns the display text captured by the last Calculate.
func (c *Calculator) LastCalculation() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastCalculation
}

// MemoryActive reports whether the memory indicator should be shown.
func (c *Calculator) MemoryActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memory.Active()
}

// Memory returns the memory register value.
func (c *Calculator) Memory() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memory.Value()
}

func (c *Calculator) stateLocked() State {
	return State{
		Display:         c.display.Text(),
		History:         c.history,
		LastCalculation: c.lastCalculation,
		Memory:          c.memory.Value(),
		MemoryActive:    c.memory.Active(),
	}
}

func (c *Calculator) notify(change Change) {
	c.obsMu.RLock()
	observers := make([]Observer, 0, len(c.observers))
	for _, fn := range c.observers {
		if fn != nil {
			observers = append(observers, fn)
		}
	}
	c.obsMu.RUnlock()

	for _, fn := range observers {
		fn(change)
	}
}
