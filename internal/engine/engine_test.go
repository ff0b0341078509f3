package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/dshills/keycalc/internal/engine/eval"
	"github.com/dshills/keycalc/internal/engine/memory"
)

func press(t *testing.T, c *Calculator, tokens ...string) {
	t.Helper()
	for _, tok := range tokens {
		if err := c.Append(tok); err != nil {
			t.Fatalf("Append(%q) failed: %v", tok, err)
		}
	}
}

// ============================================================================
// Basic Operations
// ============================================================================

func TestNew(t *testing.T) {
	c := New()

	s := c.State()
	if s.Display != "0" {
		t.Errorf("expected display 0, got %q", s.Display)
	}
	if s.History != "" || s.LastCalculation != "" {
		t.Errorf("expected empty history, got %q / %q", s.History, s.LastCalculation)
	}
	if s.Memory != 0 || s.MemoryActive {
		t.Errorf("expected empty memory, got %v %v", s.Memory, s.MemoryActive)
	}
	if c.ID() == "" {
		t.Error("expected a session id")
	}
}

func TestNewWithOptions(t *testing.T) {
	c := New(WithID("session-1"), WithDisplay("42"))
	if c.ID() != "session-1" {
		t.Errorf("expected session-1, got %q", c.ID())
	}
	if c.Display() != "42" {
		t.Errorf("expected 42, got %q", c.Display())
	}
}

func TestAppendInvalidToken(t *testing.T) {
	c := New()
	err := c.Append("x")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Op != OpAppend {
		t.Errorf("expected OperationError for append, got %#v", err)
	}
	if c.Display() != "0" {
		t.Errorf("display should be unchanged, got %q", c.Display())
	}
}

func TestClearKeepsMemory(t *testing.T) {
	c := New()
	press(t, c, "8")
	c.HandleMemory(memory.ActionAdd)
	press(t, c, "+", "1")
	c.Calculate()

	c.Clear()

	s := c.State()
	if s.Display != "0" {
		t.Errorf("expected 0, got %q", s.Display)
	}
	if s.History != "" || s.LastCalculation != "" {
		t.Errorf("clear should empty history, got %q / %q", s.History, s.LastCalculation)
	}
	if s.Memory != 8 || !s.MemoryActive {
		t.Errorf("clear should keep memory, got %v %v", s.Memory, s.MemoryActive)
	}
}

// ============================================================================
// Calculate
// ============================================================================

func TestCalculateScenarios(t *testing.T) {
	tests := []struct {
		name    string
		tokens  []string
		display string
		history string
	}{
		{"addition", []string{"12", "+", "7"}, "19", "12+7 ="},
		{"percent", []string{"5", "0", "%"}, "0.5", "50% ="},
		{"divide by zero keeps history", []string{"1", "/", "0"}, "Error", "1/0 ="},
		{"trailing operator clears history", []string{"1", "+"}, "Error", ""},
		{"glyphs", []string{"6", "×", "7", "÷", "2"}, "21", "6×7÷2 ="},
		{"precedence", []string{"2", "+", "3", "*", "4"}, "14", "2+3*4 ="},
		{"long fraction", []string{"1", "/", "3"}, "0.3333333333", "1/3 ="},
		{"large result", []string{"99999999", "*", "99999999"}, "1.00000e+16", "99999999*99999999 ="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			press(t, c, tt.tokens...)
			c.Calculate()

			if c.Display() != tt.display {
				t.Errorf("expected display %q, got %q", tt.display, c.Display())
			}
			if c.History() != tt.history {
				t.Errorf("expected history %q, got %q", tt.history, c.History())
			}
		})
	}
}

func TestCalculateSnapshotsLastCalculation(t *testing.T) {
	c := New()
	press(t, c, "1", "+")
	c.Calculate()

	if c.LastCalculation() != "1+" {
		t.Errorf("expected last calculation %q, got %q", "1+", c.LastCalculation())
	}
	if c.History() != "" {
		t.Errorf("expected empty history, got %q", c.History())
	}
}

func TestCalculateOnErrorResets(t *testing.T) {
	c := New()
	press(t, c, "1", "/", "0")
	c.Calculate()
	if c.Display() != "Error" {
		t.Fatalf("expected Error, got %q", c.Display())
	}

	c.Calculate()
	if c.Display() != "0" {
		t.Errorf("calculate on Error should reset to 0, got %q", c.Display())
	}
	if c.History() != "1/0 =" {
		t.Errorf("reset should not touch history, got %q", c.History())
	}
}

func TestCalculateResultIsReusable(t *testing.T) {
	c := New()
	press(t, c, "12", "+", "7")
	c.Calculate()
	press(t, c, "*", "2")
	c.Calculate()

	if c.Display() != "38" {
		t.Errorf("expected 38, got %q", c.Display())
	}
	if c.History() != "19*2 =" {
		t.Errorf("expected history %q, got %q", "19*2 =", c.History())
	}
}

func TestCalculateErrorKinds(t *testing.T) {
	var changes []Change
	c := New(WithObserver(func(ch Change) { changes = append(changes, ch) }))

	press(t, c, "1", "+")
	c.Calculate()
	press(t, c, "1", "/", "0")
	c.Calculate()

	var syntax *eval.EvaluationError
	var rangeErr *eval.RangeError

	var calcs []Change
	for _, ch := range changes {
		if ch.Op == OpCalculate {
			calcs = append(calcs, ch)
		}
	}
	if len(calcs) != 2 {
		t.Fatalf("expected 2 calculate changes, got %d", len(calcs))
	}
	if !errors.As(calcs[0].Err, &syntax) {
		t.Errorf("expected EvaluationError, got %v", calcs[0].Err)
	}
	if !errors.As(calcs[1].Err, &rangeErr) {
		t.Errorf("expected RangeError, got %v", calcs[1].Err)
	}
}

// ============================================================================
// Error sentinel
// ============================================================================

func TestErrorSentinelExits(t *testing.T) {
	tests := []struct {
		name string
		op   func(c *Calculator)
		want string
	}{
		{"append", func(c *Calculator) { c.Append("5") }, "5"},
		{"backspace", func(c *Calculator) { c.Backspace() }, "0"},
		{"toggle sign", func(c *Calculator) { c.ToggleSign() }, "0"},
		{"calculate", func(c *Calculator) { c.Calculate() }, "0"},
		{"clear", func(c *Calculator) { c.Clear() }, "0"},
		{"recall", func(c *Calculator) { c.HandleMemory(memory.ActionRecall) }, "0"},
		{"memory clear", func(c *Calculator) { c.HandleMemory(memory.ActionClear) }, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			press(t, c, "1", "+")
			c.Calculate()
			if !c.State().IsError() {
				t.Fatal("expected Error state")
			}

			tt.op(c)
			if c.Display() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, c.Display())
			}
		})
	}
}

// ============================================================================
// Memory
// ============================================================================

func TestMemoryAccumulates(t *testing.T) {
	c := New()

	// "0" parses fine, so the first add contributes zero but activates.
	c.HandleMemory(memory.ActionAdd)
	if c.Memory() != 0 || !c.MemoryActive() {
		t.Fatalf("expected active memory of 0, got %v %v", c.Memory(), c.MemoryActive())
	}

	press(t, c, "5")
	c.HandleMemory(memory.ActionAdd)
	if c.Memory() != 5 {
		t.Errorf("expected 5, got %v", c.Memory())
	}

	c.Clear()
	press(t, c, "2", ".", "5")
	c.HandleMemory(memory.ActionAdd)

	c.Clear()
	press(t, c, "1")
	c.HandleMemory(memory.ActionSubtract)

	c.Clear()
	c.HandleMemory(memory.ActionRecall)
	if c.Display() != "6.5" {
		t.Errorf("expected recall of 6.5, got %q", c.Display())
	}
	if c.Memory() != 6.5 {
		t.Errorf("recall should not change memory, got %v", c.Memory())
	}
}

func TestMemoryUsesLeadingNumber(t *testing.T) {
	c := New()
	press(t, c, "12", "+", "7")
	c.HandleMemory(memory.ActionAdd)
	if c.Memory() != 12 {
		t.Errorf("expected 12, got %v", c.Memory())
	}
}

func TestMemorySkipsNonNumericDisplay(t *testing.T) {
	c := New()
	press(t, c, "×", "3")
	before := c.State()

	c.HandleMemory(memory.ActionAdd)
	if c.State() != before {
		t.Errorf("expected no-op, state changed to %+v", c.State())
	}

	c.HandleMemory(memory.ActionRecall)
	if c.Display() != "×3" {
		t.Errorf("recall should be skipped, got %q", c.Display())
	}
}

func TestMemoryClearAlwaysResets(t *testing.T) {
	c := New()
	press(t, c, "9")
	c.HandleMemory(memory.ActionAdd)

	press(t, c, "/", "0")
	c.Calculate()
	if c.Display() != "Error" {
		t.Fatalf("expected Error, got %q", c.Display())
	}

	c.HandleMemory(memory.ActionClear)
	if c.Memory() != 0 || c.MemoryActive() {
		t.Errorf("expected cleared memory, got %v %v", c.Memory(), c.MemoryActive())
	}

	// Non-numeric display does not block clear either.
	press(t, c, "+")
	c.HandleMemory(memory.ActionAdd)
	c.HandleMemory(memory.ActionClear)
	if c.MemoryActive() {
		t.Error("memory should be inactive after clear")
	}
}

func TestMemoryRecallFormats(t *testing.T) {
	c := New()
	press(t, c, "1", "/", "3")
	c.Calculate()
	c.HandleMemory(memory.ActionAdd)
	c.HandleMemory(memory.ActionAdd)

	c.Clear()
	c.HandleMemory(memory.ActionRecall)
	if c.Display() != "0.6666666666" {
		t.Errorf("expected formatted recall, got %q", c.Display())
	}
}

func TestMemoryRecallOverflowShowsError(t *testing.T) {
	c := New()
	c.memory.Add(math.MaxFloat64)
	c.memory.Add(math.MaxFloat64)

	c.HandleMemory(memory.ActionRecall)
	if !math.IsInf(c.Memory(), 1) {
		t.Fatalf("expected +Inf in memory, got %v", c.Memory())
	}
	if c.Display() != eval.ErrorText {
		t.Errorf("expected %q, got %q", eval.ErrorText, c.Display())
	}
	if !c.MemoryActive() {
		t.Error("memory should stay active")
	}
}

func TestHandleMemoryInvalidAction(t *testing.T) {
	c := New()
	err := c.HandleMemory(memory.Action("bogus"))
	if !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", err)
	}
}

// ============================================================================
// Observers
// ============================================================================

func TestObserverReceivesChanges(t *testing.T) {
	c := New()

	var got []Change
	remove := c.OnChange(func(ch Change) { got = append(got, ch) })

	press(t, c, "7")
	c.ToggleSign()
	c.ToggleSign()
	c.Backspace()

	if len(got) != 4 {
		t.Fatalf("expected 4 changes, got %d", len(got))
	}
	if got[0].Op != OpAppend || got[0].Token != "7" || got[0].After.Display != "7" {
		t.Errorf("unexpected first change %+v", got[0])
	}
	if got[1].After.Display != "-7" || got[2].After.Display != "7" {
		t.Errorf("unexpected toggle changes %+v %+v", got[1], got[2])
	}

	remove()
	c.Clear()
	if len(got) != 4 {
		t.Errorf("removed observer should not be called, got %d changes", len(got))
	}
}

func TestChangeChanged(t *testing.T) {
	c := New()

	var last Change
	c.OnChange(func(ch Change) { last = ch })

	c.ToggleSign()
	if last.Changed() {
		t.Error("toggling 0 should not change state")
	}

	press(t, c, "3")
	if !last.Changed() {
		t.Error("append should change state")
	}
}
