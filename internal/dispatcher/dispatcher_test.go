package dispatcher

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/keycalc/internal/engine"
	"github.com/dshills/keycalc/internal/event"
)

type recordingFeedback struct {
	mu       sync.Mutex
	controls []string
}

func (f *recordingFeedback) Press(control string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.controls = append(f.controls, control)
}

func newCalcDispatcher(opts ...Option) (*Dispatcher, *engine.Calculator) {
	calc := engine.New()
	d := New(DefaultConfig().WithMetrics(), opts...)
	d.RegisterCalculator(calc)
	return d, calc
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in   string
		want Action
	}{
		{"append:7", Action{Kind: KindAppend, Arg: "7"}},
		{"append:×", Action{Kind: KindAppend, Arg: "×"}},
		{"calculate", Action{Kind: KindCalculate}},
		{" clear ", Action{Kind: KindClear}},
		{"toggle-sign", Action{Kind: KindToggleSign}},
		{"memory:m+", Action{Kind: KindMemory, Arg: "store-add"}},
		{"memory:recall", Action{Kind: KindMemory, Arg: "recall"}},
		{"script:double", Action{Kind: KindScript, Arg: "double"}},
		{"quit", Action{Kind: KindQuit}},
	}

	for _, tt := range tests {
		got, err := ParseAction(tt.in)
		if err != nil {
			t.Errorf("ParseAction(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAction(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "append", "append:", "clear:1", "memory:m*", "explode"} {
		if _, err := ParseAction(bad); !errors.Is(err, ErrInvalidAction) {
			t.Errorf("ParseAction(%q): expected ErrInvalidAction, got %v", bad, err)
		}
	}

	_, err := ParseAction("clear:1")
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Name != "clear:1" || pe.Reason != "takes no argument" {
		t.Errorf("expected ParseError for clear:1, got %v", err)
	}

	if s := MustParseAction("memory:mr").String(); s != "memory:recall" {
		t.Errorf("expected memory:recall, got %q", s)
	}
}

func TestDispatchCalculator(t *testing.T) {
	d, calc := newCalcDispatcher()
	ctx := context.Background()

	for _, name := range []string{"append:1", "append:2", "append:+", "append:7"} {
		if r := d.DispatchString(ctx, name, "", SourceKeyboard); r.Status != StatusOK {
			t.Fatalf("%s: expected ok, got %s (%v)", name, r.Status, r.Err)
		}
	}
	d.DispatchString(ctx, "calculate", "", SourceKeyboard)

	if calc.Display() != "19" || calc.History() != "12+7 =" {
		t.Errorf("expected 19 / 12+7 =, got %q / %q", calc.Display(), calc.History())
	}

	if r := d.DispatchString(ctx, "memory:m+", "", SourceKeyboard); r.Status != StatusOK {
		t.Errorf("memory add: expected ok, got %s", r.Status)
	}
	if !calc.MemoryActive() {
		t.Error("memory should be active")
	}
}

func TestDispatchNoOpAndErrors(t *testing.T) {
	d, _ := newCalcDispatcher()
	ctx := context.Background()

	if r := d.DispatchString(ctx, "toggle-sign", "", ""); r.Status != StatusNoOp {
		t.Errorf("toggling 0: expected no-op, got %s", r.Status)
	}

	r := d.DispatchString(ctx, "append:x", "", "")
	if !r.IsError() || !errors.Is(r.Err, engine.ErrInvalidToken) {
		t.Errorf("expected invalid token error, got %+v", r)
	}

	r = d.DispatchString(ctx, "bogus", "", "")
	if !errors.Is(r.Err, ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", r.Err)
	}

	r = d.Dispatch(ctx, Action{Kind: KindScript, Arg: "missing"})
	if !errors.Is(r.Err, ErrNoHandler) {
		t.Errorf("expected ErrNoHandler, got %v", r.Err)
	}

	if r := d.DispatchString(ctx, "quit", "", ""); r.Status != StatusQuit {
		t.Errorf("expected quit, got %s", r.Status)
	}
}

func TestDispatchPanicRecovery(t *testing.T) {
	d := NewWithDefaults()
	d.RegisterHandlerFunc(KindScript, func(context.Context, Action) Result {
		panic("boom")
	})

	r := d.Dispatch(context.Background(), Action{Kind: KindScript, Arg: "bad"})
	if !errors.Is(r.Err, ErrPanic) {
		t.Fatalf("expected ErrPanic, got %v", r.Err)
	}
	var pe *PanicError
	if !errors.As(r.Err, &pe) || pe.Action.String() != "script:bad" || pe.Value != "boom" {
		t.Errorf("unexpected panic error %+v", pe)
	}
}

func TestDispatchControlFeedback(t *testing.T) {
	bus := event.NewBus()
	if err := bus.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer bus.Stop(context.Background())

	var published []event.ControlPressed
	bus.Subscribe(event.TopicControlPressed, event.AsHandler(func(_ context.Context, e event.Event[event.ControlPressed]) error {
		published = append(published, e.Payload)
		return nil
	}))

	fb := &recordingFeedback{}
	d, _ := newCalcDispatcher(WithBus(bus), WithFeedback(fb))

	d.DispatchString(context.Background(), "append:7", "digit-7", SourceMouse)
	d.DispatchString(context.Background(), "append:8", "", SourceKeyboard)
	// Failed actions still animate their control.
	d.DispatchString(context.Background(), "append:x", "bogus", SourceMouse)

	if len(fb.controls) != 2 || fb.controls[0] != "digit-7" || fb.controls[1] != "bogus" {
		t.Errorf("unexpected feedback %v", fb.controls)
	}
	if len(published) != 2 {
		t.Fatalf("expected 2 events, got %d", len(published))
	}
	if published[0].Control != "digit-7" || published[0].Action != "append:7" || published[0].Source != SourceMouse {
		t.Errorf("unexpected event %+v", published[0])
	}
}

func TestDispatchPressEventsOff(t *testing.T) {
	bus := event.NewBus()
	if err := bus.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer bus.Stop(context.Background())

	var count int
	bus.Subscribe(event.TopicControlPressed, event.AsHandler(func(_ context.Context, _ event.Event[event.ControlPressed]) error {
		count++
		return nil
	}))

	fb := &recordingFeedback{}
	d := New(DefaultConfig().WithPressEvents(false), WithBus(bus), WithFeedback(fb))
	d.RegisterCalculator(engine.New())
	d.DispatchString(context.Background(), "append:7", "digit-7", SourceMouse)

	if count != 0 {
		t.Errorf("expected no press events, got %d", count)
	}
	if len(fb.controls) != 1 {
		t.Errorf("feedback should still fire, got %v", fb.controls)
	}
	if d.Metrics() != nil {
		t.Error("metrics should be nil unless enabled")
	}
}

func TestDispatchPressPublishFailureLogged(t *testing.T) {
	// The bus is never started, so every publish fails.
	bus := event.NewBus()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	d, calc := newCalcDispatcher(WithBus(bus), WithLogger(logger))
	result := d.DispatchString(context.Background(), "append:7", "digit-7", SourceMouse)

	if result.Status != StatusOK {
		t.Errorf("expected success, got %v", result.Status)
	}
	if calc.Display() != "7" {
		t.Errorf("expected %q, got %q", "7", calc.Display())
	}
	out := buf.String()
	if !strings.Contains(out, "press event not published") || !strings.Contains(out, event.ErrBusNotRunning.Error()) {
		t.Errorf("expected publish failure in log, got %q", out)
	}
}

func TestDispatchHooks(t *testing.T) {
	d, calc := newCalcDispatcher()

	d.RegisterPreHook(PreDispatchFunc(func(_ context.Context, a *Action) bool {
		if a.Kind == KindClear {
			return false
		}
		if a.Kind == KindAppend && a.Arg == "÷" {
			a.Arg = "/"
		}
		return true
	}))

	var statuses []Status
	d.RegisterPostHook(PostDispatchFunc(func(_ context.Context, _ Action, r *Result) {
		statuses = append(statuses, r.Status)
	}))

	ctx := context.Background()
	d.DispatchString(ctx, "append:8", "", "")
	d.DispatchString(ctx, "append:÷", "", "")
	if calc.Display() != "8/" {
		t.Errorf("pre hook should rewrite the token, got %q", calc.Display())
	}

	r := d.DispatchString(ctx, "clear", "", "")
	if r.Status != StatusCancelled || !errors.Is(r.Err, ErrActionCancelled) {
		t.Errorf("expected cancelled, got %+v", r)
	}
	if calc.Display() != "8/" {
		t.Errorf("cancelled clear should not run, got %q", calc.Display())
	}
	if len(statuses) != 2 {
		t.Errorf("post hooks should not run for cancelled actions, got %v", statuses)
	}
}

func TestDispatchMetrics(t *testing.T) {
	d, _ := newCalcDispatcher()
	ctx := context.Background()

	d.DispatchString(ctx, "append:1", "digit-1", "")
	d.DispatchString(ctx, "append:1", "digit-1", "")
	d.DispatchString(ctx, "append:x", "", "")
	d.DispatchString(ctx, "clear", "clear", "")

	m := d.Metrics()
	if m.TotalDispatches() != 4 {
		t.Errorf("expected 4 dispatches, got %d", m.TotalDispatches())
	}
	if m.TotalErrors() != 1 {
		t.Errorf("expected 1 error, got %d", m.TotalErrors())
	}

	top := m.TopKinds(5)
	if len(top) != 2 || top[0].Kind != KindAppend || top[0].Count != 3 || top[0].Errors != 1 {
		t.Errorf("unexpected top kinds %+v", top)
	}
	if top[0].LastArg != "x" {
		t.Errorf("expected last append arg %q, got %q", "x", top[0].LastArg)
	}
	if s, ok := m.Kind(KindClear); !ok || s.Count != 1 {
		t.Errorf("expected one clear, got %+v", s)
	}
	if got := m.Presses("digit-1"); got != 2 {
		t.Errorf("expected 2 presses of digit-1, got %d", got)
	}

	m.Reset()
	if m.TotalDispatches() != 0 || len(m.TopKinds(5)) != 0 {
		t.Error("expected Reset to clear counters")
	}
	if m.AverageDuration() < 0 || m.AverageDuration() > time.Second {
		t.Errorf("unexpected average duration %v", m.AverageDuration())
	}
}
