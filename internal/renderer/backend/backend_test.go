package backend

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keycalc/internal/renderer/core"
)

// ============================================================================
// NullBackend
// ============================================================================

func TestNullBackendInit(t *testing.T) {
	b := NewNullBackend(80, 24)
	if err := b.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	w, h := b.Size()
	if w != 80 || h != 24 {
		t.Errorf("expected size (80, 24), got (%d, %d)", w, h)
	}
}

func TestNullBackendSetGetCell(t *testing.T) {
	b := NewNullBackend(80, 24)
	b.Init()

	cell := core.Glyph('X', core.DefaultStyle().WithForeground(core.ColorRed))
	b.SetCell(10, 5, cell)

	got := b.GetCell(10, 5)
	if !got.Equals(cell) {
		t.Errorf("cell mismatch: expected %+v, got %+v", cell, got)
	}

	// Out of bounds should be ignored/return empty
	b.SetCell(-1, 0, cell)
	b.SetCell(100, 0, cell)

	empty := b.GetCell(-1, 0)
	if !empty.Equals(core.EmptyCell()) {
		t.Error("out of bounds should return empty cell")
	}
}

func TestNullBackendFillAndClear(t *testing.T) {
	b := NewNullBackend(20, 10)
	b.Init()

	cell := core.Glyph('.', core.DefaultStyle())
	b.Fill(core.RectFromSize(2, 3, 2, 4), cell)

	if !b.GetCell(4, 3).Equals(cell) {
		t.Error("cell inside rect should be filled")
	}
	if b.GetCell(0, 0).Equals(cell) {
		t.Error("cell outside rect should not be filled")
	}
	if got := b.Line(2); got != "   ...." {
		t.Errorf("expected %q, got %q", "   ....", got)
	}

	b.Clear()
	if !b.GetCell(4, 3).Equals(core.EmptyCell()) {
		t.Error("clear should reset all cells")
	}
}

func TestSetString(t *testing.T) {
	b := NewNullBackend(20, 3)
	b.Init()

	// 6 × 7 and the space take a column each, 中 takes two.
	n := SetString(b, 1, 1, "6×7 中", core.DefaultStyle())
	if n != 6 {
		t.Errorf("expected 6 columns, got %d", n)
	}
	if !b.GetCell(6, 1).IsContinuation() {
		t.Error("expected the second column of 中 to be a continuation")
	}
	if got := b.Line(1); got != " 6×7 中" {
		t.Errorf("expected %q, got %q", " 6×7 中", got)
	}
}

func TestNullBackendFind(t *testing.T) {
	b := NewNullBackend(20, 4)
	b.Init()
	SetString(b, 2, 1, "中 = 42", core.DefaultStyle())

	x, y, ok := b.Find("42")
	if !ok || x != 7 || y != 1 {
		t.Errorf("expected (7, 1), got (%d, %d, %v)", x, y, ok)
	}
	if _, _, ok := b.Find("43"); ok {
		t.Error("expected no match")
	}

	b.Fill(core.RectFromSize(-2, -2, 100, 100), core.Glyph('#', core.DefaultStyle()))
	if got := b.Line(3); got != "####################" {
		t.Errorf("fill should clip to the screen, got %q", got)
	}
}

func TestNullBackendEvents(t *testing.T) {
	b := NewNullBackend(10, 5)
	b.Init()

	b.PostEvent(Event{Type: EventKey, Key: KeyRune, Rune: '7'})
	ev := b.PollEvent()
	if ev.Type != EventKey || ev.Rune != '7' {
		t.Errorf("unexpected event %+v", ev)
	}

	b.Resize(30, 8)
	ev = b.PollEvent()
	if ev.Type != EventResize || ev.Width != 30 || ev.Height != 8 {
		t.Errorf("unexpected resize event %+v", ev)
	}

	done := make(chan Event)
	go func() { done <- b.PollEvent() }()
	b.Shutdown()

	select {
	case ev := <-done:
		if ev.Type != EventNone {
			t.Errorf("expected EventNone after shutdown, got %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("PollEvent did not return after Shutdown")
	}
}

func TestModMaskHas(t *testing.T) {
	m := ModCtrl | ModShift
	if !m.Has(ModCtrl) || !m.Has(ModShift) {
		t.Error("mask should contain ctrl and shift")
	}
	if m.Has(ModAlt) {
		t.Error("mask should not contain alt")
	}
}

func TestEventClick(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		ok   bool
	}{
		{"left", ClickEvent(3, 4, MouseLeft), true},
		{"right", ClickEvent(3, 4, MouseRight), false},
		{"wheel", ClickEvent(3, 4, MouseWheelUp), false},
		{"key", RuneEvent('3', ModNone), false},
	}
	for _, tt := range tests {
		x, y, ok := tt.ev.Click()
		if ok != tt.ok {
			t.Errorf("%s: expected ok=%v, got %v", tt.name, tt.ok, ok)
		}
		if ok && (x != 3 || y != 4) {
			t.Errorf("%s: expected 3,4, got %d,%d", tt.name, x, y)
		}
	}
}

func TestEventString(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{RuneEvent('7', ModNone), `key '7' mod=0`},
		{ResizeEvent(80, 24), "resize 80x24"},
		{Event{Type: EventInterrupt}, "interrupt"},
		{Event{Type: EventType(42)}, "EventType(42)"},
	}
	for _, tt := range tests {
		if got := tt.ev.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

// ============================================================================
// Terminal (simulation screen)
// ============================================================================

func newSimTerminal(t *testing.T) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	term, err := NewTerminal(WithScreen(screen), WithTitle("keycalc"))
	if err != nil {
		t.Fatalf("NewTerminal failed: %v", err)
	}
	if err := term.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	screen.SetSize(20, 6)
	t.Cleanup(term.Shutdown)
	return term, screen
}

// pollInput skips the resize events the simulation screen emits on setup.
func pollInput(term *Terminal) Event {
	for {
		ev := term.PollEvent()
		if ev.Type != EventResize {
			return ev
		}
	}
}

func TestTerminalSetCell(t *testing.T) {
	term, _ := newSimTerminal(t)

	style := core.NewStyle(core.ColorFromRGB(10, 20, 30), core.ColorDefault).Bold()
	term.SetCell(2, 1, core.Glyph('÷', style))
	term.Show()

	got := term.GetCell(2, 1)
	if got.Rune != '÷' {
		t.Errorf("expected ÷, got %q", got.Rune)
	}
	if !got.Style.Attributes.Has(core.AttrBold) {
		t.Error("expected bold")
	}
	if !got.Style.Foreground.Equals(core.ColorFromRGB(10, 20, 30)) {
		t.Errorf("expected #0A141E, got %v", got.Style.Foreground)
	}
}

func TestTerminalKeyEvents(t *testing.T) {
	term, screen := newSimTerminal(t)

	tests := []struct {
		key  tcell.Key
		r    rune
		mod  tcell.ModMask
		want Event
	}{
		{tcell.KeyRune, '7', tcell.ModNone, Event{Type: EventKey, Key: KeyRune, Rune: '7'}},
		{tcell.KeyEnter, 0, tcell.ModNone, Event{Type: EventKey, Key: KeyEnter}},
		{tcell.KeyEscape, 0, tcell.ModNone, Event{Type: EventKey, Key: KeyEscape}},
		{tcell.KeyBackspace2, 0, tcell.ModNone, Event{Type: EventKey, Key: KeyBackspace}},
		{tcell.KeyCtrlL, 0, tcell.ModCtrl, Event{Type: EventKey, Key: KeyRune, Rune: 'l', Mod: ModCtrl}},
	}

	for _, tt := range tests {
		screen.InjectKey(tt.key, tt.r, tt.mod)
		got := pollInput(term)
		if got != tt.want {
			t.Errorf("key %v: expected %+v, got %+v", tt.key, tt.want, got)
		}
	}
}

func TestTerminalMouseAndInterrupt(t *testing.T) {
	term, screen := newSimTerminal(t)

	screen.InjectMouse(4, 3, tcell.Button1, tcell.ModNone)
	ev := pollInput(term)
	if ev.Type != EventMouse || ev.MouseX != 4 || ev.MouseY != 3 || ev.MouseButton != MouseLeft {
		t.Errorf("unexpected mouse event %+v", ev)
	}

	term.PostEvent(Event{Type: EventInterrupt})
	if ev := pollInput(term); ev.Type != EventInterrupt {
		t.Errorf("expected interrupt, got %+v", ev)
	}
}

func TestTcellEventRoundTrip(t *testing.T) {
	events := []Event{
		RuneEvent('7', ModNone),
		RuneEvent('c', ModCtrl),
		KeyEvent(KeyEnter, ModNone),
		KeyEvent(KeyBackspace, ModNone),
		KeyEvent(KeyF5, ModShift),
		KeyEvent(KeyF12, ModNone),
	}
	for _, ev := range events {
		got := fromTcellEvent(toTcellEvent(ev))
		if got != ev {
			t.Errorf("%s: round trip gave %s", ev, got)
		}
	}
	if toTcellEvent(ClickEvent(1, 1, MouseLeft)) != nil {
		t.Error("mouse events should not convert back to tcell")
	}
}

func TestTcellStyleRoundTrip(t *testing.T) {
	style := core.NewStyle(core.ColorFromIndex(4), core.ColorFromRGB(1, 2, 3)).
		With(core.AttrBold | core.AttrReverse)
	got := coreStyle(tcellStyle(style))
	if !got.Equals(style) {
		t.Errorf("expected %+v, got %+v", style, got)
	}
}
