package backend

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keycalc/internal/renderer/core"
)

// Terminal draws with tcell. All screen access holds mu; PollEvent does
// not, so drawing continues while it blocks.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
	title  string
	mouse  bool
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithScreen draws on screen instead of the controlling terminal. Tests
// pass a tcell.SimulationScreen.
func WithScreen(screen tcell.Screen) TerminalOption {
	return func(t *Terminal) { t.screen = screen }
}

// WithTitle sets the window title on terminals that support it.
func WithTitle(title string) TerminalOption {
	return func(t *Terminal) { t.title = title }
}

// WithMouse turns click reporting on or off. It is on by default so the
// buttons work.
func WithMouse(on bool) TerminalOption {
	return func(t *Terminal) { t.mouse = on }
}

func NewTerminal(opts ...TerminalOption) (*Terminal, error) {
	t := &Terminal{mouse: true}
	for _, opt := range opts {
		opt(t)
	}
	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("opening terminal: %w", err)
		}
		t.screen = screen
	}
	return t, nil
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	if t.mouse {
		t.screen.EnableMouse(tcell.MouseButtonEvents)
	}
	if t.title != "" {
		t.screen.SetTitle(t.title)
	}
	t.screen.HideCursor()
	return nil
}

func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

func (t *Terminal) SetCell(x, y int, cell core.Cell) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cell.IsContinuation() {
		return
	}
	t.screen.SetContent(x, y, cell.Rune, nil, tcellStyle(cell.Style))
}

func (t *Terminal) GetCell(x, y int) core.Cell {
	t.mu.Lock()
	defer t.mu.Unlock()

	mainc, _, style, width := t.screen.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
	return core.Cell{
		Rune:  mainc,
		Width: width,
		Style: coreStyle(style),
	}
}

func (t *Terminal) Fill(rect core.ScreenRect, cell core.Cell) {
	t.mu.Lock()
	defer t.mu.Unlock()

	style := tcellStyle(cell.Style)
	rect = rect.Clip(t.screen.Size())

	for y := rect.Top; y < rect.Bottom; y++ {
		for x := rect.Left; x < rect.Right; x++ {
			t.screen.SetContent(x, y, cell.Rune, nil, style)
		}
	}
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
}

func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
}

func (t *Terminal) HideCursor() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.HideCursor()
}

func (t *Terminal) PollEvent() Event {
	ev := t.screen.PollEvent()
	if ev == nil {
		return Event{}
	}
	return fromTcellEvent(ev)
}

// PostEvent queues key and interrupt events. Others are dropped, as is
// anything posted while tcell's queue is full.
func (t *Terminal) PostEvent(event Event) {
	if ev := toTcellEvent(event); ev != nil {
		_ = t.screen.PostEvent(ev)
	}
}

func (t *Terminal) Beep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	_ = t.screen.Beep() // best-effort; terminal may not support beep
}
