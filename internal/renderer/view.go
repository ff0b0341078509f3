package renderer

import (
	"sync"
	"time"

	"github.com/dshills/keycalc/internal/engine"
	"github.com/dshills/keycalc/internal/renderer/backend"
	"github.com/dshills/keycalc/internal/renderer/core"
)

// Frame characters.
const (
	frameH  = '─'
	frameV  = '│'
	frameTL = '┌'
	frameTR = '┐'
	frameBL = '└'
	frameBR = '┘'
	frameLT = '├'
	frameRT = '┤'

	memoryIndicator = "M"
	ellipsis        = "…"
)

// Option configures a View.
type Option func(*View)

// WithTheme sets the color theme.
func WithTheme(t Theme) Option {
	return func(v *View) { v.theme = t }
}

// WithControls replaces the button grid.
func WithControls(controls [][]Control) Option {
	return func(v *View) { v.controls = controls }
}

// WithShowHistory toggles the history annotation.
func WithShowHistory(show bool) Option {
	return func(v *View) { v.showHistory = show }
}

// WithPressDuration sets how long press feedback lasts.
func WithPressDuration(d time.Duration) Option {
	return func(v *View) { v.pressDuration = d }
}

// WithRedraw sets the function called when press feedback changes outside
// of a Render call. It defaults to rendering immediately. Event loops that
// own the backend typically post a wake-up event instead.
func WithRedraw(fn func()) Option {
	return func(v *View) { v.redraw = fn }
}

// View draws a calculator session on a backend.
type View struct {
	mu sync.Mutex

	backend  backend.Backend
	controls [][]Control
	theme    Theme
	layout   Layout
	state    engine.State

	showHistory   bool
	pressDuration time.Duration
	animator      *Animator
	redraw        func()

	frameCount uint64
}

// New creates a view on b. The backend must already be initialized.
func New(b backend.Backend, opts ...Option) *View {
	v := &View{
		backend:     b,
		controls:    DefaultControls(),
		theme:       DefaultTheme(),
		state:       engine.State{Display: "0"},
		showHistory: true,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.redraw == nil {
		v.redraw = v.Render
	}
	v.animator = NewAnimator(v.pressDuration, func() { v.redraw() })

	w, h := b.Size()
	v.layout = ComputeLayout(v.controls, w, h)
	return v
}

// SetState replaces the session snapshot shown by the view.
func (v *View) SetState(s engine.State) {
	v.mu.Lock()
	v.state = s
	v.mu.Unlock()
}

// State returns the snapshot the view is showing.
func (v *View) State() engine.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Press starts the press feedback for a control. Unknown IDs are ignored.
func (v *View) Press(control string) {
	v.mu.Lock()
	_, ok := FindControl(v.controls, control)
	v.mu.Unlock()
	if ok {
		v.animator.Press(control)
	}
}

// IsPressed reports whether a control is showing press feedback.
func (v *View) IsPressed(control string) bool {
	return v.animator.IsPressed(control)
}

// ControlAt returns the control under the screen cell (x, y).
func (v *View) ControlAt(x, y int) (Control, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.layout.HitTest(x, y)
}

// ControlForAction returns the button that triggers action, if any.
func (v *View) ControlForAction(action string) (Control, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return ControlForAction(v.controls, action)
}

// Resize recomputes the layout for a new screen size.
func (v *View) Resize(width, height int) {
	v.mu.Lock()
	v.layout = ComputeLayout(v.controls, width, height)
	v.mu.Unlock()
}

// Layout returns the current layout.
func (v *View) Layout() Layout {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.layout
}

// SetTheme changes the color theme.
func (v *View) SetTheme(t Theme) {
	v.mu.Lock()
	v.theme = t
	v.mu.Unlock()
}

// SetShowHistory toggles the history annotation.
func (v *View) SetShowHistory(show bool) {
	v.mu.Lock()
	v.showHistory = show
	v.mu.Unlock()
}

// SetPressDuration changes how long press feedback lasts.
func (v *View) SetPressDuration(d time.Duration) {
	v.animator.SetDuration(d)
}

// FrameCount returns the number of frames rendered.
func (v *View) FrameCount() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frameCount
}

// Close stops pending press animations.
func (v *View) Close() {
	v.animator.Stop()
}

// Render draws the whole screen and flushes it.
func (v *View) Render() {
	v.mu.Lock()
	defer v.mu.Unlock()

	b := v.backend
	b.Clear()
	if v.layout.Panel.IsEmpty() {
		b.Show()
		return
	}

	v.renderFrame()
	v.renderHeader()
	for _, btn := range v.layout.Buttons {
		v.renderButton(btn)
	}

	b.HideCursor()
	b.Show()
	v.frameCount++
}

func (v *View) renderFrame() {
	b := v.backend
	p := v.layout.Panel
	style := v.theme.Panel

	b.Fill(p, core.Blank(style))

	right, bottom := p.Right-1, p.Bottom-1
	sep := p.Top + headerRows - 1
	for x := p.Left + 1; x < right; x++ {
		b.SetCell(x, p.Top, core.Glyph(frameH, style))
		b.SetCell(x, sep, core.Glyph(frameH, style))
		b.SetCell(x, bottom, core.Glyph(frameH, style))
	}
	for y := p.Top + 1; y < bottom; y++ {
		b.SetCell(p.Left, y, core.Glyph(frameV, style))
		b.SetCell(right, y, core.Glyph(frameV, style))
	}
	b.SetCell(p.Left, p.Top, core.Glyph(frameTL, style))
	b.SetCell(right, p.Top, core.Glyph(frameTR, style))
	b.SetCell(p.Left, bottom, core.Glyph(frameBL, style))
	b.SetCell(right, bottom, core.Glyph(frameBR, style))
	b.SetCell(p.Left, sep, core.Glyph(frameLT, style))
	b.SetCell(right, sep, core.Glyph(frameRT, style))
}

func (v *View) renderHeader() {
	b := v.backend
	hist, disp := v.layout.History, v.layout.Display

	b.Fill(hist, core.Blank(v.theme.History))
	b.Fill(disp, core.Blank(v.theme.Display))

	// One column of padding on each side.
	width := disp.Width() - 2
	if width <= 0 {
		return
	}

	reserved := 0
	if v.state.MemoryActive {
		reserved = core.StringWidth(memoryIndicator) + 1
		backend.SetString(b, hist.Left+1, hist.Top, memoryIndicator, v.theme.Memory)
	}
	if v.showHistory && v.state.History != "" {
		text := FitRight(v.state.History, width-reserved)
		x := hist.Right - 1 - core.StringWidth(text)
		backend.SetString(b, x, hist.Top, text, v.theme.History)
	}

	style := v.theme.Display
	if v.state.IsError() {
		style = v.theme.Error
	}
	text := FitRight(v.state.Display, width)
	x := disp.Right - 1 - core.StringWidth(text)
	backend.SetString(b, x, disp.Top, text, style)
}

func (v *View) renderButton(btn Button) {
	b := v.backend
	style := v.theme.ControlStyle(btn.Control, v.animator.IsPressed(btn.Control.ID))
	b.Fill(btn.Rect, core.Blank(style))

	label := FitRight(btn.Control.Label, btn.Rect.Width())
	x := btn.Rect.Left + (btn.Rect.Width()-core.StringWidth(label))/2
	_, y := btn.Rect.Center()
	backend.SetString(b, x, y, label, style)
}

// FitRight keeps the rightmost columns of s that fit in width, marking a
// cut with an ellipsis. The newest input stays visible.
func FitRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if core.StringWidth(s) <= width {
		return s
	}
	return ellipsis + core.TailColumns(s, width-core.StringWidth(ellipsis))
}
