// Package backend provides the terminal abstraction the calculator view
// draws on.
package backend

import (
	"fmt"

	"github.com/dshills/keycalc/internal/renderer/core"
)

// EventType tells which fields of an Event are set.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventMouse
	EventResize
	// EventInterrupt wakes a blocked PollEvent without carrying input.
	EventInterrupt
)

var eventTypeNames = [...]string{"none", "key", "mouse", "resize", "interrupt"}

func (t EventType) String() string {
	if t < 0 || int(t) >= len(eventTypeNames) {
		return fmt.Sprintf("EventType(%d)", int(t))
	}
	return eventTypeNames[t]
}

// Event is one piece of input from the display.
type Event struct {
	Type EventType

	// EventKey
	Key  Key
	Rune rune
	Mod  ModMask

	// EventMouse, in cells.
	MouseX, MouseY int
	MouseButton    MouseButton

	// EventResize, in cells.
	Width, Height int
}

// RuneEvent is a typed character.
func RuneEvent(r rune, mod ModMask) Event {
	return Event{Type: EventKey, Key: KeyRune, Rune: r, Mod: mod}
}

// KeyEvent is a press of a named key.
func KeyEvent(k Key, mod ModMask) Event {
	return Event{Type: EventKey, Key: k, Mod: mod}
}

// ClickEvent is a mouse press on cell (x, y).
func ClickEvent(x, y int, button MouseButton) Event {
	return Event{Type: EventMouse, MouseX: x, MouseY: y, MouseButton: button}
}

// ResizeEvent reports a new grid size.
func ResizeEvent(width, height int) Event {
	return Event{Type: EventResize, Width: width, Height: height}
}

// Click returns the cell of a left-button press. Other buttons, the
// wheel and non-mouse events report false.
func (e Event) Click() (x, y int, ok bool) {
	if e.Type != EventMouse || e.MouseButton != MouseLeft {
		return 0, 0, false
	}
	return e.MouseX, e.MouseY, true
}

func (e Event) String() string {
	switch e.Type {
	case EventKey:
		if e.Key == KeyRune {
			return fmt.Sprintf("key %q mod=%d", e.Rune, e.Mod)
		}
		return fmt.Sprintf("key %d mod=%d", e.Key, e.Mod)
	case EventMouse:
		return fmt.Sprintf("mouse %d at %d,%d", e.MouseButton, e.MouseX, e.MouseY)
	case EventResize:
		return fmt.Sprintf("resize %dx%d", e.Width, e.Height)
	default:
		return e.Type.String()
	}
}

// Key is a non-character key. Control-letter chords arrive as KeyRune
// with ModCtrl.
type Key int

const (
	KeyNone Key = iota
	// KeyRune means the Rune field holds the character.
	KeyRune
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyHome
	KeyEnd
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// ModMask is the set of modifiers held during a key event.
type ModMask uint8

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << (iota - 1)
	ModCtrl
	ModAlt
	ModMeta
)

// Has reports whether mod is held.
func (m ModMask) Has(mod ModMask) bool { return m&mod != 0 }

// MouseButton is the button of a mouse event.
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
)

// Backend is a grid of styled cells plus an input queue. The terminal,
// the null backend used in tests, and the desktop window implement it.
type Backend interface {
	// Init must be called before anything else.
	Init() error
	// Shutdown releases the display. PollEvent then returns EventNone.
	Shutdown()

	Size() (width, height int)

	// SetCell and GetCell ignore positions outside the grid; GetCell
	// returns an empty cell there.
	SetCell(x, y int, cell core.Cell)
	GetCell(x, y int) core.Cell
	// Fill paints rect, clipped to the grid.
	Fill(rect core.ScreenRect, cell core.Cell)
	Clear()

	// Show makes everything drawn since the last Show visible.
	Show()
	HideCursor()

	// PollEvent blocks for the next event.
	PollEvent() Event
	// PostEvent queues a synthetic event.
	PostEvent(event Event)

	// Beep signals an error keypress.
	Beep()
}

// SetString writes s starting at (x, y), one cell per grapheme cluster,
// and returns the number of columns written.
func SetString(b Backend, x, y int, s string, style core.Style) int {
	col := x
	for _, cell := range core.CellsFromString(s, style) {
		b.SetCell(col, y, cell)
		col++
	}
	return col - x
}
