package backend

import (
	"strings"
	"sync"

	"github.com/dshills/keycalc/internal/renderer/core"
)

// NullBackend draws into memory. Tests read the screen back with Line,
// Contents and Find, and feed input with PostEvent.
type NullBackend struct {
	mu     sync.Mutex
	width  int
	height int
	// grid is row-major; it stays nil until Init.
	grid  []core.Cell
	shows int
	beeps int

	events    chan Event
	closed    chan struct{}
	closeOnce sync.Once
}

func NewNullBackend(width, height int) *NullBackend {
	return &NullBackend{
		width:  width,
		height: height,
		events: make(chan Event, 64),
		closed: make(chan struct{}),
	}
}

func (b *NullBackend) Init() error {
	b.mu.Lock()
	b.reset()
	b.mu.Unlock()
	return nil
}

func (b *NullBackend) reset() {
	b.grid = make([]core.Cell, b.width*b.height)
	b.fill(core.ScreenRect{Bottom: b.height, Right: b.width}, core.EmptyCell())
}

// index returns the grid offset of (x, y), or -1 off screen.
func (b *NullBackend) index(x, y int) int {
	if b.grid == nil || x < 0 || y < 0 || x >= b.width || y >= b.height {
		return -1
	}
	return y*b.width + x
}

func (b *NullBackend) fill(rect core.ScreenRect, cell core.Cell) {
	if b.grid == nil {
		return
	}
	r := rect.Clip(b.width, b.height)
	for y := r.Top; y < r.Bottom; y++ {
		row := b.grid[y*b.width : (y+1)*b.width]
		for x := r.Left; x < r.Right; x++ {
			row[x] = cell
		}
	}
}

func (b *NullBackend) Shutdown() {
	b.closeOnce.Do(func() { close(b.closed) })
}

func (b *NullBackend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

func (b *NullBackend) SetCell(x, y int, cell core.Cell) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.index(x, y); i >= 0 {
		b.grid[i] = cell
	}
}

func (b *NullBackend) GetCell(x, y int) core.Cell {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.index(x, y); i >= 0 {
		return b.grid[i]
	}
	return core.EmptyCell()
}

func (b *NullBackend) Fill(rect core.ScreenRect, cell core.Cell) {
	b.mu.Lock()
	b.fill(rect, cell)
	b.mu.Unlock()
}

func (b *NullBackend) Clear() {
	b.mu.Lock()
	b.fill(core.ScreenRect{Bottom: b.height, Right: b.width}, core.EmptyCell())
	b.mu.Unlock()
}

func (b *NullBackend) Show() {
	b.mu.Lock()
	b.shows++
	b.mu.Unlock()
}

func (b *NullBackend) HideCursor() {}

// PollEvent blocks for the next posted event. After Shutdown it returns
// an EventNone.
func (b *NullBackend) PollEvent() Event {
	select {
	case ev := <-b.events:
		return ev
	case <-b.closed:
		return Event{}
	}
}

// PostEvent queues ev. It drops ev when the queue is full.
func (b *NullBackend) PostEvent(ev Event) {
	select {
	case b.events <- ev:
	default:
	}
}

func (b *NullBackend) Beep() {
	b.mu.Lock()
	b.beeps++
	b.mu.Unlock()
}

// Resize changes the screen size, clears it and posts the resize event the
// way a terminal would.
func (b *NullBackend) Resize(width, height int) {
	b.mu.Lock()
	b.width, b.height = width, height
	b.reset()
	b.mu.Unlock()
	b.PostEvent(ResizeEvent(width, height))
}

// Line returns row y as text without trailing blanks.
func (b *NullBackend) Line(y int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.index(0, y) < 0 {
		return ""
	}
	row := b.grid[y*b.width : (y+1)*b.width]
	return strings.TrimRight(core.StringFromCells(row), " ")
}

// Contents returns the screen as newline-separated lines.
func (b *NullBackend) Contents() string {
	_, h := b.Size()
	lines := make([]string, h)
	for y := range lines {
		lines[y] = b.Line(y)
	}
	return strings.Join(lines, "\n")
}

// Find returns the screen position of the first occurrence of text.
func (b *NullBackend) Find(text string) (x, y int, ok bool) {
	_, h := b.Size()
	for y := range h {
		line := b.Line(y)
		if i := strings.Index(line, text); i >= 0 {
			return core.StringWidth(line[:i]), y, true
		}
	}
	return 0, 0, false
}

func (b *NullBackend) ShowCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shows
}

func (b *NullBackend) BeepCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.beeps
}
