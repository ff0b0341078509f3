//go:build !tinygo

package gui

import (
	"sync"

	"github.com/dshills/keycalc/internal/renderer/backend"
	"github.com/dshills/keycalc/internal/renderer/core"
)

// Grid size limits, in cells.
const (
	DefaultCols = 48
	DefaultRows = 22

	minCols = 20
	minRows = 10
)

// Window is a cell-grid backend shown by the ebiten game loop. View
// writes go to a back buffer; Show publishes it to the front buffer that
// Draw reads.
type Window struct {
	mu     sync.Mutex
	cols   int
	rows   int
	back   [][]core.Cell
	front  [][]core.Cell
	frames uint64
	bells  int

	events    chan backend.Event
	closed    chan struct{}
	closeOnce sync.Once
}

// NewWindow creates a window backend with the given grid size.
func NewWindow(cols, rows int) *Window {
	return &Window{
		cols:   max(cols, minCols),
		rows:   max(rows, minRows),
		events: make(chan backend.Event, 128),
		closed: make(chan struct{}),
	}
}

func newGrid(cols, rows int) [][]core.Cell {
	grid := make([][]core.Cell, rows)
	empty := core.EmptyCell()
	for y := range grid {
		grid[y] = make([]core.Cell, cols)
		for x := range grid[y] {
			grid[y][x] = empty
		}
	}
	return grid
}

// Init allocates the cell buffers.
func (w *Window) Init() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.back = newGrid(w.cols, w.rows)
	w.front = newGrid(w.cols, w.rows)
	return nil
}

// Shutdown stops event delivery. The game loop ends on its next update.
func (w *Window) Shutdown() {
	w.closeOnce.Do(func() { close(w.closed) })
}

// Closed is closed once Shutdown has been called.
func (w *Window) Closed() <-chan struct{} {
	return w.closed
}

func (w *Window) Size() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cols, w.rows
}

func (w *Window) inBounds(x, y int) bool {
	return x >= 0 && x < w.cols && y >= 0 && y < w.rows && w.back != nil
}

func (w *Window) SetCell(x, y int, cell core.Cell) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inBounds(x, y) {
		w.back[y][x] = cell
	}
}

func (w *Window) GetCell(x, y int) core.Cell {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inBounds(x, y) {
		return w.back[y][x]
	}
	return core.EmptyCell()
}

func (w *Window) Fill(rect core.ScreenRect, cell core.Cell) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for y := rect.Top; y < rect.Bottom; y++ {
		for x := rect.Left; x < rect.Right; x++ {
			if w.inBounds(x, y) {
				w.back[y][x] = cell
			}
		}
	}
}

func (w *Window) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	empty := core.EmptyCell()
	for y := range w.back {
		for x := range w.back[y] {
			w.back[y][x] = empty
		}
	}
}

// Show publishes the back buffer.
func (w *Window) Show() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for y := range w.back {
		copy(w.front[y], w.back[y])
	}
	w.frames++
}

func (w *Window) HideCursor() {}

func (w *Window) PollEvent() backend.Event {
	select {
	case ev := <-w.events:
		return ev
	case <-w.closed:
		return backend.Event{Type: backend.EventNone}
	}
}

// PostEvent queues an event. Events are dropped when the queue is full.
func (w *Window) PostEvent(ev backend.Event) {
	select {
	case w.events <- ev:
	default:
	}
}

// Beep flashes nothing; the count is kept for tests.
func (w *Window) Beep() {
	w.mu.Lock()
	w.bells++
	w.mu.Unlock()
}

// resize changes the grid size and queues a resize event. It reports
// whether the size changed.
func (w *Window) resize(cols, rows int) bool {
	cols, rows = max(cols, minCols), max(rows, minRows)

	w.mu.Lock()
	if cols == w.cols && rows == w.rows {
		w.mu.Unlock()
		return false
	}
	w.cols, w.rows = cols, rows
	if w.back != nil {
		w.back = newGrid(cols, rows)
		w.front = newGrid(cols, rows)
	}
	w.mu.Unlock()

	w.PostEvent(backend.ResizeEvent(cols, rows))
	return true
}

// snapshot copies the front buffer for drawing.
func (w *Window) snapshot(dst [][]core.Cell) [][]core.Cell {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(dst) != len(w.front) || (len(dst) > 0 && len(dst[0]) != w.cols) {
		dst = make([][]core.Cell, len(w.front))
		for y := range dst {
			dst[y] = make([]core.Cell, w.cols)
		}
	}
	for y := range w.front {
		copy(dst[y], w.front[y])
	}
	return dst
}

var _ backend.Backend = (*Window)(nil)
