// Package live redraws a one-line calculator readout in place on a plain
// terminal, for sessions that are not full-screen.
package live

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gosuri/uilive"

	"github.com/dshills/keycalc/internal/engine"
)

// DefaultRefreshInterval is how often a started Writer repaints.
const DefaultRefreshInterval = 50 * time.Millisecond

// Option configures a Writer.
type Option func(*Writer)

// WithShowHistory toggles the history annotation.
func WithShowHistory(show bool) Option {
	return func(w *Writer) { w.showHistory = show }
}

// WithRefreshInterval sets the repaint interval used after Start.
func WithRefreshInterval(d time.Duration) Option {
	return func(w *Writer) { w.live.RefreshInterval = d }
}

// Writer renders session snapshots to a terminal line.
type Writer struct {
	mu          sync.Mutex
	live        *uilive.Writer
	showHistory bool
	last        string
	started     bool
}

// New creates a writer on out.
func New(out io.Writer, opts ...Option) *Writer {
	lw := uilive.New()
	lw.Out = out
	lw.RefreshInterval = DefaultRefreshInterval

	w := &Writer{live: lw, showHistory: true}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins periodic repainting. Without Start every Update flushes
// immediately.
func (w *Writer) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		w.live.Start()
		w.started = true
	}
}

// Stop flushes pending output and stops repainting.
func (w *Writer) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		w.live.Stop()
		w.started = false
	}
}

// SetShowHistory toggles the history annotation.
func (w *Writer) SetShowHistory(show bool) {
	w.mu.Lock()
	w.showHistory = show
	w.mu.Unlock()
}

// Update replaces the readout with the given state. Unchanged readouts
// are not rewritten.
func (w *Writer) Update(s engine.State) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	line := Format(s, w.showHistory)
	if line == w.last {
		return nil
	}
	w.last = line

	if _, err := fmt.Fprintln(w.live, line); err != nil {
		return fmt.Errorf("live: write: %w", err)
	}
	if w.started {
		return nil
	}
	if err := w.live.Flush(); err != nil {
		return fmt.Errorf("live: flush: %w", err)
	}
	return nil
}

// Message prints a line above the readout, such as an error report.
func (w *Writer) Message(format string, args ...any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Bypass erases the readout, so repaint it below the message.
	if _, err := fmt.Fprintf(w.live.Bypass(), format+"\n", args...); err != nil {
		return fmt.Errorf("live: message: %w", err)
	}
	if w.last == "" || w.started {
		return nil
	}
	if _, err := fmt.Fprintln(w.live, w.last); err != nil {
		return fmt.Errorf("live: write: %w", err)
	}
	return w.live.Flush()
}

// Format renders a snapshot as one line, e.g. "M  12+7 =  19".
func Format(s engine.State, showHistory bool) string {
	parts := make([]string, 0, 3)
	if s.MemoryActive {
		parts = append(parts, "M")
	}
	if showHistory && s.History != "" {
		parts = append(parts, s.History)
	}
	parts = append(parts, s.Display)
	return strings.Join(parts, "  ")
}
