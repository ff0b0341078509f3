//go:build !tinygo

package gui

import (
	"context"
	"errors"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/dshills/keycalc/internal/app"
)

// Options configures the window.
type Options struct {
	Title string
	Cols  int
	Rows  int
}

// Run opens the calculator window and blocks until it closes, the quit
// action runs, or ctx is cancelled. It must be called from the main
// goroutine.
func Run(ctx context.Context, a *app.Application, opts Options) error {
	if opts.Title == "" {
		opts.Title = "keycalc"
	}
	if opts.Cols == 0 {
		opts.Cols = DefaultCols
	}
	if opts.Rows == 0 {
		opts.Rows = DefaultRows
	}

	win := NewWindow(opts.Cols, opts.Rows)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		err := a.RunTerminal(ctx, win)
		win.Shutdown()
		done <- err
	}()

	cols, rows := win.Size()
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(cols*cellWidth, rows*cellHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	err := ebiten.RunGame(&game{win: win})
	if errors.Is(err, ebiten.Termination) {
		err = nil
	}

	// Closing the window ends the session.
	cancel()
	return errors.Join(err, <-done)
}
