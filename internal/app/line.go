package app

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/dshills/keycalc/internal/config"
	"github.com/dshills/keycalc/internal/dispatcher"
	"github.com/dshills/keycalc/internal/engine"
	"github.com/dshills/keycalc/internal/event"
	"github.com/dshills/keycalc/internal/input/key"
	"github.com/dshills/keycalc/internal/renderer/live"
)

// RunLine reads key sequences from in, one line at a time, and keeps a
// one-line readout current on out. Each line is split into key specs and
// typed characters, so "12+7 enter" presses five keys. It returns at end
// of input, on a quit action, on Quit, or when ctx is cancelled.
func (app *Application) RunLine(ctx context.Context, in io.Reader, out io.Writer) error {
	if app.closed.Load() {
		return ErrClosed
	}
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	// Stops the reader when the loop ends before end of input.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := live.New(out)
	app.setUIHandler(func(ui config.UIConfig) {
		w.SetShowHistory(ui.ShowHistory)
	})
	defer app.setUIHandler(nil)

	stop := app.calc.OnChange(func(ch engine.Change) {
		if err := w.Update(ch.After); err != nil {
			app.log.Debug("live update failed", "error", err)
		}
	})
	defer stop()

	sub, err := app.bus.SubscribeFunc(event.TopicScriptOutput, func(_ context.Context, ev any) error {
		if e, ok := ev.(event.Event[event.ScriptOutput]); ok {
			return w.Message("%s: %s", e.Payload.Script, e.Payload.Line)
		}
		return nil
	})
	if err == nil {
		defer app.bus.Unsubscribe(sub)
	}

	if err := w.Update(app.calc.State()); err != nil {
		return err
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-app.quit:
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if app.runLine(ctx, w, line) {
				return nil
			}
		}
	}
}

// runLine presses every key of one input line. It reports whether a quit
// action was dispatched.
func (app *Application) runLine(ctx context.Context, w *live.Writer, line string) bool {
	for _, kev := range key.ParseSequence(line) {
		res := app.HandleKey(ctx, kev, dispatcher.SourceLine)
		switch {
		case res.Status == dispatcher.StatusQuit:
			return true
		case errors.Is(res.Err, ErrUnboundKey):
			_ = w.Message("no binding for %s", kev)
		case res.IsError():
			_ = w.Message("error: %v", res.Err)
		}
	}
	return false
}
