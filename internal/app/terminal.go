package app

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/keycalc/internal/config"
	"github.com/dshills/keycalc/internal/dispatcher"
	"github.com/dshills/keycalc/internal/engine"
	"github.com/dshills/keycalc/internal/renderer"
	"github.com/dshills/keycalc/internal/renderer/backend"
)

// eventQueueSize bounds the backend events waiting for the main loop.
const eventQueueSize = 64

// Theme returns the renderer theme for a ui section. Invalid colors are
// logged and the base theme is used.
func (app *Application) Theme(ui config.UIConfig) renderer.Theme {
	base := renderer.DefaultTheme()
	if ui.Theme == "mono" {
		base = renderer.MonoTheme()
	}
	theme, err := base.WithColors(ui.Colors)
	if err != nil {
		app.log.Warn("invalid theme colors, using base theme", "theme", ui.Theme, "error", err)
		return base
	}
	return theme
}

// RunTerminal runs the full-screen calculator on b until quit, Quit, or
// ctx is cancelled. The backend is initialized and shut down here.
func (app *Application) RunTerminal(ctx context.Context, b backend.Backend) error {
	if app.closed.Load() {
		return ErrClosed
	}
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := b.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer b.Shutdown()

	redraw := make(chan struct{}, 1)
	requestRedraw := func() {
		select {
		case redraw <- struct{}{}:
		default:
		}
	}

	view := renderer.New(b, renderer.WithRedraw(requestRedraw))
	defer view.Close()

	app.setUIHandler(func(ui config.UIConfig) {
		view.SetTheme(app.Theme(ui))
		view.SetShowHistory(ui.ShowHistory)
		view.SetPressDuration(ui.Animation)
		requestRedraw()
	})
	defer app.setUIHandler(nil)

	app.dispatcher.SetFeedback(view)
	defer app.dispatcher.SetFeedback(nil)

	view.SetState(app.calc.State())
	stop := app.calc.OnChange(func(ch engine.Change) {
		view.SetState(ch.After)
		requestRedraw()
	})
	defer stop()
	view.Render()

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(loopCtx)
	events := make(chan backend.Event, eventQueueSize)

	g.Go(func() error {
		pumpEvents(gctx, b, events)
		return nil
	})
	g.Go(func() error {
		app.watchConfig(gctx)
		return nil
	})
	g.Go(func() error {
		// PollEvent blocks; an interrupt lets the pump see cancellation.
		defer func() {
			cancel()
			b.PostEvent(backend.Event{Type: backend.EventInterrupt})
		}()

		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-app.quit:
				return ErrQuit
			case <-redraw:
				view.Render()
			case ev := <-events:
				if err := app.handleBackendEvent(gctx, view, ev); err != nil {
					return err
				}
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, ErrQuit) || errors.Is(err, context.Canceled) {
		app.log.Info("terminal session ended", "frames", view.FrameCount())
		return nil
	}
	return err
}

// pumpEvents forwards backend events until ctx is done.
func pumpEvents(ctx context.Context, b backend.Backend, events chan<- backend.Event) {
	for {
		ev := b.PollEvent()
		if ctx.Err() != nil {
			return
		}
		if ev.Type == backend.EventNone || ev.Type == backend.EventInterrupt {
			continue
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// watchConfig reloads the configuration on file changes until ctx is done.
func (app *Application) watchConfig(ctx context.Context) {
	err := app.config.Watch(ctx)
	switch {
	case err == nil, errors.Is(err, config.ErrWatcherDisabled), errors.Is(err, context.Canceled):
	default:
		app.log.Warn("config watcher stopped", "error", err)
	}
}

// handleBackendEvent routes one backend event. It returns ErrQuit when a
// quit action was dispatched.
func (app *Application) handleBackendEvent(ctx context.Context, view *renderer.View, ev backend.Event) error {
	switch ev.Type {
	case backend.EventResize:
		view.Resize(ev.Width, ev.Height)
		view.Render()
		return nil

	case backend.EventKey:
		kev, ok := ConvertKey(ev)
		if !ok {
			return nil
		}
		return app.report(app.HandleKey(ctx, kev, dispatcher.SourceKeyboard))

	case backend.EventMouse:
		x, y, ok := ev.Click()
		if !ok {
			return nil
		}
		c, ok := view.ControlAt(x, y)
		if !ok {
			return nil
		}
		return app.report(app.HandleControl(ctx, c, dispatcher.SourceMouse))

	default:
		return nil
	}
}

// report logs failed dispatches and turns quit results into ErrQuit.
func (app *Application) report(res dispatcher.Result) error {
	switch {
	case res.Status == dispatcher.StatusQuit:
		return ErrQuit
	case errors.Is(res.Err, ErrUnboundKey):
		app.log.Debug("key not bound", "error", res.Err)
	case res.IsError():
		app.log.Warn("action failed", "error", res.Err)
	}
	return nil
}
