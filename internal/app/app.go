package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/keycalc/internal/config"
	"github.com/dshills/keycalc/internal/dispatcher"
	"github.com/dshills/keycalc/internal/engine"
	"github.com/dshills/keycalc/internal/event"
	"github.com/dshills/keycalc/internal/input/keymap"
	"github.com/dshills/keycalc/internal/plugin/lua"
)

// shutdownTimeout bounds how long Close waits for the event bus.
const shutdownTimeout = 5 * time.Second

// Application is the central coordinator for all calculator components.
type Application struct {
	mu sync.RWMutex

	// Core infrastructure
	bus    event.Bus
	config *config.Config
	logger *Logger
	log    *slog.Logger

	// Calculator components
	calc       *engine.Calculator
	dispatcher *dispatcher.Dispatcher
	keymap     *keymap.Map
	scripts    *lua.Host

	subs      *subscriptionManager
	unobserve func()

	// uiHandler is installed by the running front-end to apply ui changes.
	uiHandler func(config.UIConfig)

	ctx     context.Context
	cancel  context.CancelFunc
	quit    chan struct{}
	quitMu  sync.Mutex
	running atomic.Bool
	closed  atomic.Bool

	opts Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is an extra configuration file merged over the user file.
	ConfigPath string

	// ConfigDir overrides the user configuration directory.
	ConfigDir string

	// LogLevel overrides log.level when set.
	LogLevel string

	// LogFile overrides log.file when set.
	LogFile string

	// LogStderr, when set, also receives log records.
	LogStderr io.Writer

	// ScriptsDir overrides scripts.dir when set.
	ScriptsDir string

	// NoScripts disables Lua scripting regardless of configuration.
	NoScripts bool

	// NoWatch disables live config reload.
	NoWatch bool

	// SessionID sets the calculator session ID. Random when empty.
	SessionID string
}

// New creates an Application and initializes every component.
func New(opts Options) (*Application, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		quit:   make(chan struct{}),
		log:    slog.New(slog.DiscardHandler),
	}

	if err := newBootstrapper(app).bootstrap(); err != nil {
		cancel()
		return nil, err
	}
	return app, nil
}

// Quit asks the running front-end to stop. It is safe to call more than
// once and from any goroutine.
func (app *Application) Quit(reason string) {
	ev := event.NewEvent(event.TopicAppQuit, event.QuitRequested{Reason: reason}, "app")
	if err := app.bus.Publish(context.Background(), ev); err != nil {
		app.closeQuit()
	}
}

func (app *Application) closeQuit() {
	app.quitMu.Lock()
	defer app.quitMu.Unlock()
	select {
	case <-app.quit:
	default:
		close(app.quit)
	}
}

// Done is closed once Quit has been called.
func (app *Application) Done() <-chan struct{} {
	return app.quit
}

// Close shuts down every component in reverse initialization order.
func (app *Application) Close() error {
	if !app.closed.CompareAndSwap(false, true) {
		return nil
	}
	app.closeQuit()
	app.cancel()

	errs := make([]error, 0, 2)
	if app.subs != nil {
		app.subs.cleanup()
	}
	if app.unobserve != nil {
		app.unobserve()
	}
	if app.scripts != nil {
		if err := app.scripts.Close(); err != nil {
			errs = append(errs, NewComponentError("scripts", "close", err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.bus.Stop(ctx); err != nil {
		errs = append(errs, NewComponentError("event bus", "stop", err))
	}

	if m := app.dispatcher.Metrics(); m != nil {
		app.log.Info("shutdown complete",
			"dispatches", m.TotalDispatches(),
			"errors", m.TotalErrors(),
			"panics", m.TotalPanics(),
			"avg_dispatch", m.AverageDuration(),
		)
	}
	if err := app.logger.Close(); err != nil {
		errs = append(errs, NewComponentError("logger", "close", err))
	}
	return errors.Join(errs...)
}

// Bus returns the event bus.
func (app *Application) Bus() event.Bus {
	return app.bus
}

// Config returns the configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Logger returns the application logger.
func (app *Application) Logger() *Logger {
	return app.logger
}

// Calculator returns the calculator session.
func (app *Application) Calculator() *engine.Calculator {
	return app.calc
}

// Dispatcher returns the action dispatcher.
func (app *Application) Dispatcher() *dispatcher.Dispatcher {
	return app.dispatcher
}

// Keymap returns the resolved key bindings.
func (app *Application) Keymap() *keymap.Map {
	return app.keymap
}

// Scripts returns the Lua host, or nil when scripting is disabled.
func (app *Application) Scripts() *lua.Host {
	return app.scripts
}

// setUIHandler installs the front-end callback for ui changes and applies
// the current settings to it. A nil handler uninstalls.
func (app *Application) setUIHandler(fn func(config.UIConfig)) {
	app.mu.Lock()
	app.uiHandler = fn
	app.mu.Unlock()
	if fn != nil {
		fn(app.config.UI())
	}
}

func (app *Application) applyUI() {
	app.mu.RLock()
	fn := app.uiHandler
	app.mu.RUnlock()
	if fn != nil {
		fn(app.config.UI())
	}
}
