package app

import (
	"context"
	"errors"

	"github.com/dshills/keycalc/internal/config"
	"github.com/dshills/keycalc/internal/dispatcher"
	"github.com/dshills/keycalc/internal/engine"
	"github.com/dshills/keycalc/internal/event"
	"github.com/dshills/keycalc/internal/input/keymap"
	"github.com/dshills/keycalc/internal/plugin/lua"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	initOrder []string

	// configErr is reported once the logger exists.
	configErr error
}

// newBootstrapper creates a new bootstrapper for the application.
func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{
		app:       app,
		initOrder: make([]string, 0, 8),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []func() error{
		b.initEventBus,
		b.initConfig,
		b.initLogger,
		b.initCalculator,
		b.initDispatcher,
		b.initScripts,
		b.initKeymap,
		b.initSubscriptions,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			b.cleanup()
			return err
		}
	}
	b.app.log.Info("application initialized", "session", b.app.calc.ID(), "components", b.initOrder)
	return nil
}

// initEventBus initializes the event bus. Subscriber failures are logged
// once the logger is up.
func (b *bootstrapper) initEventBus() error {
	b.app.bus = event.NewBus(event.WithBusErrorHandler(b.app.logBusFailure))
	if err := b.app.bus.Start(); err != nil {
		return &InitError{Component: "event bus", Err: err}
	}
	b.initOrder = append(b.initOrder, "eventBus")
	return nil
}

// initConfig loads the configuration. Load errors are not fatal: the
// defaults stay in effect and the error is logged.
func (b *bootstrapper) initConfig() error {
	opts := b.app.opts
	configOpts := []config.Option{
		config.WithBus(b.app.bus),
		config.WithSchemaValidation(true),
		config.WithWatcher(!opts.NoWatch),
	}
	if opts.ConfigDir != "" {
		configOpts = append(configOpts, config.WithUserConfigDir(opts.ConfigDir))
	}
	if opts.ConfigPath != "" {
		configOpts = append(configOpts, config.WithFile(opts.ConfigPath))
	}

	b.app.config = config.New(configOpts...)
	b.configErr = b.app.config.Load(b.app.ctx)
	b.initOrder = append(b.initOrder, "config")
	return nil
}

// initLogger builds the logger from the log section and the overrides.
func (b *bootstrapper) initLogger() error {
	opts := b.app.opts
	lc := b.app.config.Log()

	cfg := LoggerConfig{
		Level:   lc.Level,
		File:    lc.File,
		Format:  lc.Format,
		Journal: lc.Journal,
		Stderr:  opts.LogStderr,
	}
	if opts.LogLevel != "" {
		cfg.Level = opts.LogLevel
	}
	if opts.LogFile != "" {
		cfg.File = opts.LogFile
	}

	logger, err := NewLogger(cfg)
	if err != nil {
		return &InitError{Component: "logger", Err: err}
	}
	b.app.logger = logger
	b.app.log = logger.WithComponent("app")
	b.app.config.SetLogger(logger.WithComponent("config"))
	b.initOrder = append(b.initOrder, "logger")

	if b.configErr != nil {
		b.app.log.Warn("config load failed, using defaults", "error", b.configErr)
	}
	return nil
}

// initCalculator creates the session and publishes its changes.
func (b *bootstrapper) initCalculator() error {
	app := b.app
	app.calc = engine.New(
		engine.WithID(app.opts.SessionID),
		engine.WithLogger(app.logger.WithComponent("engine")),
	)
	app.unobserve = app.calc.OnChange(app.publishChange)
	b.initOrder = append(b.initOrder, "calculator")
	return nil
}

// initDispatcher creates the dispatcher and registers the calculator.
func (b *bootstrapper) initDispatcher() error {
	app := b.app
	cfg := dispatcher.DefaultConfig().WithMetrics().WithPanicRecovery(true)

	log := app.logger.WithComponent("dispatcher")
	app.dispatcher = dispatcher.New(cfg, dispatcher.WithBus(app.bus), dispatcher.WithLogger(log))
	hook := dispatcher.NewLoggingHook(log)
	app.dispatcher.RegisterPreHook(hook)
	app.dispatcher.RegisterPostHook(hook)
	app.dispatcher.RegisterCalculator(app.calc)
	b.initOrder = append(b.initOrder, "dispatcher")
	return nil
}

// initScripts starts the Lua host and loads the scripts directory.
// Script errors are logged; a broken script never stops the calculator.
func (b *bootstrapper) initScripts() error {
	app := b.app
	sc := app.config.Scripts()
	if app.opts.NoScripts || !sc.Enabled {
		return nil
	}
	if app.opts.ScriptsDir != "" {
		sc.Dir = app.opts.ScriptsDir
	}

	logger := app.logger.WithComponent("scripts")
	host := lua.NewHost(app.calc,
		lua.WithBus(app.bus),
		lua.WithLogger(logger),
		lua.WithTimeout(sc.Timeout),
	)
	host.Start(app.ctx)
	if err := host.LoadDir(app.ctx, sc.Dir); err != nil {
		logger.Warn("loading scripts failed", "dir", sc.Dir, "error", err)
	}
	host.RegisterWith(app.dispatcher)

	app.scripts = host
	b.initOrder = append(b.initOrder, "scripts")
	logger.Info("scripts loaded", "dir", sc.Dir, "macros", host.Macros())
	return nil
}

// initKeymap resolves defaults, script bindings and user bindings.
func (b *bootstrapper) initKeymap() error {
	app := b.app
	kms := app.keymaps()
	m, err := keymap.New(kms...)
	if err != nil {
		app.log.Warn("invalid user keymap, ignoring it", "error", err)
		m, err = keymap.New(kms[:len(kms)-1]...)
		if err != nil {
			return &InitError{Component: "keymap", Err: err}
		}
	}
	app.keymap = m
	b.initOrder = append(b.initOrder, "keymap")
	return nil
}

// initSubscriptions wires bus subscriptions between components.
func (b *bootstrapper) initSubscriptions() error {
	sm := newSubscriptionManager(b.app)
	if err := sm.setupSubscriptions(); err != nil {
		sm.cleanup()
		return &InitError{Component: "subscriptions", Err: err}
	}
	b.app.subs = sm
	b.initOrder = append(b.initOrder, "subscriptions")
	return nil
}

// keymaps lists the keymaps in override order. The user keymap is last.
func (app *Application) keymaps() []*keymap.Keymap {
	kms := []*keymap.Keymap{keymap.Default()}
	if app.scripts != nil {
		kms = append(kms, app.scripts.Keymap())
	}
	return append(kms, keymap.FromConfig(app.config.Keymap()))
}

// reloadKeymap rebuilds the bindings in place.
func (app *Application) reloadKeymap() {
	if err := app.keymap.Replace(app.keymaps()...); err != nil {
		app.log.Warn("invalid user keymap, keeping previous bindings", "error", err)
		return
	}
	app.log.Info("keymap reloaded", "bindings", app.keymap.Len())
}

// cleanup performs cleanup in reverse initialization order.
// Called when bootstrap fails partway through.
func (b *bootstrapper) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i := len(b.initOrder) - 1; i >= 0; i-- {
		b.cleanupComponent(ctx, b.initOrder[i])
	}
}

// cleanupComponent cleans up a single component.
func (b *bootstrapper) cleanupComponent(ctx context.Context, component string) {
	app := b.app
	switch component {
	case "eventBus":
		if app.bus != nil {
			_ = app.bus.Stop(ctx)
		}
	case "logger":
		if app.logger != nil {
			_ = app.logger.Close()
		}
	case "calculator":
		if app.unobserve != nil {
			app.unobserve()
		}
	case "scripts":
		if app.scripts != nil {
			_ = app.scripts.Close()
			app.scripts = nil
		}
	case "subscriptions":
		if app.subs != nil {
			app.subs.cleanup()
		}
	}
}

func (app *Application) logBusFailure(ev any, err error) {
	if app.log == nil {
		return
	}
	var topic, source string
	if tp, ok := ev.(event.TopicProvider); ok {
		topic = tp.EventTopic().String()
	}
	if mp, ok := ev.(event.MetadataProvider); ok {
		source = mp.EventMetadata().Source
	}
	var pe *event.PanicError
	if errors.As(err, &pe) {
		app.log.Error("event subscriber panicked", "topic", topic, "source", source,
			"subscription", pe.Subscription, "value", pe.Value, "stack", string(pe.Stack))
		return
	}
	app.log.Warn("event subscriber failed", "topic", topic, "source", source, "error", err)
}
