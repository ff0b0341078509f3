package lua

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keycalc/internal/dispatcher"
	"github.com/dshills/keycalc/internal/engine"
	"github.com/dshills/keycalc/internal/event"
	"github.com/dshills/keycalc/internal/input/keymap"
)

// HostOption configures a Host.
type HostOption func(*Host)

// WithBus publishes printed lines as script.output events and enables
// calc.on and calc.emit.
func WithBus(bus event.Bus) HostOption {
	return func(h *Host) { h.bus = bus }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) HostOption {
	return func(h *Host) { h.logger = logger }
}

// WithTimeout sets the execution timeout of each script and macro run.
func WithTimeout(d time.Duration) HostOption {
	return func(h *Host) { h.timeout = d }
}

// WithQueueSize sets the executor queue length.
func WithQueueSize(n int) HostOption {
	return func(h *Host) { h.queueSize = n }
}

type macro struct {
	fn     *lua.LFunction
	script string
}

// Host runs calculator scripts for one session.
type Host struct {
	calc   *engine.Calculator
	bus    event.Bus
	logger *slog.Logger

	timeout   time.Duration
	queueSize int

	state   *State
	exec    *Executor
	started atomic.Bool

	mu       sync.RWMutex
	macros   map[string]macro
	bindings []keymap.Binding
	subs     []event.Subscription

	// current names the script or macro running on the executor goroutine.
	current string
}

// NewHost creates a host driving calc. Call Start before loading scripts.
func NewHost(calc *engine.Calculator, opts ...HostOption) *Host {
	h := &Host{
		calc:    calc,
		logger:  slog.New(slog.DiscardHandler),
		timeout: DefaultExecutionTimeout,
		macros:  make(map[string]macro),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.state = NewState(WithExecutionTimeout(h.timeout), WithOutput(h.print))
	h.state.RegisterModule(ModuleName, h.calcModule())
	h.exec = NewExecutor(h.queueSize)
	return h
}

// Start runs the executor until ctx is done or Close is called.
func (h *Host) Start(ctx context.Context) {
	if h.started.Swap(true) {
		return
	}
	go h.exec.Run(ctx)
}

// Close drops the script event hooks, stops the executor and releases
// the Lua state.
func (h *Host) Close() error {
	h.mu.Lock()
	subs := h.subs
	h.subs = nil
	h.mu.Unlock()
	for _, sub := range subs {
		_ = h.bus.Unsubscribe(sub)
	}

	h.exec.Close()
	st := h.exec.Stats()
	h.logger.Debug("lua host closed", "completed", st.Completed, "failed", st.Failed, "rejected", st.Rejected)
	return h.state.Close()
}

// Stats reports the work done on the script goroutine so far.
func (h *Host) Stats() ExecutorStats {
	return h.exec.Stats()
}

// Hooks is the number of calc.on subscriptions scripts have made.
func (h *Host) Hooks() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// LoadString runs a script chunk. Macros and bindings it declares are
// recorded under name.
func (h *Host) LoadString(ctx context.Context, name, code string) error {
	if !h.started.Load() {
		return &ScriptError{Script: name, Err: ErrNotStarted}
	}
	err := h.exec.Execute(ctx, func() error {
		h.current = name
		defer func() { h.current = "" }()
		return h.state.DoString(ctx, name, code)
	})
	if err != nil {
		return &ScriptError{Script: name, Err: err}
	}
	h.logger.Debug("script loaded", "script", name)
	return nil
}

// LoadFile reads and runs a script file.
func (h *Host) LoadFile(ctx context.Context, path string) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return &ScriptError{Script: path, Err: err}
	}
	return h.LoadString(ctx, filepath.Base(path), string(code))
}

// LoadDir loads every *.lua file of dir in name order. A missing directory
// is not an error. Failing scripts are skipped and reported together.
func (h *Host) LoadDir(ctx context.Context, dir string) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.lua"))
	if err != nil {
		return fmt.Errorf("scripts: %w", err)
	}
	slices.Sort(paths)

	var errs []error
	for _, path := range paths {
		if err := h.LoadFile(ctx, path); err != nil {
			h.logger.Warn("script failed to load", "path", path, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunMacro calls a macro and returns its results converted to Go values.
func (h *Host) RunMacro(ctx context.Context, name string) ([]any, error) {
	h.mu.RLock()
	m, ok := h.macros[name]
	h.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMacro, name)
	}
	if !h.started.Load() {
		return nil, &ScriptError{Script: m.script, Macro: name, Err: ErrNotStarted}
	}

	var out []any
	err := h.exec.Execute(ctx, func() error {
		h.current = m.script
		defer func() { h.current = "" }()

		results, err := h.state.CallFunction(ctx, m.fn)
		if err != nil {
			return err
		}
		for _, r := range results {
			out = append(out, goValue(r))
		}
		return nil
	})
	if err != nil {
		return nil, &ScriptError{Script: m.script, Macro: name, Err: err}
	}
	return out, nil
}

// Macros returns the defined macro names, sorted.
func (h *Host) Macros() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := lo.Keys(h.macros)
	slices.Sort(names)
	return names
}

// Keymap returns the key bindings declared by scripts.
func (h *Host) Keymap() *keymap.Keymap {
	h.mu.RLock()
	defer h.mu.RUnlock()

	km := keymap.NewKeymap("scripts").WithSource("script")
	km.Bindings = slices.Clone(h.bindings)
	return km
}

// RegisterWith installs the handler for "script:<macro>" actions.
func (h *Host) RegisterWith(d *dispatcher.Dispatcher) {
	d.RegisterHandlerFunc(dispatcher.KindScript, func(ctx context.Context, a dispatcher.Action) dispatcher.Result {
		before := h.calc.State()
		if _, err := h.RunMacro(ctx, a.Arg); err != nil {
			return dispatcher.Error(err)
		}
		if h.calc.State() == before {
			return dispatcher.NoOp()
		}
		return dispatcher.OK()
	})
}

// defineMacro runs on the executor goroutine.
func (h *Host) defineMacro(name string, fn *lua.LFunction) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := h.macros[name]; ok && prev.script != h.current {
		h.logger.Info("macro redefined", "macro", name, "script", h.current, "previous", prev.script)
	}
	h.macros[name] = macro{fn: fn, script: h.current}
}

func (h *Host) addBinding(b keymap.Binding) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.bindings = lo.Reject(h.bindings, func(existing keymap.Binding, _ int) bool {
		return existing.Keys == b.Keys
	})
	h.bindings = append(h.bindings, b)
}

// print runs on the executor goroutine.
func (h *Host) print(line string) {
	h.logger.Info("script output", "script", h.current, "line", line)
	if h.bus == nil {
		return
	}
	payload := event.ScriptOutput{Script: h.current, Line: line}
	if err := h.bus.Publish(context.Background(), event.NewEvent(event.TopicScriptOutput, payload, "script")); err != nil {
		h.logger.Debug("script output not published", "error", err)
	}
}
