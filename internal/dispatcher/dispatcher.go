package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/dshills/keycalc/internal/event"
)

// Dispatcher routes actions to handlers and coordinates execution.
type Dispatcher struct {
	mu sync.RWMutex

	handlers map[Kind]Handler
	config   Config
	metrics  *Metrics

	bus      event.Bus
	feedback Feedback
	logger   *slog.Logger

	preHooks  []PreDispatchHook
	postHooks []PostDispatchHook
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithBus publishes an input.control.pressed event for every action that
// carries a control.
func WithBus(bus event.Bus) Option {
	return func(d *Dispatcher) {
		d.bus = bus
	}
}

// WithLogger sets the logger for failures that do not change an action's
// result.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithFeedback reports the originating control of every action.
func WithFeedback(f Feedback) Option {
	return func(d *Dispatcher) {
		d.feedback = f
	}
}

// New creates a new dispatcher with the given configuration.
func New(config Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[Kind]Handler),
		config:   config,
		logger:   slog.New(slog.DiscardHandler),
	}
	if config.Metrics {
		d.metrics = NewMetrics()
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewWithDefaults creates a new dispatcher with default configuration.
func NewWithDefaults(opts ...Option) *Dispatcher {
	return New(DefaultConfig(), opts...)
}

// SetFeedback replaces the press feedback. Front-ends that create their
// view after the dispatcher use it.
func (d *Dispatcher) SetFeedback(f Feedback) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.feedback = f
}

// RegisterHandler registers the handler for an action kind, replacing any
// previous one.
func (d *Dispatcher) RegisterHandler(kind Kind, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = h
}

// RegisterHandlerFunc registers a handler function for an action kind.
func (d *Dispatcher) RegisterHandlerFunc(kind Kind, fn func(context.Context, Action) Result) {
	d.RegisterHandler(kind, HandlerFunc(fn))
}

// UnregisterHandler removes the handler for an action kind.
func (d *Dispatcher) UnregisterHandler(kind Kind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.handlers, kind)
}

// HasHandler reports whether a handler is registered for kind.
func (d *Dispatcher) HasHandler(kind Kind) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.handlers[kind]
	return ok
}

// RegisterPreHook registers a pre-dispatch hook.
func (d *Dispatcher) RegisterPreHook(hook PreDispatchHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.preHooks = append(d.preHooks, hook)
}

// RegisterPostHook registers a post-dispatch hook.
func (d *Dispatcher) RegisterPostHook(hook PostDispatchHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.postHooks = append(d.postHooks, hook)
}

// DispatchString parses an action name and dispatches it.
func (d *Dispatcher) DispatchString(ctx context.Context, name, control, source string) Result {
	action, err := ParseAction(name)
	if err != nil {
		return Error(err)
	}
	return d.Dispatch(ctx, action.WithControl(control).WithSource(source))
}

// Dispatch executes an action synchronously.
func (d *Dispatcher) Dispatch(ctx context.Context, action Action) Result {
	start := time.Now()

	d.mu.RLock()
	h := d.handlers[action.Kind]
	pre := append([]PreDispatchHook(nil), d.preHooks...)
	post := append([]PostDispatchHook(nil), d.postHooks...)
	feedback := d.feedback
	d.mu.RUnlock()

	for _, hook := range pre {
		if !hook.PreDispatch(ctx, &action) {
			return Cancelled("cancelled by hook")
		}
	}

	var result Result
	switch {
	case h == nil:
		result = Error(fmt.Errorf("%w: %s", ErrNoHandler, action.Kind))
	case d.config.RecoverPanics:
		result = d.executeWithRecovery(ctx, h, action)
	default:
		result = h.Handle(ctx, action)
	}

	if action.Control != "" {
		if feedback != nil {
			feedback.Press(action.Control)
		}
		d.publishPress(ctx, action)
	}

	for _, hook := range post {
		hook.PostDispatch(ctx, action, &result)
	}

	if d.metrics != nil {
		d.metrics.record(action, time.Since(start), result.Status)
	}

	return result
}

func (d *Dispatcher) executeWithRecovery(ctx context.Context, h Handler, action Action) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Error(&PanicError{Action: action, Value: r, Stack: debug.Stack()})
			if d.metrics != nil {
				d.metrics.recordPanic()
			}
		}
	}()

	return h.Handle(ctx, action)
}

func (d *Dispatcher) publishPress(ctx context.Context, action Action) {
	if d.bus == nil || !d.config.PublishPresses {
		return
	}
	payload := event.ControlPressed{
		Control: action.Control,
		Action:  action.String(),
		Source:  action.Source,
	}
	if err := d.bus.Publish(ctx, event.NewEvent(event.TopicControlPressed, payload, "dispatcher")); err != nil {
		d.logger.Debug("press event not published", "control", action.Control, "action", action.String(), "error", err)
	}
}

// Metrics returns the metrics collector (may be nil if disabled).
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Config returns the dispatcher configuration.
func (d *Dispatcher) Config() Config {
	return d.config
}
