package event

import (
	"context"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/keycalc/internal/event/topic"
)

// Bus is the central event bus interface.
type Bus interface {
	// Publish delivers an event to every matching subscription. Sync
	// subscriptions run before Publish returns; async ones are queued.
	Publish(ctx context.Context, event any) error

	Subscribe(topicPattern topic.Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error)
	SubscribeFunc(topicPattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error)
	Unsubscribe(sub Subscription) error

	Start() error
	Stop(ctx context.Context) error
	Pause()
	Resume()

	Stats() Stats
	IsRunning() bool
	IsPaused() bool
}

type asyncTask struct {
	ctx   context.Context
	event any
	sub   *subscription
}

// bus is the default Bus implementation.
type bus struct {
	config busConfig

	subsMu sync.RWMutex
	subs   []*subscription

	queueMu sync.RWMutex
	queue   chan asyncTask
	wg      sync.WaitGroup

	running atomic.Bool
	paused  atomic.Bool

	eventsPublished atomic.Uint64
	eventsDelivered atomic.Uint64
	eventsDropped   atomic.Uint64
	handlerErrors   atomic.Uint64
	handlerPanics   atomic.Uint64
}

// NewBus creates a new event bus with the given options.
func NewBus(opts ...BusOption) Bus {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &bus{config: config}
}

// Start starts the async worker pool.
func (b *bus) Start() error {
	b.queueMu.Lock()
	defer b.queueMu.Unlock()

	if b.running.Load() {
		return ErrBusAlreadyRunning
	}

	b.queue = make(chan asyncTask, b.config.queueSize)
	for range b.config.workers {
		b.wg.Add(1)
		go b.worker(b.queue)
	}

	b.running.Store(true)
	return nil
}

// Stop stops the bus and waits for queued async events to drain or for
// ctx to be done.
func (b *bus) Stop(ctx context.Context) error {
	b.queueMu.Lock()
	if !b.running.Swap(false) {
		b.queueMu.Unlock()
		return ErrBusNotRunning
	}
	close(b.queue)
	b.queueMu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pause temporarily stops event delivery. Events published while paused
// are dropped.
func (b *bus) Pause() {
	b.paused.Store(true)
}

// Resume restarts event delivery after a pause.
func (b *bus) Resume() {
	b.paused.Store(false)
}

// IsRunning returns true if the bus is running.
func (b *bus) IsRunning() bool {
	return b.running.Load()
}

// IsPaused returns true if the bus is paused.
func (b *bus) IsPaused() bool {
	return b.paused.Load()
}

func (b *bus) Publish(ctx context.Context, event any) error {
	if !b.running.Load() {
		return ErrBusNotRunning
	}
	if b.paused.Load() {
		return nil
	}

	eventTopic := extractTopic(event)
	if eventTopic == "" {
		return ErrInvalidEvent
	}

	subs := b.match(eventTopic)
	if len(subs) == 0 {
		return nil
	}

	b.eventsPublished.Add(1)

	var queueErr error
	for _, sub := range subs {
		if !sub.wants(event) {
			continue
		}

		if sub.opts.mode == DeliveryAsync {
			if err := b.enqueue(asyncTask{ctx: context.WithoutCancel(ctx), event: event, sub: sub}); err != nil {
				b.eventsDropped.Add(1)
				queueErr = err
			}
			continue
		}

		b.deliver(ctx, event, sub)
	}

	return queueErr
}

func (b *bus) enqueue(task asyncTask) error {
	b.queueMu.RLock()
	defer b.queueMu.RUnlock()

	if !b.running.Load() {
		return ErrBusNotRunning
	}

	select {
	case b.queue <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

func (b *bus) worker(queue <-chan asyncTask) {
	defer b.wg.Done()

	for task := range queue {
		ctx := task.ctx
		var cancel context.CancelFunc = func() {}
		if b.config.asyncTimeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, b.config.asyncTimeout)
		}
		b.deliver(ctx, task.event, task.sub)
		cancel()
	}
}

// deliver runs one handler with panic isolation and bookkeeping.
func (b *bus) deliver(ctx context.Context, event any, sub *subscription) {
	ok := b.invoke(ctx, event, sub)
	if ok {
		b.eventsDelivered.Add(1)
		if sub.opts.once {
			sub.Cancel()
			b.remove(sub.id)
		}
	}
}

func (b *bus) invoke(ctx context.Context, event any, sub *subscription) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			b.fail(event, &PanicError{
				Topic:        extractTopic(event),
				Subscription: sub.id,
				Value:        r,
				Stack:        debug.Stack(),
			})
			ok = false
		}
	}()

	if err := sub.handler.Handle(ctx, event); err != nil {
		b.handlerErrors.Add(1)
		b.fail(event, err)
		return false
	}
	return true
}

func (b *bus) fail(event any, err error) {
	if b.config.errorHandler != nil {
		b.config.errorHandler(event, err)
	}
}

// Subscribe creates a new subscription for the given topic pattern.
func (b *bus) Subscribe(topicPattern topic.Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !topicPattern.IsValid() {
		return nil, ErrInvalidTopic
	}

	sub := newSubscription(uuid.NewString(), topicPattern, handler, opts)

	b.subsMu.Lock()
	defer b.subsMu.Unlock()

	b.subs = append(b.subs, sub)
	sort.SliceStable(b.subs, func(i, j int) bool {
		return b.subs[i].opts.priority < b.subs[j].opts.priority
	})

	return sub, nil
}

// SubscribeFunc is a convenience method for subscribing with a function handler.
func (b *bus) SubscribeFunc(topicPattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(topicPattern, fn, opts...)
}

// Unsubscribe removes a subscription.
func (b *bus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}

	sub.Cancel()
	if !b.remove(sub.ID()) {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (b *bus) remove(id string) bool {
	b.subsMu.Lock()
	defer b.subsMu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// match returns the active subscriptions whose pattern matches eventTopic,
// in priority order.
func (b *bus) match(eventTopic topic.Topic) []*subscription {
	b.subsMu.RLock()
	defer b.subsMu.RUnlock()

	var result []*subscription
	for _, s := range b.subs {
		if s.IsActive() && eventTopic.Matches(s.topic) {
			result = append(result, s)
		}
	}
	return result
}

// Stats returns current bus statistics.
func (b *bus) Stats() Stats {
	b.subsMu.RLock()
	active := 0
	for _, s := range b.subs {
		if s.IsActive() {
			active++
		}
	}
	b.subsMu.RUnlock()

	b.queueMu.RLock()
	depth := len(b.queue)
	b.queueMu.RUnlock()

	return Stats{
		EventsPublished:   b.eventsPublished.Load(),
		EventsDelivered:   b.eventsDelivered.Load(),
		EventsDropped:     b.eventsDropped.Load(),
		HandlerErrors:     b.handlerErrors.Load(),
		HandlerPanics:     b.handlerPanics.Load(),
		ActiveSubscribers: active,
		QueueDepth:        depth,
	}
}

func extractTopic(event any) topic.Topic {
	if tp, ok := event.(TopicProvider); ok {
		return tp.EventTopic()
	}
	return ""
}
