package event

import (
	"sync/atomic"

	"github.com/dshills/keycalc/internal/event/topic"
)

// Subscription is the handle Subscribe returns.
type Subscription interface {
	ID() string
	// Topic is the pattern the subscription was made with.
	Topic() topic.Topic
	IsActive() bool

	// Pause and Resume suspend delivery without losing the place in the
	// priority order.
	Pause()
	Resume()
	// Cancel stops delivery for good; Unsubscribe also removes it.
	Cancel()
}

// SubscriptionOption tunes one subscription.
type SubscriptionOption func(*subOptions)

type subOptions struct {
	priority Priority
	mode     DeliveryMode
	filter   FilterFunc
	once     bool
}

func WithPriority(p Priority) SubscriptionOption {
	return func(o *subOptions) { o.priority = p }
}

func WithDeliveryMode(m DeliveryMode) SubscriptionOption {
	return func(o *subOptions) { o.mode = m }
}

// WithFilter skips matched values for which f returns false.
func WithFilter(f FilterFunc) SubscriptionOption {
	return func(o *subOptions) { o.filter = f }
}

// WithOnce removes the subscription after its first successful delivery.
func WithOnce() SubscriptionOption {
	return func(o *subOptions) { o.once = true }
}

type subState int32

const (
	subActive subState = iota
	subPaused
	subCancelled
)

type subscription struct {
	id      string
	topic   topic.Topic
	handler Handler
	opts    subOptions
	state   atomic.Int32
}

func newSubscription(id string, t topic.Topic, h Handler, opts []SubscriptionOption) *subscription {
	s := &subscription{
		id:      id,
		topic:   t,
		handler: h,
		opts:    subOptions{priority: PriorityNormal, mode: DeliverySync},
	}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

func (s *subscription) ID() string         { return s.id }
func (s *subscription) Topic() topic.Topic { return s.topic }
func (s *subscription) IsActive() bool     { return subState(s.state.Load()) == subActive }
func (s *subscription) Cancel()            { s.state.Store(int32(subCancelled)) }

func (s *subscription) Pause() {
	s.state.CompareAndSwap(int32(subActive), int32(subPaused))
}

func (s *subscription) Resume() {
	s.state.CompareAndSwap(int32(subPaused), int32(subActive))
}

// wants reports whether ev should be handed to the handler now.
func (s *subscription) wants(ev any) bool {
	return s.IsActive() && (s.opts.filter == nil || s.opts.filter(ev))
}
