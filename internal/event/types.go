package event

import (
	"context"

	"github.com/dshills/keycalc/internal/event/topic"
)

// Priority orders the subscriptions of one topic; lower runs first.
type Priority int

// Priorities used in the calculator. Views that must redraw on a change
// take PriorityCritical; script hooks and log taps take PriorityLow.
const (
	PriorityCritical Priority = 0
	PriorityHigh     Priority = 100
	PriorityNormal   Priority = 200
	PriorityLow      Priority = 300
)

func (p Priority) String() string {
	switch {
	case p <= PriorityCritical:
		return "critical"
	case p <= PriorityHigh:
		return "high"
	case p <= PriorityNormal:
		return "normal"
	}
	return "low"
}

// DeliveryMode selects where a subscriber runs.
type DeliveryMode int

const (
	// DeliverySync runs the handler inside Publish.
	DeliverySync DeliveryMode = iota
	// DeliveryAsync hands the event to the bus workers.
	DeliveryAsync
)

func (m DeliveryMode) String() string {
	switch m {
	case DeliverySync:
		return "sync"
	case DeliveryAsync:
		return "async"
	}
	return "unknown"
}

// Handler receives published values. It type-asserts the ones it wants.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event any) error

func (f HandlerFunc) Handle(ctx context.Context, event any) error { return f(ctx, event) }

// AsHandler adapts a handler for one payload type. Values of any other
// type are ignored.
func AsHandler[T any](fn func(ctx context.Context, event Event[T]) error) Handler {
	return HandlerFunc(func(ctx context.Context, ev any) error {
		if e, ok := ev.(Event[T]); ok {
			return fn(ctx, e)
		}
		return nil
	})
}

// FilterFunc reports whether a matched value should still be delivered.
type FilterFunc func(event any) bool

// ExcludeTopic drops values published under pattern.
func ExcludeTopic(pattern topic.Topic) FilterFunc {
	return func(ev any) bool {
		return !extractTopic(ev).Matches(pattern)
	}
}

// FromSource keeps values whose metadata names source.
func FromSource(source string) FilterFunc {
	return func(ev any) bool {
		mp, ok := ev.(MetadataProvider)
		return ok && mp.EventMetadata().Source == source
	}
}

// ErrorHandler receives every subscriber failure: a returned error, or
// a *PanicError for a recovered panic.
type ErrorHandler func(event any, err error)

// Stats is a snapshot of the bus counters.
type Stats struct {
	EventsPublished   uint64
	EventsDelivered   uint64
	EventsDropped     uint64
	HandlerErrors     uint64
	HandlerPanics     uint64
	ActiveSubscribers int
	QueueDepth        int
}
