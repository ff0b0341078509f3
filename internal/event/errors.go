package event

import (
	"errors"
	"fmt"

	"github.com/dshills/keycalc/internal/event/topic"
)

// Bus errors.
var (
	ErrBusNotRunning     = errors.New("event: bus not running")
	ErrBusAlreadyRunning = errors.New("event: bus already running")

	// ErrQueueFull is returned by Publish when an async subscriber's queue
	// has no room; the event is dropped for that subscriber only.
	ErrQueueFull = errors.New("event: async queue full")

	// ErrInvalidEvent means the published value carries no topic.
	ErrInvalidEvent = errors.New("event: value has no topic")

	ErrInvalidTopic         = errors.New("event: invalid topic")
	ErrSubscriptionNotFound = errors.New("event: subscription not found")
	ErrNilHandler           = errors.New("event: nil handler")

	// ErrHandlerPanic matches every *PanicError.
	ErrHandlerPanic = errors.New("event: handler panicked")
)

// PanicError is passed to the bus failure callback when a subscriber
// panics. Delivery to the remaining subscribers continues.
type PanicError struct {
	Topic        topic.Topic
	Subscription string
	Value        any
	Stack        []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("event: subscriber %s panicked on %s: %v", e.Subscription, e.Topic, e.Value)
}

func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}
