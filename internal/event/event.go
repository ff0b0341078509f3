package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/keycalc/internal/event/topic"
)

// Event is a typed payload published under a topic. Values are copied
// to every subscriber and never modified after publishing.
type Event[T any] struct {
	Type     topic.Topic
	Payload  T
	Metadata Metadata
}

// Metadata is stamped on every event when it is created.
type Metadata struct {
	ID        string
	Timestamp time.Time
	// Source names the publishing component: "engine", "dispatcher",
	// "config", "script" or "script:<file>".
	Source string
}

func newMetadata(source string) Metadata {
	return Metadata{ID: uuid.NewString(), Timestamp: time.Now(), Source: source}
}

// NewEvent stamps payload with fresh metadata.
func NewEvent[T any](t topic.Topic, payload T, source string) Event[T] {
	return Event[T]{Type: t, Payload: payload, Metadata: newMetadata(source)}
}

func (e Event[T]) EventTopic() topic.Topic { return e.Type }
func (e Event[T]) EventMetadata() Metadata { return e.Metadata }

// TopicProvider is what Publish needs from a value: its topic.
type TopicProvider interface {
	EventTopic() topic.Topic
}

// MetadataProvider is implemented by Event and Envelope.
type MetadataProvider interface {
	EventMetadata() Metadata
}

// Envelope carries an untyped payload, such as a table a script emits.
type Envelope struct {
	Topic    topic.Topic
	Payload  any
	Metadata Metadata
}

// NewEnvelope stamps payload with fresh metadata.
func NewEnvelope(t topic.Topic, payload any, source string) Envelope {
	return Envelope{Topic: t, Payload: payload, Metadata: newMetadata(source)}
}

func (e Envelope) EventTopic() topic.Topic { return e.Topic }
func (e Envelope) EventMetadata() Metadata { return e.Metadata }
