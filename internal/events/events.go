// Package events defines the domain-event contract between use cases and
// downstream consumers.
//
// Lifecycle transitions emit immutable event values. The orchestrating use
// case converts them to a transport-neutral Envelope and hands them to a Sink.
// Delivery guarantees beyond "attempted once per transition" belong to the
// sink implementation.
package events

import (
	"context"
	"time"
)

// Event is an immutable record of a completed state transition. Implementors
// are plain value structs; all three methods must be pure.
type Event interface {
	// EventType is the stable type tag, e.g. "farm_submitted_for_review".
	EventType() string
	// EventData returns the identifying fields of the aggregate involved.
	EventData() map[string]any
	// OccurredAt is the transition time bound when the event was built.
	OccurredAt() time.Time
}

// Actor identifies the request behind an event: the request id plus the
// client metadata the middleware recorded for it.
type Actor struct {
	RequestID string `json:"request_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Envelope is the published payload shape.
type Envelope struct {
	EventType  string         `json:"event_type"`
	Data       map[string]any `json:"data"`
	Actor      Actor          `json:"actor,omitzero"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// ToEnvelope is the pure conversion from an event value to its payload.
func ToEnvelope(e Event) Envelope {
	return Envelope{
		EventType:  e.EventType(),
		Data:       e.EventData(),
		OccurredAt: e.OccurredAt(),
	}
}

// Sink accepts published envelopes. Implementations: Kafka producer, buffered
// channel feeding a worker, in-memory capture for tests.
type Sink interface {
	Publish(ctx context.Context, env Envelope) error
}
