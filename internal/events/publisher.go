package events

import (
	"context"
	"log/slog"

	"agricert/pkg/requestcontext"
)

// Publisher emits domain events after an aggregate save has committed.
//
// Publishing is at-least-attempted: a sink failure is logged and counted but
// never rolls back the already-committed state change, so callers must not
// assume synchronous delivery.
type Publisher struct {
	sink    Sink
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets the logger used to report publish failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// NewPublisher wraps a sink. A nil sink yields a publisher that drops events,
// which keeps wiring simple in tests that do not care about them.
func NewPublisher(sink Sink, opts ...Option) *Publisher {
	p := &Publisher{sink: sink}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit converts the event to its envelope, stamps the actor context from the
// request, and attempts delivery once.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if p.sink == nil {
		return
	}
	env := ToEnvelope(event)
	env.Actor = Actor{
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
	}
	if err := p.sink.Publish(ctx, env); err != nil {
		if p.metrics != nil {
			p.metrics.IncPublishFailures(env.EventType)
		}
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "event publish failed",
				"event_type", env.EventType,
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
		return
	}
	if p.metrics != nil {
		p.metrics.IncPublished(env.EventType)
	}
}
