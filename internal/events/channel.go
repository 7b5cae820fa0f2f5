package events

import (
	"context"
)

// ChannelSink hands envelopes to a buffered channel so event delivery latency
// stays off the request path. Pair it with a Worker draining into the real
// sink.
type ChannelSink struct {
	ch chan Envelope
}

func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{ch: make(chan Envelope, buffer)}
}

// Publish enqueues the envelope, respecting context cancellation when the
// buffer is full.
func (s *ChannelSink) Publish(ctx context.Context, env Envelope) error {
	select {
	case s.ch <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Inbox exposes the receiving side for the Worker.
func (s *ChannelSink) Inbox() <-chan Envelope {
	return s.ch
}

// Worker consumes envelopes from a channel and forwards them to a sink. It
// keeps background delivery testable without wiring a broker.
type Worker struct {
	sink  Sink
	inbox <-chan Envelope
}

func NewWorker(sink Sink, inbox <-chan Envelope) *Worker {
	return &Worker{sink: sink, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-w.inbox:
			if err := w.sink.Publish(ctx, env); err != nil {
				return err
			}
		}
	}
}
