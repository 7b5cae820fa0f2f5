package events

import (
	"context"
	"sync"
)

// InMemorySink captures envelopes for tests and local runs.
type InMemorySink struct {
	mu        sync.Mutex
	envelopes []Envelope
}

func NewInMemorySink() *InMemorySink {
	return &InMemorySink{}
}

func (s *InMemorySink) Publish(_ context.Context, env Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelopes = append(s.envelopes, env)
	return nil
}

// Envelopes returns a copy of everything published so far.
func (s *InMemorySink) Envelopes() []Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Envelope, len(s.envelopes))
	copy(out, s.envelopes)
	return out
}

// Last returns the most recent envelope, if any.
func (s *InMemorySink) Last() (Envelope, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.envelopes) == 0 {
		return Envelope{}, false
	}
	return s.envelopes[len(s.envelopes)-1], true
}
