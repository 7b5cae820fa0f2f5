// Package store provides staff persistence: an in-memory implementation for
// tests and local runs, and a Postgres implementation for production.
package store

import (
	"context"
	"sync"

	"agricert/internal/staff/models"
	id "agricert/pkg/domain"
	"agricert/pkg/platform/sentinel"
)

// InMemory keeps staff in maps guarded by a mutex. Values are copied on the
// way in and out.
type InMemory struct {
	mu      sync.RWMutex
	staff   map[id.UserID]models.Staff
	byEmail map[string]id.UserID
}

func NewInMemory() *InMemory {
	return &InMemory{
		staff:   make(map[id.UserID]models.Staff),
		byEmail: make(map[string]id.UserID),
	}
}

func (s *InMemory) Create(_ context.Context, member *models.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.staff[member.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	if _, exists := s.byEmail[member.Email]; exists {
		return sentinel.ErrAlreadyUsed
	}
	member.Version = 1
	s.staff[member.ID] = *member
	s.byEmail[member.Email] = member.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, staffID id.UserID) (*models.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.staff[staffID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := stored
	return &found, nil
}

func (s *InMemory) Update(_ context.Context, member *models.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.staff[member.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if stored.Version != member.Version {
		return sentinel.ErrConflict
	}
	member.Version++
	s.staff[member.ID] = *member
	return nil
}
