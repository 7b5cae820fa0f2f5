// Package store provides application persistence: an in-memory implementation
// for tests and local runs, and a Postgres implementation for production.
//
// Both enforce optimistic concurrency through the Version column; a stale
// Update fails with sentinel.ErrConflict.
package store

import (
	"context"
	"sort"
	"sync"

	"agricert/internal/application/models"
	id "agricert/pkg/domain"
	"agricert/pkg/platform/sentinel"
)

// InMemory keeps applications in a map guarded by a mutex. Values are copied
// on the way in and out so callers never share aggregate memory.
type InMemory struct {
	mu   sync.RWMutex
	apps map[id.ApplicationID]models.Application
}

func NewInMemory() *InMemory {
	return &InMemory{apps: make(map[id.ApplicationID]models.Application)}
}

func (s *InMemory) Create(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.apps[app.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	app.Version = 1
	s.apps[app.ID] = *app
	return nil
}

func (s *InMemory) FindByID(_ context.Context, appID id.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.apps[appID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := stored
	return &found, nil
}

func (s *InMemory) Update(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.apps[app.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if stored.Version != app.Version {
		return sentinel.ErrConflict
	}
	app.Version++
	s.apps[app.ID] = *app
	return nil
}

func (s *InMemory) List(_ context.Context, filters models.ListFilters, page models.Page) ([]*models.Application, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	page = page.Normalize()

	matched := make([]models.Application, 0, len(s.apps))
	for _, app := range s.apps {
		if !filters.ApplicantID.IsNil() && app.ApplicantID != filters.ApplicantID {
			continue
		}
		if filters.Status != "" && app.Status != filters.Status {
			continue
		}
		matched = append(matched, app)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if page.Offset >= total {
		return nil, total, nil
	}
	end := min(page.Offset+page.Limit, total)

	items := make([]*models.Application, 0, end-page.Offset)
	for i := page.Offset; i < end; i++ {
		app := matched[i]
		items = append(items, &app)
	}
	return items, total, nil
}
