// Package store provides farm persistence: an in-memory implementation for
// tests and local runs, and a Postgres implementation for production.
//
// Both enforce optimistic concurrency: Update rejects a farm whose Version no
// longer matches the stored row with sentinel.ErrConflict, so no transition
// can clobber a concurrent save.
package store

import (
	"context"
	"sort"
	"sync"

	"agricert/internal/farm/models"
	id "agricert/pkg/domain"
	"agricert/pkg/platform/sentinel"
)

// InMemory keeps farms in a map guarded by a mutex. Values are copied on the
// way in and out so callers never share aggregate memory.
type InMemory struct {
	mu    sync.RWMutex
	farms map[id.FarmID]models.Farm
}

func NewInMemory() *InMemory {
	return &InMemory{farms: make(map[id.FarmID]models.Farm)}
}

func (s *InMemory) Create(_ context.Context, farm *models.Farm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.farms[farm.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	farm.Version = 1
	s.farms[farm.ID] = *farm
	return nil
}

func (s *InMemory) FindByID(_ context.Context, farmID id.FarmID) (*models.Farm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.farms[farmID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := stored
	return &found, nil
}

func (s *InMemory) Update(_ context.Context, farm *models.Farm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.farms[farm.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if stored.Version != farm.Version {
		return sentinel.ErrConflict
	}
	farm.Version++
	s.farms[farm.ID] = *farm
	return nil
}

func (s *InMemory) List(_ context.Context, filters models.ListFilters, page models.Page) ([]*models.Farm, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	page = page.Normalize()

	matched := make([]models.Farm, 0, len(s.farms))
	for _, farm := range s.farms {
		if !filters.OwnerID.IsNil() && farm.OwnerID != filters.OwnerID {
			continue
		}
		if filters.Status != "" && farm.Status != filters.Status {
			continue
		}
		matched = append(matched, farm)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if page.Offset >= total {
		return nil, total, nil
	}
	end := min(page.Offset+page.Limit, total)

	items := make([]*models.Farm, 0, end-page.Offset)
	for i := page.Offset; i < end; i++ {
		farm := matched[i]
		items = append(items, &farm)
	}
	return items, total, nil
}
