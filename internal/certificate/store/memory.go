// Package store provides certificate persistence: an in-memory implementation
// for tests and local runs, a Postgres implementation for production, and a
// Redis read-through cache for the verification path.
//
// All write paths enforce optimistic concurrency through the Version column.
package store

import (
	"context"
	"sort"
	"sync"

	"agricert/internal/certificate/models"
	id "agricert/pkg/domain"
	"agricert/pkg/platform/sentinel"
)

// InMemory keeps certificates in maps guarded by a mutex. Values are copied
// on the way in and out so callers never share aggregate memory.
type InMemory struct {
	mu       sync.RWMutex
	certs    map[id.CertificateID]models.Certificate
	byNumber map[string]id.CertificateID
}

func NewInMemory() *InMemory {
	return &InMemory{
		certs:    make(map[id.CertificateID]models.Certificate),
		byNumber: make(map[string]id.CertificateID),
	}
}

func (s *InMemory) Create(_ context.Context, cert *models.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.certs[cert.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	if _, exists := s.byNumber[cert.Number]; exists {
		return sentinel.ErrAlreadyUsed
	}
	cert.Version = 1
	s.certs[cert.ID] = *cert
	s.byNumber[cert.Number] = cert.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, certID id.CertificateID) (*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.certs[certID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := stored
	return &found, nil
}

func (s *InMemory) FindByNumber(_ context.Context, number string) (*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	certID, ok := s.byNumber[number]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := s.certs[certID]
	return &found, nil
}

func (s *InMemory) Update(_ context.Context, cert *models.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.certs[cert.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if stored.Version != cert.Version {
		return sentinel.ErrConflict
	}
	cert.Version++
	s.certs[cert.ID] = *cert
	return nil
}

func (s *InMemory) List(_ context.Context, filters models.ListFilters, page models.Page) ([]*models.Certificate, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	page = page.Normalize()

	matched := make([]models.Certificate, 0, len(s.certs))
	for _, cert := range s.certs {
		if !filters.OwnerID.IsNil() && cert.OwnerID != filters.OwnerID {
			continue
		}
		if !filters.FarmID.IsNil() && cert.FarmID != filters.FarmID {
			continue
		}
		if filters.Status != "" && cert.Status != filters.Status {
			continue
		}
		matched = append(matched, cert)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if page.Offset >= total {
		return nil, total, nil
	}
	end := min(page.Offset+page.Limit, total)

	items := make([]*models.Certificate, 0, end-page.Offset)
	for i := page.Offset; i < end; i++ {
		cert := matched[i]
		items = append(items, &cert)
	}
	return items, total, nil
}
