package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"agricert/internal/application/models"
	id "agricert/pkg/domain"
	"agricert/pkg/platform/sentinel"
)

type ApplicationStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *ApplicationStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestApplicationStoreSuite(t *testing.T) {
	suite.Run(t, new(ApplicationStoreSuite))
}

func (s *ApplicationStoreSuite) newApplication(plantType string) *models.Application {
	app, err := models.NewApplication(id.NewApplicationID(), id.NewUserID(), plantType, time.Now())
	s.Require().NoError(err)
	return app
}

// TestCreationAndLookups verifies the store creates and retrieves
// applications.
func (s *ApplicationStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds application by ID", func() {
		app := s.newApplication("jasmine rice")
		s.Require().NoError(s.store.Create(s.ctx, app))

		found, err := s.store.FindByID(s.ctx, app.ID)
		s.Require().NoError(err)
		s.Equal(app.PlantType, found.PlantType)
		s.Equal(app.Status, found.Status)
		s.Equal(app.ApplicantID, found.ApplicantID)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, id.NewApplicationID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects duplicate IDs", func() {
		app := s.newApplication("durian")
		s.Require().NoError(s.store.Create(s.ctx, app))
		s.ErrorIs(s.store.Create(s.ctx, app), sentinel.ErrAlreadyUsed)
	})

	s.Run("loads are independent copies", func() {
		app := s.newApplication("mango")
		s.Require().NoError(s.store.Create(s.ctx, app))

		first, err := s.store.FindByID(s.ctx, app.ID)
		s.Require().NoError(err)
		first.PlantType = "mutated"

		second, err := s.store.FindByID(s.ctx, app.ID)
		s.Require().NoError(err)
		s.Equal("mango", second.PlantType)
	})
}

// TestUpdates verifies persistence and the optimistic version check.
func (s *ApplicationStoreSuite) TestUpdates() {
	s.Run("persists transitions and bumps the version", func() {
		app := s.newApplication("longan")
		s.Require().NoError(s.store.Create(s.ctx, app))

		loaded, err := s.store.FindByID(s.ctx, app.ID)
		s.Require().NoError(err)
		s.Require().NoError(loaded.Submit(time.Now()))

		s.Require().NoError(s.store.Update(s.ctx, loaded))
		s.Equal(int64(2), loaded.Version)

		found, err := s.store.FindByID(s.ctx, app.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusSubmitted, found.Status)
		s.Equal(1, found.SubmissionCount)
	})

	s.Run("stale version loses with ErrConflict", func() {
		app := s.newApplication("lychee")
		s.Require().NoError(s.store.Create(s.ctx, app))

		first, err := s.store.FindByID(s.ctx, app.ID)
		s.Require().NoError(err)
		second, err := s.store.FindByID(s.ctx, app.ID)
		s.Require().NoError(err)

		s.Require().NoError(first.Submit(time.Now()))
		s.Require().NoError(s.store.Update(s.ctx, first))

		s.Require().NoError(second.Submit(time.Now()))
		s.ErrorIs(s.store.Update(s.ctx, second), sentinel.ErrConflict)
	})

	s.Run("returns ErrNotFound for non-existent application", func() {
		app := s.newApplication("papaya")
		s.ErrorIs(s.store.Update(s.ctx, app), sentinel.ErrNotFound)
	})
}

// TestList verifies filtering and pagination.
func (s *ApplicationStoreSuite) TestList() {
	applicant := id.NewUserID()
	for i := 0; i < 3; i++ {
		app := s.newApplication("rice")
		app.ApplicantID = applicant
		app.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		s.Require().NoError(s.store.Create(s.ctx, app))
	}
	other := s.newApplication("coconut")
	s.Require().NoError(s.store.Create(s.ctx, other))

	s.Run("filters by applicant", func() {
		items, total, err := s.store.List(s.ctx, models.ListFilters{ApplicantID: applicant}, models.Page{})
		s.Require().NoError(err)
		s.Equal(3, total)
		s.Len(items, 3)
	})

	s.Run("paginates with total preserved", func() {
		items, total, err := s.store.List(s.ctx, models.ListFilters{ApplicantID: applicant}, models.Page{Limit: 2})
		s.Require().NoError(err)
		s.Equal(3, total)
		s.Len(items, 2)

		items, total, err = s.store.List(s.ctx, models.ListFilters{ApplicantID: applicant}, models.Page{Limit: 2, Offset: 2})
		s.Require().NoError(err)
		s.Equal(3, total)
		s.Len(items, 1)
	})

	s.Run("filters by status", func() {
		items, total, err := s.store.List(s.ctx, models.ListFilters{Status: models.StatusDraft}, models.Page{})
		s.Require().NoError(err)
		s.Equal(4, total)
		s.Len(items, 4)
	})
}
