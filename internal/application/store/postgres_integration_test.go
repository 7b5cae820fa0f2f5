//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"agricert/internal/application/models"
	"agricert/internal/application/store"
	id "agricert/pkg/domain"
	"agricert/pkg/platform/sentinel"
	"agricert/pkg/testutil/containers"
)

type PostgresApplicationSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresApplicationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresApplicationSuite))
}

func (s *PostgresApplicationSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.Pool)
}

func (s *PostgresApplicationSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "applications"))
}

func (s *PostgresApplicationSuite) newApplication() *models.Application {
	app, err := models.NewApplication(id.NewApplicationID(), id.NewUserID(), "jasmine rice", time.Now().UTC())
	s.Require().NoError(err)
	return app
}

// TestRoundTrip verifies a persisted application reloads with identical
// status, count, and identifying fields.
func (s *PostgresApplicationSuite) TestRoundTrip() {
	ctx := context.Background()
	app := s.newApplication()
	s.Require().NoError(s.store.Create(ctx, app))

	found, err := s.store.FindByID(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(app.ID, found.ID)
	s.Equal(app.ApplicantID, found.ApplicantID)
	s.Equal(app.Status, found.Status)
	s.Equal(0, found.SubmissionCount)
	s.True(found.ReviewerID.IsNil())
	s.Equal(int64(1), found.Version)
}

// TestVersionedUpdate verifies the compare-and-swap update path carries the
// submission count.
func (s *PostgresApplicationSuite) TestVersionedUpdate() {
	ctx := context.Background()
	app := s.newApplication()
	s.Require().NoError(s.store.Create(ctx, app))

	first, err := s.store.FindByID(ctx, app.ID)
	s.Require().NoError(err)
	second, err := s.store.FindByID(ctx, app.ID)
	s.Require().NoError(err)

	s.Require().NoError(first.Submit(time.Now().UTC()))
	s.Require().NoError(s.store.Update(ctx, first))
	s.Equal(int64(2), first.Version)

	s.Require().NoError(second.Submit(time.Now().UTC()))
	s.ErrorIs(s.store.Update(ctx, second), sentinel.ErrConflict)

	found, err := s.store.FindByID(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusSubmitted, found.Status)
	s.Equal(1, found.SubmissionCount)
}

func (s *PostgresApplicationSuite) TestUpdateMissingApplication() {
	app := s.newApplication()
	s.ErrorIs(s.store.Update(context.Background(), app), sentinel.ErrNotFound)
}

func (s *PostgresApplicationSuite) TestListFilters() {
	ctx := context.Background()
	applicant := id.NewUserID()
	for i := 0; i < 3; i++ {
		app := s.newApplication()
		app.ApplicantID = applicant
		s.Require().NoError(s.store.Create(ctx, app))
	}
	s.Require().NoError(s.store.Create(ctx, s.newApplication()))

	items, total, err := s.store.List(ctx, models.ListFilters{ApplicantID: applicant}, models.Page{Limit: 2})
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Len(items, 2)
}
