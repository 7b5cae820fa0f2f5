//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"agricert/internal/certificate/models"
	"agricert/internal/certificate/store"
	id "agricert/pkg/domain"
	"agricert/pkg/platform/sentinel"
	"agricert/pkg/testutil/containers"
)

type PostgresCertificateSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresCertificateSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresCertificateSuite))
}

func (s *PostgresCertificateSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.Pool)
}

func (s *PostgresCertificateSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "certificates"))
}

func (s *PostgresCertificateSuite) newCertificate(number string) *models.Certificate {
	now := time.Now().UTC()
	cert, err := models.NewCertificate(id.NewCertificateID(), number,
		id.NewUserID(), id.NewFarmID(), "organic", now, now.AddDate(1, 0, 0), id.NewUserID(), now)
	s.Require().NoError(err)
	return cert
}

// TestRoundTrip verifies both lookup keys after a persisted issuance.
func (s *PostgresCertificateSuite) TestRoundTrip() {
	ctx := context.Background()
	cert := s.newCertificate("AGC-2025-5001")
	s.Require().NoError(s.store.Create(ctx, cert))

	byID, err := s.store.FindByID(ctx, cert.ID)
	s.Require().NoError(err)
	s.Equal(cert.Number, byID.Number)
	s.Equal(cert.OwnerID, byID.OwnerID)
	s.Equal(models.StatusActive, byID.Status)
	s.True(byID.RevokedBy.IsNil())

	byNumber, err := s.store.FindByNumber(ctx, cert.Number)
	s.Require().NoError(err)
	s.Equal(cert.ID, byNumber.ID)
}

// TestUniqueNumber verifies the unique constraint maps to ErrAlreadyUsed.
func (s *PostgresCertificateSuite) TestUniqueNumber() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newCertificate("AGC-2025-5002")))
	s.ErrorIs(s.store.Create(ctx, s.newCertificate("AGC-2025-5002")), sentinel.ErrAlreadyUsed)
}

// TestRevocationPersists verifies the versioned revocation update.
func (s *PostgresCertificateSuite) TestRevocationPersists() {
	ctx := context.Background()
	cert := s.newCertificate("AGC-2025-5003")
	s.Require().NoError(s.store.Create(ctx, cert))

	staff := id.NewUserID()
	s.Require().NoError(cert.Revoke("lab results forged", staff, time.Now().UTC()))
	s.Require().NoError(s.store.Update(ctx, cert))
	s.Equal(int64(2), cert.Version)

	found, err := s.store.FindByNumber(ctx, cert.Number)
	s.Require().NoError(err)
	s.Equal(models.StatusRevoked, found.Status)
	s.Equal("lab results forged", found.RevocationReason)
	s.Equal(staff, found.RevokedBy)

	stale := s.newCertificate("AGC-2025-5004")
	s.ErrorIs(s.store.Update(ctx, stale), sentinel.ErrNotFound)
}
