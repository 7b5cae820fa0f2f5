package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agricert/internal/authz"
	"agricert/internal/certificate/models"
	"agricert/internal/certificate/store"
	"agricert/internal/events"
	farmmodels "agricert/internal/farm/models"
	farmstore "agricert/internal/farm/store"
	id "agricert/pkg/domain"
	dErrors "agricert/pkg/domain-errors"
	"agricert/pkg/requestcontext"
)

var fixedNow = time.Date(2025, 7, 1, 10, 30, 0, 0, time.UTC)

type fixture struct {
	svc   *Service
	certs *store.InMemory
	farms *farmstore.InMemory
	sink  *events.InMemorySink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	certs := store.NewInMemory()
	farms := farmstore.NewInMemory()
	sink := events.NewInMemorySink()
	svc := New(certs, NewStoreFarmGate(farms), WithEventPublisher(events.NewPublisher(sink)))
	return &fixture{svc: svc, certs: certs, farms: farms, sink: sink}
}

func ctxAs(claims authz.Claims) context.Context {
	ctx := requestcontext.WithClaims(context.Background(), claims)
	return requestcontext.WithTime(ctx, fixedNow)
}

func farmerCtx(userID id.UserID) context.Context {
	return ctxAs(authz.Claims{UserID: userID, Role: authz.RoleFarmer})
}

func reviewerCtx(userID id.UserID) context.Context {
	return ctxAs(authz.Claims{UserID: userID, Role: authz.RoleReviewer})
}

func (f *fixture) seedFarm(t *testing.T, status farmmodels.Status) *farmmodels.Farm {
	t.Helper()
	farm, err := farmmodels.NewFarm(id.NewFarmID(), id.NewUserID(), "Certified Farm", "Chiang Mai", "", "", fixedNow)
	require.NoError(t, err)
	farm.Status = status
	require.NoError(t, f.farms.Create(context.Background(), farm))
	return farm
}

func (f *fixture) issue(t *testing.T, farm *farmmodels.Farm, staff id.UserID) *models.Certificate {
	t.Helper()
	cert, err := f.svc.Issue(reviewerCtx(staff), IssueInput{FarmID: farm.ID, Type: "organic"})
	require.NoError(t, err)
	return cert
}

func TestIssue(t *testing.T) {
	t.Run("issues for an approved farm with the farm owner as holder", func(t *testing.T) {
		f := newFixture(t)
		farm := f.seedFarm(t, farmmodels.StatusApproved)
		staff := id.NewUserID()

		cert := f.issue(t, farm, staff)

		assert.Equal(t, models.StatusActive, cert.Status)
		assert.Equal(t, farm.OwnerID, cert.OwnerID)
		assert.Equal(t, staff, cert.IssuedBy)
		assert.True(t, strings.HasPrefix(cert.Number, "AGC-2025-"))
		assert.Equal(t, fixedNow.AddDate(0, 12, 0), cert.ExpiryDate)

		env, ok := f.sink.Last()
		require.True(t, ok)
		assert.Equal(t, "certificate_issued", env.EventType)
		assert.Equal(t, cert.Number, env.Data["number"])
	})

	t.Run("refuses an unapproved farm", func(t *testing.T) {
		f := newFixture(t)
		farm := f.seedFarm(t, farmmodels.StatusPendingReview)

		_, err := f.svc.Issue(reviewerCtx(id.NewUserID()), IssueInput{FarmID: farm.ID, Type: "organic"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
		assert.Empty(t, f.sink.Envelopes())
	})

	t.Run("unknown farm yields not found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Issue(reviewerCtx(id.NewUserID()), IssueInput{FarmID: id.NewFarmID(), Type: "organic"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("farmers may not issue", func(t *testing.T) {
		f := newFixture(t)
		farm := f.seedFarm(t, farmmodels.StatusApproved)

		_, err := f.svc.Issue(farmerCtx(farm.OwnerID), IssueInput{FarmID: farm.ID, Type: "organic"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("custom validity window", func(t *testing.T) {
		f := newFixture(t)
		farm := f.seedFarm(t, farmmodels.StatusApproved)

		cert, err := f.svc.Issue(reviewerCtx(id.NewUserID()), IssueInput{
			FarmID: farm.ID, Type: "gap", ValidityMonths: 36,
		})
		require.NoError(t, err)
		assert.Equal(t, fixedNow.AddDate(0, 36, 0), cert.ExpiryDate)
	})
}

func TestRevokeUseCase(t *testing.T) {
	t.Run("revokes once, second attempt is invalid state", func(t *testing.T) {
		f := newFixture(t)
		farm := f.seedFarm(t, farmmodels.StatusApproved)
		staff := id.NewUserID()
		cert := f.issue(t, farm, staff)

		revoked, err := f.svc.Revoke(reviewerCtx(staff), cert.ID, "fraud")
		require.NoError(t, err)
		assert.Equal(t, models.StatusRevoked, revoked.Status)
		assert.Equal(t, "fraud", revoked.RevocationReason)
		assert.Equal(t, staff, revoked.RevokedBy)

		env, ok := f.sink.Last()
		require.True(t, ok)
		assert.Equal(t, "certificate_revoked", env.EventType)
		published := len(f.sink.Envelopes())

		_, err = f.svc.Revoke(reviewerCtx(id.NewUserID()), cert.ID, "second attempt")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))

		reloaded, err := f.certs.FindByID(context.Background(), cert.ID)
		require.NoError(t, err)
		assert.Equal(t, "fraud", reloaded.RevocationReason, "original reason stands")
		assert.Equal(t, staff, reloaded.RevokedBy)
		assert.Len(t, f.sink.Envelopes(), published)
	})

	t.Run("requires a reason", func(t *testing.T) {
		f := newFixture(t)
		farm := f.seedFarm(t, farmmodels.StatusApproved)
		cert := f.issue(t, farm, id.NewUserID())

		_, err := f.svc.Revoke(reviewerCtx(id.NewUserID()), cert.ID, "")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("owners may not revoke their own certificate", func(t *testing.T) {
		f := newFixture(t)
		farm := f.seedFarm(t, farmmodels.StatusApproved)
		cert := f.issue(t, farm, id.NewUserID())

		_, err := f.svc.Revoke(farmerCtx(cert.OwnerID), cert.ID, "changed my mind")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func TestVerify(t *testing.T) {
	t.Run("active certificate verifies without credentials", func(t *testing.T) {
		f := newFixture(t)
		farm := f.seedFarm(t, farmmodels.StatusApproved)
		cert := f.issue(t, farm, id.NewUserID())

		ctx := requestcontext.WithTime(context.Background(), fixedNow)
		result, err := f.svc.Verify(ctx, cert.Number)
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Equal(t, models.StatusActive, result.Status)
		assert.Equal(t, cert.Fingerprint(), result.Fingerprint)
	})

	t.Run("revoked certificate fails verification", func(t *testing.T) {
		f := newFixture(t)
		farm := f.seedFarm(t, farmmodels.StatusApproved)
		staff := id.NewUserID()
		cert := f.issue(t, farm, staff)
		_, err := f.svc.Revoke(reviewerCtx(staff), cert.ID, "fraud")
		require.NoError(t, err)

		result, err := f.svc.Verify(context.Background(), cert.Number)
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, models.StatusRevoked, result.Status)
	})

	t.Run("expired certificate fails verification", func(t *testing.T) {
		f := newFixture(t)
		farm := f.seedFarm(t, farmmodels.StatusApproved)
		cert := f.issue(t, farm, id.NewUserID())

		ctx := requestcontext.WithTime(context.Background(), cert.ExpiryDate.Add(time.Hour))
		result, err := f.svc.Verify(ctx, cert.Number)
		require.NoError(t, err)
		assert.False(t, result.Valid)
	})

	t.Run("unknown number yields not found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Verify(context.Background(), "AGC-2025-DOESNOTEXIST")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestGetAndList(t *testing.T) {
	t.Run("owner sees their certificate, strangers do not", func(t *testing.T) {
		f := newFixture(t)
		farm := f.seedFarm(t, farmmodels.StatusApproved)
		cert := f.issue(t, farm, id.NewUserID())

		got, err := f.svc.Get(farmerCtx(cert.OwnerID), cert.ID)
		require.NoError(t, err)
		assert.Equal(t, cert.ID, got.ID)

		_, err = f.svc.Get(farmerCtx(id.NewUserID()), cert.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("farmers are scoped to their own certificates", func(t *testing.T) {
		f := newFixture(t)
		mine := f.seedFarm(t, farmmodels.StatusApproved)
		other := f.seedFarm(t, farmmodels.StatusApproved)
		cert := f.issue(t, mine, id.NewUserID())
		f.issue(t, other, id.NewUserID())

		result, err := f.svc.List(farmerCtx(cert.OwnerID), models.ListFilters{}, models.Page{})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Total)

		staffResult, err := f.svc.List(reviewerCtx(id.NewUserID()), models.ListFilters{}, models.Page{})
		require.NoError(t, err)
		assert.Equal(t, 2, staffResult.Total)
	})
}
