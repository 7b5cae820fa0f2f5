package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agricert/internal/authz"
	"agricert/internal/events"
	"agricert/internal/farm/models"
	"agricert/internal/farm/store"
	id "agricert/pkg/domain"
	dErrors "agricert/pkg/domain-errors"
	"agricert/pkg/requestcontext"
)

var fixedNow = time.Date(2025, 7, 1, 10, 30, 0, 0, time.UTC)

type fixture struct {
	svc   *Service
	store *store.InMemory
	sink  *events.InMemorySink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	farms := store.NewInMemory()
	sink := events.NewInMemorySink()
	svc := New(farms, WithEventPublisher(events.NewPublisher(sink)))
	return &fixture{svc: svc, store: farms, sink: sink}
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

func (f *fixture) registerFarm(t *testing.T, owner id.UserID) *models.Farm {
	t.Helper()
	farm, err := f.svc.Register(farmerCtx(owner), RegisterInput{Name: "Green Valley", Province: "Chiang Mai"})
	require.NoError(t, err)
	return farm
}

func TestRegister(t *testing.T) {
	t.Run("creates a pending farm and publishes farm_registered", func(t *testing.T) {
		f := newFixture(t)
		owner := id.NewUserID()

		farm := f.registerFarm(t, owner)

		assert.Equal(t, models.StatusPendingReview, farm.Status)
		assert.Equal(t, owner, farm.OwnerID)

		env, ok := f.sink.Last()
		require.True(t, ok)
		assert.Equal(t, "farm_registered", env.EventType)
		assert.Equal(t, farm.ID.String(), env.Data["farm_id"])
		assert.Equal(t, fixedNow, env.OccurredAt)
	})

	t.Run("requires authentication", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Register(context.Background(), RegisterInput{Name: "Green Valley"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("validation failure publishes nothing", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Register(farmerCtx(id.NewUserID()), RegisterInput{Name: ""})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Empty(t, f.sink.Envelopes())
	})
}

func TestStartReview(t *testing.T) {
	t.Run("moves a pending farm under review and records the reviewer", func(t *testing.T) {
		f := newFixture(t)
		farm := f.registerFarm(t, id.NewUserID())
		staff := id.NewUserID()

		updated, err := f.svc.StartReview(reviewerCtx(staff), farm.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusUnderReview, updated.Status)
		assert.Equal(t, staff, updated.ReviewerID)

		env, ok := f.sink.Last()
		require.True(t, ok)
		assert.Equal(t, "farm_submitted_for_review", env.EventType)
		assert.Equal(t, staff.String(), env.Data["reviewer_id"])

		reloaded, err := f.store.FindByID(context.Background(), farm.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusUnderReview, reloaded.Status)
	})

	t.Run("farmers may not start reviews", func(t *testing.T) {
		f := newFixture(t)
		farm := f.registerFarm(t, id.NewUserID())

		_, err := f.svc.StartReview(farmerCtx(id.NewUserID()), farm.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("unknown farm yields not found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.StartReview(reviewerCtx(id.NewUserID()), id.NewFarmID())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("terminal farm fails with invalid transition and stays unchanged", func(t *testing.T) {
		f := newFixture(t)
		farm := f.registerFarm(t, id.NewUserID())
		staff := id.NewUserID()
		_, err := f.svc.StartReview(reviewerCtx(staff), farm.ID)
		require.NoError(t, err)
		_, err = f.svc.CompleteVerification(reviewerCtx(staff), farm.ID, VerifyInput{Status: models.StatusApproved})
		require.NoError(t, err)
		published := len(f.sink.Envelopes())

		_, err = f.svc.StartReview(reviewerCtx(id.NewUserID()), farm.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))

		reloaded, err := f.store.FindByID(context.Background(), farm.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, reloaded.Status)
		assert.Len(t, f.sink.Envelopes(), published, "failed transition publishes nothing")
	})
}

func TestCompleteVerification(t *testing.T) {
	underReview := func(t *testing.T, f *fixture) (*models.Farm, id.UserID) {
		t.Helper()
		farm := f.registerFarm(t, id.NewUserID())
		staff := id.NewUserID()
		_, err := f.svc.StartReview(reviewerCtx(staff), farm.ID)
		require.NoError(t, err)
		return farm, staff
	}

	t.Run("assigned reviewer approves and the event carries the outcome", func(t *testing.T) {
		f := newFixture(t)
		farm, staff := underReview(t, f)

		updated, err := f.svc.CompleteVerification(reviewerCtx(staff), farm.ID, VerifyInput{
			Status: models.StatusApproved,
			Notes:  "all checks passed",
		})
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, updated.Status)

		env, ok := f.sink.Last()
		require.True(t, ok)
		assert.Equal(t, "farm_verification_completed", env.EventType)
		assert.Equal(t, string(models.StatusApproved), env.Data["status"])
	})

	t.Run("other reviewers are rejected", func(t *testing.T) {
		f := newFixture(t)
		farm, _ := underReview(t, f)

		_, err := f.svc.CompleteVerification(reviewerCtx(id.NewUserID()), farm.ID, VerifyInput{
			Status: models.StatusApproved,
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("rejection without reason fails validation, state unchanged", func(t *testing.T) {
		f := newFixture(t)
		farm, staff := underReview(t, f)

		_, err := f.svc.CompleteVerification(reviewerCtx(staff), farm.ID, VerifyInput{
			Status: models.StatusRejected,
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		reloaded, err := f.store.FindByID(context.Background(), farm.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusUnderReview, reloaded.Status)
	})
}

func TestGet(t *testing.T) {
	t.Run("owner sees their farm", func(t *testing.T) {
		f := newFixture(t)
		owner := id.NewUserID()
		farm := f.registerFarm(t, owner)

		got, err := f.svc.Get(farmerCtx(owner), farm.ID)
		require.NoError(t, err)
		assert.Equal(t, farm.ID, got.ID)
	})

	t.Run("another farmer is forbidden", func(t *testing.T) {
		f := newFixture(t)
		farm := f.registerFarm(t, id.NewUserID())

		_, err := f.svc.Get(farmerCtx(id.NewUserID()), farm.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("staff see every farm", func(t *testing.T) {
		f := newFixture(t)
		farm := f.registerFarm(t, id.NewUserID())

		got, err := f.svc.Get(reviewerCtx(id.NewUserID()), farm.ID)
		require.NoError(t, err)
		assert.Equal(t, farm.ID, got.ID)
	})
}

func TestList(t *testing.T) {
	t.Run("farmers are scoped to their own farms", func(t *testing.T) {
		f := newFixture(t)
		owner := id.NewUserID()
		f.registerFarm(t, owner)
		f.registerFarm(t, id.NewUserID())

		result, err := f.svc.List(farmerCtx(owner), models.ListFilters{}, models.Page{})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Total)
		require.Len(t, result.Items, 1)
		assert.Equal(t, owner, result.Items[0].OwnerID)
	})

	t.Run("staff filter freely", func(t *testing.T) {
		f := newFixture(t)
		f.registerFarm(t, id.NewUserID())
		f.registerFarm(t, id.NewUserID())

		result, err := f.svc.List(reviewerCtx(id.NewUserID()), models.ListFilters{}, models.Page{})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Total)
	})
}
