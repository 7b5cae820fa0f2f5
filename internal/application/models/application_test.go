package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "agricert/pkg/domain"
	dErrors "agricert/pkg/domain-errors"
)

var testNow = time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)

func draftApplication(t *testing.T) *Application {
	t.Helper()
	app, err := NewApplication(id.NewApplicationID(), id.NewUserID(), "jasmine rice", testNow)
	require.NoError(t, err)
	return app
}

func TestNewApplication(t *testing.T) {
	t.Run("starts as draft with zero submissions", func(t *testing.T) {
		app := draftApplication(t)
		assert.Equal(t, StatusDraft, app.Status)
		assert.Equal(t, 0, app.SubmissionCount)
		assert.Equal(t, testNow, app.CreatedAt)
	})

	t.Run("rejects empty plant type", func(t *testing.T) {
		_, err := NewApplication(id.NewApplicationID(), id.NewUserID(), "   ", testNow)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects missing applicant", func(t *testing.T) {
		_, err := NewApplication(id.NewApplicationID(), id.UserID{}, "durian", testNow)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestSubmit(t *testing.T) {
	t.Run("from draft increments count by one", func(t *testing.T) {
		app := draftApplication(t)
		require.NoError(t, app.Submit(testNow))
		assert.Equal(t, StatusSubmitted, app.Status)
		assert.Equal(t, 1, app.SubmissionCount)
	})

	t.Run("after revision request increments count again", func(t *testing.T) {
		app := draftApplication(t)
		reviewer := id.NewUserID()
		require.NoError(t, app.Submit(testNow))
		require.NoError(t, app.BeginReview(reviewer, testNow))
		require.NoError(t, app.RequestRevision("missing soil report", testNow))
		require.NoError(t, app.Submit(testNow))
		assert.Equal(t, StatusSubmitted, app.Status)
		assert.Equal(t, 2, app.SubmissionCount)
	})

	t.Run("from any other status fails and leaves count unchanged", func(t *testing.T) {
		app := draftApplication(t)
		require.NoError(t, app.Submit(testNow))
		require.NoError(t, app.BeginReview(id.NewUserID(), testNow))

		for range 3 {
			err := app.Submit(testNow)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		}
		assert.Equal(t, StatusUnderReview, app.Status)
		assert.Equal(t, 1, app.SubmissionCount)
	})
}

func TestBeginReview(t *testing.T) {
	t.Run("records the reviewer", func(t *testing.T) {
		app := draftApplication(t)
		reviewer := id.NewUserID()
		require.NoError(t, app.Submit(testNow))
		require.NoError(t, app.BeginReview(reviewer, testNow))
		assert.Equal(t, StatusUnderReview, app.Status)
		assert.Equal(t, reviewer, app.ReviewerID)
	})

	t.Run("requires a reviewer id", func(t *testing.T) {
		app := draftApplication(t)
		require.NoError(t, app.Submit(testNow))
		err := app.BeginReview(id.UserID{}, testNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("fails on a draft", func(t *testing.T) {
		app := draftApplication(t)
		err := app.BeginReview(id.NewUserID(), testNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
		assert.Equal(t, StatusDraft, app.Status)
	})
}

func TestRequestRevision(t *testing.T) {
	app := draftApplication(t)
	require.NoError(t, app.Submit(testNow))
	require.NoError(t, app.BeginReview(id.NewUserID(), testNow))

	t.Run("requires notes", func(t *testing.T) {
		err := app.RequestRevision("", testNow)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, StatusUnderReview, app.Status)
	})

	t.Run("returns the application to the applicant", func(t *testing.T) {
		require.NoError(t, app.RequestRevision("photos are blurry", testNow))
		assert.Equal(t, StatusRevisionRequired, app.Status)
		assert.Equal(t, "photos are blurry", app.ReviewNotes)
	})
}

func TestReject(t *testing.T) {
	t.Run("empty reason fails validation and keeps status", func(t *testing.T) {
		app := draftApplication(t)
		require.NoError(t, app.Submit(testNow))
		require.NoError(t, app.BeginReview(id.NewUserID(), testNow))

		err := app.Reject("", testNow)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, StatusUnderReview, app.Status)
		assert.Empty(t, app.RejectionReason)
	})

	t.Run("records the reason and terminates the lifecycle", func(t *testing.T) {
		app := draftApplication(t)
		require.NoError(t, app.Submit(testNow))
		require.NoError(t, app.BeginReview(id.NewUserID(), testNow))
		require.NoError(t, app.Reject("pesticide residue above limit", testNow))

		assert.Equal(t, StatusRejected, app.Status)
		assert.Equal(t, "pesticide residue above limit", app.RejectionReason)
		assert.True(t, app.Status.Terminal())

		err := app.Submit(testNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})
}

func TestApprove(t *testing.T) {
	app := draftApplication(t)
	require.NoError(t, app.Submit(testNow))

	t.Run("fails before review starts", func(t *testing.T) {
		err := app.Approve(testNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	t.Run("terminates the lifecycle", func(t *testing.T) {
		require.NoError(t, app.BeginReview(id.NewUserID(), testNow))
		require.NoError(t, app.Approve(testNow))
		assert.Equal(t, StatusApproved, app.Status)
		assert.True(t, app.Status.Terminal())
	})
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusDraft.CanTransitionTo(StatusSubmitted))
	assert.True(t, StatusRevisionRequired.CanTransitionTo(StatusSubmitted))
	assert.False(t, StatusSubmitted.CanTransitionTo(StatusDraft))
	assert.False(t, StatusApproved.CanTransitionTo(StatusSubmitted))
	assert.False(t, StatusRejected.CanTransitionTo(StatusSubmitted))
	assert.True(t, StatusApproved.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.False(t, StatusUnderReview.Terminal())
	assert.False(t, Status("archived").Valid())
}

func TestBelongsToIsPure(t *testing.T) {
	app := draftApplication(t)
	before := *app
	assert.True(t, app.BelongsTo(app.ApplicantID))
	assert.False(t, app.BelongsTo(id.NewUserID()))
	assert.Equal(t, before, *app)
}
