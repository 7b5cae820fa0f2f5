package models

import (
	"time"

	id "agricert/pkg/domain"
)

// Domain events for the farm lifecycle. Immutable value structs; built by the
// use case after a successful save, from post-transition state plus the actor
// bound at call time.

// FarmRegistered records a new farm entering pending_review.
type FarmRegistered struct {
	FarmID  id.FarmID
	OwnerID id.UserID
	Name    string
	At      time.Time
}

func (e FarmRegistered) EventType() string     { return "farm_registered" }
func (e FarmRegistered) OccurredAt() time.Time { return e.At }
func (e FarmRegistered) EventData() map[string]any {
	return map[string]any{
		"farm_id":  e.FarmID.String(),
		"owner_id": e.OwnerID.String(),
		"name":     e.Name,
	}
}

// FarmSubmittedForReview records a reviewer taking a farm under review.
type FarmSubmittedForReview struct {
	FarmID     id.FarmID
	ReviewerID id.UserID
	At         time.Time
}

func (e FarmSubmittedForReview) EventType() string     { return "farm_submitted_for_review" }
func (e FarmSubmittedForReview) OccurredAt() time.Time { return e.At }
func (e FarmSubmittedForReview) EventData() map[string]any {
	return map[string]any{
		"farm_id":     e.FarmID.String(),
		"reviewer_id": e.ReviewerID.String(),
	}
}

// FarmVerificationCompleted records the terminal review outcome.
type FarmVerificationCompleted struct {
	FarmID     id.FarmID
	Status     Status
	VerifiedBy id.UserID
	At         time.Time
}

func (e FarmVerificationCompleted) EventType() string     { return "farm_verification_completed" }
func (e FarmVerificationCompleted) OccurredAt() time.Time { return e.At }
func (e FarmVerificationCompleted) EventData() map[string]any {
	return map[string]any{
		"farm_id":     e.FarmID.String(),
		"status":      string(e.Status),
		"verified_by": e.VerifiedBy.String(),
	}
}
