package models

import (
	"strings"
	"time"

	id "agricert/pkg/domain"
	dErrors "agricert/pkg/domain-errors"
)

// Farm is the aggregate root for a registered farm.
//
// Invariants:
//   - Name is non-empty and at most 200 characters
//   - Status follows the lifecycle in status.go; illegal transitions fail
//     without mutating any field
//   - ReviewerID is set exactly once, by StartReview
//   - A rejected verification always carries a rejection reason
//   - Version increments on every persisted change (optimistic concurrency;
//     stores reject stale saves)
type Farm struct {
	ID                id.FarmID `json:"id"`
	OwnerID           id.UserID `json:"owner_id"`
	Name              string    `json:"name"`
	Province          string    `json:"province"`
	District          string    `json:"district"`
	Address           string    `json:"address"`
	Status            Status    `json:"status"`
	ReviewerID        id.UserID `json:"reviewer_id,omitzero"`
	VerificationNotes string    `json:"verification_notes,omitempty"`
	RejectionReason   string    `json:"rejection_reason,omitempty"`
	VerifiedBy        id.UserID `json:"verified_by,omitzero"`
	VerifiedAt        time.Time `json:"verified_at,omitzero"`
	Version           int64     `json:"version"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewFarm registers a farm in pending_review.
func NewFarm(farmID id.FarmID, ownerID id.UserID, name, province, district, address string, now time.Time) (*Farm, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "farm name is required")
	}
	if len(name) > 200 {
		return nil, dErrors.New(dErrors.CodeValidation, "farm name must be 200 characters or less")
	}
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "farm owner is required")
	}
	return &Farm{
		ID:        farmID,
		OwnerID:   ownerID,
		Name:      name,
		Province:  strings.TrimSpace(province),
		District:  strings.TrimSpace(district),
		Address:   strings.TrimSpace(address),
		Status:    StatusPendingReview,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// BelongsTo reports whether userID owns this farm. Pure; used by read use
// cases to enforce owner-only visibility.
func (f *Farm) BelongsTo(userID id.UserID) bool {
	return f.OwnerID == userID
}

// CanStartReview checks that review may begin from the current status.
func (f *Farm) CanStartReview() error {
	if !f.Status.CanTransitionTo(StatusUnderReview) {
		return dErrors.Newf(dErrors.CodeInvalidTransition,
			"cannot start review from status %q (want %q)", f.Status, StatusPendingReview)
	}
	return nil
}

// ApplyStartReview moves the farm under review and records the reviewer.
// Call CanStartReview first.
func (f *Farm) ApplyStartReview(staffID id.UserID, now time.Time) {
	f.Status = StatusUnderReview
	f.ReviewerID = staffID
	f.UpdatedAt = now
}

// StartReview validates and applies in one call.
func (f *Farm) StartReview(staffID id.UserID, now time.Time) error {
	if staffID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "reviewer id is required")
	}
	if err := f.CanStartReview(); err != nil {
		return err
	}
	f.ApplyStartReview(staffID, now)
	return nil
}

// CompleteVerification concludes the review with approved or rejected. A
// rejection must carry a reason. Fails without mutating state on any
// violation.
func (f *Farm) CompleteVerification(status Status, notes, rejectionReason string, verifiedBy id.UserID, now time.Time) error {
	if status != StatusApproved && status != StatusRejected {
		return dErrors.Newf(dErrors.CodeValidation, "verification status must be %q or %q", StatusApproved, StatusRejected)
	}
	if verifiedBy.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "verifier id is required")
	}
	if status == StatusRejected && strings.TrimSpace(rejectionReason) == "" {
		return dErrors.New(dErrors.CodeValidation, "rejection reason is required")
	}
	if !f.Status.CanTransitionTo(status) {
		return dErrors.Newf(dErrors.CodeInvalidTransition,
			"cannot complete verification from status %q (want %q)", f.Status, StatusUnderReview)
	}

	f.Status = status
	f.VerificationNotes = strings.TrimSpace(notes)
	if status == StatusRejected {
		f.RejectionReason = strings.TrimSpace(rejectionReason)
	}
	f.VerifiedBy = verifiedBy
	f.VerifiedAt = now
	f.UpdatedAt = now
	return nil
}
