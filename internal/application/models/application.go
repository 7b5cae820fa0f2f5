package models

import (
	"strings"
	"time"

	id "agricert/pkg/domain"
	dErrors "agricert/pkg/domain-errors"
)

// Application is the aggregate root for a certification request.
//
// Invariants:
//   - PlantType is non-empty
//   - SubmissionCount increments on every entry into submitted, and only then
//   - Status follows the lifecycle in status.go; illegal transitions fail
//     without mutating any field
//   - Version increments on every persisted change (optimistic concurrency)
//
// The applicant owns the application until submission; afterwards only
// permission checks change, never mutation rights on this struct.
type Application struct {
	ID              id.ApplicationID `json:"id"`
	ApplicantID     id.UserID        `json:"applicant_id"`
	PlantType       string           `json:"plant_type"`
	Status          Status           `json:"status"`
	SubmissionCount int              `json:"submission_count"`
	ReviewerID      id.UserID        `json:"reviewer_id,omitzero"`
	ReviewNotes     string           `json:"review_notes,omitempty"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	Version         int64            `json:"version"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewApplication creates a draft application for the applicant.
func NewApplication(appID id.ApplicationID, applicantID id.UserID, plantType string, now time.Time) (*Application, error) {
	plantType = strings.TrimSpace(plantType)
	if plantType == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "plant type is required")
	}
	if applicantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "applicant is required")
	}
	return &Application{
		ID:          appID,
		ApplicantID: applicantID,
		PlantType:   plantType,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// BelongsTo reports whether userID owns this application. Pure.
func (a *Application) BelongsTo(userID id.UserID) bool {
	return a.ApplicantID == userID
}

// Submit moves the application to submitted and increments the submission
// count. Legal from draft and revision_required only.
func (a *Application) Submit(now time.Time) error {
	if !a.Status.CanTransitionTo(StatusSubmitted) {
		return dErrors.Newf(dErrors.CodeInvalidTransition,
			"cannot submit application in status %q (want %q or %q)",
			a.Status, StatusDraft, StatusRevisionRequired)
	}
	a.Status = StatusSubmitted
	a.SubmissionCount++
	a.UpdatedAt = now
	return nil
}

// BeginReview takes a submitted application under review and records the
// reviewer.
func (a *Application) BeginReview(reviewerID id.UserID, now time.Time) error {
	if reviewerID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "reviewer id is required")
	}
	if !a.Status.CanTransitionTo(StatusUnderReview) {
		return dErrors.Newf(dErrors.CodeInvalidTransition,
			"cannot begin review of application in status %q (want %q)", a.Status, StatusSubmitted)
	}
	a.Status = StatusUnderReview
	a.ReviewerID = reviewerID
	a.UpdatedAt = now
	return nil
}

// RequestRevision sends the application back to the applicant with notes.
func (a *Application) RequestRevision(notes string, now time.Time) error {
	if strings.TrimSpace(notes) == "" {
		return dErrors.New(dErrors.CodeValidation, "revision notes are required")
	}
	if !a.Status.CanTransitionTo(StatusRevisionRequired) {
		return dErrors.Newf(dErrors.CodeInvalidTransition,
			"cannot request revision of application in status %q (want %q)", a.Status, StatusUnderReview)
	}
	a.Status = StatusRevisionRequired
	a.ReviewNotes = strings.TrimSpace(notes)
	a.UpdatedAt = now
	return nil
}

// Approve concludes the review positively. Terminal.
func (a *Application) Approve(now time.Time) error {
	if !a.Status.CanTransitionTo(StatusApproved) {
		return dErrors.Newf(dErrors.CodeInvalidTransition,
			"cannot approve application in status %q (want %q)", a.Status, StatusUnderReview)
	}
	a.Status = StatusApproved
	a.UpdatedAt = now
	return nil
}

// Reject concludes the review negatively with a reason. Terminal.
func (a *Application) Reject(reason string, now time.Time) error {
	if strings.TrimSpace(reason) == "" {
		return dErrors.New(dErrors.CodeValidation, "rejection reason is required")
	}
	if !a.Status.CanTransitionTo(StatusRejected) {
		return dErrors.Newf(dErrors.CodeInvalidTransition,
			"cannot reject application in status %q (want %q)", a.Status, StatusUnderReview)
	}
	a.Status = StatusRejected
	a.RejectionReason = strings.TrimSpace(reason)
	a.UpdatedAt = now
	return nil
}
