package models

import (
	"time"

	id "agricert/pkg/domain"
)

// Domain events for the application lifecycle. One event per successful
// transition, built by the use case from post-transition state.

// ApplicationSubmitted records an application entering the review queue.
type ApplicationSubmitted struct {
	ApplicationID   id.ApplicationID
	ApplicantID     id.UserID
	PlantType       string
	SubmissionCount int
	At              time.Time
}

func (e ApplicationSubmitted) EventType() string     { return "application_submitted" }
func (e ApplicationSubmitted) OccurredAt() time.Time { return e.At }
func (e ApplicationSubmitted) EventData() map[string]any {
	return map[string]any{
		"application_id":   e.ApplicationID.String(),
		"applicant_id":     e.ApplicantID.String(),
		"plant_type":       e.PlantType,
		"submission_count": e.SubmissionCount,
	}
}

// ApplicationReviewStarted records a reviewer claiming an application.
type ApplicationReviewStarted struct {
	ApplicationID id.ApplicationID
	ReviewerID    id.UserID
	At            time.Time
}

func (e ApplicationReviewStarted) EventType() string     { return "application_review_started" }
func (e ApplicationReviewStarted) OccurredAt() time.Time { return e.At }
func (e ApplicationReviewStarted) EventData() map[string]any {
	return map[string]any{
		"application_id": e.ApplicationID.String(),
		"reviewer_id":    e.ReviewerID.String(),
	}
}

// ApplicationRevisionRequested records an application sent back for changes.
type ApplicationRevisionRequested struct {
	ApplicationID id.ApplicationID
	ApplicantID   id.UserID
	Notes         string
	At            time.Time
}

func (e ApplicationRevisionRequested) EventType() string     { return "application_revision_requested" }
func (e ApplicationRevisionRequested) OccurredAt() time.Time { return e.At }
func (e ApplicationRevisionRequested) EventData() map[string]any {
	return map[string]any{
		"application_id": e.ApplicationID.String(),
		"applicant_id":   e.ApplicantID.String(),
		"notes":          e.Notes,
	}
}

// ApplicationApproved records the positive terminal decision.
type ApplicationApproved struct {
	ApplicationID id.ApplicationID
	ApplicantID   id.UserID
	ReviewerID    id.UserID
	At            time.Time
}

func (e ApplicationApproved) EventType() string     { return "application_approved" }
func (e ApplicationApproved) OccurredAt() time.Time { return e.At }
func (e ApplicationApproved) EventData() map[string]any {
	return map[string]any{
		"application_id": e.ApplicationID.String(),
		"applicant_id":   e.ApplicantID.String(),
		"reviewer_id":    e.ReviewerID.String(),
	}
}

// ApplicationRejected records the negative terminal decision.
type ApplicationRejected struct {
	ApplicationID id.ApplicationID
	ApplicantID   id.UserID
	ReviewerID    id.UserID
	Reason        string
	At            time.Time
}

func (e ApplicationRejected) EventType() string     { return "application_rejected" }
func (e ApplicationRejected) OccurredAt() time.Time { return e.At }
func (e ApplicationRejected) EventData() map[string]any {
	return map[string]any{
		"application_id": e.ApplicationID.String(),
		"applicant_id":   e.ApplicantID.String(),
		"reviewer_id":    e.ReviewerID.String(),
		"reason":         e.Reason,
	}
}
