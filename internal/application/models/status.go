package models

// Status is the certification-application lifecycle state.
//
// Transitions: draft → submitted → under_review → {revision_required →
// submitted, approved, rejected}. Approved and rejected are terminal. Status
// never moves backward except through the revision_required re-submission
// path.
type Status string

const (
	StatusDraft            Status = "draft"
	StatusSubmitted        Status = "submitted"
	StatusUnderReview      Status = "under_review"
	StatusRevisionRequired Status = "revision_required"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
)

var transitions = map[Status][]Status{
	StatusDraft:            {StatusSubmitted},
	StatusSubmitted:        {StatusUnderReview},
	StatusUnderReview:      {StatusRevisionRequired, StatusApproved, StatusRejected},
	StatusRevisionRequired: {StatusSubmitted},
}

// Valid reports whether the status is part of the application lifecycle.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusRevisionRequired, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves this status.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0 && s.Valid()
}

// CanTransitionTo reports whether the lifecycle permits moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
