package models

// Status is the farm lifecycle state.
//
// Transitions: pending_review → under_review → {approved, rejected}.
// Approved and rejected are terminal; further changes require a new
// registration or an appeal cycle, which this module does not model.
type Status string

const (
	StatusPendingReview Status = "pending_review"
	StatusUnderReview   Status = "under_review"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
)

var transitions = map[Status][]Status{
	StatusPendingReview: {StatusUnderReview},
	StatusUnderReview:   {StatusApproved, StatusRejected},
}

// Valid reports whether the status is part of the farm lifecycle.
func (s Status) Valid() bool {
	switch s {
	case StatusPendingReview, StatusUnderReview, StatusApproved, StatusRejected:
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
