package models

import (
	"time"

	"agricert/internal/authz"
	id "agricert/pkg/domain"
)

// StaffRoleUpdated records an admin changing a staff member's role.
type StaffRoleUpdated struct {
	StaffID   id.UserID
	OldRole   authz.Role
	NewRole   authz.Role
	UpdatedBy id.UserID
	At        time.Time
}

func (e StaffRoleUpdated) EventType() string     { return "staff_role_updated" }
func (e StaffRoleUpdated) OccurredAt() time.Time { return e.At }
func (e StaffRoleUpdated) EventData() map[string]any {
	return map[string]any{
		"staff_id":   e.StaffID.String(),
		"old_role":   string(e.OldRole),
		"new_role":   string(e.NewRole),
		"updated_by": e.UpdatedBy.String(),
	}
}
