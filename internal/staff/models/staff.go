// Package models holds the staff aggregate: the reviewers and admins who
// operate the platform.
package models

import (
	"strings"
	"time"

	"agricert/internal/authz"
	id "agricert/pkg/domain"
	dErrors "agricert/pkg/domain-errors"
)

// Staff is a platform operator. Role changes are the only mutation; the
// farmer role is not a staff role and is rejected.
type Staff struct {
	ID        id.UserID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      authz.Role `json:"role"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewStaff creates a staff member with the given role.
func NewStaff(staffID id.UserID, name, email string, role authz.Role, now time.Time) (*Staff, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	switch {
	case name == "":
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	case email == "" || !strings.Contains(email, "@"):
		return nil, dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if err := validateStaffRole(role); err != nil {
		return nil, err
	}
	return &Staff{
		ID:        staffID,
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ChangeRole replaces the staff member's role. A no-op change is rejected so
// the audit trail never records empty updates.
func (s *Staff) ChangeRole(role authz.Role, now time.Time) error {
	if err := validateStaffRole(role); err != nil {
		return err
	}
	if s.Role == role {
		return dErrors.Newf(dErrors.CodeValidation, "staff member already holds role %q", role)
	}
	s.Role = role
	s.UpdatedAt = now
	return nil
}

func validateStaffRole(role authz.Role) error {
	if !role.Valid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown role %q", role)
	}
	if role == authz.RoleFarmer {
		return dErrors.New(dErrors.CodeValidation, "farmer is not a staff role")
	}
	return nil
}
