// Package authz supplies the caller's role and permission set.
//
// Services never fetch identity themselves: the HTTP layer validates the
// bearer token, builds Claims, and stashes them in the request context. Use
// cases only consult Allows and the owner check.
package authz

import (
	id "agricert/pkg/domain"
)

// Role is the coarse-grained classification carried in the access token.
type Role string

const (
	// RoleFarmer owns farms and applications but holds no review powers.
	RoleFarmer Role = "farmer"
	// RoleReviewer handles application and farm review and certificate
	// issuance.
	RoleReviewer Role = "reviewer"
	// RoleAdmin holds every permission, including staff management.
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one the platform recognizes.
func (r Role) Valid() bool {
	switch r {
	case RoleFarmer, RoleReviewer, RoleAdmin:
		return true
	}
	return false
}

// Permission gates a single use-case operation.
type Permission string

const (
	PermApplicationReview Permission = "application:review"
	PermFarmReview        Permission = "farm:review"
	PermCertificateIssue  Permission = "certificate:issue"
	PermCertificateRevoke Permission = "certificate:revoke"
	PermStaffManage       Permission = "staff:manage"
)

// rolePermissions is the static grant table. Farmers act only through
// ownership checks, so they carry no entries here.
var rolePermissions = map[Role][]Permission{
	RoleReviewer: {
		PermApplicationReview,
		PermFarmReview,
		PermCertificateIssue,
		PermCertificateRevoke,
	},
	RoleAdmin: {
		PermApplicationReview,
		PermFarmReview,
		PermCertificateIssue,
		PermCertificateRevoke,
		PermStaffManage,
	},
}

// Claims describes the authenticated caller. Built once per request by the
// auth middleware and treated as read-only afterwards.
type Claims struct {
	UserID id.UserID
	Role   Role
}

// Allows reports whether the caller's role grants the permission.
func (c Claims) Allows(perm Permission) bool {
	for _, granted := range rolePermissions[c.Role] {
		if granted == perm {
			return true
		}
	}
	return false
}

// Owns reports whether the caller is the given user. Used for owner-only
// visibility on farms, applications, and certificates.
func (c Claims) Owns(userID id.UserID) bool {
	return !c.UserID.IsNil() && c.UserID == userID
}

// IsStaff reports whether the caller holds any staff role.
func (c Claims) IsStaff() bool {
	return c.Role == RoleReviewer || c.Role == RoleAdmin
}
