package models

// Status is the certificate lifecycle state. A certificate is born active and
// can only move to revoked; revocation is irreversible.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Valid reports whether the status is one the platform recognizes.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusRevoked
}
