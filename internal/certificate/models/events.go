package models

import (
	"time"

	id "agricert/pkg/domain"
)

// Domain events for the certificate lifecycle.

// CertificateIssued records a new active certificate.
type CertificateIssued struct {
	CertificateID id.CertificateID
	Number        string
	OwnerID       id.UserID
	FarmID        id.FarmID
	Type          string
	ExpiryDate    time.Time
	IssuedBy      id.UserID
	At            time.Time
}

func (e CertificateIssued) EventType() string     { return "certificate_issued" }
func (e CertificateIssued) OccurredAt() time.Time { return e.At }
func (e CertificateIssued) EventData() map[string]any {
	return map[string]any{
		"certificate_id": e.CertificateID.String(),
		"number":         e.Number,
		"owner_id":       e.OwnerID.String(),
		"farm_id":        e.FarmID.String(),
		"type":           e.Type,
		"expiry_date":    e.ExpiryDate.UTC().Format(time.RFC3339),
		"issued_by":      e.IssuedBy.String(),
	}
}

// CertificateRevoked records the terminal revocation.
type CertificateRevoked struct {
	CertificateID id.CertificateID
	Number        string
	Reason        string
	RevokedBy     id.UserID
	At            time.Time
}

func (e CertificateRevoked) EventType() string     { return "certificate_revoked" }
func (e CertificateRevoked) OccurredAt() time.Time { return e.At }
func (e CertificateRevoked) EventData() map[string]any {
	return map[string]any{
		"certificate_id": e.CertificateID.String(),
		"number":         e.Number,
		"reason":         e.Reason,
		"revoked_by":     e.RevokedBy.String(),
	}
}
