package models

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	id "agricert/pkg/domain"
	dErrors "agricert/pkg/domain-errors"
)

// Certificate is the aggregate root for an issued certification document.
//
// Invariants:
//   - Number is unique and never changes after issuance
//   - ExpiryDate is strictly after IssueDate
//   - Revocation is terminal and keeps the original reason and actor; a
//     second revocation fails without touching either
//   - Version increments on every persisted change (optimistic concurrency)
type Certificate struct {
	ID               id.CertificateID `json:"id"`
	Number           string           `json:"number"`
	OwnerID          id.UserID        `json:"owner_id"`
	FarmID           id.FarmID        `json:"farm_id"`
	Type             string           `json:"type"`
	Status           Status           `json:"status"`
	IssueDate        time.Time        `json:"issue_date"`
	ExpiryDate       time.Time        `json:"expiry_date"`
	IssuedBy         id.UserID        `json:"issued_by"`
	RevokedBy        id.UserID        `json:"revoked_by,omitzero"`
	RevocationReason string           `json:"revocation_reason,omitempty"`
	RevokedAt        time.Time        `json:"revoked_at,omitzero"`
	Version          int64            `json:"version"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// NewCertificate issues an active certificate.
func NewCertificate(certID id.CertificateID, number string, ownerID id.UserID, farmID id.FarmID,
	certType string, issueDate, expiryDate time.Time, issuedBy id.UserID, now time.Time,
) (*Certificate, error) {
	number = strings.TrimSpace(number)
	certType = strings.TrimSpace(certType)
	switch {
	case number == "":
		return nil, dErrors.New(dErrors.CodeValidation, "certificate number is required")
	case certType == "":
		return nil, dErrors.New(dErrors.CodeValidation, "certificate type is required")
	case ownerID.IsNil():
		return nil, dErrors.New(dErrors.CodeValidation, "owner is required")
	case farmID.IsNil():
		return nil, dErrors.New(dErrors.CodeValidation, "farm is required")
	case issuedBy.IsNil():
		return nil, dErrors.New(dErrors.CodeValidation, "issuer is required")
	case !expiryDate.After(issueDate):
		return nil, dErrors.New(dErrors.CodeValidation, "expiry date must be after issue date")
	}
	return &Certificate{
		ID:         certID,
		Number:     number,
		OwnerID:    ownerID,
		FarmID:     farmID,
		Type:       certType,
		Status:     StatusActive,
		IssueDate:  issueDate,
		ExpiryDate: expiryDate,
		IssuedBy:   issuedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Revoke permanently invalidates the certificate. A revoked certificate
// cannot be revoked again; the first reason and actor stand.
func (c *Certificate) Revoke(reason string, revokedBy id.UserID, now time.Time) error {
	if c.Status == StatusRevoked {
		return dErrors.New(dErrors.CodeInvalidState, "certificate is already revoked")
	}
	if strings.TrimSpace(reason) == "" {
		return dErrors.New(dErrors.CodeValidation, "revocation reason is required")
	}
	if revokedBy.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "revoking staff id is required")
	}
	c.Status = StatusRevoked
	c.RevocationReason = strings.TrimSpace(reason)
	c.RevokedBy = revokedBy
	c.RevokedAt = now
	c.UpdatedAt = now
	return nil
}

// IsValid reports whether the certificate vouches for the farm at the given
// instant: active and inside the validity window, bounds inclusive. Pure.
func (c *Certificate) IsValid(at time.Time) bool {
	if c.Status != StatusActive {
		return false
	}
	return !at.Before(c.IssueDate) && !at.After(c.ExpiryDate)
}

// Fingerprint is a stable digest over the immutable identifying fields.
// Printed on the document so a verifier can detect tampering offline.
func (c *Certificate) Fingerprint() string {
	payload := fmt.Sprintf("%s|%s|%s|%s|%s",
		c.Number, c.OwnerID, c.FarmID,
		c.IssueDate.UTC().Format(time.RFC3339),
		c.ExpiryDate.UTC().Format(time.RFC3339))
	sum := blake2b.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:16])
}
