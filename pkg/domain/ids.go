// Package domain holds the typed identifiers shared by every module.
//
// IDs are distinct uuid-backed types so a FarmID can never be passed where an
// ApplicationID is expected. Parse helpers enforce the invariant that IDs are
// valid, non-nil UUIDs at trust boundaries (HTTP, storage).
package domain

import (
	"github.com/google/uuid"

	dErrors "agricert/pkg/domain-errors"
)

type (
	// UserID identifies a platform account (farmer or staff member).
	UserID uuid.UUID
	// FarmID identifies a registered farm.
	FarmID uuid.UUID
	// ApplicationID identifies a certification application.
	ApplicationID uuid.UUID
	// CertificateID identifies an issued certificate.
	CertificateID uuid.UUID
)

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id FarmID) String() string        { return uuid.UUID(id).String() }
func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id CertificateID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id FarmID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id CertificateID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Text marshaling so the typed IDs render as canonical UUID strings in JSON
// and scan cleanly from text database columns.

func (id UserID) MarshalText() ([]byte, error)        { return []byte(id.String()), nil }
func (id FarmID) MarshalText() ([]byte, error)        { return []byte(id.String()), nil }
func (id ApplicationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id CertificateID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = UserID(parsed)
	return nil
}

func (id *FarmID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = FarmID(parsed)
	return nil
}

func (id *ApplicationID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = ApplicationID(parsed)
	return nil
}

func (id *CertificateID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = CertificateID(parsed)
	return nil
}

// NewUserID generates a fresh user identifier.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewFarmID generates a fresh farm identifier.
func NewFarmID() FarmID { return FarmID(uuid.New()) }

// NewApplicationID generates a fresh application identifier.
func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }

// NewCertificateID generates a fresh certificate identifier.
func NewCertificateID() CertificateID { return CertificateID(uuid.New()) }

func parseUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return parsed, nil
}

// ParseUserID validates and converts a raw string into a UserID.
func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

// ParseFarmID validates and converts a raw string into a FarmID.
func ParseFarmID(raw string) (FarmID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return FarmID{}, err
	}
	return FarmID(parsed), nil
}

// ParseApplicationID validates and converts a raw string into an ApplicationID.
func ParseApplicationID(raw string) (ApplicationID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return ApplicationID{}, err
	}
	return ApplicationID(parsed), nil
}

// ParseCertificateID validates and converts a raw string into a CertificateID.
func ParseCertificateID(raw string) (CertificateID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return CertificateID{}, err
	}
	return CertificateID(parsed), nil
}
