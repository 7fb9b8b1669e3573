// Package domain holds typed identifiers used across the directory and
// reconciliation packages. IDs are distinct types over uuid.UUID so the
// compiler rejects cross-type assignment; construct via the Parse* helpers
// at trust boundaries, since direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "bizdir/pkg/domain-errors"
)

type (
	// UserID identifies an account. Administrators are users whose token
	// carries the admin role; there is no separate reviewer type.
	UserID uuid.UUID
	// BusinessID identifies a directory listing.
	BusinessID uuid.UUID
	// ClaimID identifies a ClaimRequest.
	ClaimID uuid.UUID
	// RegistrationID identifies a RegistrationRequest.
	RegistrationID uuid.UUID
	// CityID identifies a catalog city.
	CityID uuid.UUID
	// CategoryID identifies a catalog category.
	CategoryID uuid.UUID
	// SubcategoryID identifies a catalog subcategory.
	SubcategoryID uuid.UUID
)

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}

// ParseUserID constructs a UserID from external input.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	return UserID(u), err
}

// ParseBusinessID constructs a BusinessID from external input.
func ParseBusinessID(s string) (BusinessID, error) {
	u, err := parseUUID(s)
	return BusinessID(u), err
}

// ParseClaimID constructs a ClaimID from external input.
func ParseClaimID(s string) (ClaimID, error) {
	u, err := parseUUID(s)
	return ClaimID(u), err
}

// ParseRegistrationID constructs a RegistrationID from external input.
func ParseRegistrationID(s string) (RegistrationID, error) {
	u, err := parseUUID(s)
	return RegistrationID(u), err
}

// ParseCityID constructs a CityID from external input.
func ParseCityID(s string) (CityID, error) {
	u, err := parseUUID(s)
	return CityID(u), err
}

// ParseCategoryID constructs a CategoryID from external input.
func ParseCategoryID(s string) (CategoryID, error) {
	u, err := parseUUID(s)
	return CategoryID(u), err
}

// ParseSubcategoryID constructs a SubcategoryID from external input.
func ParseSubcategoryID(s string) (SubcategoryID, error) {
	u, err := parseUUID(s)
	return SubcategoryID(u), err
}

// NewBusinessID returns a fresh random BusinessID.
func NewBusinessID() BusinessID { return BusinessID(uuid.New()) }

// NewClaimID returns a fresh random ClaimID.
func NewClaimID() ClaimID { return ClaimID(uuid.New()) }

// NewRegistrationID returns a fresh random RegistrationID.
func NewRegistrationID() RegistrationID { return RegistrationID(uuid.New()) }

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id BusinessID) String() string     { return uuid.UUID(id).String() }
func (id ClaimID) String() string        { return uuid.UUID(id).String() }
func (id RegistrationID) String() string { return uuid.UUID(id).String() }
func (id CityID) String() string         { return uuid.UUID(id).String() }
func (id CategoryID) String() string     { return uuid.UUID(id).String() }
func (id SubcategoryID) String() string  { return uuid.UUID(id).String() }

func (id UserID) IsZero() bool         { return uuid.UUID(id) == uuid.Nil }
func (id BusinessID) IsZero() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ClaimID) IsZero() bool        { return uuid.UUID(id) == uuid.Nil }
func (id RegistrationID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id CityID) IsZero() bool         { return uuid.UUID(id) == uuid.Nil }
func (id CategoryID) IsZero() bool     { return uuid.UUID(id) == uuid.Nil }
func (id SubcategoryID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }
