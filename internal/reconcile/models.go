// Package reconcile defines the ownership reconciliation request entities
// and their persistence contract. A request is created pending by the
// submission gateway and resolved exactly once by an administrator decision.
package reconcile

import (
	"strings"
	"time"

	id "bizdir/pkg/domain"
	dErrors "bizdir/pkg/domain-errors"
)

// RequestStatus is the lifecycle state shared by both request kinds.
//
//	pending --approve--> approved   (terminal)
//	pending --reject---> rejected   (terminal)
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// Terminal reports whether no further transitions are permitted.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Decision is an administrator's verdict on a pending request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision constructs a Decision from external input.
func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case DecisionApprove, DecisionReject:
		return Decision(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "decision must be approve or reject")
	}
}

// ContactInfo is the claimant's contact snapshot taken at submission time.
// It is supplied explicitly rather than re-derived from the account because
// the phone number is request-specific.
type ContactInfo struct {
	Name  string
	Email string
	Phone string
}

// Validate enforces the snapshot's required fields.
func (c ContactInfo) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "contact name is required")
	}
	if strings.TrimSpace(c.Email) == "" || !strings.Contains(c.Email, "@") {
		return dErrors.New(dErrors.CodeValidation, "contact email is required")
	}
	return nil
}

// ClaimRequest asks to link an existing, unowned business to the claimant.
type ClaimRequest struct {
	ID         id.ClaimID
	BusinessID id.BusinessID
	UserID     id.UserID
	Contact    ContactInfo
	Status     RequestStatus
	CreatedAt  time.Time
	ReviewedAt *time.Time
	ReviewerID *id.UserID
}

// BusinessPayload is the full proposed-business data carried by a
// registration until approval creates the listing.
type BusinessPayload struct {
	Name          string
	Instagram     string
	CityID        id.CityID
	CategoryID    id.CategoryID
	SubcategoryID *id.SubcategoryID
	Notes         string
}

// Validate enforces presence of the required fields. Reference existence is
// checked separately against the directory store.
func (p BusinessPayload) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "business name is required")
	}
	if strings.TrimSpace(p.Instagram) == "" {
		return dErrors.New(dErrors.CodeValidation, "instagram handle is required")
	}
	if p.CityID.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "city is required")
	}
	if p.CategoryID.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "category is required")
	}
	return nil
}

// RegistrationRequest proposes a brand-new business. No Business record
// exists until an administrator approves.
type RegistrationRequest struct {
	ID                id.RegistrationID
	UserID            id.UserID
	Payload           BusinessPayload
	Contact           ContactInfo
	Status            RequestStatus
	CreatedAt         time.Time
	ReviewedAt        *time.Time
	ReviewerID        *id.UserID
	CreatedBusinessID *id.BusinessID
}
