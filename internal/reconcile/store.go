package reconcile

import (
	"context"
	"time"

	id "bizdir/pkg/domain"
)

// Finalization carries the metadata written when a request leaves pending.
// CreatedBusinessID is set only when approving a registration.
type Finalization struct {
	ReviewedAt        time.Time
	ReviewerID        id.UserID
	CreatedBusinessID *id.BusinessID
}

// Store is the request persistence contract. The two Finalize methods are
// compare-and-set transitions: they succeed only when the request is still
// in the expected status, returning CodeAlreadyResolved otherwise, so two
// racing administrators cannot both win. Implementations must honor
// context-carried transactions.
type Store interface {
	InsertClaim(ctx context.Context, claim *ClaimRequest) error
	GetClaim(ctx context.Context, claimID id.ClaimID) (*ClaimRequest, error)
	// GetClaimForUpdate is GetClaim with an exclusive row lock when called
	// inside a transaction, so two administrators deciding the same claim
	// serialize on it and the loser observes the terminal status.
	GetClaimForUpdate(ctx context.Context, claimID id.ClaimID) (*ClaimRequest, error)
	// ListClaimsByStatus returns claims oldest-first so administrators
	// review in FIFO order.
	ListClaimsByStatus(ctx context.Context, status RequestStatus) ([]*ClaimRequest, error)
	// HasPendingClaim reports whether any pending claim targets the business.
	HasPendingClaim(ctx context.Context, businessID id.BusinessID) (bool, error)
	// FinalizeClaim transitions expected→next atomically.
	FinalizeClaim(ctx context.Context, claimID id.ClaimID, expected, next RequestStatus, fin Finalization) error

	InsertRegistration(ctx context.Context, reg *RegistrationRequest) error
	GetRegistration(ctx context.Context, regID id.RegistrationID) (*RegistrationRequest, error)
	// GetRegistrationForUpdate mirrors GetClaimForUpdate for registrations.
	GetRegistrationForUpdate(ctx context.Context, regID id.RegistrationID) (*RegistrationRequest, error)
	ListRegistrationsByStatus(ctx context.Context, status RequestStatus) ([]*RegistrationRequest, error)
	FinalizeRegistration(ctx context.Context, regID id.RegistrationID, expected, next RequestStatus, fin Finalization) error
}
