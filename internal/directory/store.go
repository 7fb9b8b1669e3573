package directory

import (
	"context"
	"time"

	id "bizdir/pkg/domain"
)

// Store is the directory persistence surface the reconciliation core
// consumes. Implementations must honor context-carried transactions so the
// approve paths can span the directory and request stores atomically.
type Store interface {
	// GetBusiness returns the listing or CodeNotFound.
	GetBusiness(ctx context.Context, businessID id.BusinessID) (*Business, error)

	// GetBusinessForUpdate is GetBusiness with an exclusive row lock when
	// called inside a transaction, so ownership checks cannot race a
	// concurrent approval.
	GetBusinessForUpdate(ctx context.Context, businessID id.BusinessID) (*Business, error)

	// CreateBusiness inserts a new listing. Used only by registration
	// approval; the business arrives already owned and active.
	CreateBusiness(ctx context.Context, b *Business) error

	// SetOwnership links a business to its owner. The write is conditional
	// on the business still being unowned: CodeConflict when another
	// approval won the race, CodeNotFound when the listing is gone.
	SetOwnership(ctx context.Context, businessID id.BusinessID, ownerID id.UserID, claimedAt, approvedAt time.Time) error

	// Catalog reference checks used to validate registrations.
	CityExists(ctx context.Context, cityID id.CityID) (bool, error)
	CategoryExists(ctx context.Context, categoryID id.CategoryID) (bool, error)
	SubcategoryExists(ctx context.Context, subcategoryID id.SubcategoryID) (bool, error)
}
