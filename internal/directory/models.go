// Package directory defines the directory-store surface consumed by the
// ownership reconciliation core: businesses plus the catalog lookups needed
// to validate registrations. Catalog CRUD itself lives in the catalog
// service; this package only reads what reconciliation needs and performs
// the two writes the core owns (create-on-approval, set-ownership).
package directory

import (
	"strings"
	"time"

	id "bizdir/pkg/domain"
	dErrors "bizdir/pkg/domain-errors"
)

// BusinessStatus is the listing visibility state. It is unrelated to
// ownership but must default to active when a business is created through
// registration approval.
type BusinessStatus string

const (
	BusinessActive BusinessStatus = "active"
	BusinessPaused BusinessStatus = "paused"
)

// Business is a directory listing. OwnerID is exclusive: at most one owner,
// set only by the reconciliation approve paths, together with ClaimedAt and
// ApprovedAt, exactly once, and never cleared.
type Business struct {
	ID            id.BusinessID
	Slug          string
	Name          string
	Instagram     string
	CityID        id.CityID
	CategoryID    id.CategoryID
	SubcategoryID *id.SubcategoryID
	OwnerID       *id.UserID
	ClaimedAt     *time.Time
	ApprovedAt    *time.Time
	Status        BusinessStatus
	CreatedAt     time.Time
}

// Owned reports whether the listing already has an owner.
func (b *Business) Owned() bool { return b.OwnerID != nil }

// Slugify derives a URL slug from a business name. Apostrophes vanish
// ("Jane's" -> "janes"); other punctuation and whitespace collapse into
// single dashes. Uniqueness is enforced by the store, which suffixes the
// business id on collision.
func Slugify(name string) string {
	var sb strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastDash = false
		case r == '\'' || r == '’':
		case !lastDash:
			sb.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(sb.String(), "-")
}

// ErrBusinessNotFound is the canonical missing-business error surfaced to
// both gateways.
func ErrBusinessNotFound() error {
	return dErrors.New(dErrors.CodeNotFound, "business not found")
}
