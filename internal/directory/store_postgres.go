package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "bizdir/pkg/domain"
	dErrors "bizdir/pkg/domain-errors"
	"bizdir/pkg/platform/tx"
)

// PostgresStore persists directory records in PostgreSQL. All methods join a
// context-carried transaction when one is active.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetBusiness(ctx context.Context, businessID id.BusinessID) (*Business, error) {
	q := tx.QuerierFrom(ctx, s.db)
	row := q.QueryRowContext(ctx, `
		SELECT id, slug, name, instagram, city_id, category_id, subcategory_id,
		       owner_id, claimed_at, approved_at, status, created_at
		FROM businesses
		WHERE id = $1
	`, uuid.UUID(businessID))
	return scanBusiness(row)
}

// GetBusinessForUpdate locks the business row for the duration of the
// context transaction so the ownership check and dependent writes are one
// atomic unit.
func (s *PostgresStore) GetBusinessForUpdate(ctx context.Context, businessID id.BusinessID) (*Business, error) {
	q := tx.QuerierFrom(ctx, s.db)
	row := q.QueryRowContext(ctx, `
		SELECT id, slug, name, instagram, city_id, category_id, subcategory_id,
		       owner_id, claimed_at, approved_at, status, created_at
		FROM businesses
		WHERE id = $1
		FOR UPDATE
	`, uuid.UUID(businessID))
	return scanBusiness(row)
}

func (s *PostgresStore) CreateBusiness(ctx context.Context, b *Business) error {
	q := tx.QuerierFrom(ctx, s.db)
	var subcategoryID any
	if b.SubcategoryID != nil {
		subcategoryID = uuid.UUID(*b.SubcategoryID)
	}
	var ownerID any
	if b.OwnerID != nil {
		ownerID = uuid.UUID(*b.OwnerID)
	}
	// DO NOTHING instead of erroring on a taken slug: a unique violation
	// would abort the surrounding transaction and doom the retry.
	insert := func(slug string) (bool, error) {
		res, err := q.ExecContext(ctx, `
			INSERT INTO businesses
				(id, slug, name, instagram, city_id, category_id, subcategory_id,
				 owner_id, claimed_at, approved_at, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT ON CONSTRAINT businesses_slug_key DO NOTHING
		`, uuid.UUID(b.ID), slug, b.Name, b.Instagram, uuid.UUID(b.CityID), uuid.UUID(b.CategoryID),
			subcategoryID, ownerID, b.ClaimedAt, b.ApprovedAt, string(b.Status), b.CreatedAt)
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return false, err
		}
		return n == 1, nil
	}

	inserted, err := insert(b.Slug)
	if err != nil {
		return fmt.Errorf("create business: %w", err)
	}
	if !inserted {
		// Slug taken by another listing; suffix the id to keep it unique.
		slug := b.Slug + "-" + b.ID.String()[:8]
		inserted, err = insert(slug)
		if err != nil {
			return fmt.Errorf("create business: %w", err)
		}
		if !inserted {
			return dErrors.New(dErrors.CodeConflict, "business slug already exists")
		}
		b.Slug = slug
	}
	return nil
}

func (s *PostgresStore) SetOwnership(ctx context.Context, businessID id.BusinessID, ownerID id.UserID, claimedAt, approvedAt time.Time) error {
	q := tx.QuerierFrom(ctx, s.db)
	// Conditional on the listing still being unowned so a racing approval
	// cannot produce a second owner.
	res, err := q.ExecContext(ctx, `
		UPDATE businesses
		SET owner_id = $2, claimed_at = $3, approved_at = $4
		WHERE id = $1 AND owner_id IS NULL
	`, uuid.UUID(businessID), uuid.UUID(ownerID), claimedAt, approvedAt)
	if err != nil {
		return fmt.Errorf("set business ownership: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set business ownership: %w", err)
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM businesses WHERE id = $1)`, uuid.UUID(businessID)).Scan(&exists); err != nil {
		return fmt.Errorf("set business ownership: %w", err)
	}
	if !exists {
		return ErrBusinessNotFound()
	}
	return dErrors.New(dErrors.CodeConflict, "business already has an owner")
}

func (s *PostgresStore) CityExists(ctx context.Context, cityID id.CityID) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM cities WHERE id = $1)`, uuid.UUID(cityID))
}

func (s *PostgresStore) CategoryExists(ctx context.Context, categoryID id.CategoryID) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, uuid.UUID(categoryID))
}

func (s *PostgresStore) SubcategoryExists(ctx context.Context, subcategoryID id.SubcategoryID) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM subcategories WHERE id = $1)`, uuid.UUID(subcategoryID))
}

func (s *PostgresStore) exists(ctx context.Context, query string, arg any) (bool, error) {
	q := tx.QuerierFrom(ctx, s.db)
	var exists bool
	if err := q.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("catalog existence check: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBusiness(row rowScanner) (*Business, error) {
	var (
		b             Business
		bid, cityID   uuid.UUID
		categoryID    uuid.UUID
		subcategoryID uuid.NullUUID
		ownerID       uuid.NullUUID
		claimedAt     sql.NullTime
		approvedAt    sql.NullTime
		status        string
	)
	err := row.Scan(&bid, &b.Slug, &b.Name, &b.Instagram, &cityID, &categoryID,
		&subcategoryID, &ownerID, &claimedAt, &approvedAt, &status, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBusinessNotFound()
		}
		return nil, fmt.Errorf("get business: %w", err)
	}
	b.ID = id.BusinessID(bid)
	b.CityID = id.CityID(cityID)
	b.CategoryID = id.CategoryID(categoryID)
	b.Status = BusinessStatus(status)
	if subcategoryID.Valid {
		sub := id.SubcategoryID(subcategoryID.UUID)
		b.SubcategoryID = &sub
	}
	if ownerID.Valid {
		owner := id.UserID(ownerID.UUID)
		b.OwnerID = &owner
	}
	if claimedAt.Valid {
		t := claimedAt.Time
		b.ClaimedAt = &t
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		b.ApprovedAt = &t
	}
	return &b, nil
}
