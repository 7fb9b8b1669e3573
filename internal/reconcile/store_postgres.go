package reconcile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "bizdir/pkg/domain"
	dErrors "bizdir/pkg/domain-errors"
	"bizdir/pkg/platform/tx"
)

const uniqueViolation = "23505"

// pendingClaimIndex is the partial unique index enforcing at most one
// pending claim per business (WHERE status = 'pending').
const pendingClaimIndex = "claim_requests_pending_business_key"

// PostgresStore persists reconciliation requests in PostgreSQL. All methods
// join a context-carried transaction when one is active, which is how the
// approve paths stay atomic across this store and the directory store.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) InsertClaim(ctx context.Context, claim *ClaimRequest) error {
	q := tx.QuerierFrom(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO claim_requests
			(id, business_id, user_id, contact_name, contact_email, contact_phone, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.UUID(claim.ID), uuid.UUID(claim.BusinessID), uuid.UUID(claim.UserID),
		claim.Contact.Name, claim.Contact.Email, claim.Contact.Phone,
		string(claim.Status), claim.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation && pqErr.Constraint == pendingClaimIndex {
		return dErrors.New(dErrors.CodeConflict, "a claim for this business is already pending")
	}
	if err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetClaim(ctx context.Context, claimID id.ClaimID) (*ClaimRequest, error) {
	q := tx.QuerierFrom(ctx, s.db)
	row := q.QueryRowContext(ctx, `
		SELECT id, business_id, user_id, contact_name, contact_email, contact_phone,
		       status, created_at, reviewed_at, reviewer_id
		FROM claim_requests
		WHERE id = $1
	`, uuid.UUID(claimID))
	claim, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dErrors.New(dErrors.CodeNotFound, "claim request not found")
		}
		return nil, fmt.Errorf("get claim: %w", err)
	}
	return claim, nil
}

// GetClaimForUpdate locks the claim row for the duration of the context
// transaction so concurrent decisions on the same claim serialize.
func (s *PostgresStore) GetClaimForUpdate(ctx context.Context, claimID id.ClaimID) (*ClaimRequest, error) {
	q := tx.QuerierFrom(ctx, s.db)
	row := q.QueryRowContext(ctx, `
		SELECT id, business_id, user_id, contact_name, contact_email, contact_phone,
		       status, created_at, reviewed_at, reviewer_id
		FROM claim_requests
		WHERE id = $1
		FOR UPDATE
	`, uuid.UUID(claimID))
	claim, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dErrors.New(dErrors.CodeNotFound, "claim request not found")
		}
		return nil, fmt.Errorf("get claim for update: %w", err)
	}
	return claim, nil
}

func (s *PostgresStore) ListClaimsByStatus(ctx context.Context, status RequestStatus) ([]*ClaimRequest, error) {
	q := tx.QuerierFrom(ctx, s.db)
	rows, err := q.QueryContext(ctx, `
		SELECT id, business_id, user_id, contact_name, contact_email, contact_phone,
		       status, created_at, reviewed_at, reviewer_id
		FROM claim_requests
		WHERE status = $1
		ORDER BY created_at ASC
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	var out []*ClaimRequest
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("list claims: %w", err)
		}
		out = append(out, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) HasPendingClaim(ctx context.Context, businessID id.BusinessID) (bool, error) {
	q := tx.QuerierFrom(ctx, s.db)
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM claim_requests WHERE business_id = $1 AND status = 'pending'
		)
	`, uuid.UUID(businessID)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check pending claim: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) FinalizeClaim(ctx context.Context, claimID id.ClaimID, expected, next RequestStatus, fin Finalization) error {
	q := tx.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `
		UPDATE claim_requests
		SET status = $2, reviewed_at = $3, reviewer_id = $4
		WHERE id = $1 AND status = $5
	`, uuid.UUID(claimID), string(next), fin.ReviewedAt, uuid.UUID(fin.ReviewerID), string(expected))
	if err != nil {
		return fmt.Errorf("finalize claim: %w", err)
	}
	return s.casOutcome(ctx, res, `SELECT EXISTS (SELECT 1 FROM claim_requests WHERE id = $1)`, uuid.UUID(claimID), "claim request")
}

func (s *PostgresStore) InsertRegistration(ctx context.Context, reg *RegistrationRequest) error {
	q := tx.QuerierFrom(ctx, s.db)
	var subcategoryID any
	if reg.Payload.SubcategoryID != nil {
		subcategoryID = uuid.UUID(*reg.Payload.SubcategoryID)
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO registration_requests
			(id, user_id, name, instagram, city_id, category_id, subcategory_id, notes,
			 contact_name, contact_email, contact_phone, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, uuid.UUID(reg.ID), uuid.UUID(reg.UserID), reg.Payload.Name, reg.Payload.Instagram,
		uuid.UUID(reg.Payload.CityID), uuid.UUID(reg.Payload.CategoryID), subcategoryID,
		reg.Payload.Notes, reg.Contact.Name, reg.Contact.Email, reg.Contact.Phone,
		string(reg.Status), reg.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRegistration(ctx context.Context, regID id.RegistrationID) (*RegistrationRequest, error) {
	q := tx.QuerierFrom(ctx, s.db)
	row := q.QueryRowContext(ctx, `
		SELECT id, user_id, name, instagram, city_id, category_id, subcategory_id, notes,
		       contact_name, contact_email, contact_phone, status, created_at,
		       reviewed_at, reviewer_id, created_business_id
		FROM registration_requests
		WHERE id = $1
	`, uuid.UUID(regID))
	reg, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dErrors.New(dErrors.CodeNotFound, "registration request not found")
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}

// GetRegistrationForUpdate locks the registration row for the duration of
// the context transaction.
func (s *PostgresStore) GetRegistrationForUpdate(ctx context.Context, regID id.RegistrationID) (*RegistrationRequest, error) {
	q := tx.QuerierFrom(ctx, s.db)
	row := q.QueryRowContext(ctx, `
		SELECT id, user_id, name, instagram, city_id, category_id, subcategory_id, notes,
		       contact_name, contact_email, contact_phone, status, created_at,
		       reviewed_at, reviewer_id, created_business_id
		FROM registration_requests
		WHERE id = $1
		FOR UPDATE
	`, uuid.UUID(regID))
	reg, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dErrors.New(dErrors.CodeNotFound, "registration request not found")
		}
		return nil, fmt.Errorf("get registration for update: %w", err)
	}
	return reg, nil
}

func (s *PostgresStore) ListRegistrationsByStatus(ctx context.Context, status RequestStatus) ([]*RegistrationRequest, error) {
	q := tx.QuerierFrom(ctx, s.db)
	rows, err := q.QueryContext(ctx, `
		SELECT id, user_id, name, instagram, city_id, category_id, subcategory_id, notes,
		       contact_name, contact_email, contact_phone, status, created_at,
		       reviewed_at, reviewer_id, created_business_id
		FROM registration_requests
		WHERE status = $1
		ORDER BY created_at ASC
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []*RegistrationRequest
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("list registrations: %w", err)
		}
		out = append(out, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FinalizeRegistration(ctx context.Context, regID id.RegistrationID, expected, next RequestStatus, fin Finalization) error {
	q := tx.QuerierFrom(ctx, s.db)
	var createdBusinessID any
	if fin.CreatedBusinessID != nil {
		createdBusinessID = uuid.UUID(*fin.CreatedBusinessID)
	}
	res, err := q.ExecContext(ctx, `
		UPDATE registration_requests
		SET status = $2, reviewed_at = $3, reviewer_id = $4, created_business_id = $5
		WHERE id = $1 AND status = $6
	`, uuid.UUID(regID), string(next), fin.ReviewedAt, uuid.UUID(fin.ReviewerID),
		createdBusinessID, string(expected))
	if err != nil {
		return fmt.Errorf("finalize registration: %w", err)
	}
	return s.casOutcome(ctx, res, `SELECT EXISTS (SELECT 1 FROM registration_requests WHERE id = $1)`, uuid.UUID(regID), "registration request")
}

// casOutcome distinguishes a lost compare-and-set from a missing row.
func (s *PostgresStore) casOutcome(ctx context.Context, res sql.Result, existsQuery string, arg any, kind string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finalize %s: %w", kind, err)
	}
	if n == 1 {
		return nil
	}
	q := tx.QuerierFrom(ctx, s.db)
	var exists bool
	if err := q.QueryRowContext(ctx, existsQuery, arg).Scan(&exists); err != nil {
		return fmt.Errorf("finalize %s: %w", kind, err)
	}
	if !exists {
		return dErrors.New(dErrors.CodeNotFound, kind+" not found")
	}
	return dErrors.New(dErrors.CodeAlreadyResolved, kind+" already reviewed")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (*ClaimRequest, error) {
	var (
		claim      ClaimRequest
		cid        uuid.UUID
		businessID uuid.UUID
		userID     uuid.UUID
		status     string
		reviewedAt sql.NullTime
		reviewerID uuid.NullUUID
	)
	err := row.Scan(&cid, &businessID, &userID, &claim.Contact.Name, &claim.Contact.Email,
		&claim.Contact.Phone, &status, &claim.CreatedAt, &reviewedAt, &reviewerID)
	if err != nil {
		return nil, err
	}
	claim.ID = id.ClaimID(cid)
	claim.BusinessID = id.BusinessID(businessID)
	claim.UserID = id.UserID(userID)
	claim.Status = RequestStatus(status)
	if reviewedAt.Valid {
		t := reviewedAt.Time
		claim.ReviewedAt = &t
	}
	if reviewerID.Valid {
		reviewer := id.UserID(reviewerID.UUID)
		claim.ReviewerID = &reviewer
	}
	return &claim, nil
}

func scanRegistration(row rowScanner) (*RegistrationRequest, error) {
	var (
		reg               RegistrationRequest
		rid               uuid.UUID
		userID            uuid.UUID
		cityID            uuid.UUID
		categoryID        uuid.UUID
		subcategoryID     uuid.NullUUID
		status            string
		reviewedAt        sql.NullTime
		reviewerID        uuid.NullUUID
		createdBusinessID uuid.NullUUID
	)
	err := row.Scan(&rid, &userID, &reg.Payload.Name, &reg.Payload.Instagram, &cityID,
		&categoryID, &subcategoryID, &reg.Payload.Notes, &reg.Contact.Name,
		&reg.Contact.Email, &reg.Contact.Phone, &status, &reg.CreatedAt,
		&reviewedAt, &reviewerID, &createdBusinessID)
	if err != nil {
		return nil, err
	}
	reg.ID = id.RegistrationID(rid)
	reg.UserID = id.UserID(userID)
	reg.Payload.CityID = id.CityID(cityID)
	reg.Payload.CategoryID = id.CategoryID(categoryID)
	reg.Status = RequestStatus(status)
	if subcategoryID.Valid {
		sub := id.SubcategoryID(subcategoryID.UUID)
		reg.Payload.SubcategoryID = &sub
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		reg.ReviewedAt = &t
	}
	if reviewerID.Valid {
		reviewer := id.UserID(reviewerID.UUID)
		reg.ReviewerID = &reviewer
	}
	if createdBusinessID.Valid {
		created := id.BusinessID(createdBusinessID.UUID)
		reg.CreatedBusinessID = &created
	}
	return &reg, nil
}
