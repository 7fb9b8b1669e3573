package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "bizdir/pkg/domain"
	dErrors "bizdir/pkg/domain-errors"
)

func newClaim(businessID id.BusinessID, createdAt time.Time) *ClaimRequest {
	return &ClaimRequest{
		ID:         id.NewClaimID(),
		BusinessID: businessID,
		UserID:     id.UserID(uuid.New()),
		Contact:    ContactInfo{Name: "Ada", Email: "ada@example.com"},
		Status:     StatusPending,
		CreatedAt:  createdAt,
	}
}

func TestInMemoryStore_PendingClaimExclusivity(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	businessID := id.NewBusinessID()
	now := time.Now().UTC()

	require.NoError(t, store.InsertClaim(ctx, newClaim(businessID, now)))

	err := store.InsertClaim(ctx, newClaim(businessID, now))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	// A different business is unaffected.
	require.NoError(t, store.InsertClaim(ctx, newClaim(id.NewBusinessID(), now)))

	pending, err := store.HasPendingClaim(ctx, businessID)
	require.NoError(t, err)
	assert.True(t, pending)
}

func TestInMemoryStore_FinalizeClaimCAS(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	claim := newClaim(id.NewBusinessID(), time.Now().UTC())
	require.NoError(t, store.InsertClaim(ctx, claim))

	reviewer := id.UserID(uuid.New())
	reviewedAt := time.Now().UTC()
	fin := Finalization{ReviewedAt: reviewedAt, ReviewerID: reviewer}

	require.NoError(t, store.FinalizeClaim(ctx, claim.ID, StatusPending, StatusApproved, fin))

	got, err := store.GetClaim(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
	require.NotNil(t, got.ReviewerID)
	assert.Equal(t, reviewer, *got.ReviewerID)
	assert.Equal(t, reviewedAt, *got.ReviewedAt)

	// Second finalize against the consumed pending status fails.
	err = store.FinalizeClaim(ctx, claim.ID, StatusPending, StatusRejected, fin)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyResolved))

	// Unknown id is not_found, never already_resolved.
	err = store.FinalizeClaim(ctx, id.NewClaimID(), StatusPending, StatusApproved, fin)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestInMemoryStore_ApprovedClaimFreesNothing(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	businessID := id.NewBusinessID()
	claim := newClaim(businessID, time.Now().UTC())
	require.NoError(t, store.InsertClaim(ctx, claim))

	fin := Finalization{ReviewedAt: time.Now().UTC(), ReviewerID: id.UserID(uuid.New())}
	require.NoError(t, store.FinalizeClaim(ctx, claim.ID, StatusPending, StatusRejected, fin))

	// Pending slot is released on rejection.
	pending, err := store.HasPendingClaim(ctx, businessID)
	require.NoError(t, err)
	assert.False(t, pending)
	require.NoError(t, store.InsertClaim(ctx, newClaim(businessID, time.Now().UTC())))
}

func TestInMemoryStore_ListClaimsOldestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	late := newClaim(id.NewBusinessID(), base.Add(2*time.Hour))
	early := newClaim(id.NewBusinessID(), base)
	mid := newClaim(id.NewBusinessID(), base.Add(time.Hour))
	for _, c := range []*ClaimRequest{late, early, mid} {
		require.NoError(t, store.InsertClaim(ctx, c))
	}

	got, err := store.ListClaimsByStatus(ctx, StatusPending)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, early.ID, got[0].ID)
	assert.Equal(t, mid.ID, got[1].ID)
	assert.Equal(t, late.ID, got[2].ID)
}

func TestInMemoryStore_FinalizeRegistrationRecordsBusiness(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	reg := &RegistrationRequest{
		ID:     id.NewRegistrationID(),
		UserID: id.UserID(uuid.New()),
		Payload: BusinessPayload{
			Name:       "Night Owl Coffee",
			Instagram:  "nightowl",
			CityID:     id.CityID(uuid.New()),
			CategoryID: id.CategoryID(uuid.New()),
		},
		Contact:   ContactInfo{Name: "Ada", Email: "ada@example.com"},
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.InsertRegistration(ctx, reg))

	createdID := id.NewBusinessID()
	fin := Finalization{
		ReviewedAt:        time.Now().UTC(),
		ReviewerID:        id.UserID(uuid.New()),
		CreatedBusinessID: &createdID,
	}
	require.NoError(t, store.FinalizeRegistration(ctx, reg.ID, StatusPending, StatusApproved, fin))

	got, err := store.GetRegistration(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
	require.NotNil(t, got.CreatedBusinessID)
	assert.Equal(t, createdID, *got.CreatedBusinessID)

	err = store.FinalizeRegistration(ctx, reg.ID, StatusPending, StatusRejected, fin)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyResolved))
}

func TestInMemoryStore_ReturnsClones(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	claim := newClaim(id.NewBusinessID(), time.Now().UTC())
	require.NoError(t, store.InsertClaim(ctx, claim))

	got, err := store.GetClaim(ctx, claim.ID)
	require.NoError(t, err)
	got.Status = StatusApproved

	fresh, err := store.GetClaim(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, fresh.Status)
}
