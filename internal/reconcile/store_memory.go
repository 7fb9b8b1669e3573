package reconcile

import (
	"context"
	"sort"
	"sync"

	id "bizdir/pkg/domain"
	dErrors "bizdir/pkg/domain-errors"
)

// InMemoryStore is a map-backed request store for development and tests.
// The status checks inside each method make individual operations atomic;
// cross-store atomicity for the approve paths is provided by the service's
// transaction boundary.
type InMemoryStore struct {
	mu            sync.RWMutex
	claims        map[id.ClaimID]*ClaimRequest
	registrations map[id.RegistrationID]*RegistrationRequest
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		claims:        make(map[id.ClaimID]*ClaimRequest),
		registrations: make(map[id.RegistrationID]*RegistrationRequest),
	}
}

func (s *InMemoryStore) InsertClaim(_ context.Context, claim *ClaimRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.claims {
		if existing.BusinessID == claim.BusinessID && existing.Status == StatusPending {
			return dErrors.New(dErrors.CodeConflict, "a claim for this business is already pending")
		}
	}
	clone := *claim
	s.claims[claim.ID] = &clone
	return nil
}

func (s *InMemoryStore) GetClaim(_ context.Context, claimID id.ClaimID) (*ClaimRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	claim, ok := s.claims[claimID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "claim request not found")
	}
	clone := *claim
	return &clone, nil
}

// GetClaimForUpdate is GetClaim; the transaction boundary's mutex already
// serializes memory-store decisions.
func (s *InMemoryStore) GetClaimForUpdate(ctx context.Context, claimID id.ClaimID) (*ClaimRequest, error) {
	return s.GetClaim(ctx, claimID)
}

func (s *InMemoryStore) ListClaimsByStatus(_ context.Context, status RequestStatus) ([]*ClaimRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*ClaimRequest
	for _, claim := range s.claims {
		if claim.Status == status {
			clone := *claim
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) HasPendingClaim(_ context.Context, businessID id.BusinessID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, claim := range s.claims {
		if claim.BusinessID == businessID && claim.Status == StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) FinalizeClaim(_ context.Context, claimID id.ClaimID, expected, next RequestStatus, fin Finalization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	claim, ok := s.claims[claimID]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "claim request not found")
	}
	if claim.Status != expected {
		return dErrors.New(dErrors.CodeAlreadyResolved, "claim request already reviewed")
	}
	reviewedAt := fin.ReviewedAt
	reviewerID := fin.ReviewerID
	claim.Status = next
	claim.ReviewedAt = &reviewedAt
	claim.ReviewerID = &reviewerID
	return nil
}

func (s *InMemoryStore) InsertRegistration(_ context.Context, reg *RegistrationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *reg
	s.registrations[reg.ID] = &clone
	return nil
}

func (s *InMemoryStore) GetRegistration(_ context.Context, regID id.RegistrationID) (*RegistrationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.registrations[regID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "registration request not found")
	}
	clone := *reg
	return &clone, nil
}

// GetRegistrationForUpdate is GetRegistration under the same reasoning as
// GetClaimForUpdate.
func (s *InMemoryStore) GetRegistrationForUpdate(ctx context.Context, regID id.RegistrationID) (*RegistrationRequest, error) {
	return s.GetRegistration(ctx, regID)
}

func (s *InMemoryStore) ListRegistrationsByStatus(_ context.Context, status RequestStatus) ([]*RegistrationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*RegistrationRequest
	for _, reg := range s.registrations {
		if reg.Status == status {
			clone := *reg
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) FinalizeRegistration(_ context.Context, regID id.RegistrationID, expected, next RequestStatus, fin Finalization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[regID]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "registration request not found")
	}
	if reg.Status != expected {
		return dErrors.New(dErrors.CodeAlreadyResolved, "registration request already reviewed")
	}
	reviewedAt := fin.ReviewedAt
	reviewerID := fin.ReviewerID
	reg.Status = next
	reg.ReviewedAt = &reviewedAt
	reg.ReviewerID = &reviewerID
	reg.CreatedBusinessID = fin.CreatedBusinessID
	return nil
}
