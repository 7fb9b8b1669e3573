package directory

import (
	"context"
	"sync"
	"time"

	id "bizdir/pkg/domain"
	dErrors "bizdir/pkg/domain-errors"
)

// InMemoryStore is a map-backed directory store for development and tests.
type InMemoryStore struct {
	mu            sync.RWMutex
	businesses    map[id.BusinessID]*Business
	cities        map[id.CityID]bool
	categories    map[id.CategoryID]bool
	subcategories map[id.SubcategoryID]bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		businesses:    make(map[id.BusinessID]*Business),
		cities:        make(map[id.CityID]bool),
		categories:    make(map[id.CategoryID]bool),
		subcategories: make(map[id.SubcategoryID]bool),
	}
}

// SeedCity, SeedCategory, and SeedSubcategory register catalog entries.
// The catalog service owns these records in production.
func (s *InMemoryStore) SeedCity(cityID id.CityID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cities[cityID] = true
}

func (s *InMemoryStore) SeedCategory(categoryID id.CategoryID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[categoryID] = true
}

func (s *InMemoryStore) SeedSubcategory(subcategoryID id.SubcategoryID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subcategories[subcategoryID] = true
}

// RemoveCity unregisters a city, mimicking catalog changes between
// submission and review.
func (s *InMemoryStore) RemoveCity(cityID id.CityID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cities, cityID)
}

// RemoveBusiness mimics an unrelated catalog deletion while a claim is
// pending.
func (s *InMemoryStore) RemoveBusiness(businessID id.BusinessID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.businesses, businessID)
}

func (s *InMemoryStore) GetBusiness(_ context.Context, businessID id.BusinessID) (*Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.businesses[businessID]
	if !ok {
		return nil, ErrBusinessNotFound()
	}
	clone := *b
	return &clone, nil
}

// GetBusinessForUpdate is GetBusiness; the transaction boundary's mutex
// already serializes memory-store mutations.
func (s *InMemoryStore) GetBusinessForUpdate(ctx context.Context, businessID id.BusinessID) (*Business, error) {
	return s.GetBusiness(ctx, businessID)
}

func (s *InMemoryStore) CreateBusiness(_ context.Context, b *Business) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.businesses[b.ID]; ok {
		return dErrors.New(dErrors.CodeConflict, "business id already exists")
	}
	// Same uniqueness contract as the businesses_slug_key constraint in
	// Postgres: suffix the id on collision, give up on a second one.
	if s.slugTaken(b.Slug) {
		slug := b.Slug + "-" + b.ID.String()[:8]
		if s.slugTaken(slug) {
			return dErrors.New(dErrors.CodeConflict, "business slug already exists")
		}
		b.Slug = slug
	}
	clone := *b
	s.businesses[b.ID] = &clone
	return nil
}

func (s *InMemoryStore) slugTaken(slug string) bool {
	for _, existing := range s.businesses {
		if existing.Slug == slug {
			return true
		}
	}
	return false
}

func (s *InMemoryStore) SetOwnership(_ context.Context, businessID id.BusinessID, ownerID id.UserID, claimedAt, approvedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.businesses[businessID]
	if !ok {
		return ErrBusinessNotFound()
	}
	if b.OwnerID != nil {
		return dErrors.New(dErrors.CodeConflict, "business already has an owner")
	}
	owner := ownerID
	claimed := claimedAt
	approved := approvedAt
	b.OwnerID = &owner
	b.ClaimedAt = &claimed
	b.ApprovedAt = &approved
	return nil
}

func (s *InMemoryStore) CityExists(_ context.Context, cityID id.CityID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cities[cityID], nil
}

func (s *InMemoryStore) CategoryExists(_ context.Context, categoryID id.CategoryID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories[categoryID], nil
}

func (s *InMemoryStore) SubcategoryExists(_ context.Context, subcategoryID id.SubcategoryID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subcategories[subcategoryID], nil
}
