package repositories

import (
	"cmp"
	"context"
	"kolimeet-service/internal/domain"
	"kolimeet-service/internal/ports"
	"slices"
	"sync"
)

// MemoryListingStore keeps listings in process. It backs tests and the
// dbtool preview command and applies the same filter semantics as the SQL
// stores.
type MemoryListingStore struct {
	mu      sync.RWMutex
	trips   map[string]*domain.Trip
	parcels map[string]*domain.Parcel
	fetches int
}

func NewMemoryListingStore(trips []*domain.Trip, parcels []*domain.Parcel) *MemoryListingStore {
	s := &MemoryListingStore{
		trips:   make(map[string]*domain.Trip, len(trips)),
		parcels: make(map[string]*domain.Parcel, len(parcels)),
	}
	for _, t := range trips {
		s.trips[t.ID] = t
	}
	for _, p := range parcels {
		s.parcels[p.ID] = p
	}
	return s
}

// Fetches returns how many candidate queries the store has served.
func (s *MemoryListingStore) Fetches() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetches
}

// Put adds or replaces a listing; v must be a *domain.Trip or *domain.Parcel.
func (s *MemoryListingStore) Put(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch l := v.(type) {
	case *domain.Trip:
		s.trips[l.ID] = l
	case *domain.Parcel:
		s.parcels[l.ID] = l
	}
}

func (s *MemoryListingStore) FetchOpenParcels(ctx context.Context, filter ports.ListingFilter, limit int) ([]*domain.Parcel, error) {
	if err := filter.Check(domain.KindParcel); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.fetches++
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Parcel, 0)
	for _, p := range s.parcels {
		if p.Status == domain.StatusOpen && p.Route.Matches(filter.Route) && filter.Date.Allows(p.Deadline) {
			out = append(out, p)
		}
	}

	// Match the SQL stores' ORDER BY so limit cuts the same rows.
	slices.SortFunc(out, func(a, b *domain.Parcel) int {
		if c := a.Deadline.Compare(b.Deadline); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return truncate(out, limit), nil
}

func (s *MemoryListingStore) FetchOpenTrips(ctx context.Context, filter ports.ListingFilter, limit int) ([]*domain.Trip, error) {
	if err := filter.Check(domain.KindTrip); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.fetches++
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Trip, 0)
	for _, t := range s.trips {
		if t.Status == domain.StatusOpen && t.Route.Matches(filter.Route) && filter.Date.Allows(t.DateDeparture) {
			out = append(out, t)
		}
	}

	slices.SortFunc(out, func(a, b *domain.Trip) int {
		if c := a.DateDeparture.Compare(b.DateDeparture); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return truncate(out, limit), nil
}

func (s *MemoryListingStore) GetTrip(ctx context.Context, id string) (*domain.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.trips[id]
	if !ok {
		return nil, ports.ErrListingNotFound
	}
	return t, nil
}

func (s *MemoryListingStore) GetParcel(ctx context.Context, id string) (*domain.Parcel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.parcels[id]
	if !ok {
		return nil, ports.ErrListingNotFound
	}
	return p, nil
}

func (s *MemoryListingStore) ListOpenByOwner(ctx context.Context, ownerID string) ([]*domain.Trip, []*domain.Parcel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trips := make([]*domain.Trip, 0)
	for _, t := range s.trips {
		if t.OwnerID == ownerID && t.Status == domain.StatusOpen {
			trips = append(trips, t)
		}
	}
	parcels := make([]*domain.Parcel, 0)
	for _, p := range s.parcels {
		if p.OwnerID == ownerID && p.Status == domain.StatusOpen {
			parcels = append(parcels, p)
		}
	}

	slices.SortFunc(trips, func(a, b *domain.Trip) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(parcels, func(a, b *domain.Parcel) int { return cmp.Compare(a.ID, b.ID) })
	return trips, parcels, nil
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
