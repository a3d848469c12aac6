package services

import (
	"context"
	"errors"
	"fmt"
	"kolimeet-service/internal/domain"
	"kolimeet-service/internal/platform/obs"
	"kolimeet-service/internal/ports"

	"golang.org/x/sync/errgroup"
)

// Matches for one of the owner's listings. Exactly one of Trip/Parcel is set,
// and the matching result slice is of the opposite kind. Err holds a lookup
// failure for this listing only.
type ListingMatches struct {
	Kind    domain.Kind
	Trip    *domain.Trip
	Parcel  *domain.Parcel
	Parcels []ScoredParcel
	Trips   []ScoredTrip
	Err     error
}

type OwnerMatchSummary struct {
	OwnerID  string
	Listings []ListingMatches
}

// PerfectMatches counts perfect matches across every listing of the summary.
func (s *OwnerMatchSummary) PerfectMatches() int {
	n := 0
	for _, l := range s.Listings {
		for _, p := range l.Parcels {
			if p.IsPerfectMatch {
				n++
			}
		}
		for _, t := range l.Trips {
			if t.IsPerfectMatch {
				n++
			}
		}
	}
	return n
}

// OwnerMatches runs the matcher for every open listing of an owner, at most
// concurrency lookups at a time. The listing order is trips then parcels, as
// returned by the reader. Only a failure to list the owner's listings fails
// the whole call.
func OwnerMatches(
	ctx context.Context,
	reader ports.ListingReader,
	matcher *Matcher,
	ownerID string,
	maxResults int,
	concurrency int,
) (_ *OwnerMatchSummary, err error) {
	defer obs.Time(ctx, "services.OwnerMatches")(&err)

	if ownerID == "" {
		return nil, errors.New("owner matches: owner id must be non-empty")
	}
	if concurrency < 1 {
		concurrency = 1
	}

	trips, parcels, err := reader.ListOpenByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("owner matches: list listings: %w", err)
	}

	listings := make([]ListingMatches, len(trips)+len(parcels))

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, trip := range trips {
		i, trip := i, trip
		listings[i] = ListingMatches{Kind: domain.KindTrip, Trip: trip}
		g.Go(func() error {
			res, err := matcher.ParcelsForTrip(ctx, trip, maxResults)
			listings[i].Parcels = res
			listings[i].Err = err
			return nil
		})
	}

	for j, parcel := range parcels {
		parcel := parcel
		i := len(trips) + j
		listings[i] = ListingMatches{Kind: domain.KindParcel, Parcel: parcel}
		g.Go(func() error {
			res, err := matcher.TripsForParcel(ctx, parcel, maxResults)
			listings[i].Trips = res
			listings[i].Err = err
			return nil
		})
	}

	_ = g.Wait()

	return &OwnerMatchSummary{OwnerID: ownerID, Listings: listings}, nil
}
