package services

import (
	"context"
	"errors"
	"fmt"
	"kolimeet-service/internal/adapters/repositories"
	"kolimeet-service/internal/domain"
	"kolimeet-service/internal/ports"
	"testing"
	"time"
)

var parisCotonou = domain.Route{FromCity: "Paris", FromCountry: "France", ToCity: "Cotonou", ToCountry: "Bénin"}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func referenceTrip() *domain.Trip {
	return &domain.Trip{
		ID:             "trip-ref",
		OwnerID:        "traveler",
		Route:          parisCotonou,
		DateDeparture:  day(2026, 1, 10),
		CapacityLiters: 30,
		Status:         domain.StatusOpen,
	}
}

func openParcel(id string, route domain.Route, deadline time.Time, size domain.Size) *domain.Parcel {
	return &domain.Parcel{ID: id, OwnerID: "sender-" + id, Route: route, Deadline: deadline, Size: size, Status: domain.StatusOpen}
}

// failingStore always fails candidate retrieval.
type failingStore struct{ err error }

func (f failingStore) FetchOpenParcels(context.Context, ports.ListingFilter, int) ([]*domain.Parcel, error) {
	return nil, f.err
}

func (f failingStore) FetchOpenTrips(context.Context, ports.ListingFilter, int) ([]*domain.Trip, error) {
	return nil, f.err
}

// leakyStore returns its fixed candidates regardless of the filter and
// records the last filter and limit it saw.
type leakyStore struct {
	parcels []*domain.Parcel
	trips   []*domain.Trip
	filter  ports.ListingFilter
	limit   int
	calls   int
}

func (s *leakyStore) FetchOpenParcels(_ context.Context, f ports.ListingFilter, limit int) ([]*domain.Parcel, error) {
	s.filter, s.limit = f, limit
	s.calls++
	return s.parcels, nil
}

func (s *leakyStore) FetchOpenTrips(_ context.Context, f ports.ListingFilter, limit int) ([]*domain.Trip, error) {
	s.filter, s.limit = f, limit
	s.calls++
	return s.trips, nil
}

func TestScoreScenarios(t *testing.T) {
	trip := referenceTrip()

	a := openParcel("A", parisCotonou, day(2026, 1, 12), domain.SizeMedium)
	if got := Score(trip, a); got != 85 {
		t.Fatalf("score A = %d, want 85", got)
	}

	b := openParcel("B", parisCotonou, day(2026, 2, 1), domain.SizeLarge)
	if got := Score(trip, b); got != 50 {
		t.Fatalf("score B = %d, want 50", got)
	}

	// Date block alone.
	far := &domain.Trip{Route: domain.Route{FromCity: "Lyon", ToCity: "Dakar"}, DateDeparture: day(2026, 1, 10), CapacityLiters: 0}
	if got := Score(far, a); got != DateProximityPoints {
		t.Fatalf("score = %d, want %d", got, DateProximityPoints)
	}

	// Unknown sizes estimate to 0 liters and always fit.
	unknown := openParcel("U", parisCotonou, day(2026, 3, 1), "XXL")
	if got := Score(trip, unknown); got != RouteMatchPoints+CapacityPoints {
		t.Fatalf("score unknown size = %d, want %d", got, RouteMatchPoints+CapacityPoints)
	}
}

func TestScoreDateProximityBoundary(t *testing.T) {
	trip := referenceTrip()
	trip.CapacityLiters = 0

	in := openParcel("in", parisCotonou, day(2026, 1, 13), domain.SizeSmall)
	out := openParcel("out", parisCotonou, day(2026, 1, 14), domain.SizeSmall)

	if got := Score(trip, in); got != RouteMatchPoints+DateProximityPoints {
		t.Fatalf("3 days apart: score = %d, want %d", got, RouteMatchPoints+DateProximityPoints)
	}
	if got := Score(trip, out); got != RouteMatchPoints {
		t.Fatalf("4 days apart: score = %d, want %d", got, RouteMatchPoints)
	}
}

func TestParcelsForTripRanksAndFlags(t *testing.T) {
	store := repositories.NewMemoryListingStore(nil, []*domain.Parcel{
		openParcel("A", parisCotonou, day(2026, 1, 12), domain.SizeMedium),
		openParcel("B", parisCotonou, day(2026, 2, 1), domain.SizeLarge),
		openParcel("C", domain.Route{FromCity: "Lyon", FromCountry: "France", ToCity: "Cotonou", ToCountry: "Bénin"}, day(2026, 1, 12), domain.SizeSmall),
	})
	m := NewMatcher(store)

	got, err := m.ParcelsForTrip(context.Background(), referenceTrip(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].Parcel.ID != "A" || got[0].Score != 85 || !got[0].IsPerfectMatch {
		t.Fatalf("first match = %s/%d/%v, want A/85/true", got[0].Parcel.ID, got[0].Score, got[0].IsPerfectMatch)
	}
	if got[1].Parcel.ID != "B" || got[1].Score != 50 || !got[1].IsPerfectMatch {
		t.Fatalf("second match = %s/%d/%v, want B/50/true", got[1].Parcel.ID, got[1].Score, got[1].IsPerfectMatch)
	}
	if store.Fetches() != 1 {
		t.Fatalf("store fetches = %d, want 1", store.Fetches())
	}
}

func TestParcelsForTripTieBreaksOnDeadline(t *testing.T) {
	trip := referenceTrip()
	trip.CapacityLiters = 0

	store := repositories.NewMemoryListingStore(nil, []*domain.Parcel{
		openParcel("E", parisCotonou, day(2026, 1, 20), domain.SizeSmall),
		openParcel("D", parisCotonou, day(2026, 1, 11), domain.SizeSmall),
	})

	// Keep D's date bonus out of the way so both score 50.
	trip.DateDeparture = day(2026, 1, 5)

	got, err := NewMatcher(store).ParcelsForTrip(context.Background(), trip, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Score != 50 || got[1].Score != 50 {
		t.Fatalf("expected two matches scoring 50, got %+v", got)
	}
	if got[0].Parcel.ID != "D" || got[1].Parcel.ID != "E" {
		t.Fatalf("order = [%s %s], want [D E]", got[0].Parcel.ID, got[1].Parcel.ID)
	}
}

func TestParcelsForTripTruncates(t *testing.T) {
	parcels := make([]*domain.Parcel, 0, 5)
	for i := 0; i < 5; i++ {
		parcels = append(parcels, openParcel(fmt.Sprintf("p%d", i), parisCotonou, day(2026, 1, 10+i*5), domain.SizeSmall))
	}
	m := NewMatcher(repositories.NewMemoryListingStore(nil, parcels))

	got, err := m.ParcelsForTrip(context.Background(), referenceTrip(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// p0 is the only one inside the 3 day window.
	if got[0].Parcel.ID != "p0" || got[0].Score != 85 {
		t.Fatalf("first = %s/%d, want p0/85", got[0].Parcel.ID, got[0].Score)
	}
	if got[1].Parcel.ID != "p1" || got[1].Score != 65 {
		t.Fatalf("second = %s/%d, want p1/65", got[1].Parcel.ID, got[1].Score)
	}
}

func TestParcelsForTripDefaultMaxResults(t *testing.T) {
	parcels := make([]*domain.Parcel, 0, 8)
	for i := 0; i < 8; i++ {
		parcels = append(parcels, openParcel(fmt.Sprintf("p%d", i), parisCotonou, day(2026, 1, 10+i), domain.SizeSmall))
	}
	store := repositories.NewMemoryListingStore(nil, parcels)

	got, err := NewMatcher(store).ParcelsForTrip(context.Background(), referenceTrip(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != DefaultMaxResults {
		t.Fatalf("len = %d, want %d", len(got), DefaultMaxResults)
	}

	got, err = NewMatcher(store, WithDefaultMaxResults(6)).ParcelsForTrip(context.Background(), referenceTrip(), -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("len = %d, want 6", len(got))
	}
}

func TestParcelsForTripEmptyIsNotAnError(t *testing.T) {
	m := NewMatcher(repositories.NewMemoryListingStore(nil, nil))

	got, err := m.ParcelsForTrip(context.Background(), referenceTrip(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", got)
	}
}

func TestMatcherRetrievalError(t *testing.T) {
	cause := errors.New("connection refused")
	m := NewMatcher(failingStore{err: cause})

	got, err := m.ParcelsForTrip(context.Background(), referenceTrip(), 5)
	var re *RetrievalError
	if !errors.As(err, &re) {
		t.Fatalf("expected RetrievalError, got %v", err)
	}
	if re.Kind != domain.KindParcel || !errors.Is(err, cause) {
		t.Fatalf("unexpected retrieval error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no results, got %d", len(got))
	}

	parcel := openParcel("ref", parisCotonou, day(2026, 1, 20), domain.SizeSmall)
	if _, err := m.TripsForParcel(context.Background(), parcel, 5); !errors.As(err, &re) || re.Kind != domain.KindTrip {
		t.Fatalf("expected trip RetrievalError, got %v", err)
	}
}

func TestMatcherInvalidReferenceSkipsStore(t *testing.T) {
	store := &leakyStore{}
	m := NewMatcher(store)

	trip := referenceTrip()
	trip.Route.FromCountry = ""

	var ire *domain.InvalidReferenceError
	if _, err := m.ParcelsForTrip(context.Background(), trip, 5); !errors.As(err, &ire) {
		t.Fatalf("expected InvalidReferenceError, got %v", err)
	}

	parcel := openParcel("ref", parisCotonou, time.Time{}, domain.SizeSmall)
	if _, err := m.TripsForParcel(context.Background(), parcel, 5); !errors.As(err, &ire) || ire.Field != "deadline" {
		t.Fatalf("expected deadline InvalidReferenceError, got %v", err)
	}

	if store.calls != 0 {
		t.Fatalf("store calls = %d, want 0", store.calls)
	}
}

func TestMatcherPushesFilterToStore(t *testing.T) {
	store := &leakyStore{}
	m := NewMatcher(store)

	trip := referenceTrip()
	if _, err := m.ParcelsForTrip(context.Background(), trip, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.limit != CandidateCeiling {
		t.Fatalf("limit = %d, want %d", store.limit, CandidateCeiling)
	}
	want := ports.DateConstraint{Field: ports.FieldDeadline, Op: ports.OpGreaterOrEqual, Value: trip.DateDeparture}
	if store.filter.Date != want || store.filter.Route != trip.Route {
		t.Fatalf("filter = %+v, want route %v and %+v", store.filter, trip.Route, want)
	}

	parcel := openParcel("ref", parisCotonou, day(2026, 1, 20), domain.SizeSmall)
	if _, err := m.TripsForParcel(context.Background(), parcel, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want = ports.DateConstraint{Field: ports.FieldDateDeparture, Op: ports.OpLessOrEqual, Value: parcel.Deadline}
	if store.filter.Date != want {
		t.Fatalf("filter date = %+v, want %+v", store.filter.Date, want)
	}
}

func TestMatcherDropsCandidatesOutsideFilter(t *testing.T) {
	closed := openParcel("closed", parisCotonou, day(2026, 1, 12), domain.SizeSmall)
	closed.Status = domain.StatusClosed

	store := &leakyStore{parcels: []*domain.Parcel{
		closed,
		openParcel("lyon", domain.Route{FromCity: "Lyon", FromCountry: "France", ToCity: "Cotonou", ToCountry: "Bénin"}, day(2026, 1, 12), domain.SizeSmall),
		openParcel("expired", parisCotonou, day(2026, 1, 9), domain.SizeSmall),
		openParcel("ok", domain.Route{FromCity: " PARIS", FromCountry: "france", ToCity: "cotonou", ToCountry: "BÉNIN"}, day(2026, 1, 10), domain.SizeSmall),
		nil,
	}}

	got, err := NewMatcher(store).ParcelsForTrip(context.Background(), referenceTrip(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Parcel.ID != "ok" {
		t.Fatalf("expected only 'ok', got %+v", got)
	}
	if got[0].Score != 85 {
		t.Fatalf("score = %d, want 85", got[0].Score)
	}
}

func TestTripsForParcel(t *testing.T) {
	parcel := openParcel("ref", parisCotonou, day(2026, 1, 20), domain.SizeMedium)

	store := repositories.NewMemoryListingStore([]*domain.Trip{
		{ID: "late", Route: parisCotonou, DateDeparture: day(2026, 1, 21), CapacityLiters: 100, Status: domain.StatusOpen},
		{ID: "close", Route: parisCotonou, DateDeparture: day(2026, 1, 18), CapacityLiters: 25, Status: domain.StatusOpen},
		{ID: "small", Route: parisCotonou, DateDeparture: day(2026, 1, 17), CapacityLiters: 10, Status: domain.StatusOpen},
		{ID: "early", Route: parisCotonou, DateDeparture: day(2026, 1, 2), CapacityLiters: 60, Status: domain.StatusOpen},
		{ID: "first", Route: parisCotonou, DateDeparture: day(2026, 1, 1), CapacityLiters: 60, Status: domain.StatusOpen},
		{ID: "gone", Route: parisCotonou, DateDeparture: day(2026, 1, 19), CapacityLiters: 60, Status: domain.StatusMatched},
	}, nil)

	got, err := NewMatcher(store).TripsForParcel(context.Background(), parcel, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantIDs := []string{"close", "small", "first", "early"}
	wantScores := []int{85, 70, 65, 65}
	if len(got) != len(wantIDs) {
		t.Fatalf("len = %d, want %d", len(got), len(wantIDs))
	}
	for i := range wantIDs {
		if got[i].Trip.ID != wantIDs[i] || got[i].Score != wantScores[i] {
			t.Errorf("match %d = %s/%d, want %s/%d", i, got[i].Trip.ID, got[i].Score, wantIDs[i], wantScores[i])
		}
	}
}

func TestMatcherProperties(t *testing.T) {
	sizes := []domain.Size{domain.SizeSmall, domain.SizeMedium, domain.SizeLarge, "?"}
	parcels := make([]*domain.Parcel, 0, 40)
	for i := 0; i < 40; i++ {
		p := openParcel(fmt.Sprintf("p%02d", i), parisCotonou, day(2026, 1, 8+i%9), sizes[i%len(sizes)])
		if i%7 == 0 {
			p.Status = domain.StatusClosed
		}
		parcels = append(parcels, p)
	}
	store := repositories.NewMemoryListingStore(nil, parcels)
	m := NewMatcher(store)
	trip := referenceTrip()

	first, err := m.ParcelsForTrip(context.Background(), trip, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) > 6 {
		t.Fatalf("len = %d exceeds maxResults", len(first))
	}

	for i, sp := range first {
		if sp.Score < 0 || sp.Score > MaxScore {
			t.Errorf("score %d out of bounds", sp.Score)
		}
		if sp.IsPerfectMatch != (sp.Score >= PerfectMatchThreshold) {
			t.Errorf("%s: IsPerfectMatch = %v with score %d", sp.Parcel.ID, sp.IsPerfectMatch, sp.Score)
		}
		if sp.Parcel.Status != domain.StatusOpen || sp.Parcel.Deadline.Before(trip.DateDeparture) {
			t.Errorf("%s violates the candidate filter", sp.Parcel.ID)
		}
		if i == 0 {
			continue
		}
		prev := first[i-1]
		if prev.Score < sp.Score {
			t.Errorf("scores not non-increasing at %d", i)
		}
		if prev.Score == sp.Score && prev.Parcel.Deadline.After(sp.Parcel.Deadline) {
			t.Errorf("deadlines not non-decreasing among equal scores at %d", i)
		}
	}

	second, err := m.ParcelsForTrip(context.Background(), trip, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("repeat lookup returned %d results, want %d", len(second), len(first))
	}
	for i := range first {
		if first[i].Parcel.ID != second[i].Parcel.ID || first[i].Score != second[i].Score {
			t.Fatalf("repeat lookup differs at %d: %s/%d vs %s/%d",
				i, first[i].Parcel.ID, first[i].Score, second[i].Parcel.ID, second[i].Score)
		}
	}
}
