package services

import (
	"cmp"
	"context"
	"errors"
	"kolimeet-service/internal/domain"
	"kolimeet-service/internal/platform/obs"
	"kolimeet-service/internal/ports"
	"slices"
	"time"

	"go.uber.org/zap"
)

const (
	// CandidateCeiling bounds how many candidates a single lookup scores,
	// independently of how many results the caller keeps.
	CandidateCeiling = 20

	DefaultMaxResults = 5
)

// A parcel ranked against a reference trip.
type ScoredParcel struct {
	Parcel         *domain.Parcel
	Score          int
	IsPerfectMatch bool
}

// A trip ranked against a reference parcel.
type ScoredTrip struct {
	Trip           *domain.Trip
	Score          int
	IsPerfectMatch bool
}

// Matcher ranks open listings of the opposite kind against a reference
// listing. It keeps no state between calls and never writes to the store;
// each lookup issues exactly one store query.
type Matcher struct {
	store      ports.ListingStore
	defaultMax int
	log        *zap.Logger
}

type MatcherOption func(*Matcher)

// WithDefaultMaxResults sets the result count used when callers pass maxResults <= 0.
func WithDefaultMaxResults(n int) MatcherOption {
	return func(m *Matcher) {
		if n > 0 {
			m.defaultMax = n
		}
	}
}

func WithLogger(l *zap.Logger) MatcherOption {
	return func(m *Matcher) {
		if l != nil {
			m.log = l
		}
	}
}

func NewMatcher(store ports.ListingStore, opts ...MatcherOption) *Matcher {
	m := &Matcher{
		store:      store,
		defaultMax: DefaultMaxResults,
		log:        zap.L(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DefaultMaxResults returns the truncation applied when callers pass maxResults <= 0.
func (m *Matcher) DefaultMaxResults() int { return m.defaultMax }

// ParcelsForTrip returns open parcels on the trip's route whose deadline is
// on or after the departure date, best first.
//
// An invalid trip yields *domain.InvalidReferenceError and a failed store
// query yields *RetrievalError. No candidates is an empty slice and nil error.
func (m *Matcher) ParcelsForTrip(ctx context.Context, trip *domain.Trip, maxResults int) (out []ScoredParcel, err error) {
	defer obs.Time(ctx, "matcher.ParcelsForTrip")(&err)
	defer func() { m.record(domain.KindTrip, len(out), err) }()

	if err := trip.Validate(); err != nil {
		return nil, err
	}

	filter := ports.ListingFilter{
		Route: trip.Route,
		Date: ports.DateConstraint{
			Field: ports.FieldDeadline,
			Op:    ports.OpGreaterOrEqual,
			Value: trip.DateDeparture,
		},
	}

	candidates, err := m.store.FetchOpenParcels(ctx, filter, CandidateCeiling)
	if err != nil {
		return nil, &RetrievalError{Kind: domain.KindParcel, Err: err}
	}

	scored := make([]ScoredParcel, 0, len(candidates))
	for _, p := range candidates {
		if p == nil || !m.eligible(p.ID, p.Status, p.Route, filter, p.Deadline) {
			continue
		}
		m.flagUnknownSize(p)

		s := Score(trip, p)
		scored = append(scored, ScoredParcel{Parcel: p, Score: s, IsPerfectMatch: IsPerfectMatch(s)})
	}

	return rank(scored, m.limit(maxResults), func(sp ScoredParcel) rankKey {
		return rankKey{score: sp.Score, date: sp.Parcel.Deadline, id: sp.Parcel.ID}
	}), nil
}

// TripsForParcel returns open trips on the parcel's route departing on or
// before its deadline, best first. Errors follow ParcelsForTrip.
func (m *Matcher) TripsForParcel(ctx context.Context, parcel *domain.Parcel, maxResults int) (out []ScoredTrip, err error) {
	defer obs.Time(ctx, "matcher.TripsForParcel")(&err)
	defer func() { m.record(domain.KindParcel, len(out), err) }()

	if err := parcel.Validate(); err != nil {
		return nil, err
	}
	m.flagUnknownSize(parcel)

	filter := ports.ListingFilter{
		Route: parcel.Route,
		Date: ports.DateConstraint{
			Field: ports.FieldDateDeparture,
			Op:    ports.OpLessOrEqual,
			Value: parcel.Deadline,
		},
	}

	candidates, err := m.store.FetchOpenTrips(ctx, filter, CandidateCeiling)
	if err != nil {
		return nil, &RetrievalError{Kind: domain.KindTrip, Err: err}
	}

	scored := make([]ScoredTrip, 0, len(candidates))
	for _, t := range candidates {
		if t == nil || !m.eligible(t.ID, t.Status, t.Route, filter, t.DateDeparture) {
			continue
		}

		s := Score(t, parcel)
		scored = append(scored, ScoredTrip{Trip: t, Score: s, IsPerfectMatch: IsPerfectMatch(s)})
	}

	return rank(scored, m.limit(maxResults), func(st ScoredTrip) rankKey {
		return rankKey{score: st.Score, date: st.Trip.DateDeparture, id: st.Trip.ID}
	}), nil
}

func (m *Matcher) limit(maxResults int) int {
	if maxResults <= 0 {
		return m.defaultMax
	}
	return maxResults
}

// eligible re-checks the store filter on a candidate. A store that returns
// rows outside the filter is a store bug; the row is logged and dropped.
func (m *Matcher) eligible(id string, status domain.Status, route domain.Route, filter ports.ListingFilter, date time.Time) bool {
	reason := ""
	switch {
	case status != domain.StatusOpen:
		reason = "status " + string(status)
	case !route.Matches(filter.Route):
		reason = "route mismatch"
	case !filter.Date.Allows(date):
		reason = "outside date bound"
	}
	if reason == "" {
		return true
	}

	m.log.Warn("dropping candidate outside store filter",
		zap.String("listing_id", id),
		zap.String("reason", reason),
	)
	return false
}

func (m *Matcher) flagUnknownSize(p *domain.Parcel) {
	if _, known := domain.SizeLiters(p.Size); known {
		return
	}
	obs.UnknownParcelSizeTotal.WithLabelValues(string(p.Size)).Inc()
	m.log.Warn("unrecognized parcel size, estimating 0 liters",
		zap.String("parcel_id", p.ID),
		zap.String("size", string(p.Size)),
	)
}

func (m *Matcher) record(kind domain.Kind, n int, err error) {
	var ire *domain.InvalidReferenceError
	var re *RetrievalError

	outcome := "ok"
	switch {
	case err == nil && n == 0:
		outcome = "empty"
	case err == nil:
	case errors.As(err, &ire):
		outcome = "invalid_reference"
	case errors.As(err, &re):
		outcome = "retrieval_error"
	default:
		outcome = "error"
	}

	obs.MatchLookupsTotal.WithLabelValues(string(kind), outcome).Inc()
	if err == nil {
		obs.MatchResultsReturned.Observe(float64(n))
	}
}

type rankKey struct {
	score int
	date  time.Time
	id    string
}

// rank orders by score descending, then the forward-looking date ascending so
// the most urgent match comes first, then id for a total order. The result is
// truncated to n.
func rank[T any](items []T, n int, key func(T) rankKey) []T {
	slices.SortFunc(items, func(a, b T) int {
		ka, kb := key(a), key(b)
		if c := cmp.Compare(kb.score, ka.score); c != 0 {
			return c
		}
		if c := ka.date.Compare(kb.date); c != 0 {
			return c
		}
		return cmp.Compare(ka.id, kb.id)
	})

	if len(items) > n {
		items = items[:n]
	}
	return items
}
