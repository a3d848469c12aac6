package ports

import (
	"context"
	"errors"
	"fmt"
	"kolimeet-service/internal/domain"
	"time"
)

var (
	ErrListingNotFound   = errors.New("listing not found")
	ErrUnsupportedFilter = errors.New("unsupported listing filter")
)

// Date column a candidate filter constrains.
type DateField string

const (
	FieldDeadline      DateField = "deadline"
	FieldDateDeparture DateField = "date_departure"
)

// Comparison applied between the candidate's date column and the bound.
type DateOp string

const (
	OpGreaterOrEqual DateOp = ">="
	OpLessOrEqual    DateOp = "<="
)

// DateConstraint expresses "<field> <op> <value>" on candidate listings.
type DateConstraint struct {
	Field DateField
	Op    DateOp
	Value time.Time
}

// Allows reports whether a candidate date satisfies the constraint.
func (c DateConstraint) Allows(t time.Time) bool {
	switch c.Op {
	case OpGreaterOrEqual:
		return !t.Before(c.Value)
	case OpLessOrEqual:
		return !t.After(c.Value)
	}
	return false
}

// ListingFilter is the candidate query pushed to the store. Route fields are
// compared case-insensitively; only open listings are ever returned.
type ListingFilter struct {
	Route domain.Route
	Date  DateConstraint
}

// Check validates the filter for the listing kind being fetched.
func (f ListingFilter) Check(kind domain.Kind) error {
	switch {
	case kind == domain.KindParcel && f.Date.Field == FieldDeadline && f.Date.Op == OpGreaterOrEqual:
	case kind == domain.KindTrip && f.Date.Field == FieldDateDeparture && f.Date.Op == OpLessOrEqual:
	default:
		return fmt.Errorf("%w: %s %s %s", ErrUnsupportedFilter, kind, f.Date.Field, f.Date.Op)
	}
	if f.Date.Value.IsZero() {
		return fmt.Errorf("%w: zero date bound", ErrUnsupportedFilter)
	}
	return nil
}

// Port: read-only candidate retrieval used by the matcher.
type ListingStore interface {
	// Return at most limit open parcels satisfying the filter.
	FetchOpenParcels(ctx context.Context, filter ListingFilter, limit int) ([]*domain.Parcel, error)
	// Return at most limit open trips satisfying the filter.
	FetchOpenTrips(ctx context.Context, filter ListingFilter, limit int) ([]*domain.Trip, error)
}

// Port: direct listing lookups for callers that start from an id.
type ListingReader interface {
	GetTrip(ctx context.Context, id string) (*domain.Trip, error)
	GetParcel(ctx context.Context, id string) (*domain.Parcel, error)
	// Return every open trip and parcel posted by the owner.
	ListOpenByOwner(ctx context.Context, ownerID string) ([]*domain.Trip, []*domain.Parcel, error)
}
