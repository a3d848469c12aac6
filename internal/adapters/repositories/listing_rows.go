package repositories

import (
	"fmt"
	"kolimeet-service/internal/domain"
	"time"
)

const dateLayout = "2006-01-02"

// Row shapes shared by the SQL stores. Dates travel as YYYY-MM-DD text so
// both drivers scan them the same way.
type tripRow struct {
	ID             string  `db:"id" json:"id"`
	OwnerID        string  `db:"owner_id" json:"owner_id"`
	FromCity       string  `db:"from_city" json:"from_city"`
	FromCountry    string  `db:"from_country" json:"from_country"`
	ToCity         string  `db:"to_city" json:"to_city"`
	ToCountry      string  `db:"to_country" json:"to_country"`
	DateDeparture  string  `db:"date_departure" json:"date_departure"`
	CapacityLiters float64 `db:"capacity_available_liters" json:"capacity_available_liters"`
	CapacityKg     float64 `db:"capacity_available_kg" json:"capacity_available_kg"`
	Status         string  `db:"status" json:"status"`
}

type parcelRow struct {
	ID          string  `db:"id" json:"id"`
	OwnerID     string  `db:"owner_id" json:"owner_id"`
	FromCity    string  `db:"from_city" json:"from_city"`
	FromCountry string  `db:"from_country" json:"from_country"`
	ToCity      string  `db:"to_city" json:"to_city"`
	ToCountry   string  `db:"to_country" json:"to_country"`
	Deadline    string  `db:"deadline" json:"deadline"`
	Size        string  `db:"size" json:"size"`
	WeightKg    float64 `db:"weight_kg" json:"weight_kg"`
	Status      string  `db:"status" json:"status"`
}

// routeKeys returns the folded values stored in the *_key columns.
func (r tripRow) routeKeys() domain.Route {
	return routeKeys(r.FromCity, r.FromCountry, r.ToCity, r.ToCountry)
}

func (r parcelRow) routeKeys() domain.Route {
	return routeKeys(r.FromCity, r.FromCountry, r.ToCity, r.ToCountry)
}

func routeKeys(fromCity, fromCountry, toCity, toCountry string) domain.Route {
	return domain.Route{
		FromCity:    fromCity,
		FromCountry: fromCountry,
		ToCity:      toCity,
		ToCountry:   toCountry,
	}.Folded()
}

func (r tripRow) toDomain() (*domain.Trip, error) {
	dep, err := parseDate(r.DateDeparture)
	if err != nil {
		return nil, fmt.Errorf("trip %q: date_departure: %w", r.ID, err)
	}
	return &domain.Trip{
		ID:      r.ID,
		OwnerID: r.OwnerID,
		Route: domain.Route{
			FromCity:    r.FromCity,
			FromCountry: r.FromCountry,
			ToCity:      r.ToCity,
			ToCountry:   r.ToCountry,
		},
		DateDeparture:  dep,
		CapacityLiters: r.CapacityLiters,
		CapacityKg:     r.CapacityKg,
		Status:         domain.Status(r.Status),
	}, nil
}

func (r parcelRow) toDomain() (*domain.Parcel, error) {
	deadline, err := parseDate(r.Deadline)
	if err != nil {
		return nil, fmt.Errorf("parcel %q: deadline: %w", r.ID, err)
	}
	return &domain.Parcel{
		ID:      r.ID,
		OwnerID: r.OwnerID,
		Route: domain.Route{
			FromCity:    r.FromCity,
			FromCountry: r.FromCountry,
			ToCity:      r.ToCity,
			ToCountry:   r.ToCountry,
		},
		Deadline: deadline,
		Size:     domain.ParseSize(r.Size),
		WeightKg: r.WeightKg,
		Status:   domain.Status(r.Status),
	}, nil
}

func tripsFromRows(rows []tripRow) ([]*domain.Trip, error) {
	out := make([]*domain.Trip, 0, len(rows))
	for _, r := range rows {
		t, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func parcelsFromRows(rows []parcelRow) ([]*domain.Parcel, error) {
	out := make([]*domain.Parcel, 0, len(rows))
	for _, r := range rows {
		p, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Store dates are calendar dates; accept a full timestamp too since some
// drivers render DATE columns that way.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
