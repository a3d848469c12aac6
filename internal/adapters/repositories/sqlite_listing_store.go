package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"kolimeet-service/internal/domain"
	"kolimeet-service/internal/platform/obs"
	"kolimeet-service/internal/ports"

	"github.com/georgysavva/scany/sqlscan"
)

// SQLite-backed implementation of the ListingStore and ListingReader ports.
type SqliteListingStore struct{ DB *sql.DB }

func NewSqliteListingStore(db *sql.DB) *SqliteListingStore {
	return &SqliteListingStore{DB: db}
}

const sqliteTripColumns = `
	id, owner_id, from_city, from_country, to_city, to_country,
	date_departure, capacity_available_liters, capacity_available_kg, status`

const sqliteParcelColumns = `
	id, owner_id, from_city, from_country, to_city, to_country,
	deadline, size, weight_kg, status`

func (s *SqliteListingStore) FetchOpenParcels(
	ctx context.Context,
	filter ports.ListingFilter,
	limit int,
) (_ []*domain.Parcel, err error) {
	defer obs.Time(ctx, "sqlite.FetchOpenParcels")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite listing store: DB is nil")
	}
	if err := filter.Check(domain.KindParcel); err != nil {
		return nil, err
	}

	k := filter.Route.Folded()
	query := `
	SELECT` + sqliteParcelColumns + `
	FROM parcels
	WHERE status = 'open'
		AND from_country_key = ?
		AND from_city_key = ?
		AND to_country_key = ?
		AND to_city_key = ?
		AND deadline >= ?
	ORDER BY deadline, id
	LIMIT ?;
	`

	var rows []parcelRow
	if err := sqlscan.Select(ctx, s.DB, &rows, query,
		k.FromCountry, k.FromCity, k.ToCountry, k.ToCity,
		formatDate(filter.Date.Value), limit,
	); err != nil {
		return nil, fmt.Errorf("fetch open parcels: query parcels table: %w", err)
	}

	return parcelsFromRows(rows)
}

func (s *SqliteListingStore) FetchOpenTrips(
	ctx context.Context,
	filter ports.ListingFilter,
	limit int,
) (_ []*domain.Trip, err error) {
	defer obs.Time(ctx, "sqlite.FetchOpenTrips")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite listing store: DB is nil")
	}
	if err := filter.Check(domain.KindTrip); err != nil {
		return nil, err
	}

	k := filter.Route.Folded()
	query := `
	SELECT` + sqliteTripColumns + `
	FROM trips
	WHERE status = 'open'
		AND from_country_key = ?
		AND from_city_key = ?
		AND to_country_key = ?
		AND to_city_key = ?
		AND date_departure <= ?
	ORDER BY date_departure, id
	LIMIT ?;
	`

	var rows []tripRow
	if err := sqlscan.Select(ctx, s.DB, &rows, query,
		k.FromCountry, k.FromCity, k.ToCountry, k.ToCity,
		formatDate(filter.Date.Value), limit,
	); err != nil {
		return nil, fmt.Errorf("fetch open trips: query trips table: %w", err)
	}

	return tripsFromRows(rows)
}

func (s *SqliteListingStore) GetTrip(ctx context.Context, id string) (*domain.Trip, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite listing store: DB is nil")
	}

	var row tripRow
	err := sqlscan.Get(ctx, s.DB, &row, `SELECT`+sqliteTripColumns+` FROM trips WHERE id = ?;`, id)
	if err != nil {
		if sqlscan.NotFound(err) {
			return nil, fmt.Errorf("get trip %q: %w", id, ports.ErrListingNotFound)
		}
		return nil, fmt.Errorf("get trip %q: %w", id, err)
	}
	return row.toDomain()
}

func (s *SqliteListingStore) GetParcel(ctx context.Context, id string) (*domain.Parcel, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite listing store: DB is nil")
	}

	var row parcelRow
	err := sqlscan.Get(ctx, s.DB, &row, `SELECT`+sqliteParcelColumns+` FROM parcels WHERE id = ?;`, id)
	if err != nil {
		if sqlscan.NotFound(err) {
			return nil, fmt.Errorf("get parcel %q: %w", id, ports.ErrListingNotFound)
		}
		return nil, fmt.Errorf("get parcel %q: %w", id, err)
	}
	return row.toDomain()
}

func (s *SqliteListingStore) ListOpenByOwner(ctx context.Context, ownerID string) ([]*domain.Trip, []*domain.Parcel, error) {
	if s.DB == nil {
		return nil, nil, errors.New("sqlite listing store: DB is nil")
	}

	var tripRows []tripRow
	if err := sqlscan.Select(ctx, s.DB, &tripRows,
		`SELECT`+sqliteTripColumns+` FROM trips WHERE owner_id = ? AND status = 'open' ORDER BY id;`, ownerID,
	); err != nil {
		return nil, nil, fmt.Errorf("list owner listings: query trips table: %w", err)
	}

	var parcelRows []parcelRow
	if err := sqlscan.Select(ctx, s.DB, &parcelRows,
		`SELECT`+sqliteParcelColumns+` FROM parcels WHERE owner_id = ? AND status = 'open' ORDER BY id;`, ownerID,
	); err != nil {
		return nil, nil, fmt.Errorf("list owner listings: query parcels table: %w", err)
	}

	trips, err := tripsFromRows(tripRows)
	if err != nil {
		return nil, nil, fmt.Errorf("list owner listings: %w", err)
	}
	parcels, err := parcelsFromRows(parcelRows)
	if err != nil {
		return nil, nil, fmt.Errorf("list owner listings: %w", err)
	}
	return trips, parcels, nil
}
