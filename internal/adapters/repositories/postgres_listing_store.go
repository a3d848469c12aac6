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

// Postgres-backed implementation of the ListingStore and ListingReader ports.
// Route comparisons use the *_key columns written alongside each row; see
// routeKeys.
type PostgresListingStore struct{ DB *sql.DB }

func NewPostgresListingStore(db *sql.DB) *PostgresListingStore {
	return &PostgresListingStore{DB: db}
}

const pgTripColumns = `
	id, owner_id, from_city, from_country, to_city, to_country,
	to_char(date_departure, 'YYYY-MM-DD') AS date_departure,
	capacity_available_liters, capacity_available_kg, status`

const pgParcelColumns = `
	id, owner_id, from_city, from_country, to_city, to_country,
	to_char(deadline, 'YYYY-MM-DD') AS deadline,
	size, weight_kg, status`

func (s *PostgresListingStore) FetchOpenParcels(
	ctx context.Context,
	filter ports.ListingFilter,
	limit int,
) (_ []*domain.Parcel, err error) {
	defer obs.Time(ctx, "postgres.FetchOpenParcels")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres listing store: db is nil")
	}
	if err := filter.Check(domain.KindParcel); err != nil {
		return nil, err
	}

	k := filter.Route.Folded()
	q := `
	SELECT` + pgParcelColumns + `
	FROM parcels
	WHERE status = 'open'
		AND from_country_key = $1
		AND from_city_key = $2
		AND to_country_key = $3
		AND to_city_key = $4
		AND deadline >= $5::date
	ORDER BY deadline, id
	LIMIT $6;
	`

	var rows []parcelRow
	if err := sqlscan.Select(ctx, s.DB, &rows, q,
		k.FromCountry, k.FromCity, k.ToCountry, k.ToCity,
		formatDate(filter.Date.Value), limit,
	); err != nil {
		return nil, fmt.Errorf("fetch open parcels: query parcels table: %w", err)
	}

	return parcelsFromRows(rows)
}

func (s *PostgresListingStore) FetchOpenTrips(
	ctx context.Context,
	filter ports.ListingFilter,
	limit int,
) (_ []*domain.Trip, err error) {
	defer obs.Time(ctx, "postgres.FetchOpenTrips")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres listing store: db is nil")
	}
	if err := filter.Check(domain.KindTrip); err != nil {
		return nil, err
	}

	k := filter.Route.Folded()
	q := `
	SELECT` + pgTripColumns + `
	FROM trips
	WHERE status = 'open'
		AND from_country_key = $1
		AND from_city_key = $2
		AND to_country_key = $3
		AND to_city_key = $4
		AND date_departure <= $5::date
	ORDER BY date_departure, id
	LIMIT $6;
	`

	var rows []tripRow
	if err := sqlscan.Select(ctx, s.DB, &rows, q,
		k.FromCountry, k.FromCity, k.ToCountry, k.ToCity,
		formatDate(filter.Date.Value), limit,
	); err != nil {
		return nil, fmt.Errorf("fetch open trips: query trips table: %w", err)
	}

	return tripsFromRows(rows)
}

func (s *PostgresListingStore) GetTrip(ctx context.Context, id string) (*domain.Trip, error) {
	if s.DB == nil {
		return nil, errors.New("postgres listing store: db is nil")
	}

	var row tripRow
	err := sqlscan.Get(ctx, s.DB, &row, `SELECT`+pgTripColumns+` FROM trips WHERE id = $1;`, id)
	if err != nil {
		if sqlscan.NotFound(err) {
			return nil, fmt.Errorf("get trip %q: %w", id, ports.ErrListingNotFound)
		}
		return nil, fmt.Errorf("get trip %q: %w", id, err)
	}
	return row.toDomain()
}

func (s *PostgresListingStore) GetParcel(ctx context.Context, id string) (*domain.Parcel, error) {
	if s.DB == nil {
		return nil, errors.New("postgres listing store: db is nil")
	}

	var row parcelRow
	err := sqlscan.Get(ctx, s.DB, &row, `SELECT`+pgParcelColumns+` FROM parcels WHERE id = $1;`, id)
	if err != nil {
		if sqlscan.NotFound(err) {
			return nil, fmt.Errorf("get parcel %q: %w", id, ports.ErrListingNotFound)
		}
		return nil, fmt.Errorf("get parcel %q: %w", id, err)
	}
	return row.toDomain()
}

func (s *PostgresListingStore) ListOpenByOwner(ctx context.Context, ownerID string) ([]*domain.Trip, []*domain.Parcel, error) {
	if s.DB == nil {
		return nil, nil, errors.New("postgres listing store: db is nil")
	}

	var tripRows []tripRow
	if err := sqlscan.Select(ctx, s.DB, &tripRows,
		`SELECT`+pgTripColumns+` FROM trips WHERE owner_id = $1 AND status = 'open' ORDER BY id;`, ownerID,
	); err != nil {
		return nil, nil, fmt.Errorf("list owner listings: query trips table: %w", err)
	}

	var parcelRows []parcelRow
	if err := sqlscan.Select(ctx, s.DB, &parcelRows,
		`SELECT`+pgParcelColumns+` FROM parcels WHERE owner_id = $1 AND status = 'open' ORDER BY id;`, ownerID,
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

// Seed upserts every listing of the seed file.
func (s *PostgresListingStore) Seed(ctx context.Context, seed *SeedFile) error {
	if s.DB == nil {
		return errors.New("seed listings: db is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed listings: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range seed.Trips {
		k := r.routeKeys()
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO trips (
			id, owner_id, from_city, from_country, to_city, to_country,
			from_city_key, from_country_key, to_city_key, to_country_key,
			date_departure, capacity_available_liters, capacity_available_kg, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::date, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE
		SET owner_id = EXCLUDED.owner_id,
			from_city = EXCLUDED.from_city,
			from_country = EXCLUDED.from_country,
			to_city = EXCLUDED.to_city,
			to_country = EXCLUDED.to_country,
			from_city_key = EXCLUDED.from_city_key,
			from_country_key = EXCLUDED.from_country_key,
			to_city_key = EXCLUDED.to_city_key,
			to_country_key = EXCLUDED.to_country_key,
			date_departure = EXCLUDED.date_departure,
			capacity_available_liters = EXCLUDED.capacity_available_liters,
			capacity_available_kg = EXCLUDED.capacity_available_kg,
			status = EXCLUDED.status;
		`,
			r.ID, r.OwnerID, r.FromCity, r.FromCountry, r.ToCity, r.ToCountry,
			k.FromCity, k.FromCountry, k.ToCity, k.ToCountry,
			r.DateDeparture, r.CapacityLiters, r.CapacityKg, r.Status,
		); err != nil {
			return fmt.Errorf("seed listings: insert trip id=%q: %w", r.ID, err)
		}
	}

	for _, r := range seed.Parcels {
		k := r.routeKeys()
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO parcels (
			id, owner_id, from_city, from_country, to_city, to_country,
			from_city_key, from_country_key, to_city_key, to_country_key,
			deadline, size, weight_kg, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::date, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE
		SET owner_id = EXCLUDED.owner_id,
			from_city = EXCLUDED.from_city,
			from_country = EXCLUDED.from_country,
			to_city = EXCLUDED.to_city,
			to_country = EXCLUDED.to_country,
			from_city_key = EXCLUDED.from_city_key,
			from_country_key = EXCLUDED.from_country_key,
			to_city_key = EXCLUDED.to_city_key,
			to_country_key = EXCLUDED.to_country_key,
			deadline = EXCLUDED.deadline,
			size = EXCLUDED.size,
			weight_kg = EXCLUDED.weight_kg,
			status = EXCLUDED.status;
		`,
			r.ID, r.OwnerID, r.FromCity, r.FromCountry, r.ToCity, r.ToCountry,
			k.FromCity, k.FromCountry, k.ToCity, k.ToCountry,
			r.Deadline, r.Size, r.WeightKg, r.Status,
		); err != nil {
			return fmt.Errorf("seed listings: insert parcel id=%q: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed listings: commit tx: %w", err)
	}

	return nil
}
