package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite listing schema. The *_key columns hold
// domain.FoldLocation values since SQLite's lower() only folds ASCII.
// Writers must fill them (routeKeys); candidate queries match on them only,
// so a row inserted with raw or empty keys is never returned.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createTripsQuery := `
	CREATE TABLE IF NOT EXISTS trips (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		from_city TEXT NOT NULL,
		from_country TEXT NOT NULL,
		to_city TEXT NOT NULL,
		to_country TEXT NOT NULL,
		from_city_key TEXT NOT NULL,
		from_country_key TEXT NOT NULL,
		to_city_key TEXT NOT NULL,
		to_country_key TEXT NOT NULL,
		date_departure TEXT NOT NULL,
		capacity_available_liters REAL NOT NULL DEFAULT 0,
		capacity_available_kg REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'open'
	);
	`

	createParcelsQuery := `
	CREATE TABLE IF NOT EXISTS parcels (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		from_city TEXT NOT NULL,
		from_country TEXT NOT NULL,
		to_city TEXT NOT NULL,
		to_country TEXT NOT NULL,
		from_city_key TEXT NOT NULL,
		from_country_key TEXT NOT NULL,
		to_city_key TEXT NOT NULL,
		to_country_key TEXT NOT NULL,
		deadline TEXT NOT NULL,
		size TEXT NOT NULL,
		weight_kg REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'open'
	);
	`

	createTripsIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_trips_open_route
	ON trips(status, from_country_key, from_city_key, to_country_key, to_city_key, date_departure);
	`

	createParcelsIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_parcels_open_route
	ON parcels(status, from_country_key, from_city_key, to_country_key, to_city_key, deadline);
	`

	statements := []string{
		createTripsQuery,
		createParcelsQuery,
		createTripsIndexQuery,
		createParcelsIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Seed upserts every listing of the seed file.
func (s *SqliteListingStore) Seed(ctx context.Context, seed *SeedFile) error {
	if s.DB == nil {
		return errors.New("seed listings: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed listings: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	tripStmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO trips (
		id, owner_id,
		from_city, from_country, to_city, to_country,
		from_city_key, from_country_key, to_city_key, to_country_key,
		date_departure, capacity_available_liters, capacity_available_kg, status
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("seed listings: prepare trip insert: %w", err)
	}
	defer tripStmt.Close()

	for _, r := range seed.Trips {
		k := r.routeKeys()
		if _, err := tripStmt.ExecContext(ctx,
			r.ID, r.OwnerID,
			r.FromCity, r.FromCountry, r.ToCity, r.ToCountry,
			k.FromCity, k.FromCountry, k.ToCity, k.ToCountry,
			r.DateDeparture, r.CapacityLiters, r.CapacityKg, r.Status,
		); err != nil {
			return fmt.Errorf("seed listings: insert trip id=%q: %w", r.ID, err)
		}
	}

	parcelStmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO parcels (
		id, owner_id,
		from_city, from_country, to_city, to_country,
		from_city_key, from_country_key, to_city_key, to_country_key,
		deadline, size, weight_kg, status
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("seed listings: prepare parcel insert: %w", err)
	}
	defer parcelStmt.Close()

	for _, r := range seed.Parcels {
		k := r.routeKeys()
		if _, err := parcelStmt.ExecContext(ctx,
			r.ID, r.OwnerID,
			r.FromCity, r.FromCountry, r.ToCity, r.ToCountry,
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
