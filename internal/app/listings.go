package app

import (
	"context"
	"database/sql"
	"fmt"
	"kolimeet-service/internal/adapters/cache"
	"kolimeet-service/internal/adapters/notify"
	"kolimeet-service/internal/adapters/repositories"
	"kolimeet-service/internal/config"
	"kolimeet-service/internal/platform/db"
	"kolimeet-service/internal/ports"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ListingDB is a SQL-backed listing store that can also load seed files.
type ListingDB interface {
	ports.ListingStore
	ports.ListingReader
	Seed(ctx context.Context, seed *repositories.SeedFile) error
}

// OpenListings opens the configured database and prepares its schema:
// golang-migrate for Postgres, InitSchema for SQLite.
func OpenListings(cfg *config.Config) (*sql.DB, ListingDB, error) {
	switch cfg.DBDriver {
	case "postgres":
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return conn, repositories.NewPostgresListingStore(conn), nil

	case "sqlite":
		conn, err := db.OpenSqlite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitSchema(conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return conn, repositories.NewSqliteListingStore(conn), nil
	}
	return nil, nil, fmt.Errorf("open listings: unknown driver %q", cfg.DBDriver)
}

// SeedListings loads the seed file at path into store.
func SeedListings(ctx context.Context, store ListingDB, path string) (trips, parcels int, err error) {
	seed, err := repositories.LoadSeedFile(path)
	if err != nil {
		return 0, 0, err
	}
	if err := store.Seed(ctx, seed); err != nil {
		return 0, 0, err
	}
	return len(seed.Trips), len(seed.Parcels), nil
}

// OpenRedis connects to Redis and verifies the connection.
func OpenRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis connect %s: %w", addr, err)
	}
	return rdb, nil
}

// CandidateStore wraps store with the Redis candidate cache when REDIS_ADDR
// is configured. The returned close func is always safe to call.
func CandidateStore(ctx context.Context, cfg *config.Config, store ports.ListingStore) (ports.ListingStore, func(), error) {
	if cfg.RedisAddr == "" {
		return store, func() {}, nil
	}

	rdb, err := OpenRedis(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}

	zap.L().Info("candidate cache enabled",
		zap.String("redis_addr", cfg.RedisAddr),
		zap.Duration("ttl", cfg.CacheTTL),
	)
	return cache.NewRedisListingCache(store, rdb, cfg.CacheTTL), func() { rdb.Close() }, nil
}

// Notifier connects to NATS when NATS_URL is configured. A nil notifier
// disables perfect match notifications.
func Notifier(cfg *config.Config) (ports.MatchNotifier, func(), error) {
	if cfg.NATSURL == "" {
		return nil, func() {}, nil
	}

	natsConfig := notify.DefaultNATSConfig()
	natsConfig.URL = cfg.NATSURL

	n, err := notify.NewNATSMatchNotifier(natsConfig)
	if err != nil {
		return nil, nil, err
	}
	return n, n.Close, nil
}
