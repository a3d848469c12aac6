package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"kolimeet-service/internal/domain"
	"kolimeet-service/internal/platform/obs"
	"kolimeet-service/internal/ports"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const KeyPrefix = "kolimeet:candidates:"

// RedisListingCache is a read-through cache in front of a ListingStore.
//
// Candidate sets are cached per (kind, folded route, date bound, limit) for a
// short TTL, so repeated views of the same listing do not hit the database.
// Redis failures fall back to the wrapped store.
//
// Cached sets are not updated when a listing changes status: a parcel closed
// after a set was cached can still be returned until the TTL expires or
// Invalidate runs. Writers that change status should call Invalidate.
type RedisListingCache struct {
	next ports.ListingStore
	rdb  redis.Cmdable
	ttl  time.Duration
}

func NewRedisListingCache(next ports.ListingStore, rdb redis.Cmdable, ttl time.Duration) *RedisListingCache {
	return &RedisListingCache{next: next, rdb: rdb, ttl: ttl}
}

func (c *RedisListingCache) FetchOpenParcels(
	ctx context.Context,
	filter ports.ListingFilter,
	limit int,
) ([]*domain.Parcel, error) {
	if err := filter.Check(domain.KindParcel); err != nil {
		return nil, err
	}

	key := cacheKey(domain.KindParcel, filter, limit)

	var cached []*domain.Parcel
	if c.get(ctx, key, &cached) {
		return cached, nil
	}

	parcels, err := c.next.FetchOpenParcels(ctx, filter, limit)
	if err != nil {
		return nil, err
	}

	c.put(ctx, key, parcels)
	return parcels, nil
}

func (c *RedisListingCache) FetchOpenTrips(
	ctx context.Context,
	filter ports.ListingFilter,
	limit int,
) ([]*domain.Trip, error) {
	if err := filter.Check(domain.KindTrip); err != nil {
		return nil, err
	}

	key := cacheKey(domain.KindTrip, filter, limit)

	var cached []*domain.Trip
	if c.get(ctx, key, &cached) {
		return cached, nil
	}

	trips, err := c.next.FetchOpenTrips(ctx, filter, limit)
	if err != nil {
		return nil, err
	}

	c.put(ctx, key, trips)
	return trips, nil
}

// get reports a hit and decodes the cached value into dst.
func (c *RedisListingCache) get(ctx context.Context, key string, dst any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		obs.ListingCacheTotal.WithLabelValues("miss").Inc()
		return false
	}
	if err != nil {
		obs.ListingCacheTotal.WithLabelValues("error").Inc()
		zap.L().Warn("candidate cache read failed, querying store",
			zap.String("key", key), zap.Error(err))
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		obs.ListingCacheTotal.WithLabelValues("error").Inc()
		zap.L().Warn("candidate cache entry unreadable, querying store",
			zap.String("key", key), zap.Error(err))
		return false
	}

	obs.ListingCacheTotal.WithLabelValues("hit").Inc()
	return true
}

func (c *RedisListingCache) put(ctx context.Context, key string, v any) {
	if c.ttl <= 0 {
		return
	}

	raw, err := json.Marshal(v)
	if err != nil {
		zap.L().Warn("candidate cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		zap.L().Warn("candidate cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops every cached candidate set. The listing service calls it
// through dbtool after bulk edits and status changes.
func (c *RedisListingCache) Invalidate(ctx context.Context) (int, error) {
	removed := 0
	iter := c.rdb.Scan(ctx, 0, KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, fmt.Errorf("invalidate candidate cache: del %q: %w", iter.Val(), err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("invalidate candidate cache: scan: %w", err)
	}
	return removed, nil
}

func cacheKey(kind domain.Kind, filter ports.ListingFilter, limit int) string {
	r := filter.Route.Folded()
	return KeyPrefix + strings.Join([]string{
		string(kind),
		r.FromCountry, r.FromCity, r.ToCountry, r.ToCity,
		string(filter.Date.Field) + string(filter.Date.Op) + filter.Date.Value.UTC().Format("2006-01-02"),
		strconv.Itoa(limit),
	}, "|")
}
