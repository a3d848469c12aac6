package cache

import (
	"context"
	"kolimeet-service/internal/adapters/repositories"
	"kolimeet-service/internal/domain"
	"kolimeet-service/internal/ports"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var route = domain.Route{FromCity: "Paris", FromCountry: "France", ToCity: "Cotonou", ToCountry: "Bénin"}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestCache(t *testing.T, ttl time.Duration) (*RedisListingCache, *repositories.MemoryListingStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := repositories.NewMemoryListingStore(
		[]*domain.Trip{
			{ID: "t1", Route: route, DateDeparture: date(2026, 1, 8), CapacityLiters: 30, Status: domain.StatusOpen},
		},
		[]*domain.Parcel{
			{ID: "p1", Route: route, Deadline: date(2026, 1, 12), Size: domain.SizeMedium, Status: domain.StatusOpen},
			{ID: "p2", Route: route, Deadline: date(2026, 2, 1), Size: domain.SizeLarge, Status: domain.StatusOpen},
		},
	)

	return NewRedisListingCache(store, rdb, ttl), store, mr
}

func parcelFilter() ports.ListingFilter {
	return ports.ListingFilter{
		Route: route,
		Date:  ports.DateConstraint{Field: ports.FieldDeadline, Op: ports.OpGreaterOrEqual, Value: date(2026, 1, 10)},
	}
}

func TestRedisListingCache_ReadThrough(t *testing.T) {
	c, store, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	first, err := c.FetchOpenParcels(ctx, parcelFilter(), 20)
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := c.FetchOpenParcels(ctx, parcelFilter(), 20)
	require.NoError(t, err)

	assert.Equal(t, 1, store.Fetches(), "second lookup should be served from redis")
	require.Len(t, second, 2)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.True(t, first[0].Deadline.Equal(second[0].Deadline))
	assert.Equal(t, domain.SizeMedium, second[0].Size)
}

func TestRedisListingCache_KeyIgnoresCaseAndSpacing(t *testing.T) {
	c, store, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, err := c.FetchOpenParcels(ctx, parcelFilter(), 20)
	require.NoError(t, err)

	f := parcelFilter()
	f.Route.FromCity = "  PARIS "
	_, err = c.FetchOpenParcels(ctx, f, 20)
	require.NoError(t, err)

	assert.Equal(t, 1, store.Fetches())
}

func TestRedisListingCache_Expires(t *testing.T) {
	c, store, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	_, err := c.FetchOpenParcels(ctx, parcelFilter(), 20)
	require.NoError(t, err)

	mr.FastForward(31 * time.Second)

	_, err = c.FetchOpenParcels(ctx, parcelFilter(), 20)
	require.NoError(t, err)

	assert.Equal(t, 2, store.Fetches())
}

func TestRedisListingCache_FallsBackWhenRedisDown(t *testing.T) {
	c, store, mr := newTestCache(t, time.Minute)
	mr.Close()

	trips, err := c.FetchOpenTrips(context.Background(), ports.ListingFilter{
		Route: route,
		Date:  ports.DateConstraint{Field: ports.FieldDateDeparture, Op: ports.OpLessOrEqual, Value: date(2026, 1, 12)},
	}, 20)

	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, "t1", trips[0].ID)
	assert.Equal(t, 1, store.Fetches())
}

func TestRedisListingCache_RejectsUnsupportedFilter(t *testing.T) {
	c, store, _ := newTestCache(t, time.Minute)

	f := parcelFilter()
	f.Date.Op = ports.OpLessOrEqual

	_, err := c.FetchOpenParcels(context.Background(), f, 20)
	assert.ErrorIs(t, err, ports.ErrUnsupportedFilter)
	assert.Equal(t, 0, store.Fetches())
}

func TestRedisListingCache_Invalidate(t *testing.T) {
	c, store, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, err := c.FetchOpenParcels(ctx, parcelFilter(), 20)
	require.NoError(t, err)

	removed, err := c.Invalidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = c.FetchOpenParcels(ctx, parcelFilter(), 20)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Fetches())
}

func TestRedisListingCache_StatusChangeVisibleAfterTTLOrInvalidate(t *testing.T) {
	c, store, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	_, err := c.FetchOpenParcels(ctx, parcelFilter(), 20)
	require.NoError(t, err)

	store.Put(&domain.Parcel{ID: "p1", Route: route, Deadline: date(2026, 1, 12), Size: domain.SizeMedium, Status: domain.StatusClosed})

	stale, err := c.FetchOpenParcels(ctx, parcelFilter(), 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, parcelIDs(stale), "closed parcel is served until the entry goes away")

	mr.FastForward(31 * time.Second)
	fresh, err := c.FetchOpenParcels(ctx, parcelFilter(), 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, parcelIDs(fresh))

	store.Put(&domain.Parcel{ID: "p2", Route: route, Deadline: date(2026, 2, 1), Size: domain.SizeLarge, Status: domain.StatusMatched})
	_, err = c.Invalidate(ctx)
	require.NoError(t, err)

	fresh, err = c.FetchOpenParcels(ctx, parcelFilter(), 20)
	require.NoError(t, err)
	assert.Empty(t, fresh)
	assert.Equal(t, 3, store.Fetches())
}

func parcelIDs(ps []*domain.Parcel) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}
