package repositories

import (
	"context"
	"kolimeet-service/internal/domain"
	"kolimeet-service/internal/ports"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAppliesFilter(t *testing.T) {
	closed := &domain.Parcel{ID: "closed", Route: parisCotonou, Deadline: day(2026, 1, 12), Status: domain.StatusClosed}
	store := NewMemoryListingStore(nil, []*domain.Parcel{
		{ID: "late", Route: parisCotonou, Deadline: day(2026, 1, 20), Status: domain.StatusOpen},
		{ID: "early", Route: parisCotonou, Deadline: day(2026, 1, 9), Status: domain.StatusOpen},
		{ID: "b", Route: parisCotonou, Deadline: day(2026, 1, 12), Status: domain.StatusOpen},
		{ID: "a", Route: parisCotonou, Deadline: day(2026, 1, 12), Status: domain.StatusOpen},
		closed,
	})

	filter := ports.ListingFilter{
		Route: parisCotonou,
		Date:  ports.DateConstraint{Field: ports.FieldDeadline, Op: ports.OpGreaterOrEqual, Value: day(2026, 1, 10)},
	}

	got, err := store.FetchOpenParcels(context.Background(), filter, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(got, parcelID))
	assert.Equal(t, 1, store.Fetches())

	closed.Status = domain.StatusOpen
	store.Put(closed)
	got, err = store.FetchOpenParcels(context.Background(), filter, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "closed", "late"}, ids(got, parcelID))
}

func TestMemoryStoreFetchTrips(t *testing.T) {
	store := NewMemoryListingStore([]*domain.Trip{
		{ID: "t1", OwnerID: "ama", Route: parisCotonou, DateDeparture: day(2026, 1, 10), Status: domain.StatusOpen},
		{ID: "t2", OwnerID: "ama", Route: parisCotonou, DateDeparture: day(2026, 1, 15), Status: domain.StatusOpen},
		{ID: "t3", OwnerID: "ama", Route: parisCotonou, DateDeparture: day(2026, 1, 5), Status: domain.StatusCancelled},
	}, nil)

	filter := ports.ListingFilter{
		Route: parisCotonou,
		Date:  ports.DateConstraint{Field: ports.FieldDateDeparture, Op: ports.OpLessOrEqual, Value: day(2026, 1, 12)},
	}

	got, err := store.FetchOpenTrips(context.Background(), filter, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, ids(got, tripID))

	trips, parcels, err := store.ListOpenByOwner(context.Background(), "ama")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, ids(trips, tripID))
	assert.Empty(t, parcels)
}

func TestMemoryStoreErrors(t *testing.T) {
	store := NewMemoryListingStore(nil, nil)

	_, err := store.GetTrip(context.Background(), "nope")
	assert.ErrorIs(t, err, ports.ErrListingNotFound)

	_, err = store.FetchOpenTrips(context.Background(), ports.ListingFilter{Route: parisCotonou}, 20)
	assert.ErrorIs(t, err, ports.ErrUnsupportedFilter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.FetchOpenParcels(ctx, ports.ListingFilter{
		Route: parisCotonou,
		Date:  ports.DateConstraint{Field: ports.FieldDeadline, Op: ports.OpGreaterOrEqual, Value: day(2026, 1, 10)},
	}, 20)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, store.Fetches())
}
