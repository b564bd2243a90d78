package queries

import (
	"context"
	"testing"
	"time"

	"airledger-backend/internal/application/ledger"
	"airledger-backend/internal/domain"
	"airledger-backend/internal/infrastructure/store"
	"airledger-backend/internal/infrastructure/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Unix(1_700_000_000, 0).UTC()

func params(city, country string, typ domain.ListingType, price uint64) domain.ListingParams {
	return domain.ListingParams{
		Latitude: 1, Longitude: 1, HeightFrom: 0, HeightTo: 10, AreaSqm: 10,
		Price: price, ListingType: typ, DurationDays: 30, City: city, Country: country,
	}
}

// seed builds: 0 alice Mumbai sale (sold to bob), 1 alice Mumbai lease (leased by bob),
// 2 carol Pune sale (cancelled), 3 carol Mumbai sale (active).
func seed(t *testing.T, s *store.Store) *Service {
	t.Helper()
	ctx := context.Background()
	led := &ledger.Service{Store: s, Now: func() time.Time { return t0 }}
	_, err := led.InitializeRegistry(ctx, "root")
	require.NoError(t, err)
	_, err = led.FundAccount(ctx, "root", "bob", 1_000)
	require.NoError(t, err)

	_, err = led.CreateListing(ctx, "alice", params("Mumbai", "IN", domain.ListingTypeSale, 100))
	require.NoError(t, err)
	_, err = led.CreateListing(ctx, "alice", params("Mumbai", "IN", domain.ListingTypeLease, 200))
	require.NoError(t, err)
	_, err = led.CreateListing(ctx, "carol", params("Pune", "IN", domain.ListingTypeSale, 300))
	require.NoError(t, err)
	_, err = led.CreateListing(ctx, "carol", params("Mumbai", "IN", domain.ListingTypeSale, 400))
	require.NoError(t, err)

	_, err = led.PurchaseAirRights(ctx, "bob", 0)
	require.NoError(t, err)
	_, err = led.LeaseAirRights(ctx, "bob", 1)
	require.NoError(t, err)
	_, err = led.CancelListing(ctx, "carol", 2)
	require.NoError(t, err)

	return &Service{Store: s, Now: func() time.Time { return t0.Add(time.Hour) }}
}

func ids(ls []domain.Listing) []uint64 {
	out := make([]uint64, len(ls))
	for i, l := range ls {
		out[i] = l.ListingID
	}
	return out
}

func TestListingQueries(t *testing.T) {
	storetest.Each(t, func(t *testing.T, s *store.Store) {
		q := seed(t, s)
		ctx := context.Background()

		all, err := q.ListListings(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, []uint64{0, 1, 2, 3}, ids(all))

		mumbai, err := q.ListingsByLocation(ctx, "Mumbai", "IN")
		require.NoError(t, err)
		assert.Equal(t, []uint64{0, 1, 3}, ids(mumbai))

		carol, err := q.ListingsByOwner(ctx, "carol")
		require.NoError(t, err)
		assert.Equal(t, []uint64{2, 3}, ids(carol))

		active, err := q.ListingsByStatus(ctx, domain.StatusActive)
		require.NoError(t, err)
		assert.Equal(t, []uint64{3}, ids(active))

		cancelled := domain.StatusCancelled
		gone, err := q.ListListings(ctx, &cancelled)
		require.NoError(t, err)
		assert.Equal(t, []uint64{2}, ids(gone))

		l, err := q.GetListing(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusSold, l.Status)

		_, err = q.GetListing(ctx, 77)
		assert.ErrorIs(t, err, domain.ErrListingNotFound)
	})
}

func TestEmptyResultsAreEmptySlices(t *testing.T) {
	storetest.Each(t, func(t *testing.T, s *store.Store) {
		q := seed(t, s)
		ctx := context.Background()

		none, err := q.ListingsByLocation(ctx, "Paris", "FR")
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)

		leases, err := q.ActiveLeasesByLessee(ctx, "nobody")
		require.NoError(t, err)
		assert.NotNil(t, leases)
		assert.Empty(t, leases)

		events, err := q.ListingEvents(ctx, 99)
		require.NoError(t, err)
		assert.NotNil(t, events)
		assert.Empty(t, events)
	})
}

func TestLeaseQueries_ExpiryIsComputed(t *testing.T) {
	storetest.Each(t, func(t *testing.T, s *store.Store) {
		q := seed(t, s)
		ctx := context.Background()

		active, err := q.ActiveLeasesByLessee(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, uint64(1), active[0].ListingID)
		assert.True(t, active[0].ActiveNow)

		q.Now = func() time.Time { return t0.Add(31 * 24 * time.Hour) }
		active, err = q.ActiveLeasesByLessee(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, active)

		all, err := q.LeasesByLessee(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.False(t, all[0].ActiveNow)
		assert.True(t, all[0].IsActive)

		v, err := q.GetLease(ctx, 1, "bob")
		require.NoError(t, err)
		assert.False(t, v.ActiveNow)

		_, err = q.GetLease(ctx, 1, "carol")
		assert.ErrorIs(t, err, domain.ErrLeaseNotFound)
	})
}

func TestRegistryLocationAndBalances(t *testing.T) {
	storetest.Each(t, func(t *testing.T, s *store.Store) {
		q := seed(t, s)
		ctx := context.Background()

		reg, err := q.GetRegistry(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(4), reg.TotalListings)

		idx, err := q.GetLocationIndex(ctx, "Mumbai", "IN")
		require.NoError(t, err)
		assert.Equal(t, uint32(3), idx.ListingCount)
		pune, err := q.GetLocationIndex(ctx, "Pune", "IN")
		require.NoError(t, err)
		assert.Equal(t, uint32(0), pune.ListingCount)

		locs, err := q.Locations(ctx)
		require.NoError(t, err)
		require.Len(t, locs, 2)
		assert.Equal(t, "Mumbai", locs[0].City)

		// 100 + 200 at 2.5%: fees 2 + 5
		bob, err := q.Balance(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, uint64(700), bob.Balance)
		alice, err := q.Balance(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, uint64(98+195), alice.Balance)
		root, err := q.Balance(ctx, "root")
		require.NoError(t, err)
		assert.Equal(t, uint64(7), root.Balance)
	})
}

func TestListingEvents(t *testing.T) {
	storetest.Each(t, func(t *testing.T, s *store.Store) {
		q := seed(t, s)
		events, err := q.ListingEvents(context.Background(), 0)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, domain.EventCreated, events[0].Type)
		assert.Equal(t, domain.EventPurchased, events[1].Type)
		assert.Less(t, events[0].Seq, events[1].Seq)
		assert.Equal(t, uint64(2), events[1].Fee)
	})
}
