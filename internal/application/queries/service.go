// Package queries holds the read-only projections over the ledger store.
package queries

import (
	"context"
	"sort"
	"time"

	"airledger-backend/internal/domain"
	"airledger-backend/internal/infrastructure/store"
)

type Service struct {
	Store *store.Store
	Now   func() time.Time
}

// LeaseView is a lease record plus its expiry as seen at query time.
type LeaseView struct {
	domain.LeaseRecord
	ActiveNow bool `json:"active_now"`
}

type AccountView struct {
	Owner   domain.Identity `json:"owner"`
	Balance uint64          `json:"balance"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) GetRegistry(ctx context.Context) (*domain.Registry, error) {
	var reg *domain.Registry
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		reg, err = tx.Registry()
		return err
	})
	return reg, err
}

func (s *Service) GetListing(ctx context.Context, id uint64) (*domain.Listing, error) {
	var l *domain.Listing
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		l, err = tx.Listing(id)
		return err
	})
	return l, err
}

// filterListings returns the listings keep accepts, ordered by id.
func (s *Service) filterListings(ctx context.Context, keep func(*domain.Listing) bool) ([]domain.Listing, error) {
	out := []domain.Listing{}
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		return tx.Listings(func(l *domain.Listing) error {
			if keep(l) {
				out = append(out, *l)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ListingID < out[j].ListingID })
	return out, nil
}

// ListListings returns every listing, or only those in status when it is set.
func (s *Service) ListListings(ctx context.Context, status *domain.ListingStatus) ([]domain.Listing, error) {
	return s.filterListings(ctx, func(l *domain.Listing) bool {
		return status == nil || l.Status == *status
	})
}

func (s *Service) ListingsByStatus(ctx context.Context, status domain.ListingStatus) ([]domain.Listing, error) {
	return s.ListListings(ctx, &status)
}

// ListingsByLocation matches city and country exactly; no radius search.
func (s *Service) ListingsByLocation(ctx context.Context, city, country string) ([]domain.Listing, error) {
	return s.filterListings(ctx, func(l *domain.Listing) bool {
		return l.Location.City == city && l.Location.Country == country
	})
}

func (s *Service) ListingsByOwner(ctx context.Context, owner domain.Identity) ([]domain.Listing, error) {
	return s.filterListings(ctx, func(l *domain.Listing) bool { return l.Owner == owner })
}

func (s *Service) GetLocationIndex(ctx context.Context, city, country string) (*domain.LocationIndex, error) {
	var idx *domain.LocationIndex
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		idx, err = tx.LocationIndex(city, country)
		return err
	})
	return idx, err
}

// Locations returns every location index ordered by country, then city.
func (s *Service) Locations(ctx context.Context) ([]domain.LocationIndex, error) {
	out := []domain.LocationIndex{}
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		return tx.LocationIndexes(func(x *domain.LocationIndex) error {
			out = append(out, *x)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Country != out[j].Country {
			return out[i].Country < out[j].Country
		}
		return out[i].City < out[j].City
	})
	return out, nil
}

func (s *Service) GetLease(ctx context.Context, listingID uint64, lessee domain.Identity) (*LeaseView, error) {
	var v *LeaseView
	now := s.now()
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		l, err := tx.Lease(listingID, lessee)
		if err != nil {
			return err
		}
		v = &LeaseView{LeaseRecord: *l, ActiveNow: l.ActiveAt(now)}
		return nil
	})
	return v, err
}

func (s *Service) leases(ctx context.Context, lessee domain.Identity, activeOnly bool) ([]LeaseView, error) {
	now := s.now()
	out := []LeaseView{}
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		return tx.Leases(func(l *domain.LeaseRecord) error {
			if l.Lessee != lessee {
				return nil
			}
			active := l.ActiveAt(now)
			if activeOnly && !active {
				return nil
			}
			out = append(out, LeaseView{LeaseRecord: *l, ActiveNow: active})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ListingID < out[j].ListingID })
	return out, nil
}

// ActiveLeasesByLessee returns leases with is_active set and end_date still ahead.
func (s *Service) ActiveLeasesByLessee(ctx context.Context, lessee domain.Identity) ([]LeaseView, error) {
	return s.leases(ctx, lessee, true)
}

func (s *Service) LeasesByLessee(ctx context.Context, lessee domain.Identity) ([]LeaseView, error) {
	return s.leases(ctx, lessee, false)
}

func (s *Service) Balance(ctx context.Context, owner domain.Identity) (*AccountView, error) {
	v := &AccountView{Owner: owner}
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		var err error
		v.Balance, err = tx.Balance(owner)
		return err
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ListingEvents returns the history of one listing in sequence order.
func (s *Service) ListingEvents(ctx context.Context, listingID uint64) ([]domain.Event, error) {
	out := []domain.Event{}
	err := s.Store.View(ctx, func(tx *store.Tx) error {
		return tx.Events(func(e *domain.Event) error {
			if e.ListingID != nil && *e.ListingID == listingID {
				out = append(out, *e)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
