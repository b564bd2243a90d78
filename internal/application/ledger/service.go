// Package ledger applies the marketplace instructions. Every method runs as
// one atomic store unit: it either commits all of its writes or none.
package ledger

import (
	"context"
	"errors"
	"math"
	"time"

	"airledger-backend/internal/domain"
	"airledger-backend/internal/infrastructure/store"

	"github.com/rs/zerolog/log"
)

type Service struct {
	Store *store.Store
	// Now defaults to time.Now.
	Now func() time.Time
	// Treasury receives platform fees; empty means the registry authority.
	Treasury domain.Identity
}

// Settlement describes the value moved by a purchase or lease.
type Settlement struct {
	Listing  *domain.Listing     `json:"listing"`
	Lease    *domain.LeaseRecord `json:"lease,omitempty"`
	Price    uint64              `json:"price"`
	Fee      uint64              `json:"fee"`
	Proceeds uint64              `json:"proceeds"`
	Seller   domain.Identity     `json:"seller"`
	Treasury domain.Identity     `json:"treasury"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) treasury(reg *domain.Registry) domain.Identity {
	if !s.Treasury.IsZero() {
		return s.Treasury
	}
	return reg.Authority
}

func requireCaller(caller domain.Identity) error {
	if caller.IsZero() {
		return domain.ErrIdentityInvalid
	}
	return nil
}

func listingEvent(typ string, l *domain.Listing, actor domain.Identity, at time.Time) *domain.Event {
	id := l.ListingID
	return &domain.Event{Type: typ, ListingID: &id, Actor: actor, At: at.Unix()}
}

// InitializeRegistry creates the registry singleton with caller as authority.
func (s *Service) InitializeRegistry(ctx context.Context, caller domain.Identity) (*domain.Registry, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	now := s.now()
	reg := &domain.Registry{Authority: caller, PlatformFeeBps: domain.DefaultPlatformFeeBps}

	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		if err := tx.CreateRegistry(reg); err != nil {
			return err
		}
		return tx.AppendEvent(&domain.Event{Type: domain.EventRegistryInitialized, Actor: caller, At: now.Unix()})
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("event", domain.EventRegistryInitialized).Str("authority", caller.String()).
		Uint16("platform_fee_bps", reg.PlatformFeeBps).Msg("registry initialized")
	return reg, nil
}

// CreateListing allocates the next listing id and bumps the location count.
func (s *Service) CreateListing(ctx context.Context, caller domain.Identity, p domain.ListingParams) (*domain.Listing, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	now := s.now()
	gridX, gridY := domain.GridCell(p.Latitude, p.Longitude)

	var listing *domain.Listing
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		reg, err := tx.Registry()
		if err != nil {
			return err
		}
		if reg.TotalListings == math.MaxUint64 {
			return domain.ErrListingIDConflict
		}
		id := reg.TotalListings

		idx, err := tx.LocationIndex(p.City, p.Country)
		if errors.Is(err, domain.ErrLocationNotFound) {
			idx = &domain.LocationIndex{City: p.City, Country: p.Country}
		} else if err != nil {
			return err
		}
		if idx.ListingCount == math.MaxUint32 {
			return domain.ErrLocationIndexFull
		}
		idx.ListingCount++

		listing = &domain.Listing{
			Owner:     caller,
			ListingID: id,
			Location: domain.Location{
				Latitude:  p.Latitude,
				Longitude: p.Longitude,
				GridX:     gridX,
				GridY:     gridY,
				City:      p.City,
				Country:   p.Country,
			},
			HeightFrom:   p.HeightFrom,
			HeightTo:     p.HeightTo,
			AreaSqm:      p.AreaSqm,
			Price:        p.Price,
			ListingType:  p.ListingType,
			Status:       domain.StatusActive,
			DurationDays: p.DurationDays,
			CreatedAt:    now.Unix(),
			MetadataURI:  p.MetadataURI,
		}
		if err := tx.CreateListing(listing); err != nil {
			return err
		}

		reg.TotalListings++
		if err := tx.PutRegistry(reg); err != nil {
			return err
		}
		if err := tx.PutLocationIndex(idx); err != nil {
			return err
		}

		ev := listingEvent(domain.EventCreated, listing, caller, now)
		ev.Amount = listing.Price
		return tx.AppendEvent(ev)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("event", domain.EventCreated).Uint64("listing_id", listing.ListingID).
		Str("owner", caller.String()).Str("listing_type", listing.ListingType.String()).
		Str("city", p.City).Str("country", p.Country).Uint64("price", p.Price).Msg("listing created")
	return listing, nil
}

// UpdatePrice changes the price of an active listing; owner only. Status and
// ownership are checked before the new price.
func (s *Service) UpdatePrice(ctx context.Context, caller domain.Identity, listingID, newPrice uint64) (*domain.Listing, error) {
	now := s.now()

	var listing *domain.Listing
	var oldPrice uint64
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		l, err := tx.Listing(listingID)
		if err != nil {
			return err
		}
		if l.Status != domain.StatusActive {
			return domain.ErrListingNotActive
		}
		if l.Owner != caller {
			return domain.ErrUnauthorized
		}
		if newPrice == 0 {
			return domain.ErrInvalidPrice
		}
		oldPrice = l.Price
		l.Price = newPrice
		if err := tx.PutListing(l); err != nil {
			return err
		}
		listing = l
		ev := listingEvent(domain.EventPriceUpdated, l, caller, now)
		ev.Amount = newPrice
		return tx.AppendEvent(ev)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("event", domain.EventPriceUpdated).Uint64("listing_id", listingID).
		Uint64("old_price", oldPrice).Uint64("new_price", newPrice).Msg("listing price updated")
	return listing, nil
}

// settle moves price from payer to seller and treasury. The full price is
// checked up front so a short payer never sees a partial transfer.
func settle(tx *store.Tx, payer, seller, treasury domain.Identity, price uint64, feeBps uint16) (fee, proceeds uint64, err error) {
	bal, err := tx.Balance(payer)
	if err != nil {
		return 0, 0, err
	}
	if bal < price {
		return 0, 0, domain.ErrInsufficientFunds
	}
	fee, proceeds = domain.SplitPayment(price, feeBps)
	if err := tx.Transfer(payer, seller, proceeds); err != nil {
		return 0, 0, err
	}
	if err := tx.Transfer(payer, treasury, fee); err != nil {
		return 0, 0, err
	}
	return fee, proceeds, nil
}

// PurchaseAirRights buys an active sale listing outright.
func (s *Service) PurchaseAirRights(ctx context.Context, caller domain.Identity, listingID uint64) (*Settlement, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	now := s.now()

	var out *Settlement
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		reg, err := tx.Registry()
		if err != nil {
			return err
		}
		l, err := tx.Listing(listingID)
		if err != nil {
			return err
		}
		// the status check is the only guard against a second buyer
		if l.Status != domain.StatusActive {
			return domain.ErrListingNotActive
		}
		if l.ListingType != domain.ListingTypeSale {
			return domain.ErrNotForSale
		}

		treasury := s.treasury(reg)
		fee, proceeds, err := settle(tx, caller, l.Owner, treasury, l.Price, reg.PlatformFeeBps)
		if err != nil {
			return err
		}

		buyer := caller
		l.Status = domain.StatusSold
		l.Buyer = &buyer
		if err := tx.PutListing(l); err != nil {
			return err
		}

		ev := listingEvent(domain.EventPurchased, l, caller, now)
		ev.Counterparty = l.Owner
		ev.Amount = l.Price
		ev.Fee = fee
		if err := tx.AppendEvent(ev); err != nil {
			return err
		}
		out = &Settlement{Listing: l, Price: l.Price, Fee: fee, Proceeds: proceeds, Seller: l.Owner, Treasury: treasury}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("event", domain.EventPurchased).Uint64("listing_id", listingID).
		Str("buyer", caller.String()).Str("seller", out.Seller.String()).
		Uint64("price", out.Price).Uint64("fee", out.Fee).Msg("air rights purchased")
	return out, nil
}

// LeaseAirRights leases an active lease listing and writes the lease record.
func (s *Service) LeaseAirRights(ctx context.Context, caller domain.Identity, listingID uint64) (*Settlement, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	now := s.now()

	var out *Settlement
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		reg, err := tx.Registry()
		if err != nil {
			return err
		}
		l, err := tx.Listing(listingID)
		if err != nil {
			return err
		}
		if l.Status != domain.StatusActive {
			return domain.ErrListingNotActive
		}
		if l.ListingType != domain.ListingTypeLease {
			return domain.ErrNotForLease
		}
		taken, err := tx.Exists(store.KindLease, domain.LeaseAddress(listingID, caller))
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrLeaseExists
		}

		treasury := s.treasury(reg)
		fee, proceeds, err := settle(tx, caller, l.Owner, treasury, l.Price, reg.PlatformFeeBps)
		if err != nil {
			return err
		}

		start := now.Unix()
		lease := &domain.LeaseRecord{
			ListingID:  listingID,
			Lessor:     l.Owner,
			Lessee:     caller,
			StartDate:  start,
			EndDate:    domain.LeaseEnd(start, l.DurationDays),
			AmountPaid: l.Price,
			IsActive:   true,
		}
		if err := tx.CreateLease(lease); err != nil {
			return err
		}

		lessee := caller
		l.Status = domain.StatusLeased
		l.Buyer = &lessee
		if err := tx.PutListing(l); err != nil {
			return err
		}

		ev := listingEvent(domain.EventLeased, l, caller, now)
		ev.Counterparty = l.Owner
		ev.Amount = l.Price
		ev.Fee = fee
		if err := tx.AppendEvent(ev); err != nil {
			return err
		}
		out = &Settlement{Listing: l, Lease: lease, Price: l.Price, Fee: fee, Proceeds: proceeds, Seller: l.Owner, Treasury: treasury}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("event", domain.EventLeased).Uint64("listing_id", listingID).
		Str("lessee", caller.String()).Str("lessor", out.Seller.String()).
		Int64("end_date", out.Lease.EndDate).Uint64("fee", out.Fee).Msg("air rights leased")
	return out, nil
}

// CancelListing withdraws an active listing; owner only.
func (s *Service) CancelListing(ctx context.Context, caller domain.Identity, listingID uint64) (*domain.Listing, error) {
	now := s.now()

	var listing *domain.Listing
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		l, err := tx.Listing(listingID)
		if err != nil {
			return err
		}
		if l.Status != domain.StatusActive {
			return domain.ErrListingNotActive
		}
		if l.Owner != caller {
			return domain.ErrUnauthorized
		}
		l.Status = domain.StatusCancelled
		if err := tx.PutListing(l); err != nil {
			return err
		}

		idx, err := tx.LocationIndex(l.Location.City, l.Location.Country)
		switch {
		case errors.Is(err, domain.ErrLocationNotFound):
		case err != nil:
			return err
		default:
			if idx.ListingCount > 0 {
				idx.ListingCount--
			}
			if err := tx.PutLocationIndex(idx); err != nil {
				return err
			}
		}

		listing = l
		return tx.AppendEvent(listingEvent(domain.EventCancelled, l, caller, now))
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("event", domain.EventCancelled).Uint64("listing_id", listingID).
		Str("owner", caller.String()).Msg("listing cancelled")
	return listing, nil
}

// FundAccount credits owner with amount; registry authority only.
func (s *Service) FundAccount(ctx context.Context, caller, owner domain.Identity, amount uint64) (*domain.Account, error) {
	if amount == 0 {
		return nil, domain.ErrInvalidAmount
	}
	if owner.IsZero() {
		return nil, domain.ErrIdentityInvalid
	}
	now := s.now()

	var acct *domain.Account
	err := s.Store.Update(ctx, func(tx *store.Tx) error {
		reg, err := tx.Registry()
		if err != nil {
			return err
		}
		if reg.Authority != caller {
			return domain.ErrUnauthorized
		}
		if err := tx.Credit(owner, amount); err != nil {
			return err
		}
		if acct, err = tx.Account(owner); err != nil {
			return err
		}
		return tx.AppendEvent(&domain.Event{
			Type: domain.EventAccountFunded, Actor: caller, Counterparty: owner, Amount: amount, At: now.Unix(),
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("event", domain.EventAccountFunded).Str("owner", owner.String()).
		Uint64("amount", amount).Uint64("balance", acct.Balance).Msg("account funded")
	return acct, nil
}
