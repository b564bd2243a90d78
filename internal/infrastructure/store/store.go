package store

import (
	"context"
	"errors"

	"airledger-backend/internal/domain"
)

// Store is the typed entry point over a Backend.
type Store struct {
	backend Backend
}

func New(b Backend) *Store {
	return &Store{backend: b}
}

// Update runs fn as one atomic unit. If fn returns an error nothing it wrote
// is visible afterwards.
func (s *Store) Update(ctx context.Context, fn func(*Tx) error) error {
	return s.backend.Update(ctx, func(txn Txn) error {
		return fn(&Tx{txn: txn})
	})
}

// View runs fn against a consistent read-only snapshot.
func (s *Store) View(ctx context.Context, fn func(*Tx) error) error {
	return s.backend.View(ctx, func(txn Txn) error {
		return fn(&Tx{txn: txn})
	})
}

func (s *Store) Ping(ctx context.Context) error { return s.backend.Ping(ctx) }

func (s *Store) Close() error { return s.backend.Close() }

// Tx exposes typed record access inside one unit.
type Tx struct {
	txn Txn
}

func (t *Tx) load(kind RecordKind, addr domain.Address, notFound error, v interface{}) error {
	data, err := t.txn.Get(kind, addr)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return notFound
	}
	if err != nil {
		return err
	}
	return decode(kind, data, v)
}

func (t *Tx) store(kind RecordKind, addr domain.Address, v interface{}) error {
	payload, err := encode(kind, v)
	if err != nil {
		return err
	}
	return t.txn.Put(Entry{Kind: kind, Address: addr, Payload: payload, Document: document(v)})
}

// create inserts v and reports exists when the address is already taken.
func (t *Tx) create(kind RecordKind, addr domain.Address, v interface{}, exists error) error {
	payload, err := encode(kind, v)
	if err != nil {
		return err
	}
	err = t.txn.Insert(Entry{Kind: kind, Address: addr, Payload: payload, Document: document(v)})
	if errors.Is(err, ErrRecordExists) {
		return exists
	}
	return err
}

// Exists reports whether any record of kind lives at addr.
func (t *Tx) Exists(kind RecordKind, addr domain.Address) (bool, error) {
	_, err := t.txn.Get(kind, addr)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (t *Tx) Registry() (*domain.Registry, error) {
	var r domain.Registry
	if err := t.load(KindRegistry, domain.RegistryAddress(), domain.ErrRegistryNotFound, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (t *Tx) PutRegistry(r *domain.Registry) error {
	return t.store(KindRegistry, domain.RegistryAddress(), r)
}

// CreateRegistry writes the singleton or fails with domain.ErrRegistryExists.
func (t *Tx) CreateRegistry(r *domain.Registry) error {
	return t.create(KindRegistry, domain.RegistryAddress(), r, domain.ErrRegistryExists)
}

func (t *Tx) Listing(id uint64) (*domain.Listing, error) {
	var l domain.Listing
	if err := t.load(KindListing, domain.ListingAddress(id), domain.ErrListingNotFound, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (t *Tx) PutListing(l *domain.Listing) error {
	return t.store(KindListing, l.Address(), l)
}

// CreateListing writes a new listing or fails with domain.ErrListingIDConflict.
func (t *Tx) CreateListing(l *domain.Listing) error {
	return t.create(KindListing, l.Address(), l, domain.ErrListingIDConflict)
}

// Listings visits every listing in address order.
func (t *Tx) Listings(fn func(*domain.Listing) error) error {
	return t.txn.Scan(KindListing, func(_ domain.Address, payload []byte) error {
		var l domain.Listing
		if err := decode(KindListing, payload, &l); err != nil {
			return err
		}
		return fn(&l)
	})
}

func (t *Tx) LocationIndex(city, country string) (*domain.LocationIndex, error) {
	var x domain.LocationIndex
	if err := t.load(KindLocation, domain.LocationAddress(city, country), domain.ErrLocationNotFound, &x); err != nil {
		return nil, err
	}
	return &x, nil
}

func (t *Tx) PutLocationIndex(x *domain.LocationIndex) error {
	return t.store(KindLocation, x.Address(), x)
}

func (t *Tx) LocationIndexes(fn func(*domain.LocationIndex) error) error {
	return t.txn.Scan(KindLocation, func(_ domain.Address, payload []byte) error {
		var x domain.LocationIndex
		if err := decode(KindLocation, payload, &x); err != nil {
			return err
		}
		return fn(&x)
	})
}

func (t *Tx) Lease(listingID uint64, lessee domain.Identity) (*domain.LeaseRecord, error) {
	var l domain.LeaseRecord
	if err := t.load(KindLease, domain.LeaseAddress(listingID, lessee), domain.ErrLeaseNotFound, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (t *Tx) PutLease(l *domain.LeaseRecord) error {
	return t.store(KindLease, l.Address(), l)
}

// CreateLease writes a new lease or fails with domain.ErrLeaseExists.
func (t *Tx) CreateLease(l *domain.LeaseRecord) error {
	return t.create(KindLease, l.Address(), l, domain.ErrLeaseExists)
}

func (t *Tx) Leases(fn func(*domain.LeaseRecord) error) error {
	return t.txn.Scan(KindLease, func(_ domain.Address, payload []byte) error {
		var l domain.LeaseRecord
		if err := decode(KindLease, payload, &l); err != nil {
			return err
		}
		return fn(&l)
	})
}
