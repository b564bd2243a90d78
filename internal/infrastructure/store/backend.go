// Package store persists ledger records in a key-value substrate addressed
// by derived addresses.
//
// A Backend provides two primitives: Update, a serialized read-write unit
// that commits every write or none, and View, a read-only snapshot. Store
// layers the typed record accessors on top.
package store

import (
	"context"
	"errors"
	"fmt"

	"airledger-backend/internal/domain"
)

// RecordKind tags every stored record; it is also the key prefix.
type RecordKind byte

const (
	KindRegistry RecordKind = 'R'
	KindListing  RecordKind = 'L'
	KindLocation RecordKind = 'C'
	KindLease    RecordKind = 'S'
	KindAccount  RecordKind = 'A'
	KindEvent    RecordKind = 'E'
	KindEventLog RecordKind = 'H'
)

func (k RecordKind) String() string {
	switch k {
	case KindRegistry:
		return "registry"
	case KindListing:
		return "listing"
	case KindLocation:
		return "location"
	case KindLease:
		return "lease"
	case KindAccount:
		return "account"
	case KindEvent:
		return "event"
	case KindEventLog:
		return "event_log"
	default:
		return fmt.Sprintf("kind(%#02x)", byte(k))
	}
}

// Entry is one record as handed to a backend.
type Entry struct {
	Kind    RecordKind
	Address domain.Address
	Payload []byte
	// Document is an optional JSON rendering for backends that keep one.
	Document []byte
}

// Txn is the view of the substrate inside one Update or View call.
type Txn interface {
	// Get returns the payload at (kind, address) or domain.ErrRecordNotFound.
	Get(kind RecordKind, address domain.Address) ([]byte, error)
	// Put replaces the record in full. Fails inside View.
	Put(e Entry) error
	// Insert writes a record that must not exist yet and returns
	// ErrRecordExists when the address is taken, including by a concurrent
	// unit that commits first.
	Insert(e Entry) error
	// Scan calls fn for every record of kind in address order.
	Scan(kind RecordKind, fn func(address domain.Address, payload []byte) error) error
}

// Backend is a transactional key-value substrate.
type Backend interface {
	// Update runs fn as one atomic unit; an error from fn discards every write.
	// Concurrent Update calls touching the same records are serialized.
	Update(ctx context.Context, fn func(Txn) error) error
	View(ctx context.Context, fn func(Txn) error) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	// ErrReadOnly is returned by Put and Insert inside View.
	ErrReadOnly = errors.New("store: write inside read-only view")
	// ErrRecordExists is returned by Insert when the address is occupied.
	ErrRecordExists = errors.New("store: record already exists")
)
