package domain

import (
	"encoding/binary"
	"encoding/hex"
	"hash"

	"golang.org/x/crypto/sha3"
)

// AddressLength is the size of a derived address in bytes.
const AddressLength = 32

// domain separation tag hashed ahead of every derivation
const addressTag = "airrights/v1"

// derivation namespaces
const (
	NamespaceRegistry = "registry"
	NamespaceListing  = "listing"
	NamespaceLocation = "location"
	NamespaceLease    = "lease"
	NamespaceAccount  = "account"
	NamespaceEvent    = "event"
	NamespaceEventLog = "event-log"
)

// Address is a storage location derived from a namespace and seed fields.
//
// SHA3-256 over the tag, the namespace and each seed, every field prefixed
// with its big endian length so seed boundaries cannot be shifted.
type Address [AddressLength]byte

// Derive computes the address for namespace and seeds. Pure and deterministic.
func Derive(namespace string, seeds ...[]byte) Address {
	digest := sha3.New256()
	digest.Write([]byte(addressTag))
	writeField(digest, []byte(namespace))
	for _, seed := range seeds {
		writeField(digest, seed)
	}
	var address Address
	copy(address[:], digest.Sum(nil))
	return address
}

func writeField(h hash.Hash, field []byte) {
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(field)))
	h.Write(size[:])
	h.Write(field)
}

func uint64Seed(n uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], n)
	return b[:]
}

// RegistryAddress is the global registry singleton.
func RegistryAddress() Address {
	return Derive(NamespaceRegistry)
}

// ListingAddress locates a listing by the registry counter value it was created with.
func ListingAddress(listingID uint64) Address {
	return Derive(NamespaceListing, uint64Seed(listingID))
}

// LocationAddress locates the secondary index for a city/country pair.
func LocationAddress(city, country string) Address {
	return Derive(NamespaceLocation, []byte(city), []byte(country))
}

// LeaseAddress allows at most one lease record per (listing, lessee).
func LeaseAddress(listingID uint64, lessee Identity) Address {
	return Derive(NamespaceLease, uint64Seed(listingID), []byte(lessee))
}

// AccountAddress locates the balance of an identity.
func AccountAddress(owner Identity) Address {
	return Derive(NamespaceAccount, []byte(owner))
}

// EventLogAddress is the head of the instruction event log.
func EventLogAddress() Address {
	return Derive(NamespaceEventLog)
}

// EventAddress locates the event with sequence number seq.
func EventAddress(seq uint64) Address {
	return Derive(NamespaceEvent, uint64Seed(seq))
}

// String - hex for the fmt package (for %s)
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// GoString - for %#v
func (a Address) GoString() string {
	return "<address:" + hex.EncodeToString(a[:]) + ">"
}

// MarshalText - hex text for JSON
func (a Address) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(len(a)))
	hex.Encode(buffer, a[:])
	return buffer, nil
}

// UnmarshalText - hex text into an address
func (a *Address) UnmarshalText(s []byte) error {
	if hex.DecodedLen(len(s)) != AddressLength {
		return ValidationError("address length is invalid")
	}
	if _, err := hex.Decode(a[:], s); err != nil {
		return ValidationError("address is not hex")
	}
	return nil
}

// ParseAddress converts hex text to an address.
func ParseAddress(s string) (Address, error) {
	var a Address
	err := a.UnmarshalText([]byte(s))
	return a, err
}
