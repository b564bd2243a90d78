package domain

import (
	"fmt"
	"strings"
)

// Field bounds enforced when a listing is created.
const (
	MaxMetadataURILength = 200
	MaxCityLength        = 50
	MinCountryLength     = 2
	MaxCountryLength     = 3

	// coordinates are degrees scaled by CoordinateScale
	CoordinateScale = 1_000_000
	MaxLatitude     = 90 * CoordinateScale
	MaxLongitude    = 180 * CoordinateScale

	// one grid bucket is 0.01 degree
	GridCellSize = 10_000
)

// ListingType is what a listing offers.
type ListingType uint8

const (
	ListingTypeSale ListingType = iota
	ListingTypeLease
)

func (t ListingType) String() string {
	switch t {
	case ListingTypeSale:
		return "sale"
	case ListingTypeLease:
		return "lease"
	default:
		return fmt.Sprintf("listing_type(%d)", uint8(t))
	}
}

func (t ListingType) Valid() bool {
	return t == ListingTypeSale || t == ListingTypeLease
}

func (t ListingType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, ErrInvalidListingType
	}
	return []byte(t.String()), nil
}

func (t *ListingType) UnmarshalText(b []byte) error {
	v, err := ParseListingType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseListingType accepts "sale" or "lease" in any case.
func ParseListingType(s string) (ListingType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sale":
		return ListingTypeSale, nil
	case "lease":
		return ListingTypeLease, nil
	}
	return 0, ErrInvalidListingType
}

// ListingStatus is the listing state machine.
//
//	Active -> Sold | Leased | Cancelled
//
// Sold, Leased and Cancelled are terminal.
type ListingStatus uint8

const (
	StatusActive ListingStatus = iota
	StatusSold
	StatusLeased
	StatusCancelled
)

func (s ListingStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusSold:
		return "sold"
	case StatusLeased:
		return "leased"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Terminal reports whether no further transition is allowed.
func (s ListingStatus) Terminal() bool {
	switch s {
	case StatusActive:
		return false
	case StatusSold, StatusLeased, StatusCancelled:
		return true
	default:
		// unknown states never accept transitions
		return true
	}
}

func (s ListingStatus) MarshalText() ([]byte, error) {
	if s > StatusCancelled {
		return nil, ValidationError("invalid listing status")
	}
	return []byte(s.String()), nil
}

func (s *ListingStatus) UnmarshalText(b []byte) error {
	v, err := ParseListingStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func ParseListingStatus(str string) (ListingStatus, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "active":
		return StatusActive, nil
	case "sold":
		return StatusSold, nil
	case "leased":
		return StatusLeased, nil
	case "cancelled", "canceled":
		return StatusCancelled, nil
	}
	return 0, ValidationError("invalid listing status")
}

// Location is embedded in a listing. Latitude and longitude are fixed point
// (degrees * 1e6); the grid fields are reserved for bucketed range queries.
type Location struct {
	_         struct{} `cbor:",toarray"`
	Latitude  int32    `json:"latitude"`
	Longitude int32    `json:"longitude"`
	GridX     uint32   `json:"grid_x"`
	GridY     uint32   `json:"grid_y"`
	City      string   `json:"city"`
	Country   string   `json:"country"`
}

// GridCell returns the 0.01 degree bucket containing the coordinates.
// Coordinates must already be within range.
func GridCell(latitude, longitude int32) (gridX, gridY uint32) {
	gridX = uint32((int64(longitude) + MaxLongitude) / GridCellSize)
	gridY = uint32((int64(latitude) + MaxLatitude) / GridCellSize)
	return gridX, gridY
}

// Listing is one parcel of air rights offered for sale or lease.
type Listing struct {
	_            struct{}      `cbor:",toarray"`
	Owner        Identity      `json:"owner"`
	ListingID    uint64        `json:"listing_id"`
	Location     Location      `json:"location"`
	HeightFrom   uint16        `json:"height_from"`
	HeightTo     uint16        `json:"height_to"`
	AreaSqm      uint32        `json:"area_sqm"`
	Price        uint64        `json:"price"`
	ListingType  ListingType   `json:"listing_type"`
	Status       ListingStatus `json:"status"`
	DurationDays uint32        `json:"duration_days"`
	CreatedAt    int64         `json:"created_at"`
	MetadataURI  string        `json:"metadata_uri"`
	Buyer        *Identity     `json:"buyer"`
}

// Address of the listing record.
func (l *Listing) Address() Address {
	return ListingAddress(l.ListingID)
}

// ListingParams are the caller supplied fields of a new listing.
type ListingParams struct {
	Latitude     int32
	Longitude    int32
	HeightFrom   uint16
	HeightTo     uint16
	AreaSqm      uint32
	Price        uint64
	ListingType  ListingType
	DurationDays uint32
	City         string
	Country      string
	MetadataURI  string
}

// Validate checks the bounds of every caller supplied field. Lengths are in bytes.
func (p ListingParams) Validate() error {
	if len(p.MetadataURI) > MaxMetadataURILength {
		return ErrMetadataURITooLong
	}
	if len(p.City) == 0 {
		return ErrCityNameRequired
	}
	if len(p.City) > MaxCityLength {
		return ErrCityNameTooLong
	}
	if len(p.Country) < MinCountryLength || len(p.Country) > MaxCountryLength {
		return ErrCountryCodeInvalid
	}
	if p.HeightTo <= p.HeightFrom {
		return ErrInvalidHeightRange
	}
	if p.Price == 0 {
		return ErrInvalidPrice
	}
	if !p.ListingType.Valid() {
		return ErrInvalidListingType
	}
	if p.Latitude < -MaxLatitude || p.Latitude > MaxLatitude ||
		p.Longitude < -MaxLongitude || p.Longitude > MaxLongitude {
		return ErrCoordinatesInvalid
	}
	return nil
}
