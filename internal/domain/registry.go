package domain

const (
	// DefaultPlatformFeeBps is fixed when the registry is initialized (2.5%).
	DefaultPlatformFeeBps uint16 = 250

	// MaxFeeBps is 100%; a fee can never exceed the price.
	MaxFeeBps uint16 = 10_000

	bpsDenominator = 10_000
)

// Registry is the singleton holding the listing counter and platform fee.
type Registry struct {
	_              struct{} `cbor:",toarray"`
	Authority      Identity `json:"authority"`
	TotalListings  uint64   `json:"total_listings"`
	PlatformFeeBps uint16   `json:"platform_fee_bps"`
}

// SplitPayment divides price into the platform fee and the seller's share.
//
// fee = floor(price * feeBps / 10000) without overflowing 64 bits, and
// fee + proceeds == price always. feeBps above MaxFeeBps is clamped.
func SplitPayment(price uint64, feeBps uint16) (fee, proceeds uint64) {
	if feeBps > MaxFeeBps {
		feeBps = MaxFeeBps
	}
	bps := uint64(feeBps)
	// price = q*10000 + r, so the floor only applies to r*bps/10000
	q, r := price/bpsDenominator, price%bpsDenominator
	fee = q*bps + r*bps/bpsDenominator
	return fee, price - fee
}

// LocationIndex counts live listings for one city/country pair.
type LocationIndex struct {
	_            struct{} `cbor:",toarray"`
	City         string   `json:"city"`
	Country      string   `json:"country"`
	ListingCount uint32   `json:"listing_count"`
}

// Address of the index record.
func (x *LocationIndex) Address() Address {
	return LocationAddress(x.City, x.Country)
}
