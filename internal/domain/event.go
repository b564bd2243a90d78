package domain

// Event types written for every applied instruction.
const (
	EventRegistryInitialized = "REGISTRY_INITIALIZED"
	EventCreated             = "CREATED"
	EventPriceUpdated        = "PRICE_UPDATED"
	EventPurchased           = "PURCHASED"
	EventLeased              = "LEASED"
	EventCancelled           = "CANCELLED"
	EventAccountFunded       = "ACCOUNT_FUNDED"
)

// Event is one entry of the instruction history.
type Event struct {
	_            struct{} `cbor:",toarray"`
	Seq          uint64   `json:"seq"`
	Type         string   `json:"event_type"`
	ListingID    *uint64  `json:"listing_id"`
	Actor        Identity `json:"actor"`
	Counterparty Identity `json:"counterparty,omitempty"`
	Amount       uint64   `json:"amount"`
	Fee          uint64   `json:"fee"`
	At           int64    `json:"created_at"`
}

// EventLog is the head of the event sequence.
type EventLog struct {
	_     struct{} `cbor:",toarray"`
	Count uint64   `json:"count"`
}
