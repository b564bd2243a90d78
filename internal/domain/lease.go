package domain

import "time"

// SecondsPerDay converts lease durations to end dates.
const SecondsPerDay = 86_400

// LeaseRecord is one completed lease. It is written once and never updated;
// expiry is computed by readers.
type LeaseRecord struct {
	_          struct{} `cbor:",toarray"`
	ListingID  uint64   `json:"listing_id"`
	Lessor     Identity `json:"lessor"`
	Lessee     Identity `json:"lessee"`
	StartDate  int64    `json:"start_date"`
	EndDate    int64    `json:"end_date"`
	AmountPaid uint64   `json:"amount_paid"`
	IsActive   bool     `json:"is_active"`
}

// Address of the lease record.
func (l *LeaseRecord) Address() Address {
	return LeaseAddress(l.ListingID, l.Lessee)
}

// ActiveAt reports whether the lease is in force at now.
func (l *LeaseRecord) ActiveAt(now time.Time) bool {
	return l.IsActive && now.Unix() < l.EndDate
}

// LeaseEnd returns start + durationDays days.
func LeaseEnd(start int64, durationDays uint32) int64 {
	return start + int64(durationDays)*SecondsPerDay
}
