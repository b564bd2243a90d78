package domain

import "errors"

// Error kinds. Every error returned by an instruction belongs to exactly one
// kind so callers can tell "your input was wrong" from "you can't afford this".
type (
	ValidationError    string
	AuthorizationError string
	StateConflictError string
	ResourceError      string
	NotFoundError      string
)

func (e ValidationError) Error() string    { return string(e) }
func (e AuthorizationError) Error() string { return string(e) }
func (e StateConflictError) Error() string { return string(e) }
func (e ResourceError) Error() string      { return string(e) }
func (e NotFoundError) Error() string      { return string(e) }

// keep in alphabetic order within each kind
var (
	ErrBalanceOverflow    = ValidationError("Balance overflow")
	ErrCityNameRequired   = ValidationError("City name is required")
	ErrCityNameTooLong    = ValidationError("City name exceeds maximum length")
	ErrCoordinatesInvalid = ValidationError("Coordinates out of range")
	ErrCountryCodeInvalid = ValidationError("Country code must be 2-3 characters")
	ErrIdentityInvalid    = ValidationError("Invalid identity")
	ErrInvalidAmount      = ValidationError("Invalid amount")
	ErrInvalidHeightRange = ValidationError("Invalid height range")
	ErrInvalidListingType = ValidationError("Invalid listing type")
	ErrInvalidPrice       = ValidationError("Invalid price")
	ErrMetadataURITooLong = ValidationError("Metadata URI exceeds maximum length")

	ErrUnauthorized = AuthorizationError("Unauthorized")

	ErrLeaseExists       = StateConflictError("Lease record already exists")
	ErrListingIDConflict = StateConflictError("Listing address already occupied")
	ErrListingNotActive  = StateConflictError("Listing is not active")
	ErrLocationIndexFull = StateConflictError("Location index is full")
	ErrNotForLease       = StateConflictError("Listing is not for lease")
	ErrNotForSale        = StateConflictError("Listing is not for sale")
	ErrRegistryExists    = StateConflictError("Registry already initialized")

	ErrInsufficientFunds = ResourceError("Insufficient funds")
	ErrRecipientOverflow = ResourceError("Recipient balance overflow")

	ErrAccountNotFound  = NotFoundError("Account not found")
	ErrLeaseNotFound    = NotFoundError("Lease record not found")
	ErrListingNotFound  = NotFoundError("Listing not found")
	ErrLocationNotFound = NotFoundError("Location index not found")
	ErrRecordNotFound   = NotFoundError("Record not found")
	ErrRegistryNotFound = NotFoundError("Registry not initialized")
)

// Kind classifies an error for callers.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthorization
	KindStateConflict
	KindResource
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindStateConflict:
		return "state_conflict"
	case KindResource:
		return "resource"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// KindOf returns the kind of err, looking through wrapped errors.
// Anything unclassified is KindInternal.
func KindOf(err error) Kind {
	var (
		v ValidationError
		a AuthorizationError
		s StateConflictError
		r ResourceError
		n NotFoundError
	)
	switch {
	case err == nil:
		return KindInternal
	case errors.As(err, &v):
		return KindValidation
	case errors.As(err, &a):
		return KindAuthorization
	case errors.As(err, &s):
		return KindStateConflict
	case errors.As(err, &r):
		return KindResource
	case errors.As(err, &n):
		return KindNotFound
	}
	return KindInternal
}

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
