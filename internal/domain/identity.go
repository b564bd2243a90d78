package domain

import (
	"strings"
	"unicode"
)

// MaxIdentityLength bounds caller identities (base58 public keys are 32-44 chars).
const MaxIdentityLength = 64

// Identity is an authenticated party as supplied by the execution substrate.
// The core trusts it as the signer of the instruction.
type Identity string

// ParseIdentity trims s and checks it is a usable identity.
func ParseIdentity(s string) (Identity, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > MaxIdentityLength {
		return "", ErrIdentityInvalid
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return "", ErrIdentityInvalid
		}
	}
	return Identity(s), nil
}

func (i Identity) String() string { return string(i) }

// IsZero reports whether no identity is set.
func (i Identity) IsZero() bool { return i == "" }
