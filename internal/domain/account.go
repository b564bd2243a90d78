package domain

// Account is the balance of one identity, in the smallest currency unit.
type Account struct {
	_       struct{} `cbor:",toarray"`
	Owner   Identity `json:"owner"`
	Balance uint64   `json:"balance"`
}

// Address of the account record.
func (a *Account) Address() Address {
	return AccountAddress(a.Owner)
}
