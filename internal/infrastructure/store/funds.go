package store

import (
	"errors"

	"airledger-backend/internal/domain"
)

// Account returns the balance record of owner, or domain.ErrAccountNotFound.
func (t *Tx) Account(owner domain.Identity) (*domain.Account, error) {
	var a domain.Account
	if err := t.load(KindAccount, domain.AccountAddress(owner), domain.ErrAccountNotFound, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Balance is zero for identities that never held funds.
func (t *Tx) Balance(owner domain.Identity) (uint64, error) {
	a, err := t.Account(owner)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return a.Balance, nil
}

func (t *Tx) PutAccount(a *domain.Account) error {
	return t.store(KindAccount, a.Address(), a)
}

func (t *Tx) Accounts(fn func(*domain.Account) error) error {
	return t.txn.Scan(KindAccount, func(_ domain.Address, payload []byte) error {
		var a domain.Account
		if err := decode(KindAccount, payload, &a); err != nil {
			return err
		}
		return fn(&a)
	})
}

// Credit adds amount to owner's balance, creating the account if needed.
func (t *Tx) Credit(owner domain.Identity, amount uint64) error {
	bal, err := t.Balance(owner)
	if err != nil {
		return err
	}
	if bal+amount < bal {
		return domain.ErrBalanceOverflow
	}
	return t.PutAccount(&domain.Account{Owner: owner, Balance: bal + amount})
}

// Transfer moves amount from one identity to another. It fails with
// domain.ErrInsufficientFunds or domain.ErrRecipientOverflow before writing
// anything.
func (t *Tx) Transfer(from, to domain.Identity, amount uint64) error {
	if amount == 0 {
		return nil
	}
	bal, err := t.Balance(from)
	if err != nil {
		return err
	}
	if bal < amount {
		return domain.ErrInsufficientFunds
	}
	if from == to {
		return nil
	}
	toBal, err := t.Balance(to)
	if err != nil {
		return err
	}
	if toBal+amount < toBal {
		return domain.ErrRecipientOverflow
	}
	if err := t.PutAccount(&domain.Account{Owner: from, Balance: bal - amount}); err != nil {
		return err
	}
	return t.PutAccount(&domain.Account{Owner: to, Balance: toBal + amount})
}
