package domain

import (
	"github.com/shopspring/decimal"
)

// Debtor is a counterparty tracked by a single owner.
type Debtor struct {
	ID      int64
	Name    string
	OwnerID string
	Active  bool
}

// AuthorizeFor checks that userID may operate on the debtor.
// An inactive debtor is reported as forbidden, same as a foreign one.
func (d *Debtor) AuthorizeFor(userID string) error {
	if !d.Active || d.OwnerID != userID {
		return ErrForbidden
	}
	return nil
}

// DebtorWithBalance is a debtor row annotated with its own balance.
// Balance is invalid (null) when the debtor has no active transactions.
type DebtorWithBalance struct {
	Debtor
	Balance decimal.NullDecimal
}

// DebtorProps is the debtor summary attached to transaction pages.
type DebtorProps struct {
	Name string
}
