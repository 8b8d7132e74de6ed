package usecase

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// BalanceFilter selects the transactions a balance is computed over.
// Exactly one of DebtorID or OwnerID is set.
type BalanceFilter struct {
	DebtorID int64
	OwnerID  string
}

// ForDebtor scopes a balance to a single debtor.
func ForDebtor(debtorID int64) BalanceFilter {
	return BalanceFilter{DebtorID: debtorID}
}

// ForOwner scopes a balance to every active debtor of a user.
func ForOwner(ownerID string) BalanceFilter {
	return BalanceFilter{OwnerID: ownerID}
}

var errEmptyBalanceFilter = errors.New("balance filter needs a debtor or an owner")

// BalanceCalculator sums active transactions.
type BalanceCalculator struct {
	repo BalanceRepository
}

// NewBalanceCalculator creates a new BalanceCalculator.
func NewBalanceCalculator(repo BalanceRepository) *BalanceCalculator {
	return &BalanceCalculator{repo: repo}
}

// Balance returns the sum of active transactions matching filter.
// The result is invalid (null) when no row matches, which is distinct from a zero balance.
func (c *BalanceCalculator) Balance(ctx context.Context, filter BalanceFilter) (decimal.NullDecimal, error) {
	if filter.DebtorID == 0 && filter.OwnerID == "" {
		return decimal.NullDecimal{}, errEmptyBalanceFilter
	}
	return c.repo.SumActive(ctx, filter)
}
