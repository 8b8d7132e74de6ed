package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single signed movement against a debtor.
// Positive Sum means the owner gave a loan, negative means the owner borrowed.
type Transaction struct {
	ID       int64
	Date     time.Time
	Sum      decimal.Decimal
	Comment  string
	DebtorID int64
	Active   bool
}

// Validate checks the amount invariant.
func (t *Transaction) Validate() error {
	return ValidateSum(t.Sum)
}

// IsLoan reports whether the owner lent money in this transaction.
func (t *Transaction) IsLoan() bool {
	return t.Sum.IsPositive()
}

// Describe renders the human readable change used in reports.
func (t *Transaction) Describe() string {
	if t.IsLoan() {
		return fmt.Sprintf("gave a loan of %s", t.Sum.String())
	}
	return fmt.Sprintf("borrowed %s", t.Sum.Abs().String())
}

// DateOnly truncates a timestamp to a calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
