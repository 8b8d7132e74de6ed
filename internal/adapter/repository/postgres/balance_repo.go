package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/debtledger/internal/usecase"
)

// BalanceRepository sums active transaction amounts.
type BalanceRepository struct {
	db DB
}

func NewBalanceRepository(db DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// SumActive returns a null decimal when nothing matches the filter.
func (r *BalanceRepository) SumActive(ctx context.Context, filter usecase.BalanceFilter) (decimal.NullDecimal, error) {
	var (
		query string
		arg   any
	)

	switch {
	case filter.DebtorID != 0:
		query = `SELECT SUM(sum) FROM transactions WHERE debtor_id = $1 AND is_active`
		arg = filter.DebtorID
	case filter.OwnerID != "":
		query = `
			SELECT SUM(t.sum)
			FROM transactions t
			JOIN debtors d ON d.id = t.debtor_id
			WHERE d.owner_id = $1 AND d.is_active AND t.is_active
		`
		arg = filter.OwnerID
	default:
		return decimal.NullDecimal{}, errors.New("balance filter needs a debtor or an owner")
	}

	var sum pgtype.Numeric
	if err := r.db.QueryRow(ctx, query, arg).Scan(&sum); err != nil {
		return decimal.NullDecimal{}, err
	}
	return numericToNullDecimal(sum), nil
}
