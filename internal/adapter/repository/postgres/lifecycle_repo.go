package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

// LifecycleRepository owns every soft-delete statement.
type LifecycleRepository struct {
	db DB
}

func NewLifecycleRepository(db DB) *LifecycleRepository {
	return &LifecycleRepository{db: db}
}

func (r *LifecycleRepository) DeactivateDebtor(ctx context.Context, tx usecase.Transaction, debtorID int64) error {
	tag, err := conn(r.db, tx).Exec(ctx,
		`UPDATE debtors SET is_active = FALSE WHERE id = $1 AND is_active`, debtorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDebtorNotFound
	}
	return nil
}

// DeactivateTransactionsByDebtor cascades a debtor deletion to its transactions.
func (r *LifecycleRepository) DeactivateTransactionsByDebtor(ctx context.Context, tx usecase.Transaction, debtorID int64) (int64, error) {
	tag, err := conn(r.db, tx).Exec(ctx,
		`UPDATE transactions SET is_active = FALSE WHERE debtor_id = $1 AND is_active`, debtorID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *LifecycleRepository) DeactivateTransaction(ctx context.Context, tx usecase.Transaction, transactionID int64) error {
	tag, err := conn(r.db, tx).Exec(ctx,
		`UPDATE transactions SET is_active = FALSE WHERE id = $1 AND is_active`, transactionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// DeactivateCurrencyIfOrphaned reports whether the currency lost its last owner row.
//
// The currency row is locked first. A registration attaching the same currency
// holds that lock from its upsert until commit, so under read committed the
// orphan check below runs on a fresh snapshot that sees the new owner row.
func (r *LifecycleRepository) DeactivateCurrencyIfOrphaned(ctx context.Context, tx usecase.Transaction, currencyID int64) (bool, error) {
	q := conn(r.db, tx)

	var locked int64
	err := q.QueryRow(ctx, `SELECT id FROM currencies WHERE id = $1 FOR UPDATE`, currencyID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	tag, err := q.Exec(ctx, `
		UPDATE currencies SET is_active = FALSE
		WHERE id = $1 AND is_active
		  AND NOT EXISTS (SELECT 1 FROM currency_owners WHERE currency_id = $1)
	`, currencyID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
