package usecase

import (
	"context"

	"github.com/rs/zerolog/log"
)

// SoftDeleteCoordinator flips is_active flags. Nothing is ever hard deleted
// and nothing is ever reactivated.
type SoftDeleteCoordinator struct {
	txManager TransactionManager
	retrier   Retrier
	lifecycle LifecycleRepository
}

// NewSoftDeleteCoordinator creates a new SoftDeleteCoordinator.
func NewSoftDeleteCoordinator(txManager TransactionManager, retrier Retrier, lifecycle LifecycleRepository) *SoftDeleteCoordinator {
	return &SoftDeleteCoordinator{
		txManager: txManager,
		retrier:   retrier,
		lifecycle: lifecycle,
	}
}

// DeactivateDebtor deactivates the debtor and every one of its transactions
// in one database transaction. It returns the number of transaction rows touched.
func (c *SoftDeleteCoordinator) DeactivateDebtor(ctx context.Context, debtorID int64) (int64, error) {
	var touched int64

	err := c.retrier.Retry(ctx, func() error {
		tx, err := c.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if err := c.lifecycle.DeactivateDebtor(ctx, tx, debtorID); err != nil {
			return err
		}

		n, err := c.lifecycle.DeactivateTransactionsByDebtor(ctx, tx, debtorID)
		if err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		touched = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Ctx(ctx).Info().
		Int64("debtor_id", debtorID).
		Int64("transactions", touched).
		Msg("debtor deactivated")

	return touched, nil
}

// DeactivateTransaction deactivates a single transaction row.
func (c *SoftDeleteCoordinator) DeactivateTransaction(ctx context.Context, transactionID int64) error {
	return c.retrier.Retry(ctx, func() error {
		tx, err := c.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if err := c.lifecycle.DeactivateTransaction(ctx, tx, transactionID); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
}

// DeactivateCurrencyIfOrphaned deactivates the currency when no owner row
// references it anymore. It runs inside the caller's transaction.
func (c *SoftDeleteCoordinator) DeactivateCurrencyIfOrphaned(ctx context.Context, tx Transaction, currencyID int64) (bool, error) {
	deactivated, err := c.lifecycle.DeactivateCurrencyIfOrphaned(ctx, tx, currencyID)
	if err != nil {
		return false, err
	}

	if deactivated {
		log.Ctx(ctx).Info().Int64("currency_id", currencyID).Msg("orphaned currency deactivated")
	}

	return deactivated, nil
}
