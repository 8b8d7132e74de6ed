package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/debtledger/internal/usecase"
)

// ledgerTxOptions is used for every unit of work. Registration, activation
// and debtor deactivation only need their own writes to land together, so
// read committed is enough; conflicting writers surface as 40001/40P01 and
// are retried by the caller.
var ledgerTxOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

type txStarter interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager on top of a pgx pool.
type TxManager struct {
	db   txStarter
	opts pgx.TxOptions
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(db txStarter) *TxManager {
	return &TxManager{db: db, opts: ledgerTxOptions}
}

// Begin opens a unit of work that repositories join through conn.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	pgTx, err := m.db.BeginTx(ctx, m.opts)
	if err != nil {
		return nil, fmt.Errorf("begin unit of work: %w", err)
	}
	return &Tx{tx: pgTx}, nil
}

// Tx is a unit of work. Use cases defer Rollback right after Begin, so
// Rollback after a successful Commit must be harmless.
type Tx struct {
	tx        pgx.Tx
	committed bool
}

func (t *Tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit unit of work: %w", err)
	}
	t.committed = true
	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	if t.committed {
		return nil
	}
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}
