package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/debtledger/internal/domain"
)

const transactionColumns = `id, date, sum, comment, debtor_id, is_active`

// TransactionRepository implements debtor transaction persistence.
type TransactionRepository struct {
	db DB
}

func NewTransactionRepository(db DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	query := `
		INSERT INTO transactions (date, sum, comment, debtor_id, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.db.QueryRow(ctx, query,
		dateToPgDate(t.Date),
		decimalToNumeric(t.Sum),
		t.Comment,
		t.DebtorID,
		t.Active,
	).Scan(&t.ID)
}

// GetActive looks the transaction up within its debtor.
func (r *TransactionRepository) GetActive(ctx context.Context, debtorID, id int64) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND debtor_id = $2 AND is_active`

	t, err := scanTransaction(r.db.QueryRow(ctx, query, id, debtorID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	return t, err
}

func (r *TransactionRepository) Update(ctx context.Context, t *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET date = $2, sum = $3, comment = $4
		WHERE id = $1 AND is_active
	`
	tag, err := r.db.Exec(ctx, query, t.ID, dateToPgDate(t.Date), decimalToNumeric(t.Sum), t.Comment)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// ListActive returns a page of the debtor's transactions, newest first.
func (r *TransactionRepository) ListActive(ctx context.Context, debtorID int64, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE debtor_id = $1 AND is_active
		ORDER BY date DESC, id
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, debtorID, limit, offset)
}

// ListAllActive returns every active transaction of the debtor, newest first.
func (r *TransactionRepository) ListAllActive(ctx context.Context, debtorID int64) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE debtor_id = $1 AND is_active
		ORDER BY date DESC, id
	`
	return r.list(ctx, query, debtorID)
}

func (r *TransactionRepository) CountActive(ctx context.Context, debtorID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE debtor_id = $1 AND is_active`, debtorID).Scan(&count)
	return count, err
}

func (r *TransactionRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}

	return txs, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t    domain.Transaction
		date pgtype.Date
		sum  pgtype.Numeric
	)
	if err := row.Scan(&t.ID, &date, &sum, &t.Comment, &t.DebtorID, &t.Active); err != nil {
		return nil, err
	}
	t.Date = date.Time
	t.Sum = numericToDecimal(sum)
	return &t, nil
}

func dateToPgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: domain.DateOnly(t), Valid: true}
}
