package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/debtledger/internal/domain"
)

// DebtorRepository implements debtor persistence.
type DebtorRepository struct {
	db DB
}

func NewDebtorRepository(db DB) *DebtorRepository {
	return &DebtorRepository{db: db}
}

func (r *DebtorRepository) Create(ctx context.Context, debtor *domain.Debtor) error {
	query := `
		INSERT INTO debtors (name, owner_id, is_active)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	return r.db.QueryRow(ctx, query, debtor.Name, debtor.OwnerID, debtor.Active).Scan(&debtor.ID)
}

// GetByID returns the debtor regardless of owner or state.
func (r *DebtorRepository) GetByID(ctx context.Context, id int64) (*domain.Debtor, error) {
	query := `SELECT id, name, owner_id, is_active FROM debtors WHERE id = $1`

	var d domain.Debtor
	err := r.db.QueryRow(ctx, query, id).Scan(&d.ID, &d.Name, &d.OwnerID, &d.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDebtorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DebtorRepository) UpdateName(ctx context.Context, id int64, name string) error {
	tag, err := r.db.Exec(ctx, `UPDATE debtors SET name = $2 WHERE id = $1 AND is_active`, id, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDebtorNotFound
	}
	return nil
}

// ListWithBalance pages the owner's active debtors ordered by id, each with
// the sum of its active transactions (NULL when there are none).
func (r *DebtorRepository) ListWithBalance(ctx context.Context, ownerID string, limit, offset int) ([]*domain.DebtorWithBalance, error) {
	query := `
		SELECT d.id, d.name, d.owner_id, d.is_active, SUM(t.sum)
		FROM debtors d
		LEFT JOIN transactions t ON t.debtor_id = d.id AND t.is_active
		WHERE d.owner_id = $1 AND d.is_active
		GROUP BY d.id
		ORDER BY d.id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var debtors []*domain.DebtorWithBalance
	for rows.Next() {
		var (
			d   domain.DebtorWithBalance
			sum pgtype.Numeric
		)
		if err := rows.Scan(&d.ID, &d.Name, &d.OwnerID, &d.Active, &sum); err != nil {
			return nil, err
		}
		d.Balance = numericToNullDecimal(sum)
		debtors = append(debtors, &d)
	}

	return debtors, rows.Err()
}

func (r *DebtorRepository) CountActive(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM debtors WHERE owner_id = $1 AND is_active`, ownerID).Scan(&count)
	return count, err
}
