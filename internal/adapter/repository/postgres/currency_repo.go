package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

// CurrencyRepository implements currency and currency owner persistence.
type CurrencyRepository struct {
	db DB
}

func NewCurrencyRepository(db DB) *CurrencyRepository {
	return &CurrencyRepository{db: db}
}

// Upsert returns the currency called name, creating or reactivating it.
// Names are compared case-sensitively.
func (r *CurrencyRepository) Upsert(ctx context.Context, tx usecase.Transaction, name string) (*domain.Currency, error) {
	query := `
		INSERT INTO currencies (name, is_active)
		VALUES ($1, TRUE)
		ON CONFLICT (name) DO UPDATE SET is_active = TRUE
		RETURNING id, name, is_active
	`

	var c domain.Currency
	if err := conn(r.db, tx).QueryRow(ctx, query, name).Scan(&c.ID, &c.Name, &c.Active); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CurrencyRepository) ClearCurrent(ctx context.Context, tx usecase.Transaction, ownerID string) error {
	_, err := conn(r.db, tx).Exec(ctx,
		`UPDATE currency_owners SET current = FALSE WHERE owner_id = $1 AND current`, ownerID)
	return err
}

func (r *CurrencyRepository) CreateOwner(ctx context.Context, tx usecase.Transaction, owner *domain.CurrencyOwner) error {
	query := `
		INSERT INTO currency_owners (currency_id, owner_id, current)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	return conn(r.db, tx).QueryRow(ctx, query, owner.CurrencyID, owner.OwnerID, owner.Current).Scan(&owner.ID)
}

// CurrentName resolves the owner's active currency.
func (r *CurrencyRepository) CurrentName(ctx context.Context, ownerID string) (string, error) {
	query := `
		SELECT c.name
		FROM currency_owners co
		JOIN currencies c ON c.id = co.currency_id
		WHERE co.owner_id = $1 AND co.current
	`

	var name string
	err := r.db.QueryRow(ctx, query, ownerID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrNoActiveCurrency
	}
	if err != nil {
		return "", err
	}
	return name, nil
}
