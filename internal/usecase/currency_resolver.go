package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/iho/debtledger/internal/domain"
)

// CurrencyResolver keeps one current currency per user and resolves it for display.
type CurrencyResolver struct {
	repo CurrencyRepository
}

// NewCurrencyResolver creates a new CurrencyResolver.
func NewCurrencyResolver(repo CurrencyRepository) *CurrencyResolver {
	return &CurrencyResolver{repo: repo}
}

// ActiveCurrencyName returns the name of the user's current currency.
func (r *CurrencyResolver) ActiveCurrencyName(ctx context.Context, userID string) (string, error) {
	name, err := r.repo.CurrentName(ctx, userID)
	if errors.Is(err, domain.ErrNoActiveCurrency) {
		log.Ctx(ctx).Warn().Str("user_id", userID).Msg("active currency not configured for user")
	}
	return name, err
}

// AttachCurrency finds or creates the currency by exact name and makes it the
// user's only current currency. It must run inside the caller's transaction.
func (r *CurrencyResolver) AttachCurrency(ctx context.Context, tx Transaction, userID, name string) (*domain.CurrencyOwner, error) {
	currency, err := r.repo.Upsert(ctx, tx, name)
	if err != nil {
		return nil, fmt.Errorf("upsert currency %q: %w", name, err)
	}

	if err := r.repo.ClearCurrent(ctx, tx, userID); err != nil {
		return nil, fmt.Errorf("clear current currency: %w", err)
	}

	owner := &domain.CurrencyOwner{
		CurrencyID: currency.ID,
		OwnerID:    userID,
		Current:    true,
	}
	if err := r.repo.CreateOwner(ctx, tx, owner); err != nil {
		return nil, fmt.Errorf("attach currency: %w", err)
	}

	return owner, nil
}
