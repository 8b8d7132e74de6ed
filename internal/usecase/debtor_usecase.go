package usecase

import (
	"context"

	"github.com/iho/debtledger/internal/domain"
)

// DebtorUseCase handles debtor business logic.
type DebtorUseCase struct {
	debtorRepo DebtorRepository
	balances   *BalanceCalculator
	currencies *CurrencyResolver
	softDelete *SoftDeleteCoordinator
	metrics    LedgerMetrics
}

// NewDebtorUseCase creates a new DebtorUseCase.
func NewDebtorUseCase(
	debtorRepo DebtorRepository,
	balances *BalanceCalculator,
	currencies *CurrencyResolver,
	softDelete *SoftDeleteCoordinator,
	metrics LedgerMetrics,
) *DebtorUseCase {
	return &DebtorUseCase{
		debtorRepo: debtorRepo,
		balances:   balances,
		currencies: currencies,
		softDelete: softDelete,
		metrics:    metricsOrNoop(metrics),
	}
}

// Authorize loads a debtor and checks that userID owns it and it is active.
func (uc *DebtorUseCase) Authorize(ctx context.Context, userID string, debtorID int64) (*domain.Debtor, error) {
	debtor, err := uc.debtorRepo.GetByID(ctx, debtorID)
	if err != nil {
		return nil, err
	}

	if err := debtor.AuthorizeFor(userID); err != nil {
		return nil, err
	}

	return debtor, nil
}

// CreateDebtor creates a debtor owned by userID.
func (uc *DebtorUseCase) CreateDebtor(ctx context.Context, userID, name string) (*domain.DebtorWithBalance, error) {
	name, err := domain.NormalizeDebtorName(name)
	if err != nil {
		return nil, err
	}

	debtor := &domain.Debtor{
		Name:    name,
		OwnerID: userID,
		Active:  true,
	}
	if err := uc.debtorRepo.Create(ctx, debtor); err != nil {
		return nil, err
	}

	uc.metrics.ObserveDebtorCreated()

	return &domain.DebtorWithBalance{Debtor: *debtor}, nil
}

// GetDebtor returns a debtor with its own balance.
func (uc *DebtorUseCase) GetDebtor(ctx context.Context, userID string, debtorID int64) (*domain.DebtorWithBalance, error) {
	debtor, err := uc.Authorize(ctx, userID, debtorID)
	if err != nil {
		return nil, err
	}

	return uc.withBalance(ctx, debtor)
}

// RenameDebtor changes a debtor's name.
func (uc *DebtorUseCase) RenameDebtor(ctx context.Context, userID string, debtorID int64, name string) (*domain.DebtorWithBalance, error) {
	debtor, err := uc.Authorize(ctx, userID, debtorID)
	if err != nil {
		return nil, err
	}

	name, err = domain.NormalizeDebtorName(name)
	if err != nil {
		return nil, err
	}

	if err := uc.debtorRepo.UpdateName(ctx, debtor.ID, name); err != nil {
		return nil, err
	}
	debtor.Name = name

	return uc.withBalance(ctx, debtor)
}

// DeleteDebtor soft deletes a debtor together with its transactions.
func (uc *DebtorUseCase) DeleteDebtor(ctx context.Context, userID string, debtorID int64) error {
	debtor, err := uc.Authorize(ctx, userID, debtorID)
	if err != nil {
		return err
	}

	touched, err := uc.softDelete.DeactivateDebtor(ctx, debtor.ID)
	if err != nil {
		return err
	}

	uc.metrics.ObserveDebtorDeactivated(touched)
	return nil
}

// ListDebtors returns one page of the user's active debtors ordered by id.
func (uc *DebtorUseCase) ListDebtors(ctx context.Context, userID string, req PageRequest) (*Page[*domain.DebtorWithBalance], error) {
	req = req.Normalize()

	count, err := uc.debtorRepo.CountActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := req.Check(count); err != nil {
		return nil, err
	}

	items, err := uc.debtorRepo.ListWithBalance(ctx, userID, req.Size, req.Offset())
	if err != nil {
		return nil, err
	}

	total, err := uc.balances.Balance(ctx, ForOwner(userID))
	if err != nil {
		return nil, err
	}

	currency, err := uc.currencies.ActiveCurrencyName(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Page[*domain.DebtorWithBalance]{
		Items:        items,
		Count:        count,
		Number:       req.Page,
		Size:         req.Size,
		TotalBalance: total,
		Currency:     currency,
	}, nil
}

func (uc *DebtorUseCase) withBalance(ctx context.Context, debtor *domain.Debtor) (*domain.DebtorWithBalance, error) {
	balance, err := uc.balances.Balance(ctx, ForDebtor(debtor.ID))
	if err != nil {
		return nil, err
	}

	return &domain.DebtorWithBalance{Debtor: *debtor, Balance: balance}, nil
}

