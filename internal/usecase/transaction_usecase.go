package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/debtledger/internal/domain"
)

// TransactionUseCase handles debtor transaction business logic.
type TransactionUseCase struct {
	debtors    *DebtorUseCase
	txRepo     TransactionRepository
	balances   *BalanceCalculator
	currencies *CurrencyResolver
	softDelete *SoftDeleteCoordinator
	metrics    LedgerMetrics
	now        func() time.Time
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	debtors *DebtorUseCase,
	txRepo TransactionRepository,
	balances *BalanceCalculator,
	currencies *CurrencyResolver,
	softDelete *SoftDeleteCoordinator,
	metrics LedgerMetrics,
) *TransactionUseCase {
	return &TransactionUseCase{
		debtors:    debtors,
		txRepo:     txRepo,
		balances:   balances,
		currencies: currencies,
		softDelete: softDelete,
		metrics:    metricsOrNoop(metrics),
		now:        time.Now,
	}
}

// CreateTransactionInput represents input for recording a transaction.
type CreateTransactionInput struct {
	Date    *time.Time
	Sum     decimal.Decimal
	Comment string
}

// UpdateTransactionInput carries the fields to change. Nil fields are kept.
type UpdateTransactionInput struct {
	Date    *time.Time
	Sum     *decimal.Decimal
	Comment *string
}

// CreateTransaction records a transaction against an owned, active debtor.
func (uc *TransactionUseCase) CreateTransaction(ctx context.Context, userID string, debtorID int64, input CreateTransactionInput) (*domain.Transaction, error) {
	debtor, err := uc.debtors.Authorize(ctx, userID, debtorID)
	if err != nil {
		return nil, err
	}

	t := &domain.Transaction{
		Date:     domain.DateOnly(uc.now()),
		Sum:      input.Sum,
		Comment:  input.Comment,
		DebtorID: debtor.ID,
		Active:   true,
	}
	if input.Date != nil {
		t.Date = domain.DateOnly(*input.Date)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	if err := uc.txRepo.Create(ctx, t); err != nil {
		return nil, err
	}

	uc.metrics.ObserveTransactionCreated(t.IsLoan())

	return t, nil
}

// GetTransaction returns an active transaction of an owned, active debtor.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, userID string, debtorID, transactionID int64) (*domain.Transaction, error) {
	debtor, err := uc.debtors.Authorize(ctx, userID, debtorID)
	if err != nil {
		return nil, err
	}

	return uc.txRepo.GetActive(ctx, debtor.ID, transactionID)
}

// UpdateTransaction applies input to an existing transaction.
func (uc *TransactionUseCase) UpdateTransaction(ctx context.Context, userID string, debtorID, transactionID int64, input UpdateTransactionInput) (*domain.Transaction, error) {
	t, err := uc.GetTransaction(ctx, userID, debtorID, transactionID)
	if err != nil {
		return nil, err
	}

	if input.Date != nil {
		t.Date = domain.DateOnly(*input.Date)
	}
	if input.Sum != nil {
		t.Sum = *input.Sum
	}
	if input.Comment != nil {
		t.Comment = *input.Comment
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	if err := uc.txRepo.Update(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

// DeleteTransaction soft deletes a transaction.
func (uc *TransactionUseCase) DeleteTransaction(ctx context.Context, userID string, debtorID, transactionID int64) error {
	t, err := uc.GetTransaction(ctx, userID, debtorID, transactionID)
	if err != nil {
		return err
	}

	return uc.softDelete.DeactivateTransaction(ctx, t.ID)
}

// ListTransactions returns one page of a debtor's active transactions, newest first.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, userID string, debtorID int64, req PageRequest) (*TransactionPage, error) {
	debtor, err := uc.debtors.Authorize(ctx, userID, debtorID)
	if err != nil {
		return nil, err
	}

	req = req.Normalize()

	count, err := uc.txRepo.CountActive(ctx, debtor.ID)
	if err != nil {
		return nil, err
	}

	if err := req.Check(count); err != nil {
		return nil, err
	}

	items, err := uc.txRepo.ListActive(ctx, debtor.ID, req.Size, req.Offset())
	if err != nil {
		return nil, err
	}

	total, err := uc.balances.Balance(ctx, ForDebtor(debtor.ID))
	if err != nil {
		return nil, err
	}

	currency, err := uc.currencies.ActiveCurrencyName(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &TransactionPage{
		Page: Page[*domain.Transaction]{
			Items:        items,
			Count:        count,
			Number:       req.Page,
			Size:         req.Size,
			TotalBalance: total,
			Currency:     currency,
		},
		DebtorProps: domain.DebtorProps{Name: debtor.Name},
	}, nil
}
