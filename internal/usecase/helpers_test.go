package usecase_test

import (
	"time"

	"github.com/iho/debtledger/internal/report"
	"github.com/iho/debtledger/internal/usecase"
	"github.com/iho/debtledger/internal/usecase/mocks"
)

const (
	owner    = "user-1"
	stranger = "user-2"
)

type fixture struct {
	store     *mocks.Store
	txManager *mocks.MockTransactionManager
	retrier   *mocks.MockRetrier

	balances     *usecase.BalanceCalculator
	currencies   *usecase.CurrencyResolver
	softDelete   *usecase.SoftDeleteCoordinator
	debtors      *usecase.DebtorUseCase
	transactions *usecase.TransactionUseCase
	reports      *usecase.ReportUseCase
}

func newFixture() *fixture {
	store := mocks.NewStore()
	txManager := mocks.NewMockTransactionManager()
	retrier := mocks.NewMockRetrier()

	balances := usecase.NewBalanceCalculator(store.Balances())
	currencies := usecase.NewCurrencyResolver(store.Currencies())
	softDelete := usecase.NewSoftDeleteCoordinator(txManager, retrier, store.Lifecycle())
	debtors := usecase.NewDebtorUseCase(store.Debtors(), balances, currencies, softDelete, nil)

	return &fixture{
		store:        store,
		txManager:    txManager,
		retrier:      retrier,
		balances:     balances,
		currencies:   currencies,
		softDelete:   softDelete,
		debtors:      debtors,
		transactions: usecase.NewTransactionUseCase(debtors, store.Transactions(), balances, currencies, softDelete, nil),
		reports:      usecase.NewReportUseCase(debtors, store.Transactions(), currencies, report.DefaultRegistry(), nil),
	}
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}
