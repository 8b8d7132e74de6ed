package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/report"
)

// ReportFile is a rendered report ready to be served.
type ReportFile struct {
	Extension   string
	ContentType string
	Content     []byte
}

// ReportUseCase exports a debtor's active transactions.
type ReportUseCase struct {
	debtors    *DebtorUseCase
	txRepo     TransactionRepository
	currencies *CurrencyResolver
	formats    *report.Registry
	metrics    LedgerMetrics
}

// NewReportUseCase creates a new ReportUseCase.
func NewReportUseCase(
	debtors *DebtorUseCase,
	txRepo TransactionRepository,
	currencies *CurrencyResolver,
	formats *report.Registry,
	metrics LedgerMetrics,
) *ReportUseCase {
	return &ReportUseCase{
		debtors:    debtors,
		txRepo:     txRepo,
		currencies: currencies,
		formats:    formats,
		metrics:    metricsOrNoop(metrics),
	}
}

// Generate renders the debtor's report in the requested format.
func (uc *ReportUseCase) Generate(ctx context.Context, userID string, debtorID int64, extension string) (*ReportFile, error) {
	debtor, err := uc.debtors.Authorize(ctx, userID, debtorID)
	if err != nil {
		return nil, err
	}

	format, err := uc.formats.Lookup(extension)
	if err != nil {
		log.Ctx(ctx).Error().Str("extension", extension).Msg("report format not supported")
		return nil, err
	}

	transactions, err := uc.txRepo.ListAllActive(ctx, debtor.ID)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		log.Ctx(ctx).Error().Int64("debtor_id", debtor.ID).Msg("The debtor has no transactions")
		return nil, domain.ErrNoTransactions
	}

	currency, err := uc.currencies.ActiveCurrencyName(ctx, debtor.OwnerID)
	if err != nil {
		return nil, err
	}

	content, err := format.Render(report.NewDocument(debtor.Name, currency, transactions))
	if err != nil {
		return nil, fmt.Errorf("render %s report: %w", format.Extension, err)
	}

	uc.metrics.ObserveReportGenerated(format.Extension)

	return &ReportFile{
		Extension:   format.Extension,
		ContentType: format.ContentType,
		Content:     content,
	}, nil
}
