package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the domain counters. It implements usecase.LedgerMetrics.
type Metrics struct {
	DebtorsCreated       prometheus.Counter
	DebtorsDeactivated   prometheus.Counter
	TransactionsCascaded prometheus.Counter
	TransactionsCreated  *prometheus.CounterVec
	ReportsGenerated     *prometheus.CounterVec
	Registrations        *prometheus.CounterVec
}

// New creates the metrics and registers them with prometheus.DefaultRegisterer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the metrics with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DebtorsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "debtledger_debtors_created_total",
			Help: "Total number of debtors created",
		}),
		DebtorsDeactivated: factory.NewCounter(prometheus.CounterOpts{
			Name: "debtledger_debtors_deactivated_total",
			Help: "Total number of debtors soft-deleted",
		}),
		TransactionsCascaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "debtledger_transactions_cascaded_total",
			Help: "Transactions deactivated together with their debtor",
		}),
		TransactionsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debtledger_transactions_created_total",
				Help: "Total number of transactions recorded by direction",
			},
			[]string{"direction"},
		),
		ReportsGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debtledger_reports_generated_total",
				Help: "Total number of reports generated by format",
			},
			[]string{"format"},
		),
		Registrations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debtledger_registrations_total",
				Help: "Registration and activation outcomes",
			},
			[]string{"outcome"},
		),
	}
}

func (m *Metrics) ObserveDebtorCreated() {
	m.DebtorsCreated.Inc()
}

func (m *Metrics) ObserveDebtorDeactivated(transactions int64) {
	m.DebtorsDeactivated.Inc()
	m.TransactionsCascaded.Add(float64(transactions))
}

func (m *Metrics) ObserveTransactionCreated(loan bool) {
	direction := "borrowed"
	if loan {
		direction = "loan"
	}
	m.TransactionsCreated.WithLabelValues(direction).Inc()
}

func (m *Metrics) ObserveReportGenerated(format string) {
	m.ReportsGenerated.WithLabelValues(format).Inc()
}

func (m *Metrics) ObserveRegistration(outcome string) {
	m.Registrations.WithLabelValues(outcome).Inc()
}
