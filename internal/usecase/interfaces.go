package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/debtledger/internal/domain"
)

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, tx Transaction, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.User, error)
	GetActiveByUsername(ctx context.Context, username string) (*domain.User, error)
	ActiveUsernameTaken(ctx context.Context, username string) (bool, error)
	ActiveEmailTaken(ctx context.Context, email string) (bool, error)
	Activate(ctx context.Context, tx Transaction, id string) error
	// DeleteInactiveDuplicates removes pending registrations sharing the user's
	// username or email and returns the currencies their owner rows pointed at.
	DeleteInactiveDuplicates(ctx context.Context, tx Transaction, user *domain.User) ([]int64, error)
}

// CurrencyRepository defines data access for currencies and their owners.
type CurrencyRepository interface {
	Upsert(ctx context.Context, tx Transaction, name string) (*domain.Currency, error)
	ClearCurrent(ctx context.Context, tx Transaction, ownerID string) error
	CreateOwner(ctx context.Context, tx Transaction, owner *domain.CurrencyOwner) error
	// CurrentName returns domain.ErrNoActiveCurrency when the owner has no current row.
	CurrentName(ctx context.Context, ownerID string) (string, error)
}

// DebtorRepository defines data access for debtors.
type DebtorRepository interface {
	Create(ctx context.Context, debtor *domain.Debtor) error
	// GetByID ignores owner and state so callers can tell missing from forbidden.
	GetByID(ctx context.Context, id int64) (*domain.Debtor, error)
	UpdateName(ctx context.Context, id int64, name string) error
	ListWithBalance(ctx context.Context, ownerID string, limit, offset int) ([]*domain.DebtorWithBalance, error)
	CountActive(ctx context.Context, ownerID string) (int, error)
}

// TransactionRepository defines data access for debtor transactions.
type TransactionRepository interface {
	Create(ctx context.Context, t *domain.Transaction) error
	GetActive(ctx context.Context, debtorID, id int64) (*domain.Transaction, error)
	Update(ctx context.Context, t *domain.Transaction) error
	ListActive(ctx context.Context, debtorID int64, limit, offset int) ([]*domain.Transaction, error)
	ListAllActive(ctx context.Context, debtorID int64) ([]*domain.Transaction, error)
	CountActive(ctx context.Context, debtorID int64) (int, error)
}

// BalanceRepository aggregates active transaction amounts.
type BalanceRepository interface {
	SumActive(ctx context.Context, filter BalanceFilter) (decimal.NullDecimal, error)
}

// LifecycleRepository is the only writer of is_active = false.
type LifecycleRepository interface {
	DeactivateDebtor(ctx context.Context, tx Transaction, debtorID int64) error
	DeactivateTransactionsByDebtor(ctx context.Context, tx Transaction, debtorID int64) (int64, error)
	DeactivateTransaction(ctx context.Context, tx Transaction, transactionID int64) error
	DeactivateCurrencyIfOrphaned(ctx context.Context, tx Transaction, currencyID int64) (bool, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// ActivationMessage is what the mailer needs to deliver an activation link.
type ActivationMessage struct {
	Username string
	Email    string
	Link     string
}

// Mailer delivers outbound e-mail.
type Mailer interface {
	SendActivation(ctx context.Context, msg ActivationMessage) error
}

// TokenIssuer signs and checks bearer and activation tokens.
type TokenIssuer interface {
	GenerateAccessToken(userID, username string) (string, time.Time, error)
	GenerateActivationToken(userID string) (string, error)
	// VerifyActivationToken returns the user ID the token was issued for.
	VerifyActivationToken(token string) (string, error)
}

// CaptchaResult is the decoded answer of the scoring service.
type CaptchaResult struct {
	Success bool
	Score   float64
	// Raw keeps every field the service returned so it can be echoed back.
	Raw map[string]any
}

// CaptchaVerifier checks a client token against the scoring service.
// It returns domain.ErrUpstreamUnavailable when the service cannot be reached.
type CaptchaVerifier interface {
	Verify(ctx context.Context, response string) (*CaptchaResult, error)
}

// LedgerMetrics records domain level counters.
type LedgerMetrics interface {
	ObserveDebtorCreated()
	ObserveDebtorDeactivated(transactions int64)
	ObserveTransactionCreated(loan bool)
	ObserveReportGenerated(format string)
	ObserveRegistration(outcome string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveDebtorCreated() {}
func (noopMetrics) ObserveDebtorDeactivated(int64) {}
func (noopMetrics) ObserveTransactionCreated(bool) {}
func (noopMetrics) ObserveReportGenerated(string) {}
func (noopMetrics) ObserveRegistration(string) {}

func metricsOrNoop(m LedgerMetrics) LedgerMetrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
