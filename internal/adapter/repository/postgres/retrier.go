package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// SQLSTATE codes the ledger cares about.
const (
	sqlstateUniqueViolation      = "23505"
	sqlstateSerializationFailure = "40001"
	sqlstateDeadlockDetected     = "40P01"
)

// RetryPolicy bounds how hard a unit of work is retried.
type RetryPolicy struct {
	Attempts   uint64
	FirstDelay time.Duration
	MaxDelay   time.Duration
	Budget     time.Duration
}

// DefaultRetryPolicy suits short request-scoped units of work.
var DefaultRetryPolicy = RetryPolicy{
	Attempts:   3,
	FirstDelay: 50 * time.Millisecond,
	MaxDelay:   time.Second,
	Budget:     10 * time.Second,
}

// Retrier implements usecase.Retrier. Only transaction conflicts are
// retried; every other error is returned as-is on the first attempt.
type Retrier struct {
	policy RetryPolicy
}

// NewRetrier creates a Retrier with DefaultRetryPolicy.
func NewRetrier() *Retrier {
	return NewRetrierWithPolicy(DefaultRetryPolicy)
}

func NewRetrierWithPolicy(p RetryPolicy) *Retrier {
	return &Retrier{policy: p}
}

func (r *Retrier) Retry(ctx context.Context, unit func() error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.policy.FirstDelay
	exp.MaxInterval = r.policy.MaxDelay
	exp.MaxElapsedTime = r.policy.Budget

	strategy := backoff.WithContext(backoff.WithMaxRetries(exp, r.policy.Attempts), ctx)

	attempt := 0
	notify := func(err error, wait time.Duration) {
		attempt++
		log.Ctx(ctx).Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("transaction conflict, retrying")
	}

	return backoff.RetryNotify(func() error {
		err := unit()
		if err != nil && !isTransactionConflict(err) {
			return backoff.Permanent(err)
		}
		return err
	}, strategy, notify)
}

func sqlstate(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isTransactionConflict(err error) bool {
	switch sqlstate(err) {
	case sqlstateSerializationFailure, sqlstateDeadlockDetected:
		return true
	}
	return false
}

func isUniqueViolation(err error) bool {
	return sqlstate(err) == sqlstateUniqueViolation
}
