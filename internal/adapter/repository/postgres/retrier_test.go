package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/debtledger/internal/domain"
)

var fastPolicy = RetryPolicy{
	Attempts:   2,
	FirstDelay: time.Millisecond,
	MaxDelay:   2 * time.Millisecond,
	Budget:     time.Second,
}

func TestRetrierRetriesSerializationFailure(t *testing.T) {
	calls := 0
	err := NewRetrierWithPolicy(fastPolicy).Retry(context.Background(), func() error {
		calls++
		if calls == 1 {
			return fmt.Errorf("commit unit of work: %w", &pgconn.PgError{Code: sqlstateSerializationFailure})
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetrierGivesUpAfterAttempts(t *testing.T) {
	calls := 0
	err := NewRetrierWithPolicy(fastPolicy).Retry(context.Background(), func() error {
		calls++
		return &pgconn.PgError{Code: sqlstateDeadlockDetected}
	})

	assert.Equal(t, sqlstateDeadlockDetected, sqlstate(err))
	assert.Equal(t, 3, calls)
}

func TestRetrierDoesNotRetryDomainErrors(t *testing.T) {
	calls := 0
	err := NewRetrier().Retry(context.Background(), func() error {
		calls++
		return domain.ErrInvalidActivation
	})

	assert.ErrorIs(t, err, domain.ErrInvalidActivation)
	assert.Equal(t, 1, calls)
}

func TestRetrierStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := NewRetrierWithPolicy(fastPolicy).Retry(ctx, func() error {
		calls++
		return &pgconn.PgError{Code: sqlstateSerializationFailure}
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestSQLStateClassification(t *testing.T) {
	assert.True(t, isTransactionConflict(&pgconn.PgError{Code: sqlstateDeadlockDetected}))
	assert.False(t, isTransactionConflict(errors.New("connection reset")))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert user: %w", &pgconn.PgError{Code: sqlstateUniqueViolation})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: sqlstateDeadlockDetected}))
	assert.Empty(t, sqlstate(nil))
}
