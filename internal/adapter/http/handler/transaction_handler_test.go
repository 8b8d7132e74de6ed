package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

type transactionServiceStub struct {
	createFn func(ctx context.Context, userID string, debtorID int64, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	getFn    func(ctx context.Context, userID string, debtorID, id int64) (*domain.Transaction, error)
	updateFn func(ctx context.Context, userID string, debtorID, id int64, input usecase.UpdateTransactionInput) (*domain.Transaction, error)
	deleteFn func(ctx context.Context, userID string, debtorID, id int64) error
	listFn   func(ctx context.Context, userID string, debtorID int64, req usecase.PageRequest) (*usecase.TransactionPage, error)
}

func (s *transactionServiceStub) CreateTransaction(ctx context.Context, userID string, debtorID int64, input usecase.CreateTransactionInput) (*domain.Transaction, error) {
	return s.createFn(ctx, userID, debtorID, input)
}

func (s *transactionServiceStub) GetTransaction(ctx context.Context, userID string, debtorID, id int64) (*domain.Transaction, error) {
	return s.getFn(ctx, userID, debtorID, id)
}

func (s *transactionServiceStub) UpdateTransaction(ctx context.Context, userID string, debtorID, id int64, input usecase.UpdateTransactionInput) (*domain.Transaction, error) {
	return s.updateFn(ctx, userID, debtorID, id, input)
}

func (s *transactionServiceStub) DeleteTransaction(ctx context.Context, userID string, debtorID, id int64) error {
	return s.deleteFn(ctx, userID, debtorID, id)
}

func (s *transactionServiceStub) ListTransactions(ctx context.Context, userID string, debtorID int64, req usecase.PageRequest) (*usecase.TransactionPage, error) {
	return s.listFn(ctx, userID, debtorID, req)
}

var jan5 = time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)

func TestTransactionHandler_Create(t *testing.T) {
	var captured usecase.CreateTransactionInput
	handler := NewTransactionHandler(&transactionServiceStub{
		createFn: func(ctx context.Context, userID string, debtorID int64, input usecase.CreateTransactionInput) (*domain.Transaction, error) {
			assert.Equal(t, "u1", userID)
			assert.Equal(t, int64(4), debtorID)
			captured = input
			return &domain.Transaction{ID: 9, Date: *input.Date, Sum: input.Sum, Comment: input.Comment, DebtorID: debtorID}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Create(rec, newRequest(http.MethodPost, "/api/v1/debtor/4/transaction/",
		`{"date":"2024-01-05","sum":-12.50,"comment":"lunch"}`, "u1", "debtor_id", "4"))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, captured.Date)
	assert.True(t, captured.Date.Equal(jan5))
	assert.True(t, captured.Sum.Equal(decimal.RequireFromString("-12.5")))
	assert.JSONEq(t, `{"id":9,"date":"2024-01-05","sum":-12.5,"comment":"lunch"}`, rec.Body.String())
}

func TestTransactionHandler_CreateValidation(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		createErr error
		wantField string
	}{
		{name: "missing sum", body: `{"comment":"x"}`, wantField: "sum"},
		{name: "bad date", body: `{"sum":1,"date":"05/01/2024"}`, wantField: "date"},
		{name: "zero sum", body: `{"sum":0}`, createErr: domain.NewValidationError("sum", "zero amount"), wantField: "sum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTransactionHandler(&transactionServiceStub{
				createFn: func(ctx context.Context, userID string, debtorID int64, input usecase.CreateTransactionInput) (*domain.Transaction, error) {
					return nil, tt.createErr
				},
			})

			rec := httptest.NewRecorder()
			handler.Create(rec, newRequest(http.MethodPost, "/", tt.body, "u1", "debtor_id", "4"))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeBody[map[string][]string](t, rec)
			assert.NotEmpty(t, body[tt.wantField])
		})
	}
}

func TestTransactionHandler_List(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		listFn: func(ctx context.Context, userID string, debtorID int64, req usecase.PageRequest) (*usecase.TransactionPage, error) {
			return &usecase.TransactionPage{
				Page: usecase.Page[*domain.Transaction]{
					Items:        []*domain.Transaction{{ID: 1, Date: jan5, Sum: decimal.NewFromInt(100), Comment: "loan"}},
					Count:        11,
					Number:       1,
					Size:         10,
					TotalBalance: decimal.NewNullDecimal(decimal.NewFromInt(100)),
					Currency:     "dollars",
				},
				DebtorProps: domain.DebtorProps{Name: "Alice"},
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.List(rec, newRequest(http.MethodGet, "http://testserver/api/v1/debtor/4/transaction/", "", "u1", "debtor_id", "4"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "http://testserver/api/v1/debtor/4/transaction/?page=2", body["next"])
	assert.Nil(t, body["previous"])
	assert.Equal(t, map[string]any{"name": "Alice"}, body["debtor_props"])
	assert.Equal(t, float64(100), body["total_balance"])
}

func TestTransactionHandler_Patch(t *testing.T) {
	var captured usecase.UpdateTransactionInput
	handler := NewTransactionHandler(&transactionServiceStub{
		updateFn: func(ctx context.Context, userID string, debtorID, id int64, input usecase.UpdateTransactionInput) (*domain.Transaction, error) {
			captured = input
			return &domain.Transaction{ID: id, Date: jan5, Sum: decimal.NewFromInt(5), Comment: *input.Comment}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Patch(rec, newRequest(http.MethodPatch, "/", `{"comment":"fixed"}`, "u1", "debtor_id", "4", "transaction_id", "9"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, captured.Sum)
	assert.Nil(t, captured.Date)
	require.NotNil(t, captured.Comment)
	assert.Equal(t, "fixed", *captured.Comment)

	rec = httptest.NewRecorder()
	handler.Update(rec, newRequest(http.MethodPut, "/", `{"comment":"fixed"}`, "u1", "debtor_id", "4", "transaction_id", "9"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransactionHandler_GetAndDelete(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		getFn: func(ctx context.Context, userID string, debtorID, id int64) (*domain.Transaction, error) {
			return nil, domain.ErrTransactionNotFound
		},
		deleteFn: func(ctx context.Context, userID string, debtorID, id int64) error {
			return domain.ErrForbidden
		},
	})

	rec := httptest.NewRecorder()
	handler.Get(rec, newRequest(http.MethodGet, "/", "", "u1", "debtor_id", "4", "transaction_id", "9"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	handler.Delete(rec, newRequest(http.MethodDelete, "/", "", "u1", "debtor_id", "4", "transaction_id", "9"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	handler.Get(rec, newRequest(http.MethodGet, "/", "", "u1", "debtor_id", "4", "transaction_id", "x"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
