package handler

import (
	"context"
	"net/http"

	"github.com/iho/debtledger/internal/adapter/http/dto"
	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	CreateTransaction(ctx context.Context, userID string, debtorID int64, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, userID string, debtorID, transactionID int64) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, userID string, debtorID, transactionID int64, input usecase.UpdateTransactionInput) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, userID string, debtorID, transactionID int64) error
	ListTransactions(ctx context.Context, userID string, debtorID int64, req usecase.PageRequest) (*usecase.TransactionPage, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	transactionUC TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionUC TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionUC: transactionUC}
}

// List returns a page of the debtor's active transactions, newest first.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	debtorID, ok := pathID(w, r, "debtor_id")
	if !ok {
		return
	}

	page, err := h.transactionUC.ListTransactions(r.Context(), userID, debtorID, pageRequest(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := dto.TransactionPageFromUseCase(page)
	resp.Next, resp.Previous = pageLinks(r, page.Number, page.HasNext(), page.HasPrevious())

	writeJSON(w, http.StatusOK, resp)
}

// Create records a transaction against the debtor.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	debtorID, ok := pathID(w, r, "debtor_id")
	if !ok {
		return
	}

	var req dto.TransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(false); err != nil {
		writeDomainError(w, r, err)
		return
	}

	transaction, err := h.transactionUC.CreateTransaction(r.Context(), userID, debtorID, req.ToCreateInput())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(transaction))
}

// Get returns a single active transaction of the debtor.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, debtorID, id, ok := transactionPath(w, r)
	if !ok {
		return
	}

	transaction, err := h.transactionUC.GetTransaction(r.Context(), userID, debtorID, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(transaction))
}

// Update replaces the transaction. The sum is required.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

// Patch updates only the fields present in the body.
func (h *TransactionHandler) Patch(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *TransactionHandler) update(w http.ResponseWriter, r *http.Request, partial bool) {
	userID, debtorID, id, ok := transactionPath(w, r)
	if !ok {
		return
	}

	var req dto.TransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(partial); err != nil {
		writeDomainError(w, r, err)
		return
	}

	transaction, err := h.transactionUC.UpdateTransaction(r.Context(), userID, debtorID, id, req.ToUpdateInput())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(transaction))
}

// Delete soft-deletes the transaction.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, debtorID, id, ok := transactionPath(w, r)
	if !ok {
		return
	}

	if err := h.transactionUC.DeleteTransaction(r.Context(), userID, debtorID, id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func transactionPath(w http.ResponseWriter, r *http.Request) (userID string, debtorID, id int64, ok bool) {
	if userID, ok = currentUserID(w, r); !ok {
		return
	}
	if debtorID, ok = pathID(w, r, "debtor_id"); !ok {
		return
	}
	id, ok = pathID(w, r, "transaction_id")
	return
}
