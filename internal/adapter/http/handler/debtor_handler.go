package handler

import (
	"context"
	"net/http"

	"github.com/iho/debtledger/internal/adapter/http/dto"
	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

// DebtorService defines the behavior needed by DebtorHandler.
type DebtorService interface {
	CreateDebtor(ctx context.Context, userID, name string) (*domain.DebtorWithBalance, error)
	GetDebtor(ctx context.Context, userID string, debtorID int64) (*domain.DebtorWithBalance, error)
	RenameDebtor(ctx context.Context, userID string, debtorID int64, name string) (*domain.DebtorWithBalance, error)
	DeleteDebtor(ctx context.Context, userID string, debtorID int64) error
	ListDebtors(ctx context.Context, userID string, req usecase.PageRequest) (*usecase.Page[*domain.DebtorWithBalance], error)
}

// DebtorHandler handles debtor-related HTTP requests.
type DebtorHandler struct {
	debtorUC DebtorService
}

// NewDebtorHandler creates a new DebtorHandler.
func NewDebtorHandler(debtorUC DebtorService) *DebtorHandler {
	return &DebtorHandler{debtorUC: debtorUC}
}

// List returns the caller's active debtors with their balances.
func (h *DebtorHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	page, err := h.debtorUC.ListDebtors(r.Context(), userID, pageRequest(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := dto.DebtorPageFromUseCase(page)
	resp.Next, resp.Previous = pageLinks(r, page.Number, page.HasNext(), page.HasPrevious())

	writeJSON(w, http.StatusOK, resp)
}

// Create creates a debtor owned by the caller.
func (h *DebtorHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req dto.DebtorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(false); err != nil {
		writeDomainError(w, r, err)
		return
	}

	debtor, err := h.debtorUC.CreateDebtor(r.Context(), userID, *req.Name)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.DebtorFromDomain(debtor))
}

// Get returns a single debtor.
func (h *DebtorHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "debtor_id")
	if !ok {
		return
	}

	debtor, err := h.debtorUC.GetDebtor(r.Context(), userID, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DebtorFromDomain(debtor))
}

// Update replaces the debtor's name. The name is required.
func (h *DebtorHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

// Patch updates the debtor's name when present.
func (h *DebtorHandler) Patch(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *DebtorHandler) update(w http.ResponseWriter, r *http.Request, partial bool) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "debtor_id")
	if !ok {
		return
	}

	var req dto.DebtorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(partial); err != nil {
		writeDomainError(w, r, err)
		return
	}

	var (
		debtor *domain.DebtorWithBalance
		err    error
	)
	if req.Name == nil {
		debtor, err = h.debtorUC.GetDebtor(r.Context(), userID, id)
	} else {
		debtor, err = h.debtorUC.RenameDebtor(r.Context(), userID, id, *req.Name)
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DebtorFromDomain(debtor))
}

// Delete soft-deletes the debtor and its transactions.
func (h *DebtorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "debtor_id")
	if !ok {
		return
	}

	if err := h.debtorUC.DeleteDebtor(r.Context(), userID, id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
