package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/debtledger/internal/adapter/http/dto"
	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

// RegistrationService defines the behavior needed by RegistrationHandler.
type RegistrationService interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*domain.User, error)
	Activate(ctx context.Context, uid, token string) error
}

// RegistrationHandler handles sign-up and activation links.
type RegistrationHandler struct {
	registrationUC RegistrationService
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(registrationUC RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationUC: registrationUC}
}

// Register creates a pending user and mails the activation link.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input := req.ToUseCaseInput()
	user, err := h.registrationUC.Register(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := dto.UserFromDomain(user)
	resp.Currency = input.Currency

	writeJSON(w, http.StatusCreated, resp)
}

// Activate confirms a pending user from the mailed link.
func (h *RegistrationHandler) Activate(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	token := chi.URLParam(r, "token")

	if err := h.registrationUC.Activate(r.Context(), uid, token); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
