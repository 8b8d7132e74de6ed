package handler

import (
	"context"
	"net/http"

	"github.com/iho/debtledger/internal/adapter/http/dto"
	"github.com/iho/debtledger/internal/usecase"
)

// CaptchaService defines the behavior needed by CaptchaHandler.
type CaptchaService interface {
	Check(ctx context.Context, response string) (*usecase.CaptchaDecision, error)
}

// CaptchaHandler relays reCAPTCHA v3 verdicts.
type CaptchaHandler struct {
	captchaUC CaptchaService
}

// NewCaptchaHandler creates a new CaptchaHandler.
func NewCaptchaHandler(captchaUC CaptchaService) *CaptchaHandler {
	return &CaptchaHandler{captchaUC: captchaUC}
}

// Check answers 200 with the upstream body for humans and 400 otherwise.
func (h *CaptchaHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req dto.RecaptchaRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	decision, err := h.captchaUC.Check(r.Context(), req.Response)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	status := http.StatusBadRequest
	if decision.Accepted {
		status = http.StatusOK
	}
	writeJSON(w, status, decision.Body)
}
