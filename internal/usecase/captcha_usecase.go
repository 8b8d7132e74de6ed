package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/iho/debtledger/internal/domain"
)

// CaptchaDecision is the answer returned to the client.
type CaptchaDecision struct {
	Accepted bool
	Body     map[string]any
}

// CaptchaUseCase decides whether a client looks human.
type CaptchaUseCase struct {
	verifier  CaptchaVerifier
	threshold float64
}

// NewCaptchaUseCase creates a new CaptchaUseCase.
func NewCaptchaUseCase(verifier CaptchaVerifier, threshold float64) *CaptchaUseCase {
	return &CaptchaUseCase{verifier: verifier, threshold: threshold}
}

// Check verifies the token once. Upstream failures are a rejection, never retried.
func (uc *CaptchaUseCase) Check(ctx context.Context, response string) (*CaptchaDecision, error) {
	if strings.TrimSpace(response) == "" {
		return nil, domain.NewValidationError("response", "This field is required.")
	}

	result, err := uc.verifier.Verify(ctx, response)
	if errors.Is(err, domain.ErrUpstreamUnavailable) {
		return &CaptchaDecision{
			Accepted: false,
			Body: map[string]any{
				"success":     false,
				"error-codes": []string{domain.ErrUpstreamUnavailable.Error()},
			},
		}, nil
	}
	if err != nil {
		return nil, err
	}

	body := result.Raw
	if body == nil {
		body = map[string]any{"success": result.Success}
	}

	if !result.Success {
		log.Ctx(ctx).Error().Interface("error_codes", body["error-codes"]).Msg("wrong or invalid captcha token")
		return &CaptchaDecision{Accepted: false, Body: body}, nil
	}

	if result.Score < uc.threshold {
		log.Ctx(ctx).Error().
			Float64("threshold", uc.threshold).
			Float64("score", result.Score).
			Msg("possible bot")
		body["success"] = false
		return &CaptchaDecision{Accepted: false, Body: body}, nil
	}

	return &CaptchaDecision{Accepted: true, Body: body}, nil
}
