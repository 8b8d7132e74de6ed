package handler

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/iho/debtledger/internal/adapter/http/dto"
	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

// UserService defines the behavior needed by AuthHandler.
type UserService interface {
	Authenticate(ctx context.Context, input usecase.AuthenticateInput) (*usecase.AccessToken, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// AuthHandler issues bearer tokens and describes the caller.
type AuthHandler struct {
	userUC UserService
	now    func() time.Time
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userUC UserService) *AuthHandler {
	return &AuthHandler{userUC: userUC, now: time.Now}
}

// Token exchanges username and password for a bearer token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v := &domain.ValidationError{}
	if req.Username == "" {
		v.Add("username", "This field is required.")
	}
	if req.Password == "" {
		v.Add("password", "This field is required.")
	}
	if err := v.Err(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	token, err := h.userUC.Authenticate(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	expiresIn := math.Ceil(token.ExpiresAt.Sub(h.now()).Seconds())
	writeJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken: token.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(max(expiresIn, 0)),
	})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	user, err := h.userUC.GetUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}
