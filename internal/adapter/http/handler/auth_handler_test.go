package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

type userServiceStub struct {
	authenticateFn func(ctx context.Context, input usecase.AuthenticateInput) (*usecase.AccessToken, error)
	getFn          func(ctx context.Context, id string) (*domain.User, error)
}

func (s *userServiceStub) Authenticate(ctx context.Context, input usecase.AuthenticateInput) (*usecase.AccessToken, error) {
	return s.authenticateFn(ctx, input)
}

func (s *userServiceStub) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func TestAuthHandler_Token(t *testing.T) {
	now := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	handler := NewAuthHandler(&userServiceStub{
		authenticateFn: func(ctx context.Context, input usecase.AuthenticateInput) (*usecase.AccessToken, error) {
			if input.Password != "SlojniyParol123" {
				return nil, domain.ErrInvalidCredentials
			}
			return &usecase.AccessToken{Token: "jwt", ExpiresAt: now.Add(24 * time.Hour)}, nil
		},
	})
	handler.now = func() time.Time { return now }

	rec := httptest.NewRecorder()
	handler.Token(rec, newRequest(http.MethodPost, "/api/v1/auth/token", `{"username":"test","password":"SlojniyParol123"}`, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"access_token":"jwt","token_type":"Bearer","expires_in":86400}`, rec.Body.String())

	rec = httptest.NewRecorder()
	handler.Token(rec, newRequest(http.MethodPost, "/api/v1/auth/token", `{"username":"test","password":"nope"}`, ""))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"detail":"No active account found with the given credentials"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	handler.Token(rec, newRequest(http.MethodPost, "/api/v1/auth/token", `{}`, ""))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"username":["This field is required."],"password":["This field is required."]}`, rec.Body.String())
}

func TestAuthHandler_Me(t *testing.T) {
	handler := NewAuthHandler(&userServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Username: "test", Email: "test@test.com", Active: true}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Me(rec, newRequest(http.MethodGet, "/api/v1/auth/me", "", "u1"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "u1", body["id"])
	assert.Equal(t, "test", body["username"])
}
