package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

type registrationServiceStub struct {
	registerFn func(ctx context.Context, input usecase.RegisterInput) (*domain.User, error)
	activateFn func(ctx context.Context, uid, token string) error
}

func (s *registrationServiceStub) Register(ctx context.Context, input usecase.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, input)
}

func (s *registrationServiceStub) Activate(ctx context.Context, uid, token string) error {
	return s.activateFn(ctx, uid, token)
}

func TestRegistrationHandler_Register(t *testing.T) {
	handler := NewRegistrationHandler(&registrationServiceStub{
		registerFn: func(ctx context.Context, input usecase.RegisterInput) (*domain.User, error) {
			assert.Equal(t, "SlojniyParol123", input.Password1)
			return &domain.User{
				ID:        "01HX",
				Username:  input.Username,
				Email:     input.Email,
				FirstName: input.FirstName,
				LastName:  input.LastName,
			}, nil
		},
	})

	body := `{"username":"test3","first_name":"test","last_name":"test","email":"test3@example.com",` +
		`"password1":"SlojniyParol123","password2":"SlojniyParol123","currency":"dollars"}`

	rec := httptest.NewRecorder()
	handler.Register(rec, newRequest(http.MethodPost, "/api/v1/register/", body, ""))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":"01HX","username":"test3","first_name":"test","last_name":"test",`+
		`"email":"test3@example.com","currency":"dollars"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegistrationHandler_RegisterValidation(t *testing.T) {
	handler := NewRegistrationHandler(&registrationServiceStub{
		registerFn: func(ctx context.Context, input usecase.RegisterInput) (*domain.User, error) {
			return nil, domain.NewValidationError(domain.NonFieldErrors, "Passwords do not match")
		},
	})

	rec := httptest.NewRecorder()
	handler.Register(rec, newRequest(http.MethodPost, "/api/v1/register/", `{"username":"x"}`, ""))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"non_field_errors":["Passwords do not match"]}`, rec.Body.String())
}

func TestRegistrationHandler_Activate(t *testing.T) {
	handler := NewRegistrationHandler(&registrationServiceStub{
		activateFn: func(ctx context.Context, uid, token string) error {
			if uid == "u1" && token == "good" {
				return nil
			}
			return domain.ErrInvalidActivation
		},
	})

	rec := httptest.NewRecorder()
	handler.Activate(rec, newRequest(http.MethodGet, "/", "", "", "uid", "u1", "token", "good"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = httptest.NewRecorder()
	handler.Activate(rec, newRequest(http.MethodGet, "/", "", "", "uid", "u1", "token", "bad"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `["Activation link is invalid!"]`, rec.Body.String())
}
