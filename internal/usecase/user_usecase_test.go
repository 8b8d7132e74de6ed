package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
	"github.com/iho/debtledger/internal/usecase/mocks"
)

func TestUserUseCase_Authenticate(t *testing.T) {
	hash, err := usecase.HashPassword("SlojniyParol123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	store := mocks.NewStore()
	store.SeedUser(domain.User{ID: "u1", Username: "test", Email: "test@test.com", HashedPassword: hash, Active: true})
	store.SeedUser(domain.User{ID: "u2", Username: "pending", Email: "p@test.com", HashedPassword: hash})

	tests := []struct {
		name     string
		input    usecase.AuthenticateInput
		wantErr  error
		issueFor string
	}{
		{name: "valid credentials", input: usecase.AuthenticateInput{Username: "TEST", Password: "SlojniyParol123"}, issueFor: "u1"},
		{name: "wrong password", input: usecase.AuthenticateInput{Username: "test", Password: "nope"}, wantErr: domain.ErrInvalidCredentials},
		{name: "inactive user", input: usecase.AuthenticateInput{Username: "pending", Password: "SlojniyParol123"}, wantErr: domain.ErrInvalidCredentials},
		{name: "unknown user", input: usecase.AuthenticateInput{Username: "ghost", Password: "x"}, wantErr: domain.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			tokens := mocks.NewMockTokenIssuer(ctrl)
			expires := time.Now().Add(time.Hour)
			if tt.issueFor != "" {
				tokens.EXPECT().GenerateAccessToken(tt.issueFor, "test").Return("jwt", expires, nil)
			}

			uc := usecase.NewUserUseCase(store.Users(), tokens)
			token, err := uc.Authenticate(context.Background(), tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if token.Token != "jwt" || !token.ExpiresAt.Equal(expires) {
				t.Fatalf("unexpected token: %+v", token)
			}
			if token.User.HashedPassword != "" {
				t.Fatal("hashed password must not leak")
			}
		})
	}
}

func TestUserUseCase_GetUserHidesHashWithoutTouchingStore(t *testing.T) {
	hash, err := usecase.HashPassword("SlojniyParol123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	store := mocks.NewStore()
	store.SeedUser(domain.User{ID: "u1", Username: "test", Email: "test@test.com", HashedPassword: hash, Active: true})

	ctrl := gomock.NewController(t)
	tokens := mocks.NewMockTokenIssuer(ctrl)
	tokens.EXPECT().GenerateAccessToken("u1", "test").Return("jwt", time.Now().Add(time.Hour), nil)

	uc := usecase.NewUserUseCase(store.Users(), tokens)

	user, err := uc.GetUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.HashedPassword != "" || user.Username != "test" {
		t.Fatalf("unexpected profile: %+v", user)
	}

	// The stored hash is still usable afterwards.
	if _, err := uc.Authenticate(context.Background(), usecase.AuthenticateInput{Username: "test", Password: "SlojniyParol123"}); err != nil {
		t.Fatalf("authenticate after GetUser: %v", err)
	}
}
