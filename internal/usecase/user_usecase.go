package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iho/debtledger/internal/domain"
)

// UserUseCase logs active users in and serves their profile.
type UserUseCase struct {
	userRepo UserRepository
	tokens   TokenIssuer
}

func NewUserUseCase(userRepo UserRepository, tokens TokenIssuer) *UserUseCase {
	return &UserUseCase{userRepo: userRepo, tokens: tokens}
}

type AuthenticateInput struct {
	Username string
	Password string
}

// AccessToken is an issued bearer token.
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Authenticate issues a bearer token for an active user. Unknown usernames,
// pending registrations and bad passwords are indistinguishable to the
// caller, including in how long they take.
func (uc *UserUseCase) Authenticate(ctx context.Context, input AuthenticateInput) (*AccessToken, error) {
	user, err := uc.userRepo.GetActiveByUsername(ctx, input.Username)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		_ = bcrypt.CompareHashAndPassword(decoyHash(), []byte(input.Password))
		return nil, domain.ErrInvalidCredentials
	case err != nil:
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(input.Password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := uc.tokens.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &AccessToken{Token: token, ExpiresAt: expiresAt, User: user.Public()}, nil
}

// GetUser backs /auth/me.
func (uc *UserUseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// HashPassword is used at registration and by the CLI.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

var (
	decoy     []byte
	decoyOnce sync.Once
)

func decoyHash() []byte {
	decoyOnce.Do(func() {
		decoy, _ = bcrypt.GenerateFromPassword([]byte("debtledger-decoy"), bcrypt.DefaultCost)
	})
	return decoy
}
