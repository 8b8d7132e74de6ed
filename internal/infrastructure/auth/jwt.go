package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/debtledger/internal/domain"
)

const issuer = "debtledger"

// Audiences keep bearer tokens and activation-link tokens from being
// swapped for one another.
const (
	AudienceAPI        = "debtledger-api"
	AudienceActivation = "debtledger-activation"
)

// Claims carried by both token kinds. Username is empty on activation tokens.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager implements usecase.TokenIssuer with HS256 tokens.
type JWTManager struct {
	secret        []byte
	accessTTL     time.Duration
	activationTTL time.Duration
	now           func() time.Time
}

func NewJWTManager(secret string, accessTTL, activationTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:        []byte(secret),
		accessTTL:     accessTTL,
		activationTTL: activationTTL,
		now:           time.Now,
	}
}

func (m *JWTManager) GenerateAccessToken(userID, username string) (string, time.Time, error) {
	expiresAt := m.now().Add(m.accessTTL)
	token, err := m.sign(Claims{UserID: userID, Username: username}, AudienceAPI, expiresAt)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// GenerateActivationToken issues the token embedded in the activation link.
func (m *JWTManager) GenerateActivationToken(userID string) (string, error) {
	return m.sign(Claims{UserID: userID}, AudienceActivation, m.now().Add(m.activationTTL))
}

func (m *JWTManager) VerifyAccessToken(token string) (*Claims, error) {
	return m.verify(token, AudienceAPI)
}

// VerifyActivationToken returns the user ID an activation token was issued for.
func (m *JWTManager) VerifyActivationToken(token string) (string, error) {
	claims, err := m.verify(token, AudienceActivation)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (m *JWTManager) sign(claims Claims, audience string, expiresAt time.Time) (string, error) {
	issuedAt := jwt.NewNumericDate(m.now())
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   claims.UserID,
		Audience:  jwt.ClaimStrings{audience},
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  issuedAt,
		NotBefore: issuedAt,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *JWTManager) verify(token, audience string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, domain.ErrExpiredToken
	case err != nil, claims.UserID == "":
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
