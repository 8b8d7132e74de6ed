package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/infrastructure/auth"
)

type userKey struct{}

// TokenVerifier checks bearer tokens.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

// WithUser returns ctx carrying the authenticated owner.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUserFromContext extracts the authenticated user from context.
func GetUserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey{}).(*domain.User)
	return user, ok && user != nil
}

// AuthMiddleware rejects requests without a valid bearer token. The token is
// trusted as is: a user deactivated after issuance keeps access until expiry.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, problem := bearerToken(r.Header.Get("Authorization"))
			if problem != "" {
				writeDetail(w, http.StatusUnauthorized, problem)
				return
			}

			claims, err := verifier.VerifyAccessToken(token)
			if err != nil {
				writeDetail(w, http.StatusUnauthorized, "Invalid or expired token.")
				return
			}

			ctx := WithUser(r.Context(), &domain.User{ID: claims.UserID, Username: claims.Username, Active: true})
			ctx = log.Ctx(ctx).With().Str("user_id", claims.UserID).Logger().WithContext(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (token, problem string) {
	if header == "" {
		return "", "Authentication credentials were not provided."
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", "Invalid authorization header format."
	}
	return token, ""
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
