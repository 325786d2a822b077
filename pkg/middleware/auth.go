package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

type contextKeyType string

const (
	accountIDKey   contextKeyType = "account_id"
	emailKey       contextKeyType = "email"
	tokenIDKey     contextKeyType = "token_id"
	tokenExpiryKey contextKeyType = "token_expiry"
)

// Claims represents the access token claims extracted by the auth middleware.
type Claims struct {
	AccountID string    `json:"account_id"`
	Email     string    `json:"email"`
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenValidator is a function that validates an access token and returns
// claims. This allows the service to inject its own validation logic,
// including denylist checks.
type TokenValidator func(ctx context.Context, token string) (*Claims, error)

// Auth middleware validates bearer tokens and injects account claims into context.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeAuthError(w, "invalid authorization header format")
				return
			}

			claims, err := validate(r.Context(), parts[1])
			if err != nil {
				writeAuthError(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), accountIDKey, claims.AccountID)
			ctx = context.WithValue(ctx, emailKey, claims.Email)
			ctx = context.WithValue(ctx, tokenIDKey, claims.TokenID)
			ctx = context.WithValue(ctx, tokenExpiryKey, claims.ExpiresAt)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccountIDFromContext extracts the authenticated account ID from the request context.
func AccountIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(accountIDKey).(string); ok {
		return id
	}
	return ""
}

// EmailFromContext extracts the authenticated account email from the request context.
func EmailFromContext(ctx context.Context) string {
	if email, ok := ctx.Value(emailKey).(string); ok {
		return email
	}
	return ""
}

// TokenIDFromContext extracts the access token ID (jti) from the request context.
func TokenIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(tokenIDKey).(string); ok {
		return id
	}
	return ""
}

// TokenExpiryFromContext extracts the access token expiry from the request context.
func TokenExpiryFromContext(ctx context.Context) time.Time {
	if t, ok := ctx.Value(tokenExpiryKey).(time.Time); ok {
		return t
	}
	return time.Time{}
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    "UNAUTHORIZED",
		"message": message,
	})
}
