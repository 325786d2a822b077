package service

import (
	"net/http"

	apperrors "github.com/clienthub/identity/pkg/errors"
)

// The closed set of failure kinds the auth operations return. Each kind is a
// distinct value with a stable code so callers can match with errors.Is and
// the HTTP layer can map it losslessly. None of these are retryable: every
// one represents bad input or a security-relevant rejection.
//
// InvalidCredentials carries the same message for unknown-email and
// wrong-password so the two paths are indistinguishable to the caller.
var (
	ErrInvalidCredentials = apperrors.New("INVALID_CREDENTIALS", "invalid email or password", http.StatusUnauthorized, apperrors.ErrUnauthorized)
	ErrInactiveAccount    = apperrors.New("INACTIVE_ACCOUNT", "account is not active", http.StatusUnauthorized, apperrors.ErrUnauthorized)

	ErrMissingToken          = apperrors.New("MISSING_TOKEN", "refresh token is required", http.StatusBadRequest, apperrors.ErrInvalidInput)
	ErrMalformedToken        = apperrors.New("MALFORMED_TOKEN", "token is missing required claims", http.StatusBadRequest, apperrors.ErrInvalidInput)
	ErrInvalidOrExpiredToken = apperrors.New("INVALID_OR_EXPIRED_TOKEN", "token signature or expiry is invalid", http.StatusUnauthorized, apperrors.ErrUnauthorized)

	ErrAccountNotFound      = apperrors.New("ACCOUNT_NOT_FOUND", "account not found", http.StatusNotFound, apperrors.ErrNotFound)
	ErrSessionNotConfigured = apperrors.New("SESSION_NOT_CONFIGURED", "no refresh session is configured", http.StatusUnauthorized, apperrors.ErrUnauthorized)
	ErrSessionRevoked       = apperrors.New("SESSION_REVOKED", "refresh session has been revoked", http.StatusUnauthorized, apperrors.ErrUnauthorized)
	ErrSessionExpired       = apperrors.New("SESSION_EXPIRED", "refresh session has expired", http.StatusUnauthorized, apperrors.ErrUnauthorized)

	ErrUnauthorizedRecovery = apperrors.New("UNAUTHORIZED_RECOVERY", "recovery token signature or expiry is invalid", http.StatusUnauthorized, apperrors.ErrUnauthorized)
	ErrNoActiveRecovery     = apperrors.New("NO_ACTIVE_RECOVERY", "no recovery request is active", http.StatusUnauthorized, apperrors.ErrUnauthorized)
	ErrInvalidRecoveryToken = apperrors.New("INVALID_RECOVERY_TOKEN", "recovery token does not match", http.StatusUnauthorized, apperrors.ErrUnauthorized)
	ErrRecoveryExpired      = apperrors.New("RECOVERY_EXPIRED", "recovery token has expired", http.StatusUnauthorized, apperrors.ErrUnauthorized)
)
