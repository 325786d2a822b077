package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/clienthub/identity/internal/denylist"
	"github.com/clienthub/identity/internal/domain"
	"github.com/clienthub/identity/internal/event"
	"github.com/clienthub/identity/internal/mailer"
	"github.com/clienthub/identity/internal/repository"
	"github.com/clienthub/identity/internal/token"
	apperrors "github.com/clienthub/identity/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// RecoveryRequestedMessage is returned by RequestPasswordReset regardless of
// whether the email is registered, so callers cannot enumerate accounts.
const RecoveryRequestedMessage = "If the email address is registered, a password reset link has been sent."

// AuthService implements credential verification, token issuance, refresh
// rotation, session invalidation, and the password recovery flow. All
// collaborators are injected; the only time source is the injectable clock.
type AuthService struct {
	accounts      repository.AccountRepository
	tokens        *token.Manager
	mail          mailer.Mailer
	revoked       denylist.Denylist
	events        event.Publisher
	logger        *slog.Logger
	resetLinkBase string
	now           func() time.Time
}

// Option customizes an AuthService.
type Option func(*AuthService)

// WithClock overrides the time source used for expiry comparisons.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// NewAuthService creates the auth service.
func NewAuthService(
	accounts repository.AccountRepository,
	tokens *token.Manager,
	mail mailer.Mailer,
	revoked denylist.Denylist,
	events event.Publisher,
	resetLinkBase string,
	logger *slog.Logger,
	opts ...Option,
) *AuthService {
	s := &AuthService{
		accounts:      accounts,
		tokens:        tokens,
		mail:          mail,
		revoked:       revoked,
		events:        events,
		logger:        logger,
		resetLinkBase: resetLinkBase,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginInput holds the parameters for login.
type LoginInput struct {
	Email    string
	Password string
}

// Login authenticates an account with email and password and issues a token
// pair. Unknown email and wrong password fail with the same kind and message.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.Account, *domain.TokenPair, error) {
	if input.Email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.Password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}

	account, err := s.accounts.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !account.IsActive() {
		return nil, nil, ErrInactiveAccount
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueSession(ctx, account)
	if err != nil {
		return nil, nil, fmt.Errorf("issue session: %w", err)
	}

	if err := s.events.PublishLoggedIn(ctx, account.ID, account.Email); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish logged_in event",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "account logged in",
		slog.String("account_id", account.ID),
		slog.String("email", account.Email),
	)

	return account, pair, nil
}

// Refresh validates a presented refresh token and rotates the session,
// returning a brand-new token pair. Every rejection is terminal; a
// previously-rotated-away token fails the stored-hash comparison and is
// reported as a revoked session.
func (s *AuthService) Refresh(ctx context.Context, rawRefreshToken string) (*domain.TokenPair, error) {
	if rawRefreshToken == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.tokens.VerifyRefreshToken(rawRefreshToken)
	if err != nil {
		if errors.Is(err, token.ErrMalformedClaims) {
			return nil, ErrMalformedToken
		}
		return nil, ErrInvalidOrExpiredToken
	}

	account, err := s.accounts.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("load account for refresh: %w", err)
	}

	if !account.HasRefreshSession() {
		return nil, ErrSessionNotConfigured
	}

	if token.Hash(claims.ID) != *account.RefreshTokenHash {
		s.logger.WarnContext(ctx, "refresh session mismatch, possible token replay",
			slog.String("account_id", account.ID),
		)
		return nil, ErrSessionRevoked
	}

	// A session whose expiry is exactly now is already expired.
	if !s.now().UTC().Before(*account.RefreshTokenExpires) {
		return nil, ErrSessionExpired
	}

	pair, err := s.issueSession(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}

	s.logger.InfoContext(ctx, "refresh session rotated",
		slog.String("account_id", account.ID),
	)

	return pair, nil
}

// Logout clears the account's refresh session and denylists the presented
// access token id for its remaining lifetime. Logging out an account with no
// active session succeeds silently.
func (s *AuthService) Logout(ctx context.Context, accountID, accessTokenID string, accessExpires time.Time) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("load account for logout: %w", err)
	}

	if err := s.accounts.ClearRefreshSession(ctx, account.ID); err != nil {
		return fmt.Errorf("clear refresh session: %w", err)
	}

	if accessTokenID != "" {
		ttl := accessExpires.Sub(s.now().UTC())
		if err := s.revoked.Revoke(ctx, accessTokenID, ttl); err != nil {
			s.logger.ErrorContext(ctx, "failed to denylist access token",
				slog.String("account_id", account.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "account logged out",
		slog.String("account_id", account.ID),
	)

	return nil
}

// RequestPasswordReset mints a recovery token for the account, persists its
// hash, and emails a reset link. The returned message is identical whether or
// not the email is registered. An email-send failure surfaces as an error
// because the user needs the link.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", apperrors.InvalidInput("email is required")
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		s.logger.InfoContext(ctx, "password reset requested for unknown email",
			slog.String("email", email),
		)
		return RecoveryRequestedMessage, nil
	}

	rawToken, expiresAt, err := s.tokens.IssueRecoveryToken(account)
	if err != nil {
		return "", fmt.Errorf("issue recovery token: %w", err)
	}

	if err := s.accounts.UpdateRecoveryToken(ctx, account.ID, token.Hash(rawToken), expiresAt); err != nil {
		return "", fmt.Errorf("store recovery token: %w", err)
	}

	resetLink := s.resetLinkBase + "?token=" + rawToken
	if err := s.mail.SendPasswordReset(ctx, account.Email, account.Name, resetLink); err != nil {
		return "", fmt.Errorf("send recovery email: %w", err)
	}

	if err := s.events.PublishPasswordResetRequested(ctx, account.ID, account.Email); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish password_reset_requested event",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password reset requested",
		slog.String("account_id", account.ID),
		slog.String("email", account.Email),
	)

	return RecoveryRequestedMessage, nil
}

// ResetPassword validates a recovery token and sets a new password. The stored
// recovery hash is cleared in the same statement as the password update, so a
// raw token can never pass the hash comparison twice. The refresh session is
// cleared too: a password change invalidates existing sessions.
func (s *AuthService) ResetPassword(ctx context.Context, rawRecoveryToken, newPassword string) error {
	if rawRecoveryToken == "" {
		return ErrUnauthorizedRecovery
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	claims, err := s.tokens.VerifyRecoveryToken(rawRecoveryToken)
	if err != nil {
		return ErrUnauthorizedRecovery
	}

	account, err := s.accounts.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("load account for password reset: %w", err)
	}

	if !account.HasRecoveryToken() {
		return ErrNoActiveRecovery
	}

	if token.Hash(rawRecoveryToken) != *account.RecoveryTokenHash {
		return ErrInvalidRecoveryToken
	}

	if !s.now().UTC().Before(*account.RecoveryTokenExpires) {
		return ErrRecoveryExpired
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	if err := s.accounts.UpdatePassword(ctx, account.ID, string(hashed)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.events.PublishPasswordChanged(ctx, account.ID, account.Email, "reset"); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish password_changed event",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password reset completed",
		slog.String("account_id", account.ID),
	)

	return nil
}

// ChangePassword sets a new password for an authenticated account after
// verifying the current one. Existing sessions are invalidated.
func (s *AuthService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("load account for password change: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	if err := s.accounts.UpdatePassword(ctx, account.ID, string(hashed)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.events.PublishPasswordChanged(ctx, account.ID, account.Email, "change"); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish password_changed event",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password changed",
		slog.String("account_id", account.ID),
	)

	return nil
}

// GetAccount returns the account for an authenticated profile read.
func (s *AuthService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

// ValidateAccessToken verifies an access token's signature and expiry and
// rejects tokens whose id has been denylisted by a logout.
func (s *AuthService) ValidateAccessToken(ctx context.Context, tokenString string) (*token.AccessClaims, error) {
	claims, err := s.tokens.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, ErrInvalidOrExpiredToken
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("denylist lookup: %w", err)
	}
	if revoked {
		return nil, ErrSessionRevoked
	}

	return claims, nil
}

// HashPassword hashes a plaintext password with the service's bcrypt cost.
// Exposed for the seed command so stored hashes share one format.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// issueSession mints a fresh access and refresh token pair and persists the
// new session hash, overwriting any previous session. One active refresh
// session per account.
func (s *AuthService) issueSession(ctx context.Context, account *domain.Account) (*domain.TokenPair, error) {
	accessToken, err := s.tokens.IssueAccessToken(account)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, sessionID, expiresAt, err := s.tokens.IssueRefreshToken(account)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	if err := s.accounts.UpdateRefreshSession(ctx, account.ID, token.Hash(sessionID), expiresAt); err != nil {
		return nil, fmt.Errorf("persist refresh session: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// validatePassword checks that the password meets minimum complexity requirements.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return apperrors.InvalidInput("password must contain at least one uppercase letter, one lowercase letter, and one digit")
	}

	return nil
}
