package token

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/clienthub/identity/internal/domain"
)

const issuer = "identity-service"

const (
	// TypeRefresh is the typ claim carried by refresh tokens.
	TypeRefresh = "refresh"
	// TypeRecovery is the typ claim carried by recovery tokens.
	TypeRecovery = "recovery"
)

var (
	// ErrInvalidToken indicates a signature or expiry failure.
	ErrInvalidToken = errors.New("token: invalid or expired")
	// ErrMalformedClaims indicates the token parsed but required claims are
	// absent or wrong-shaped.
	ErrMalformedClaims = errors.New("token: malformed claims")
)

// AccessClaims are the claims carried by an access token.
type AccessClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// RefreshClaims are the claims carried by a refresh token. The ID field (jti)
// is the session id; only its hash is persisted.
type RefreshClaims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// RecoveryClaims are the claims carried by a single-use recovery token.
type RecoveryClaims struct {
	Email     string `json:"email"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// Config holds the signing secrets and lifetimes for each token type.
// Each token type uses an independent secret so one compromised secret cannot
// forge another type.
type Config struct {
	AccessSecret   string
	RefreshSecret  string
	RecoverySecret string

	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	RecoveryTTL time.Duration
}

// Manager signs and verifies HMAC tokens for the three token types.
type Manager struct {
	cfg Config
	now func() time.Time
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for issuance and verification.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a token manager.
func NewManager(cfg Config, opts ...Option) *Manager {
	m := &Manager{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AccessTTL returns the configured access token lifetime.
func (m *Manager) AccessTTL() time.Duration { return m.cfg.AccessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (m *Manager) RefreshTTL() time.Duration { return m.cfg.RefreshTTL }

// RecoveryTTL returns the configured recovery token lifetime.
func (m *Manager) RecoveryTTL() time.Duration { return m.cfg.RecoveryTTL }

// IssueAccessToken mints a signed access token for the account.
func (m *Manager) IssueAccessToken(account *domain.Account) (string, error) {
	now := m.now().UTC()
	claims := &AccessClaims{
		Email: account.Email,
		Name:  account.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.AccessTTL)),
			Issuer:    issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.AccessSecret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// IssueRefreshToken mints a signed refresh token with a fresh random session
// id. It returns the signed token, the raw session id, and the expiry the
// caller must persist alongside the session id hash.
func (m *Manager) IssueRefreshToken(account *domain.Account) (signed, sessionID string, expiresAt time.Time, err error) {
	now := m.now().UTC()
	sessionID = uuid.New().String()
	expiresAt = now.Add(m.cfg.RefreshTTL)

	claims := &RefreshClaims{
		TokenType: TypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    issuer,
		},
	}

	signed, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.RefreshSecret))
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, sessionID, expiresAt, nil
}

// IssueRecoveryToken mints a signed short-TTL recovery token. It returns the
// signed token and the expiry the caller must persist alongside the token hash.
func (m *Manager) IssueRecoveryToken(account *domain.Account) (signed string, expiresAt time.Time, err error) {
	now := m.now().UTC()
	expiresAt = now.Add(m.cfg.RecoveryTTL)

	claims := &RecoveryClaims{
		Email:     account.Email,
		TokenType: TypeRecovery,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    issuer,
		},
	}

	signed, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.RecoverySecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign recovery token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyAccessToken parses and validates an access token against the access
// secret, returning its claims.
func (m *Manager) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := m.parse(tokenString, claims, m.cfg.AccessSecret); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, ErrMalformedClaims
	}
	return claims, nil
}

// VerifyRefreshToken parses and validates a refresh token against the refresh
// secret. Signature and expiry failures return ErrInvalidToken; missing sub or
// jti, or a typ other than "refresh", return ErrMalformedClaims.
func (m *Manager) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := m.parse(tokenString, claims, m.cfg.RefreshSecret); err != nil {
		return nil, err
	}
	if claims.Subject == "" || claims.ID == "" || claims.TokenType != TypeRefresh {
		return nil, ErrMalformedClaims
	}
	return claims, nil
}

// VerifyRecoveryToken parses and validates a recovery token against the
// recovery secret.
func (m *Manager) VerifyRecoveryToken(tokenString string) (*RecoveryClaims, error) {
	claims := &RecoveryClaims{}
	if err := m.parse(tokenString, claims, m.cfg.RecoverySecret); err != nil {
		return nil, err
	}
	if claims.Subject == "" || claims.TokenType != TypeRecovery {
		return nil, ErrMalformedClaims
	}
	return claims, nil
}

func (m *Manager) parse(tokenString string, claims jwt.Claims, secret string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(func() time.Time { return m.now() }))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// Hash returns the hex-encoded SHA-256 of the given value. It is the one-way
// hash used for persisted session ids and recovery tokens.
func Hash(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
