package token

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clienthub/identity/internal/domain"
)

func testConfig() Config {
	return Config{
		AccessSecret:   "access-secret-for-testing-only-0000000",
		RefreshSecret:  "refresh-secret-for-testing-only-000000",
		RecoverySecret: "recovery-secret-for-testing-only-00000",
		AccessTTL:      15 * time.Minute,
		RefreshTTL:     7 * 24 * time.Hour,
		RecoveryTTL:    30 * time.Minute,
	}
}

func testAccount() *domain.Account {
	return &domain.Account{
		ID:     "8c0e13d9-6f9c-4b42-9a77-1a6f3b1a2c3d",
		Email:  "dev@clienthub.io",
		Name:   "Dev Account",
		Status: domain.StatusActive,
	}
}

func TestAccessToken_RoundTrip(t *testing.T) {
	m := NewManager(testConfig())
	account := testAccount()

	signed, err := m.IssueAccessToken(account)
	require.NoError(t, err)

	claims, err := m.VerifyAccessToken(signed)
	require.NoError(t, err)

	assert.Equal(t, account.ID, claims.Subject)
	assert.Equal(t, account.Email, claims.Email)
	assert.Equal(t, account.Name, claims.Name)
	assert.NotEmpty(t, claims.ID, "access token should carry a jti")
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	m := NewManager(testConfig())

	signed, sessionID, expiresAt, err := m.IssueRefreshToken(testAccount())
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)
	assert.False(t, expiresAt.IsZero())

	claims, err := m.VerifyRefreshToken(signed)
	require.NoError(t, err)

	assert.Equal(t, sessionID, claims.ID)
	assert.Equal(t, TypeRefresh, claims.TokenType)
}

func TestRefreshToken_FreshSessionIDPerIssue(t *testing.T) {
	m := NewManager(testConfig())
	account := testAccount()

	_, first, _, err := m.IssueRefreshToken(account)
	require.NoError(t, err)
	_, second, _, err := m.IssueRefreshToken(account)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestTokenTypeSeparation(t *testing.T) {
	m := NewManager(testConfig())
	account := testAccount()

	access, err := m.IssueAccessToken(account)
	require.NoError(t, err)
	refresh, _, _, err := m.IssueRefreshToken(account)
	require.NoError(t, err)
	recovery, _, err := m.IssueRecoveryToken(account)
	require.NoError(t, err)

	// Each token verifies only against its own secret.
	_, err = m.VerifyRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = m.VerifyAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = m.VerifyRecoveryToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = m.VerifyRefreshToken(recovery)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshToken_WrongTypClaim(t *testing.T) {
	cfg := testConfig()
	// Same secret for refresh and recovery so the signature passes and the
	// typ check is what rejects.
	cfg.RecoverySecret = cfg.RefreshSecret
	m := NewManager(cfg)

	recovery, _, err := m.IssueRecoveryToken(testAccount())
	require.NoError(t, err)

	_, err = m.VerifyRefreshToken(recovery)
	assert.ErrorIs(t, err, ErrMalformedClaims)
}

func TestVerify_ExpiredToken(t *testing.T) {
	issued := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	now := issued

	m := NewManager(testConfig(), WithClock(func() time.Time { return now }))

	signed, err := m.IssueAccessToken(testAccount())
	require.NoError(t, err)

	now = issued.Add(14 * time.Minute)
	_, err = m.VerifyAccessToken(signed)
	assert.NoError(t, err)

	now = issued.Add(16 * time.Minute)
	_, err = m.VerifyAccessToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_GarbageInput(t *testing.T) {
	m := NewManager(testConfig())

	for _, input := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := m.VerifyRefreshToken(input)
		assert.True(t, errors.Is(err, ErrInvalidToken), "input %q should fail verification", input)
	}
}

func TestHash_DeterministicAndOneWay(t *testing.T) {
	h1 := Hash("session-id-1")
	h2 := Hash("session-id-1")
	h3 := Hash("session-id-2")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
	assert.NotContains(t, h1, "session-id-1")
}
