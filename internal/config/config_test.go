package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnvs is a helper that sets multiple env vars with automatic cleanup.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func strongSecret(prefix string) string {
	return prefix + strings.Repeat("x", 40)
}

func TestLoad_Defaults(t *testing.T) {
	setEnvs(t, map[string]string{"ENVIRONMENT": "development"})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8006, cfg.HTTPPort)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	assert.Equal(t, 168*time.Hour, cfg.JWTRefreshExpiry)
	assert.Equal(t, 30*time.Minute, cfg.JWTRecoveryExpiry)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "http://localhost:3000/reset-password", cfg.ResetLinkBaseURL)
}

func TestLoad_Development_AcceptsDefaultSecrets(t *testing.T) {
	setEnvs(t, map[string]string{"ENVIRONMENT": "development"})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, defaultSecret, cfg.JWTAccessSecret)
}

func TestLoad_Production_RejectsDefaultSecret(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":         "production",
		"JWT_ACCESS_SECRET":   defaultSecret,
		"JWT_REFRESH_SECRET":  strongSecret("refresh"),
		"JWT_RECOVERY_SECRET": strongSecret("recovery"),
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_ACCESS_SECRET must be explicitly set")
}

func TestLoad_Production_RejectsShortSecret(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":         "production",
		"JWT_ACCESS_SECRET":   strongSecret("access"),
		"JWT_REFRESH_SECRET":  "short-but-not-default",
		"JWT_RECOVERY_SECRET": strongSecret("recovery"),
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_REFRESH_SECRET must be at least 32 characters")
}

func TestLoad_Production_RejectsSharedSecrets(t *testing.T) {
	shared := strongSecret("shared")
	setEnvs(t, map[string]string{
		"ENVIRONMENT":         "production",
		"JWT_ACCESS_SECRET":   shared,
		"JWT_REFRESH_SECRET":  shared,
		"JWT_RECOVERY_SECRET": strongSecret("recovery"),
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pairwise distinct")
}

func TestLoad_Production_AcceptsDistinctStrongSecrets(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":         "production",
		"JWT_ACCESS_SECRET":   strongSecret("access"),
		"JWT_REFRESH_SECRET":  strongSecret("refresh"),
		"JWT_RECOVERY_SECRET": strongSecret("recovery"),
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
}

func TestLoad_InvalidPort(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":        "development",
		"IDENTITY_HTTP_PORT": "99999",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestTokenConfig_MapsFields(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":        "development",
		"JWT_ACCESS_SECRET":  "a-secret",
		"JWT_REFRESH_SECRET": "r-secret",
	})

	cfg, err := Load()
	require.NoError(t, err)

	tc := cfg.TokenConfig()
	assert.Equal(t, "a-secret", tc.AccessSecret)
	assert.Equal(t, "r-secret", tc.RefreshSecret)
	assert.Equal(t, 15*time.Minute, tc.AccessTTL)
	assert.Equal(t, 168*time.Hour, tc.RefreshTTL)
}

func TestPostgresConfig_DSN(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":       "development",
		"POSTGRES_HOST":     "db.internal",
		"POSTGRES_PASSWORD": "pw",
	})

	cfg, err := Load()
	require.NoError(t, err)

	pg := cfg.PostgresConfig()
	assert.Equal(t, "db.internal", pg.Host)
	assert.Contains(t, pg.DSN(), "db.internal")
	assert.Contains(t, pg.DSN(), "identity_db")
}
