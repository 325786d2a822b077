package config

import (
	"fmt"
	"time"

	"github.com/clienthub/identity/internal/mailer"
	"github.com/clienthub/identity/internal/token"
	pkgconfig "github.com/clienthub/identity/pkg/config"
	"github.com/clienthub/identity/pkg/database"
	"github.com/clienthub/identity/pkg/tracing"
)

const defaultSecret = "change-this-to-a-secure-secret"

// Config holds all configuration for the identity service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"IDENTITY_HTTP_PORT" envDefault:"8006"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"identity"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"identity_secret"`
	PostgresDB   string `env:"IDENTITY_DB_NAME" envDefault:"identity_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis (access token denylist)
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// JWT: each token type is signed with its own secret.
	JWTAccessSecret   string        `env:"JWT_ACCESS_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTRefreshSecret  string        `env:"JWT_REFRESH_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTRecoverySecret string        `env:"JWT_RECOVERY_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTAccessExpiry   time.Duration `env:"JWT_ACCESS_TOKEN_EXPIRY" envDefault:"15m"`
	JWTRefreshExpiry  time.Duration `env:"JWT_REFRESH_TOKEN_EXPIRY" envDefault:"168h"`
	JWTRecoveryExpiry time.Duration `env:"JWT_RECOVERY_TOKEN_EXPIRY" envDefault:"30m"`

	// SMTP
	SMTPHost     string `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME" envDefault:""`
	SMTPPassword string `env:"SMTP_PASSWORD" envDefault:""`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"no-reply@clienthub.io"`
	SMTPTLSMode  string `env:"SMTP_TLS_MODE" envDefault:"starttls"`

	// ResetLinkBaseURL is the frontend page the recovery email links to; the
	// raw recovery token is appended as a query parameter.
	ResetLinkBaseURL string `env:"RESET_LINK_BASE_URL" envDefault:"http://localhost:3000/reset-password"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Rate limiting for the credential endpoints.
	LoginRateLimit    int `env:"LOGIN_RATE_LIMIT" envDefault:"5"`
	LoginRateBurst    int `env:"LOGIN_RATE_BURST" envDefault:"10"`
	RecoveryRateLimit int `env:"RECOVERY_RATE_LIMIT" envDefault:"2"`
	RecoveryRateBurst int `env:"RECOVERY_RATE_BURST" envDefault:"5"`

	// Observability
	OTLPEndpoint    string   `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingEnabled  bool     `env:"TRACING_ENABLED" envDefault:"false"`
	TraceSampleRate float64  `env:"TRACE_SAMPLE_RATE" envDefault:"1.0"`
	PprofAllowCIDRs []string `env:"PPROF_ALLOW_CIDRS" envDefault:"127.0.0.1/32" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load identity config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}

	// In non-development environments, require explicitly set, strong,
	// pairwise-distinct signing secrets.
	if cfg.Environment != "development" {
		secrets := map[string]string{
			"JWT_ACCESS_SECRET":   cfg.JWTAccessSecret,
			"JWT_REFRESH_SECRET":  cfg.JWTRefreshSecret,
			"JWT_RECOVERY_SECRET": cfg.JWTRecoverySecret,
		}
		for name, secret := range secrets {
			if secret == defaultSecret {
				return nil, fmt.Errorf("%s must be explicitly set via environment variable in %q mode", name, cfg.Environment)
			}
			if len(secret) < 32 {
				return nil, fmt.Errorf("%s must be at least 32 characters long, got %d", name, len(secret))
			}
		}
		if cfg.JWTAccessSecret == cfg.JWTRefreshSecret ||
			cfg.JWTAccessSecret == cfg.JWTRecoverySecret ||
			cfg.JWTRefreshSecret == cfg.JWTRecoverySecret {
			return nil, fmt.Errorf("JWT signing secrets must be pairwise distinct in %q mode", cfg.Environment)
		}
	}

	return cfg, nil
}

// PostgresConfig returns the connection pool configuration for PostgreSQL.
func (c *Config) PostgresConfig() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	return pg
}

// RedisConfig returns the Redis client configuration.
func (c *Config) RedisConfig() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// TokenConfig returns the signing configuration for the token manager.
func (c *Config) TokenConfig() token.Config {
	return token.Config{
		AccessSecret:   c.JWTAccessSecret,
		RefreshSecret:  c.JWTRefreshSecret,
		RecoverySecret: c.JWTRecoverySecret,
		AccessTTL:      c.JWTAccessExpiry,
		RefreshTTL:     c.JWTRefreshExpiry,
		RecoveryTTL:    c.JWTRecoveryExpiry,
	}
}

// SMTPConfig returns the mailer configuration.
func (c *Config) SMTPConfig() mailer.SMTPConfig {
	return mailer.SMTPConfig{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		Username: c.SMTPUsername,
		Password: c.SMTPPassword,
		From:     c.SMTPFrom,
		TLSMode:  c.SMTPTLSMode,
	}
}

// TracingConfig returns the OpenTelemetry configuration.
func (c *Config) TracingConfig(serviceVersion string) tracing.Config {
	return tracing.Config{
		ServiceName:    "identity-service",
		ServiceVersion: serviceVersion,
		Environment:    c.Environment,
		OTLPEndpoint:   c.OTLPEndpoint,
		SampleRate:     c.TraceSampleRate,
		Enabled:        c.TracingEnabled,
	}
}
