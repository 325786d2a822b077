package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clienthub/identity/internal/service"
	"github.com/clienthub/identity/pkg/health"
	"github.com/clienthub/identity/pkg/middleware"
)

// RouterConfig carries the HTTP-level settings the router needs.
type RouterConfig struct {
	Environment        string
	CORSAllowedOrigins []string
	RefreshTTL         time.Duration
	LoginRateLimit     int
	LoginRateBurst     int
	RecoveryRateLimit  int
	RecoveryRateBurst  int
	PprofAllowCIDRs    []string
	TracingEnabled     bool
}

// NewRouter creates a chi router with all identity service routes registered.
func NewRouter(
	authService *service.AuthService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowCredentials: true,
		Environment:      cfg.Environment,
	}))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("identity"))
	if cfg.TracingEnabled {
		r.Use(middleware.Tracing("identity"))
	}

	// Health check and metrics endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	middleware.RegisterPprof(r, cfg.PprofAllowCIDRs, logger)

	// Token validator that bridges to the auth service, including the
	// denylist check.
	tokenValidator := func(ctx context.Context, token string) (*middleware.Claims, error) {
		claims, err := authService.ValidateAccessToken(ctx, token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			AccountID: claims.Subject,
			Email:     claims.Email,
			TokenID:   claims.ID,
			ExpiresAt: claims.ExpiresAt.Time,
		}, nil
	}

	secureCookies := cfg.Environment != "development"
	authHandler := NewAuthHandler(authService, cfg.RefreshTTL, secureCookies, logger)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public endpoints; the credential endpoints are rate limited per IP.
		r.With(middleware.RateLimit(cfg.LoginRateLimit, cfg.LoginRateBurst, logger)).
			Post("/login", authHandler.Login)
		r.With(middleware.RateLimit(cfg.RecoveryRateLimit, cfg.RecoveryRateBurst, logger)).
			Post("/forgot-password", authHandler.ForgotPassword)

		r.Post("/refresh", authHandler.Refresh)
		r.Post("/reset-password", authHandler.ResetPassword)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))

			r.Post("/logout", authHandler.Logout)
			r.Post("/change-password", authHandler.ChangePassword)
		})
	})

	// Account profile endpoints (auth required)
	accountHandler := NewAccountHandler(authService, logger)
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Get("/me", accountHandler.GetProfile)
	})

	return r
}
