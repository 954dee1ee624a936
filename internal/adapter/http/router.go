package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/transferledger/internal/adapter/http/handler"
	"github.com/iho/transferledger/internal/adapter/http/middleware"
	"github.com/iho/transferledger/internal/infrastructure/auth"
	"github.com/iho/transferledger/internal/infrastructure/metrics"
	"github.com/iho/transferledger/internal/usecase"
)

// RouterConfig holds dependencies for the router. Optional fields left nil
// disable the matching middleware.
type RouterConfig struct {
	OperationsHandler *handler.OperationsHandler
	LedgerHandler     *handler.LedgerHandler
	HealthHandler     *handler.HealthHandler
	Logger            zerolog.Logger

	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	RateLimiter    *middleware.RateLimiter
	JWTManager     *auth.JWTManager

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		}

		read := cfg.scope(auth.ScopeRead)
		transfer := append(cfg.scope(auth.ScopeTransfer), cfg.idempotency()...)

		r.Route("/operations", func(r chi.Router) {
			r.With(read...).Get("/check_balance/{number}", cfg.OperationsHandler.CheckBalance)
			r.With(transfer...).Post("/transfer", cfg.OperationsHandler.Transfer)
		})

		r.Route("/api/v1", func(r chi.Router) {
			r.With(read...).Get("/accounts/{number}/balance", cfg.OperationsHandler.GetBalance)
			r.With(transfer...).Post("/transfers", cfg.OperationsHandler.CreateTransfer)
			r.With(read...).Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
		})
	})

	return r
}

// idempotency returns the replay middleware for transfer routes. It must
// follow the scope check in the route chain.
func (cfg RouterConfig) idempotency() []func(http.Handler) http.Handler {
	if cfg.IdempotencyStore == nil {
		return nil
	}

	var replays prometheus.Counter
	if cfg.Metrics != nil {
		replays = cfg.Metrics.IdempotentReplay
	}
	mw := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, replays, cfg.Logger)
	return []func(http.Handler) http.Handler{mw.Wrap}
}

// scope returns the scope check for a route, or nothing when auth is off.
func (cfg RouterConfig) scope(scope string) []func(http.Handler) http.Handler {
	if cfg.JWTManager == nil {
		return nil
	}
	return []func(http.Handler) http.Handler{middleware.RequireScope(scope)}
}
