package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/fxledger/internal/adapter/http/handler"
	"github.com/iho/fxledger/internal/adapter/http/middleware"
	"github.com/iho/fxledger/internal/infrastructure/metrics"
	"github.com/iho/fxledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	BankHandler           *handler.BankHandler
	UserHandler           *handler.UserHandler
	AccountHandler        *handler.AccountHandler
	TransactionHandler    *handler.TransactionHandler
	RateHandler           *handler.RateHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler

	Logger           zerolog.Logger
	Metrics          *metrics.Metrics
	Gatherer         prometheus.Gatherer
	RateLimiter      *middleware.RateLimiter
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
		}

		r.Route("/bank", func(r chi.Router) {
			r.Post("/deposit", cfg.BankHandler.Deposit)
			r.Post("/transfer", cfg.BankHandler.Transfer)
			r.Post("/users/{userId}/convert", cfg.BankHandler.Convert)
			r.Get("/users/{userId}/total-balance", cfg.BankHandler.TotalBalance)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", cfg.UserHandler.Create)
			r.Get("/{userId}", cfg.UserHandler.Get)
			r.Get("/{userId}/accounts", cfg.UserHandler.ListAccounts)
			r.Post("/{userId}/accounts", cfg.UserHandler.OpenAccount)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/{number}", cfg.AccountHandler.Get)
			r.Get("/{number}/transactions", cfg.AccountHandler.ListTransactions)
		})

		r.Get("/transactions/{id}", cfg.TransactionHandler.Get)

		r.Route("/rates", func(r chi.Router) {
			r.Get("/", cfg.RateHandler.List)
			r.Get("/{currency}", cfg.RateHandler.Get)
			r.Put("/{currency}", cfg.RateHandler.Set)
		})

		r.Get("/ledger/reconciliation", cfg.ReconciliationHandler.Report)
	})

	return r
}
