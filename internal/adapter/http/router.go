package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/debtledger/internal/adapter/http/handler"
	"github.com/iho/debtledger/internal/adapter/http/middleware"
	"github.com/iho/debtledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	DebtorHandler       *handler.DebtorHandler
	TransactionHandler  *handler.TransactionHandler
	ReportHandler       *handler.ReportHandler
	RegistrationHandler *handler.RegistrationHandler
	AuthHandler         *handler.AuthHandler
	CaptchaHandler      *handler.CaptchaHandler
	HealthHandler       *handler.HealthHandler
	TokenVerifier       middleware.TokenVerifier
	IdempotencyStore    usecase.IdempotencyStore
	IdempotencyTTL      time.Duration
	RateLimiter         *middleware.RateLimiter
	Logger              zerolog.Logger
	MetricsHandler      http.Handler
	HTTPMetrics         *middleware.HTTPMetrics
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	httpMetrics := cfg.HTTPMetrics
	if httpMetrics == nil {
		httpMetrics = middleware.DefaultHTTPMetrics()
	}

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.StripSlashes)
	r.Use(httpMetrics.Wrap)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", metricsHandler)

	limit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimiter != nil {
		limit = cfg.RateLimiter.Limit
	}

	r.With(limit).Post("/api/recaptcha-v3", cfg.CaptchaHandler.Check)

	r.Route("/api/v1", func(r chi.Router) {
		// Anonymous endpoints
		r.Group(func(r chi.Router) {
			r.Use(limit)

			r.Post("/register", cfg.RegistrationHandler.Register)
			r.Get("/register/activate/{uid}/{token}", cfg.RegistrationHandler.Activate)
			r.Post("/auth/token", cfg.AuthHandler.Token)
		})

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))

			if cfg.IdempotencyStore != nil {
				idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
				r.Use(idempotencyMiddleware.Wrap)
			}

			r.Get("/auth/me", cfg.AuthHandler.Me)

			r.Route("/debtor", func(r chi.Router) {
				r.Get("/", cfg.DebtorHandler.List)
				r.Post("/", cfg.DebtorHandler.Create)

				r.Route("/{debtor_id}", func(r chi.Router) {
					r.Get("/", cfg.DebtorHandler.Get)
					r.Put("/", cfg.DebtorHandler.Update)
					r.Patch("/", cfg.DebtorHandler.Patch)
					r.Delete("/", cfg.DebtorHandler.Delete)
					r.Get("/report", cfg.ReportHandler.Download)

					r.Get("/transaction", cfg.TransactionHandler.List)
					r.Post("/transaction", cfg.TransactionHandler.Create)
					r.Get("/transaction/{transaction_id}", cfg.TransactionHandler.Get)
					r.Put("/transaction/{transaction_id}", cfg.TransactionHandler.Update)
					r.Patch("/transaction/{transaction_id}", cfg.TransactionHandler.Patch)
					r.Delete("/transaction/{transaction_id}", cfg.TransactionHandler.Delete)
				})
			})
		})
	})

	return r
}
