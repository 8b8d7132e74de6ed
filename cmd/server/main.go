package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/debtledger/internal/adapter/http"
	"github.com/iho/debtledger/internal/adapter/http/handler"
	"github.com/iho/debtledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/debtledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/debtledger/internal/adapter/repository/redis"
	"github.com/iho/debtledger/internal/infrastructure/auth"
	"github.com/iho/debtledger/internal/infrastructure/config"
	"github.com/iho/debtledger/internal/infrastructure/logger"
	"github.com/iho/debtledger/internal/infrastructure/mailer"
	"github.com/iho/debtledger/internal/infrastructure/metrics"
	"github.com/iho/debtledger/internal/infrastructure/postgres"
	"github.com/iho/debtledger/internal/infrastructure/recaptcha"
	"github.com/iho/debtledger/internal/infrastructure/redis"
	"github.com/iho/debtledger/internal/report"
	"github.com/iho/debtledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithEnvFile(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "debtledger"})
	logger.Install(appLogger)

	if err := cfg.RequireSecret(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:     cfg.DatabaseURL,
		MaxConns:        cfg.DatabaseMaxConns,
		MinConns:        cfg.DatabaseMinConns,
		MaxConnLifetime: time.Hour,
		WaitFor:         cfg.DatabaseTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier()
	idGen := postgresRepo.NewUserIDGenerator()
	userRepo := postgresRepo.NewUserRepository(pool)
	debtorRepo := postgresRepo.NewDebtorRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	balanceRepo := postgresRepo.NewBalanceRepository(pool)
	lifecycleRepo := postgresRepo.NewLifecycleRepository(pool)
	currencyRepo := redisRepo.NewCurrencyCache(postgresRepo.NewCurrencyRepository(pool), redisClient, cfg.CurrencyCacheTTL)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Infrastructure services
	appMetrics := metrics.New()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration, cfg.ActivationTTL)
	recaptchaClient := recaptcha.NewClient(cfg.RecaptchaVerifyURL, cfg.RecaptchaSecret, cfg.RecaptchaTimeout)

	// Initialize use cases
	balances := usecase.NewBalanceCalculator(balanceRepo)
	currencies := usecase.NewCurrencyResolver(currencyRepo)
	softDelete := usecase.NewSoftDeleteCoordinator(txManager, retrier, lifecycleRepo)

	debtorUC := usecase.NewDebtorUseCase(debtorRepo, balances, currencies, softDelete, appMetrics)
	transactionUC := usecase.NewTransactionUseCase(debtorUC, transactionRepo, balances, currencies, softDelete, appMetrics)
	reportUC := usecase.NewReportUseCase(debtorUC, transactionRepo, currencies, report.DefaultRegistry(), appMetrics)
	userUC := usecase.NewUserUseCase(userRepo, jwtManager)
	captchaUC := usecase.NewCaptchaUseCase(recaptchaClient, cfg.RecaptchaThreshold)
	registrationUC := usecase.NewRegistrationUseCase(usecase.RegistrationDeps{
		TxManager:  txManager,
		Retrier:    retrier,
		UserRepo:   userRepo,
		Currencies: currencies,
		SoftDelete: softDelete,
		Tokens:     jwtManager,
		Mailer:     newMailer(cfg),
		IDGen:      idGen,
		Metrics:    appMetrics,
		BaseURL:    cfg.PublicBaseURL,
	})

	// Rate limiter for anonymous endpoints
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		DebtorHandler:       handler.NewDebtorHandler(debtorUC),
		TransactionHandler:  handler.NewTransactionHandler(transactionUC),
		ReportHandler:       handler.NewReportHandler(reportUC),
		RegistrationHandler: handler.NewRegistrationHandler(registrationUC),
		AuthHandler:         handler.NewAuthHandler(userUC),
		CaptchaHandler:      handler.NewCaptchaHandler(captchaUC),
		HealthHandler:       handler.NewHealthHandler(pool, redisPinger(redisClient)),
		TokenVerifier:       jwtManager,
		IdempotencyStore:    idempotencyStore,
		IdempotencyTTL:      cfg.IdempotencyTTL,
		RateLimiter:         rateLimiter,
		Logger:              appLogger,
	})

	// Create server
	server := &http.Server{
		Addr:         serverAddr(cfg),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go runLimiterCleanup(cleanupCtx, rateLimiter, time.Minute)

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func serverAddr(cfg *config.Config) string {
	return fmt.Sprintf(":%s", cfg.HTTPPort)
}

// newMailer sends through SMTP when a host is configured and logs links otherwise.
func newMailer(cfg *config.Config) usecase.Mailer {
	if cfg.SMTPHost == "" {
		log.Warn().Msg("SMTP_HOST not set, activation links will only be logged")
		return mailer.NewLogMailer()
	}
	return mailer.NewSMTPMailer(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
}

func redisPinger(client *goredis.Client) handler.Pinger {
	return handler.PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

// runLimiterCleanup evicts idle per-IP limiters until ctx is done.
func runLimiterCleanup(ctx context.Context, rl *middleware.RateLimiter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.CleanupLimiters(3 * every)
		}
	}
}
