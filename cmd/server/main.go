package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/fxledger/internal/adapter/http"
	"github.com/iho/fxledger/internal/adapter/http/handler"
	"github.com/iho/fxledger/internal/adapter/http/middleware"
	"github.com/iho/fxledger/internal/adapter/repository/idgen"
	"github.com/iho/fxledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/fxledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/fxledger/internal/adapter/repository/redis"
	"github.com/iho/fxledger/internal/infrastructure/config"
	"github.com/iho/fxledger/internal/infrastructure/eventpublisher"
	"github.com/iho/fxledger/internal/infrastructure/logger"
	"github.com/iho/fxledger/internal/infrastructure/metrics"
	"github.com/iho/fxledger/internal/infrastructure/postgres"
	"github.com/iho/fxledger/internal/infrastructure/redis"
	"github.com/iho/fxledger/internal/infrastructure/seed"
	"github.com/iho/fxledger/internal/usecase"
)

const (
	connectTimeout      = 30 * time.Second
	redisDialTimeout    = 5 * time.Second
	streamMaxLen        = 100000
	limiterCleanupEvery = time.Minute
	limiterMaxIdle      = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	workers, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()
	a.StartWorkers(workers)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      a.Handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

// storage is the set of ports backed by the configured driver.
type storage struct {
	txManager    usecase.TxManager
	accounts     usecase.AccountRepository
	users        usecase.UserRepository
	rates        usecase.RateRepository
	transactions usecase.TransactionRepository
	outbox       usecase.OutboxRepository
	checks       map[string]handler.Check
	close        func()
}

func openStorage(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) (*storage, error) {
	st, err := openDriver(ctx, cfg, m, logger)
	if err != nil {
		return nil, err
	}

	if !cfg.OutboxEnabled {
		st.outbox = usecase.NewNullOutboxRepository()
	}

	return st, nil
}

func openDriver(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		store := memory.NewStore()
		return &storage{
			txManager:    memory.NewTxManager(store),
			accounts:     memory.NewAccountRepository(store),
			users:        memory.NewUserRepository(store),
			rates:        memory.NewRateRepository(store),
			transactions: memory.NewTransactionRepository(store),
			outbox:       memory.NewOutboxRepository(store),
			checks:       map[string]handler.Check{},
			close:        func() {},
		}, nil

	case config.StoragePostgres:
		pool, err := postgres.ConnectWithRetry(ctx, postgres.PoolConfig{
			DatabaseURL: cfg.DatabaseURL,
			MaxConns:    cfg.DatabaseMaxConns,
			MinConns:    cfg.DatabaseMinConns,
		}, connectTimeout, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		logger.Info().Msg("connected to postgres")

		if cfg.MigrationsEnabled {
			if err := postgres.RunMigrations(cfg.DatabaseURL, logger); err != nil {
				pool.Close()
				return nil, err
			}
		}

		return &storage{
			txManager:    postgresRepo.NewTxManager(pool, cfg.DatabaseLockTimeout),
			accounts:     postgresRepo.NewAccountRepository(pool),
			users:        postgresRepo.NewUserRepository(pool),
			rates:        postgresRepo.NewRateRepository(pool, postgresRepo.NewRetrier(m)),
			transactions: postgresRepo.NewTransactionRepository(pool),
			outbox:       postgresRepo.NewOutboxRepository(pool),
			checks: map[string]handler.Check{
				"postgres": pool.Ping,
			},
			close: pool.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// app is the assembled server.
type app struct {
	Handler  http.Handler
	Registry *prometheus.Registry

	logger      zerolog.Logger
	outbox      *eventpublisher.EventPublisher
	rateLimiter *middleware.RateLimiter
	closers     []func()
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{logger: logger}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewWithRegistry(a.Registry)

	st, err := openStorage(ctx, cfg, m, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, st.close)

	rates := st.rates
	var idempotencyStore usecase.IdempotencyStore
	var publisher eventpublisher.Publisher = eventpublisher.NewLogPublisher(logger)

	if cfg.RedisEnabled {
		client, err := redis.NewClient(ctx, redis.ClientConfig{URL: cfg.RedisURL, DialTimeout: redisDialTimeout})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { client.Close() })
		logger.Info().Msg("connected to redis")

		idempotencyStore = redisRepo.NewIdempotencyStore(client)
		rates = redisRepo.NewCachedRateRepository(rates, redisRepo.NewCache(client), cfg.RateCacheTTL)
		publisher = redisRepo.NewStreamPublisher(client, cfg.OutboxStream, streamMaxLen)
		st.checks["redis"] = pingRedis(client)
	}

	clock := usecase.SystemClock{}
	rateUC := usecase.NewRateUseCase(rates, clock, m)
	userUC := usecase.NewUserUseCase(st.users, clock)
	accountUC := usecase.NewAccountUseCase(st.accounts, st.users, idgen.NewAccountNumberGenerator(), clock, m)
	ledgerUC := usecase.NewLedgerUseCase(
		st.txManager, st.accounts, st.users, st.transactions, st.outbox,
		rateUC, idgen.NewULIDGenerator(), clock, m,
	)
	balanceUC := usecase.NewBalanceUseCase(st.users, st.accounts, rateUC, clock)
	transactionUC := usecase.NewTransactionUseCase(st.transactions, st.accounts)
	reconciliationUC := usecase.NewReconciliationUseCase(st.txManager, st.accounts, st.transactions, clock)

	if cfg.SeedEnabled {
		fixture, err := seed.Load(cfg.SeedFile)
		if err != nil {
			a.Close()
			return nil, err
		}

		seeder := usecase.NewSeedUseCase(st.users, rates, userUC, accountUC, rateUC)
		result, err := seeder.Seed(logger.WithContext(ctx), fixture)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
		logger.Info().
			Int("rates", result.RatesCreated).
			Int("users", len(result.Users)).
			Int("accounts", len(result.Accounts)).
			Msg("seed applied")
	}

	if cfg.OutboxEnabled {
		a.outbox = eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: st.outbox,
			Publisher:  publisher,
			Logger:     logger,
			Metrics:    m,
			Clock:      clock,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
		})
	}

	a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)

	a.Handler = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		BankHandler:           handler.NewBankHandler(ledgerUC, balanceUC),
		UserHandler:           handler.NewUserHandler(userUC, accountUC),
		AccountHandler:        handler.NewAccountHandler(accountUC, transactionUC),
		TransactionHandler:    handler.NewTransactionHandler(transactionUC),
		RateHandler:           handler.NewRateHandler(rateUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC),
		HealthHandler:         handler.NewHealthHandler(st.checks),
		Logger:                logger,
		Metrics:               m,
		Gatherer:              a.Registry,
		RateLimiter:           a.rateLimiter,
		IdempotencyStore:      idempotencyStore,
		IdempotencyTTL:        cfg.IdempotencyTTL,
	})

	return a, nil
}

// StartWorkers launches the background loops; they stop with ctx.
func (a *app) StartWorkers(ctx context.Context) {
	go a.rateLimiter.StartCleanup(ctx, limiterCleanupEvery, limiterMaxIdle)

	if a.outbox != nil {
		go func() {
			if err := a.outbox.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error().Err(err).Msg("outbox publisher stopped")
			}
		}()
	}
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func pingRedis(client *goredis.Client) handler.Check {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
