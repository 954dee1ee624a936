package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/transferledger/internal/adapter/http"
	"github.com/iho/transferledger/internal/adapter/http/handler"
	"github.com/iho/transferledger/internal/adapter/http/middleware"
	"github.com/iho/transferledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/transferledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/transferledger/internal/adapter/repository/redis"
	"github.com/iho/transferledger/internal/infrastructure/auth"
	"github.com/iho/transferledger/internal/infrastructure/config"
	"github.com/iho/transferledger/internal/infrastructure/metrics"
	"github.com/iho/transferledger/internal/infrastructure/postgres"
	"github.com/iho/transferledger/internal/infrastructure/redis"
	"github.com/iho/transferledger/internal/usecase"
)

// storage is the set of ports a storage driver provides.
type storage struct {
	accounts  usecase.AccountResolver
	entries   usecase.EntryRepository
	txManager usecase.TransactionManager
	retrier   usecase.Retrier
}

// app is the fully wired server.
type app struct {
	handler     http.Handler
	rateLimiter *middleware.RateLimiter
	closers     []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp wires storage, caches, locks and the HTTP surface from cfg.
func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, reg prometheus.Registerer, gatherer prometheus.Gatherer) (*app, error) {
	a := &app{}
	idGen := postgresRepo.NewULIDGenerator()
	var checks []handler.HealthCheck

	var store storage
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		dir := memory.NewAccountDirectory()
		entries := memory.NewEntryStore()
		if err := memory.Seed(ctx, dir, entries, idGen, cfg.MemorySeed); err != nil {
			return nil, fmt.Errorf("seed memory store: %w", err)
		}
		store = storage{accounts: dir, entries: entries, txManager: memory.NewTxManager(entries)}
		logger.Info().Int("accounts", len(cfg.MemorySeed)).Msg("using in-memory storage")

	case config.StorageDriverPostgres:
		if cfg.RunMigrations {
			if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
				return nil, err
			}
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL: cfg.DatabaseURL,
			MaxConns:    cfg.DatabaseMaxConns,
			MinConns:    cfg.DatabaseMinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		checks = append(checks, handler.PostgresCheck(pool))
		logger.Info().Msg("connected to postgres")

		store = storage{
			accounts:  postgresRepo.NewAccountRepository(pool),
			entries:   postgresRepo.NewEntryRepository(pool),
			txManager: postgresRepo.NewTxManager(pool),
			retrier: postgresRepo.NewRetrier(logger,
				postgresRepo.WithMaxRetries(cfg.TxMaxRetries),
				postgresRepo.WithMaxElapsed(cfg.TxRetryMaxElapsed),
			),
		}

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	m := metrics.NewWithRegisterer(reg)
	transferOpts := []usecase.TransferOption{
		usecase.WithLogger(logger),
		usecase.WithMetricsRecorder(m),
	}
	if store.retrier != nil {
		transferOpts = append(transferOpts, usecase.WithRetrier(store.retrier))
	}

	var idempotency usecase.IdempotencyStore
	if cfg.RedisEnabled {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { client.Close() })
		checks = append(checks, handler.RedisCheck(client))
		logger.Info().Msg("connected to redis")

		store.accounts = redisRepo.NewCachedAccountResolver(store.accounts, redisRepo.NewCache(client), cfg.AccountCacheTTL, logger)
		idempotency = redisRepo.NewIdempotencyStore(client)

		if cfg.LockBackend == config.LockBackendRedis {
			locker := redisRepo.NewAccountLocker(client, redisRepo.LockOptions{
				Expiry:     cfg.LockExpiry,
				Tries:      cfg.LockTries,
				RetryDelay: cfg.LockRetryDelay,
			}, logger)
			transferOpts = append(transferOpts, usecase.WithAccountLocker(locker))
		}
	}

	balances := usecase.NewBalanceUseCase(store.accounts, store.entries, logger).WithRecorder(m)
	transfers := usecase.NewTransferUseCase(store.txManager, store.accounts, store.entries, balances, idGen, transferOpts...)
	ops := usecase.NewOperationsService(balances, transfers, logger)

	routerCfg := httpAdapter.RouterConfig{
		OperationsHandler: handler.NewOperationsHandler(ops),
		LedgerHandler:     handler.NewLedgerHandler(usecase.NewLedgerUseCase(store.entries)),
		HealthHandler:     handler.NewHealthHandler(checks...),
		Logger:            logger,
		Metrics:           m,
		MetricsHandler:    promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
		IdempotencyStore:  idempotency,
		IdempotencyTTL:    cfg.IdempotencyTTL,
	}

	if cfg.AuthEnabled {
		routerCfg.JWTManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	if cfg.RateLimitRPS > 0 {
		a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithHitCounter(m.RateLimitHits)
		routerCfg.RateLimiter = a.rateLimiter
	}

	a.handler = httpAdapter.NewRouter(routerCfg)

	return a, nil
}
