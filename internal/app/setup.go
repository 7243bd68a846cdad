package app

import (
	"context"
	"fmt"

	"github.com/balancer/solver-scripts/internal/fetcher"
	"github.com/balancer/solver-scripts/internal/solver"
	"github.com/balancer/solver-scripts/internal/storage"
	"github.com/balancer/solver-scripts/pkg/cache"
	"github.com/balancer/solver-scripts/pkg/config"
	"github.com/balancer/solver-scripts/pkg/healthprobe"
	"github.com/balancer/solver-scripts/pkg/httpserver"
	"go.uber.org/zap"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := healthprobe.New()

	liquidityCache, err := setupCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	resolver := setupResolver(cfg, logger, liquidityCache)

	solveStorage, err := setupStorage(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	solverService := setupSolver(cfg, logger, resolver, solveStorage)
	httpServer := setupHTTPServer(cfg, logger, healthChecker, solverService)

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		solver:        solverService,
		storage:       solveStorage,
		cache:         liquidityCache,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000, // 10x expected max items
		MaxCost:     1000,  // Maximum 1000 cached liquidity sets
		BufferItems: 64,    // Buffer size for Get operations
		Logger:      logger,
	})
}

func setupResolver(cfg *config.Config, logger *zap.Logger, liquidityCache cache.Cache) *fetcher.Resolver {
	var client fetcher.Fetcher
	if cfg.LiquidityURL != "" {
		client = fetcher.NewClient(cfg.LiquidityURL, cfg.LiquidityTimeout, cfg.LiquidityRetries, logger)
	} else {
		logger.Info("liquidity-client-disabled",
			zap.String("note", "LIQUIDITY_SERVICE_URL not set, only embedded liquidity will be used"))
	}

	return fetcher.New(&fetcher.Config{
		Client:    client,
		Cache:     liquidityCache,
		CacheTTL:  cfg.CacheTTL,
		Protocols: cfg.Protocols,
		Logger:    logger,
	})
}

func setupStorage(cfg *config.Config, logger *zap.Logger) (solver.Storage, error) {
	if cfg.StorageMode == "postgres" {
		pgStorage, err := storage.NewPostgresStorage(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres storage: %w", err)
		}
		return pgStorage, nil
	}

	return storage.NewConsoleStorage(logger), nil
}

func setupSolver(cfg *config.Config, logger *zap.Logger, resolver *fetcher.Resolver, solveStorage solver.Storage) *solver.Solver {
	return solver.New(
		solver.Config{
			BaseTokens:   cfg.BaseTokens,
			MaxHops:      cfg.MaxHops,
			FillAttempts: cfg.FillAttempts,
			MinFillRatio: cfg.MinFillRatio,
			Logger:       logger,
		},
		resolver,
		solveStorage,
	)
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	solverService *solver.Solver,
) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Solver:        solverService,
	})
}
