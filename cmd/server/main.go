package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"route-optimization-service/internal/adapters/featureflags"
	"route-optimization-service/internal/adapters/solver"
	"route-optimization-service/internal/api"
	"route-optimization-service/internal/config"
	"route-optimization-service/internal/platform/db"
	"route-optimization-service/internal/platform/metrics"
	"route-optimization-service/internal/platform/telemetry"
	"route-optimization-service/internal/ports"
	"route-optimization-service/internal/services/postoptimization"
	"route-optimization-service/internal/services/validators"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires the flag store, solver clients and metrics behind ports and starts the HTTP server.
func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, "route-optimization-service", cfg.OTELInsecure)
	if err != nil {
		return err
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	flagDB, flags, err := openFlagStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer flagDB.Close()

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()

		// Redis is a cache only; the service keeps working when it is down.
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, flag lookups fall through", "err", err)
		}
		flags = featureflags.NewRedisCachedFlags(flags, rdb, cfg.FlagCacheTTL, logger)
	}

	solvers, err := solver.NewFactory(solver.Config{
		GoogleURL: cfg.SolverGoogleURL,
		VroomURL:  cfg.SolverVroomURL,
		Timeout:   cfg.SolverTimeout,
		Breaker: solver.BreakerSettings{
			ConsecutiveFailures: uint32(cfg.SolverBreakerFailures),
			OpenTimeout:         cfg.SolverBreakerTimeout,
		},
	}, logger)
	if err != nil {
		return err
	}

	recorder := metrics.New()
	pipeline := postoptimization.NewHandlersRegister(
		postoptimization.NewReoptimizeRoutes(validators.NewRegistry(cfg.Thresholds), solvers, logger, recorder),
		postoptimization.NewAddExtraWorkEvents(flags),
		logger,
		recorder,
	)

	// Solver calls dominate request latency, so the write timeout covers a
	// full round of reoptimization attempts.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(pipeline, flagDB, recorder, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "flag_store", cfg.FlagStore)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openFlagStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (*sql.DB, ports.FeatureFlagService, error) {
	switch cfg.FlagStore {
	case config.FlagStorePostgres:
		pg, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, featureflags.NewSQLFlagStore(pg, logger), nil
	default:
		lite, err := openSqlite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		store := featureflags.NewSqliteFlagStore(lite)

		// Initialize schema and seed flags on startup for local runs.
		if err := featureflags.InitSchema(ctx, lite); err != nil {
			lite.Close()
			return nil, nil, err
		}
		if cfg.FlagSeedPath != "" {
			if err := featureflags.SeedFromJSON(ctx, store, cfg.FlagSeedPath); err != nil {
				lite.Close()
				return nil, nil, err
			}
		}
		return lite, store, nil
	}
}

func openSqlite(dbPath string) (*sql.DB, error) {
	lite, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %q: %w", dbPath, err)
	}

	if err := lite.Ping(); err != nil {
		lite.Close()
		return nil, fmt.Errorf("verify sqlite connection to %q: %w", dbPath, err)
	}

	return lite, nil
}
