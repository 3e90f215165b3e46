package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"route-optimization-service/internal/adapters/featureflags"
	"route-optimization-service/internal/config"
	"route-optimization-service/internal/platform/db"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// dbtool prepares a Postgres flag store: it creates the schema and loads the
// seed file. With REDIS_URL set, seeded flags are also dropped from the
// service's flag cache.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := config.LoadDotEnv(); err != nil {
		logger.Error("load .env failed", "err", err)
		os.Exit(1)
	}

	databaseURL := config.Get("DATABASE_URL", "")
	if strings.TrimSpace(databaseURL) == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	pg, err := db.Open(context.Background(), databaseURL)
	if err != nil {
		logger.Error("open database failed", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	var store featureflags.Upserter = featureflags.NewSQLFlagStore(pg, logger)
	if redisURL := config.Get("REDIS_URL", ""); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.Error("parse REDIS_URL failed", "err", err)
			pg.Close()
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		store = featureflags.NewRedisCachedFlags(featureflags.NewSQLFlagStore(pg, logger), rdb, time.Minute, logger)
	}

	seedPath := config.Get("FLAG_SEED_PATH", "data/seeds/feature_flags.json")
	if err := initAndSeed(context.Background(), logger, pg, store, seedPath); err != nil {
		logger.Error("dbtool failed", "err", err)
		pg.Close()
		os.Exit(1)
	}
}

func initAndSeed(ctx context.Context, logger *slog.Logger, pg *sql.DB, store featureflags.Upserter, seedPath string) error {
	logger.Info("initializing flag schema")
	if err := featureflags.InitSchema(ctx, pg); err != nil {
		return fmt.Errorf("schema initialization: %w", err)
	}
	logger.Info("schema ready")

	logger.Info("seeding flags", "path", seedPath)
	if err := featureflags.SeedFromJSON(ctx, store, seedPath); err != nil {
		return fmt.Errorf("seeding: %w", err)
	}
	logger.Info("seeding complete")

	return nil
}
