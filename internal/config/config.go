// Package config loads and validates service configuration from the
// environment, after an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"route-optimization-service/internal/services/validators"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	FlagStorePostgres = "postgres"
	FlagStoreSqlite   = "sqlite"
)

type Config struct {
	Port string

	// Flag storage. Postgres needs DATABASE_URL, SQLite uses DB_PATH.
	FlagStore    string
	DatabaseURL  string
	DBPath       string
	FlagSeedPath string

	// Optional read-through cache for flags.
	RedisURL     string
	FlagCacheTTL time.Duration

	// Solver endpoints. An empty URL leaves the engine unavailable.
	SolverGoogleURL string
	SolverVroomURL  string
	SolverTimeout   time.Duration

	// Consecutive solver failures that open the circuit, and how long it stays open.
	SolverBreakerFailures int
	SolverBreakerTimeout  time.Duration

	LogLevel slog.Level

	// OTLP/HTTP collector for traces. Empty disables export.
	OTELEndpoint string
	OTELInsecure bool

	Thresholds validators.Thresholds
}

// LoadDotEnv reads .env when present. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: load .env: %w", err)
	}
	return nil
}

// Load reads configuration from environment variables with defaults.
func Load() (Config, error) {
	defaults := validators.DefaultThresholds()

	var errs []error
	duration := func(key string, fallback time.Duration) time.Duration {
		d, err := GetDuration(key, fallback)
		errs = append(errs, err)
		return d
	}

	failures, err := GetInt("SOLVER_BREAKER_FAILURES", 5)
	errs = append(errs, err)
	insecure, err := GetBool("OTEL_INSECURE", false)
	errs = append(errs, err)

	cfg := Config{
		Port:            Get("PORT", "8080"),
		FlagStore:       strings.ToLower(Get("FLAG_STORE", FlagStoreSqlite)),
		DatabaseURL:     Get("DATABASE_URL", ""),
		DBPath:          Get("DB_PATH", "data/app.db"),
		FlagSeedPath:    Get("FLAG_SEED_PATH", "data/seeds/feature_flags.json"),
		RedisURL:        Get("REDIS_URL", ""),
		FlagCacheTTL:    duration("FLAG_CACHE_TTL", time.Minute),
		SolverGoogleURL: Get("SOLVER_GOOGLE_URL", ""),
		SolverVroomURL:  Get("SOLVER_VROOM_URL", ""),
		SolverTimeout:   duration("SOLVER_TIMEOUT", 30*time.Second),

		SolverBreakerFailures: failures,
		SolverBreakerTimeout:  duration("SOLVER_BREAKER_TIMEOUT", 30*time.Second),

		OTELEndpoint: Get("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELInsecure: insecure,

		Thresholds: validators.Thresholds{
			LongInactivity:                   duration("REOPT_LONG_INACTIVITY", defaults.LongInactivity),
			AverageInactivity:                duration("REOPT_AVERAGE_INACTIVITY", defaults.AverageInactivity),
			InactivityBeforeFirstAppointment: duration("REOPT_INACTIVITY_BEFORE_FIRST_APPOINTMENT", defaults.InactivityBeforeFirstAppointment),
		},
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(Get("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the chosen backends have what they need.
func (c Config) Validate() error {
	switch c.FlagStore {
	case FlagStorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("config: DATABASE_URL is required when FLAG_STORE=postgres")
		}
	case FlagStoreSqlite:
		if strings.TrimSpace(c.DBPath) == "" {
			return errors.New("config: DB_PATH is required when FLAG_STORE=sqlite")
		}
	default:
		return fmt.Errorf("config: unknown FLAG_STORE %q", c.FlagStore)
	}

	if c.SolverGoogleURL == "" && c.SolverVroomURL == "" {
		return errors.New("config: at least one of SOLVER_GOOGLE_URL or SOLVER_VROOM_URL is required")
	}
	if c.SolverTimeout <= 0 {
		return errors.New("config: SOLVER_TIMEOUT must be positive")
	}
	if c.SolverBreakerFailures <= 0 || c.SolverBreakerTimeout <= 0 {
		return errors.New("config: SOLVER_BREAKER_FAILURES and SOLVER_BREAKER_TIMEOUT must be positive")
	}
	if c.RedisURL != "" && c.FlagCacheTTL <= 0 {
		return errors.New("config: FLAG_CACHE_TTL must be positive")
	}

	t := c.Thresholds
	if t.LongInactivity <= 0 || t.AverageInactivity <= 0 || t.InactivityBeforeFirstAppointment <= 0 {
		return errors.New("config: inactivity thresholds must be positive")
	}
	return nil
}

func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid integer", key, v)
	}
	return n, nil
}

func GetDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid duration", key, v)
	}
	return d, nil
}

func GetBool(key string, fallback bool) (bool, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s=%q is not a valid boolean", key, v)
	}
	return b, nil
}
