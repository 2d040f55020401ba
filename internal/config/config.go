package config

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress            string
	DatabaseURI           string
	NotifierURL           string
	InterpreterURL        string
	RedisURL              string
	JWTSecret             string
	TokenTTL              time.Duration
	EligibleOrganizations int
	SweepInterval         time.Duration
	SweepBatch            int
	WorkerPoolSize        int
	RatingCacheTTL        time.Duration
	ShelfLife             time.Duration
	NoteTimezone          *time.Location
	CORSOrigins           []string
	ShutdownTimeout       time.Duration
	LogLevel              slog.Level
}

const (
	defaultRunAddress            = ":8080"
	defaultJWTSecret             = "change-me-in-production"
	defaultTokenTTL              = 24 * time.Hour
	defaultEligibleOrganizations = 2
	defaultSweepInterval         = time.Minute
	defaultSweepBatch            = 100
	defaultWorkerPoolSize        = 4
	defaultRatingCacheTTL        = 10 * time.Minute
	defaultShelfLife             = 4 * time.Hour
	defaultNoteTimezone          = "UTC"
	defaultCORSOrigins           = "*"
	defaultShutdownTimeout       = 10 * time.Second
	defaultLogLevel              = "info"
	defaultEnvFile               = ".env"
)

// Load parses configuration from flags, environment variables and an optional .env file.
// Real environment variables take precedence over the file.
func Load() (*Config, error) {
	path := defaultEnvFile
	if v, ok := os.LookupEnv("ENV_FILE"); ok && v != "" {
		path = v
	}
	return load(os.Args[1:], withDotEnv(os.LookupEnv, path))
}

type envLookup func(string) (string, bool)

// withDotEnv falls back to values from the dotenv file at path. A missing file is ignored.
func withDotEnv(lookup envLookup, path string) envLookup {
	values, err := godotenv.Read(path)
	if err != nil || len(values) == 0 {
		return lookup
	}
	return func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, ok
		}
		v, ok := values[key]
		return v, ok
	}
}

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:            getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:           getString(lookup, "DATABASE_URI", ""),
		NotifierURL:           getString(lookup, "NOTIFIER_URL", ""),
		InterpreterURL:        getString(lookup, "INTERPRETER_URL", ""),
		RedisURL:              getString(lookup, "REDIS_URL", ""),
		JWTSecret:             getString(lookup, "JWT_SECRET", defaultJWTSecret),
		TokenTTL:              getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		EligibleOrganizations: getInt(lookup, "ELIGIBLE_ORGANIZATIONS", defaultEligibleOrganizations),
		SweepInterval:         getDuration(lookup, "EXPIRY_SWEEP_INTERVAL", defaultSweepInterval),
		SweepBatch:            getInt(lookup, "EXPIRY_SWEEP_BATCH", defaultSweepBatch),
		WorkerPoolSize:        getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		RatingCacheTTL:        getDuration(lookup, "RATING_CACHE_TTL", defaultRatingCacheTTL),
		ShelfLife:             getDuration(lookup, "SHELF_LIFE", defaultShelfLife),
		ShutdownTimeout:       getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("foodbridge", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		tokenTTLStr        = cfg.TokenTTL.String()
		sweepIntervalStr   = cfg.SweepInterval.String()
		ratingTTLStr       = cfg.RatingCacheTTL.String()
		shelfLifeStr       = cfg.ShelfLife.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		timezone           = getString(lookup, "NOTE_TIMEZONE", defaultNoteTimezone)
		corsOrigins        = getString(lookup, "CORS_ORIGINS", defaultCORSOrigins)
		logLevel           = getString(lookup, "LOG_LEVEL", defaultLogLevel)
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.NotifierURL, "n", cfg.NotifierURL, "Notification service base URL")
	fs.StringVar(&cfg.InterpreterURL, "i", cfg.InterpreterURL, "Note interpretation service base URL")
	fs.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "Redis URL for the rating cache")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&tokenTTLStr, "token-ttl", tokenTTLStr, "Lifetime of issued auth tokens")
	fs.IntVar(&cfg.EligibleOrganizations, "eligible", cfg.EligibleOrganizations, "Nearest organizations eligible per donation")
	fs.StringVar(&sweepIntervalStr, "sweep-interval", sweepIntervalStr, "Interval between expiry sweeps")
	fs.IntVar(&cfg.SweepBatch, "sweep-batch", cfg.SweepBatch, "Maximum donations expired per sweep")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent notification workers")
	fs.StringVar(&ratingTTLStr, "rating-ttl", ratingTTLStr, "Lifetime of cached composite ratings")
	fs.StringVar(&shelfLifeStr, "shelf-life", shelfLifeStr, "Default shelf life of a donation")
	fs.StringVar(&timezone, "tz", timezone, "Time zone for times mentioned in donor notes")
	fs.StringVar(&corsOrigins, "cors", corsOrigins, "Comma separated allowed CORS origins")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&logLevel, "log-level", logLevel, "Log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.TokenTTL, err = time.ParseDuration(tokenTTLStr); err != nil {
		return nil, fmt.Errorf("invalid token ttl: %w", err)
	}
	if cfg.SweepInterval, err = time.ParseDuration(sweepIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid sweep interval: %w", err)
	}
	if cfg.RatingCacheTTL, err = time.ParseDuration(ratingTTLStr); err != nil {
		return nil, fmt.Errorf("invalid rating ttl: %w", err)
	}
	if cfg.ShelfLife, err = time.ParseDuration(shelfLifeStr); err != nil {
		return nil, fmt.Errorf("invalid shelf life: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	if cfg.NoteTimezone, err = time.LoadLocation(timezone); err != nil {
		return nil, fmt.Errorf("invalid note timezone: %w", err)
	}
	if err = cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	cfg.CORSOrigins = splitList(corsOrigins)

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.EligibleOrganizations <= 0 {
		cfg.EligibleOrganizations = defaultEligibleOrganizations
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	if cfg.SweepBatch <= 0 {
		cfg.SweepBatch = defaultSweepBatch
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}
	if cfg.RatingCacheTTL <= 0 {
		cfg.RatingCacheTTL = defaultRatingCacheTTL
	}
	if cfg.ShelfLife <= 0 {
		cfg.ShelfLife = defaultShelfLife
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
