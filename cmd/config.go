package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"shipcalc/internal/jobs"
	"shipcalc/internal/pkg/errs"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	// DBAutoMigrate creates or updates the catalog tables at startup.
	DBAutoMigrate bool

	LogLevel slog.Level

	// CatalogRefreshSchedule is a six-field cron expression (seconds first).
	CatalogRefreshSchedule string
	CatalogRefreshTimeout  time.Duration

	MaxConcurrentCalculations int
	CalculationTimeout        time.Duration
	ConcurrencyWait           time.Duration
	MaxBulkItems              int
}

// Defaults used for keys that are unset.
const (
	defaultHTTPPort                  = "8080"
	defaultDBSslMode                 = "disable"
	defaultCatalogRefreshTimeout     = 30 * time.Second
	defaultMaxConcurrentCalculations = 64
	defaultCalculationTimeout        = 2 * time.Second
	defaultConcurrencyWait           = 100 * time.Millisecond
	defaultMaxBulkItems              = 1000
)

// LoadConfig reads the configuration through getenv, usually os.Getenv after
// godotenv has loaded .env. All malformed values are reported together.
func LoadConfig(getenv func(string) string) (Config, error) {
	r := envReader{getenv: getenv}

	cfg := Config{
		HTTPPort:                  r.value("HTTP_PORT", defaultHTTPPort),
		DBHost:                    r.value("DB_HOST", ""),
		DBPort:                    r.value("DB_PORT", "5432"),
		DBUser:                    r.value("DB_USER", ""),
		DBPassword:                r.value("DB_PASSWORD", ""),
		DBName:                    r.value("DB_NAME", ""),
		DBSslMode:                 r.value("DB_SSLMODE", defaultDBSslMode),
		DBAutoMigrate:             r.flag("DB_AUTO_MIGRATE", false),
		LogLevel:                  r.level("LOG_LEVEL", slog.LevelInfo),
		CatalogRefreshSchedule:    r.value("CATALOG_REFRESH_SCHEDULE", jobs.DefaultRefreshSchedule),
		CatalogRefreshTimeout:     r.duration("CATALOG_REFRESH_TIMEOUT", defaultCatalogRefreshTimeout),
		MaxConcurrentCalculations: r.integer("MAX_CONCURRENT_CALCULATIONS", defaultMaxConcurrentCalculations),
		CalculationTimeout:        r.duration("CALCULATION_TIMEOUT", defaultCalculationTimeout),
		ConcurrencyWait:           r.duration("CONCURRENCY_WAIT", defaultConcurrencyWait),
		MaxBulkItems:              r.integer("MAX_BULK_ITEMS", defaultMaxBulkItems),
	}

	for key, value := range map[string]string{"DB_HOST": cfg.DBHost, "DB_USER": cfg.DBUser, "DB_NAME": cfg.DBName} {
		if value == "" {
			r.errs = append(r.errs, errs.NewValueIsRequiredError(key))
		}
	}
	if cfg.MaxConcurrentCalculations < 1 {
		r.errs = append(r.errs, errs.NewValueIsOutOfRangeError(
			"MAX_CONCURRENT_CALCULATIONS", cfg.MaxConcurrentCalculations, 1, "unbounded"))
	}

	if err := errors.Join(r.errs...); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DSN is the postgres connection string for gorm.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

type envReader struct {
	getenv func(string) string
	errs   []error
}

func (r *envReader) value(key, fallback string) string {
	if v := strings.TrimSpace(r.getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (r *envReader) integer(key string, fallback int) int {
	v := r.value(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, errs.NewValueIsInvalidErrorWithCause(key, err))
		return fallback
	}
	return n
}

func (r *envReader) flag(key string, fallback bool) bool {
	v := r.value(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, errs.NewValueIsInvalidErrorWithCause(key, err))
		return fallback
	}
	return b
}

func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	v := r.value(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, errs.NewValueIsInvalidErrorWithCause(key, err))
		return fallback
	}
	return d
}

func (r *envReader) level(key string, fallback slog.Level) slog.Level {
	v := r.value(key, "")
	if v == "" {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		r.errs = append(r.errs, errs.NewValueIsInvalidErrorWithCause(key, err))
		return fallback
	}
	return level
}
