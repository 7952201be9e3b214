// Package config loads server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Addr        string        // FORMSTUDIO_ADDR, default ":8080"
	DBDriver    string        // FORMSTUDIO_DB_DRIVER, sqlite or postgres, default sqlite
	DBDSN       string        // FORMSTUDIO_DB_DSN, default "formstudio.db"
	RedisAddr   string        // FORMSTUDIO_REDIS_ADDR, optional; sessions stay in memory without it
	RedisDB     int           // FORMSTUDIO_REDIS_DB, default 0
	SessionTTL  time.Duration // FORMSTUDIO_SESSION_TTL, default 24h
	CORSOrigins []string      // FORMSTUDIO_CORS_ORIGINS, comma separated, default "*"
	PageSize    int           // FORMSTUDIO_PAGE_SIZE, ordinary fields per step, default 0 (one page)
	LogLevel    slog.Level    // FORMSTUDIO_LOG_LEVEL, default info
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Load reads configuration from the environment. Files are loaded with
// godotenv first without overriding variables that are already set; with no
// files given an optional ./.env is read.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load .env: %w", err)
		}
	} else if err := godotenv.Load(files...); err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", strings.Join(files, ", "), err)
	}

	cfg := Config{
		Addr:        envOr("FORMSTUDIO_ADDR", ":8080"),
		DBDriver:    strings.ToLower(envOr("FORMSTUDIO_DB_DRIVER", DriverSQLite)),
		DBDSN:       envOr("FORMSTUDIO_DB_DSN", "formstudio.db"),
		RedisAddr:   os.Getenv("FORMSTUDIO_REDIS_ADDR"),
		CORSOrigins: splitList(envOr("FORMSTUDIO_CORS_ORIGINS", "*")),
	}

	var errs []error
	switch cfg.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("FORMSTUDIO_DB_DRIVER: unsupported driver %q", cfg.DBDriver))
	}

	var err error
	if cfg.RedisDB, err = strconv.Atoi(envOr("FORMSTUDIO_REDIS_DB", "0")); err != nil {
		errs = append(errs, fmt.Errorf("FORMSTUDIO_REDIS_DB: %w", err))
	}
	if cfg.SessionTTL, err = time.ParseDuration(envOr("FORMSTUDIO_SESSION_TTL", "24h")); err != nil {
		errs = append(errs, fmt.Errorf("FORMSTUDIO_SESSION_TTL: %w", err))
	}
	if cfg.PageSize, err = strconv.Atoi(envOr("FORMSTUDIO_PAGE_SIZE", "0")); err != nil {
		errs = append(errs, fmt.Errorf("FORMSTUDIO_PAGE_SIZE: %w", err))
	}
	if err = cfg.LogLevel.UnmarshalText([]byte(envOr("FORMSTUDIO_LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("FORMSTUDIO_LOG_LEVEL: %w", err))
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
