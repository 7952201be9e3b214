package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-formstudio/internal/config"
	"github.com/goliatone/go-formstudio/internal/httpapi"
	"github.com/goliatone/go-formstudio/internal/sessionstore/redisstate"
	"github.com/goliatone/go-formstudio/internal/store/gormstore"
	"github.com/goliatone/go-formstudio/internal/store/sqlite"
	"github.com/goliatone/go-formstudio/pkg/flow"
	"github.com/goliatone/go-formstudio/pkg/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	forms, closeForms, err := openFormStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeForms.Close() }()

	sessions, closeSessions, err := openSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeSessions.Close() }()

	api, err := httpapi.New(forms, sessions,
		httpapi.WithLogger(logger),
		httpapi.WithCORSOrigins(cfg.CORSOrigins...),
		httpapi.WithFlowOptions(flow.WithStepSize(cfg.PageSize)),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("starting formstudio server",
		"addr", cfg.Addr,
		"db_driver", cfg.DBDriver,
		"redis", cfg.RedisAddr != "",
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

func openFormStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.Store, io.Closer, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := gormstore.Open(cfg.DBDSN, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("postgres handle: %w", err)
		}
		if err := gormstore.Migrate(ctx, db); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		return gormstore.New(db, gormstore.WithLogger(logger)), sqlDB, nil
	default:
		db, err := sqlite.Open(cfg.DBDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		if err := sqlite.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		return sqlite.New(db, sqlite.WithLogger(logger)), db, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openSessionStore(ctx context.Context, cfg config.Config) (flow.SnapshotStore, io.Closer, error) {
	if cfg.RedisAddr == "" {
		slog.Warn("FORMSTUDIO_REDIS_ADDR not set, fill sessions are kept in memory")
		return flow.NewMemoryStore(), nopCloser{}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return redisstate.New(client, redisstate.WithTTL(cfg.SessionTTL)), client, nil
}
