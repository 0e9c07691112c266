// Command catalog serves the entry catalog REST API.
//
// Configuration comes from the environment, see package config. On start it
// optionally applies migrations and seeds sample data, then serves until
// SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Skryldev/entry-catalog/api"
	"github.com/Skryldev/entry-catalog/config"
	"github.com/Skryldev/entry-catalog/db"
	"github.com/Skryldev/entry-catalog/migrations"
	"github.com/Skryldev/entry-catalog/repo"
	"github.com/Skryldev/entry-catalog/seed"
	"github.com/Skryldev/entry-catalog/service"
	"github.com/Skryldev/entry-catalog/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		fatalf("%v", err)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Tracing ───────────────────────────────────────────────────────────
	hooks := []db.Hook{
		db.NewLogHook(db.LogHookConfig{
			Logger:             logger,
			SlowQueryThreshold: cfg.SlowQuery,
		}),
	}
	if cfg.OTLPEndpoint != "" {
		shutdown, err := tracing.Setup(ctx, cfg.OTLPEndpoint, cfg.ServiceName)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error("tracing shutdown", "err", err)
			}
		}()

		dialect, err := db.LookupDialect(cfg.DatabaseDriver)
		if err != nil {
			return err
		}
		hooks = append(hooks, db.NewTracingHook(tracing.NewDBTracer(nil, tracing.SystemName(dialect.Family()))))
		logger.Info("tracing enabled", "endpoint", cfg.OTLPEndpoint)
	}

	// ── Schema ────────────────────────────────────────────────────────────
	if cfg.AutoMigrate {
		if err := migrations.Up(cfg.DatabaseDriver, cfg.DatabaseURL, logger); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	// ── Database ──────────────────────────────────────────────────────────
	database, err := db.Open(db.Config{
		DSN:             cfg.DatabaseURL,
		DriverName:      cfg.DatabaseDriver,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		DefaultTimeout:  cfg.QueryTimeout,
		Hooks:           hooks,
	})
	if err != nil {
		return err
	}
	defer database.Close()

	logger.Info("database connected", "driver", cfg.DatabaseDriver, "open_conns", database.Stats().OpenConnections)

	if cfg.Seed {
		if _, err := seed.Run(ctx, database, logger); err != nil {
			return err
		}
	}

	// ── Serve ─────────────────────────────────────────────────────────────
	entries := service.NewEntryService(repo.NewEntryRepo(database), service.Options{
		Timeout: cfg.QueryTimeout,
		Logger:  logger,
	})
	srv := api.NewServer(api.Config{
		Addr:           cfg.Addr,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
	}, entries, database)

	return srv.Run(ctx)
}

func fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
