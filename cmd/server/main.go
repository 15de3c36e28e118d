// Package main implements the entry point for the task API server, which
// serves task CRUD over HTTP backed by PostgreSQL.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/task-api/internal/config"
	"github.com/phrazzld/task-api/internal/platform/logger"
	"github.com/phrazzld/task-api/internal/platform/postgres"
	"github.com/phrazzld/task-api/internal/redact"
)

// main is the entry point for the task-api server.
// It loads configuration, sets up logging, opens the database pools and then
// either runs a migration command or serves HTTP until interrupted.
func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command (up|down|status|version|reset) and exit")
	flag.Parse()

	if err := run(context.Background(), *migrateCmd); err != nil {
		slog.Error("task-api exited with error", "error", redact.Error(err))
		os.Exit(1)
	}
}

// run holds everything main does so that errors flow back to a single exit point.
func run(ctx context.Context, migrateCmd string) error {
	if migrateCmd != "" && !isMigrationCommand(migrateCmd) {
		return fmt.Errorf("invalid migration command %q", migrateCmd)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"environment", cfg.Server.Environment,
		"database_url", redact.URL(cfg.Database.URL),
		"replica_configured", cfg.Database.ReplicaURL != "",
		"rate_limit_enabled", cfg.RateLimit.Enabled)

	pools, err := postgres.OpenPools(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to open database pools: %w", err)
	}

	if migrateCmd != "" {
		defer closePools(pools, log)
		return handleMigrations(ctx, pools.Primary(), migrateCmd, log)
	}

	app := newApplication(cfg, log, pools)
	return app.Run(ctx)
}

func closePools(pools databasePools, log *slog.Logger) {
	if err := pools.Close(); err != nil {
		log.Error("error closing database pools", "error", redact.Error(err))
	}
}
