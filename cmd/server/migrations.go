package main

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/task-api/internal/platform/postgres"
)

var migrationCommands = []string{
	postgres.MigrateUp,
	postgres.MigrateDown,
	postgres.MigrateStatus,
	postgres.MigrateVersion,
	postgres.MigrateReset,
}

// isMigrationCommand reports whether cmd is accepted by -migrate.
func isMigrationCommand(cmd string) bool {
	for _, c := range migrationCommands {
		if c == cmd {
			return true
		}
	}
	return false
}

// handleMigrations runs a migration command against the primary pool.
// It's called from run() when the -migrate flag is set.
func handleMigrations(ctx context.Context, db *sql.DB, migrateCmd string, logger *slog.Logger) error {
	logger.Info("executing migrations", "command", migrateCmd)
	return postgres.Migrate(ctx, db, migrateCmd, logger)
}
