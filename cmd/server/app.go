package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/task-api/internal/config"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/platform/postgres"
	"github.com/phrazzld/task-api/internal/service"
	"github.com/phrazzld/task-api/internal/store"
)

// databasePools is the set of pools the application owns and closes.
type databasePools interface {
	store.Pools
	Close() error
}

// application holds all the dependencies for the API server.
type application struct {
	config *config.Config
	logger *slog.Logger

	pools    databasePools
	sessions *store.SessionManager
	tasks    *service.TaskController
}

// newApplication wires the session manager, repository factory and
// controller on top of already opened pools.
func newApplication(cfg *config.Config, logger *slog.Logger, pools databasePools) *application {
	app := &application{
		config: cfg,
		logger: logger,
		pools:  pools,
	}

	app.sessions = store.NewSessionManager(pools, cfg.Database.PrePing, logger)
	app.tasks = service.NewTaskController(newTaskRepository(logger), logger)

	logger.Info("application initialized",
		"pre_ping", cfg.Database.PrePing,
		"environment", cfg.Server.Environment)
	return app
}

// newTaskRepository returns the factory binding a postgres task repository
// to a session's router.
func newTaskRepository(logger *slog.Logger) service.TaskRepositoryFactory {
	return func(router store.Router) store.Repository[*domain.Task, domain.TaskFields] {
		return postgres.NewTaskRepository(router, logger)
	}
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.pools != nil {
		closePools(app.pools, app.logger)
	}
	app.logger.Info("application shutdown completed")
}
