package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/task-api/internal/api"
	apiMiddleware "github.com/phrazzld/task-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	r.NotFound(api.NotFound)
	r.MethodNotAllowed(api.MethodNotAllowed)

	taskHandler := api.NewTaskHandler(app.tasks, app.logger)
	healthHandler := api.NewHealthHandler(app.sessions, app.logger)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			// Each route group gets its own limiter.
			if app.config.RateLimit.Enabled {
				limiter := apiMiddleware.NewRateLimiter(app.config.RateLimit.RequestsPerSecond, app.config.RateLimit.Burst)
				r.Use(limiter.Middleware)
			}
			r.Use(apiMiddleware.SessionScope(app.sessions))

			r.Post("/", taskHandler.CreateTask)
			r.Get("/", taskHandler.ListTasks)
			r.Get("/{id}", taskHandler.GetTask)
			r.Put("/{id}", taskHandler.UpdateTask)
			r.Delete("/{id}", taskHandler.DeleteTask)
		})

		r.Get("/health/", healthHandler.Health)
	})

	if !app.config.Server.IsProduction() {
		r.Get("/docs", api.NewDocsHandler(r).Docs)
	}

	return r
}
