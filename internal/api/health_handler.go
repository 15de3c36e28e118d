package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/task-api/internal/api/shared"
	"github.com/phrazzld/task-api/internal/platform/logger"
)

// Health status values.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthChecker reports whether the primary database answers.
type HealthChecker interface {
	HealthProbe(ctx context.Context) bool
}

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	checker HealthChecker
	logger  *slog.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(checker HealthChecker, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		checker: checker,
		logger:  logger.With(slog.String("component", "health_handler")),
	}
}

// Health handles GET /v1/health/. It always answers 200; the body carries
// the database state.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	connected := h.checker.HealthProbe(r.Context())

	resp := HealthResponse{Status: StatusHealthy, DatabaseConnected: connected}
	if !connected {
		resp.Status = StatusUnhealthy
		logger.FromContextOrDefault(r.Context(), h.logger).
			Error("health check failed", slog.Bool("database_connected", false))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
