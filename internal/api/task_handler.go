package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/task-api/internal/api/shared"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/platform/logger"
	"github.com/phrazzld/task-api/internal/store"
)

// TaskService is the controller surface the task handler depends on.
type TaskService interface {
	Create(ctx context.Context, s *store.Session, fields domain.TaskFields) (*domain.Task, error)
	GetAll(ctx context.Context, s *store.Session, skip, limit int) ([]*domain.Task, error)
	GetByID(ctx context.Context, s *store.Session, id int64) (*domain.Task, error)
	Update(ctx context.Context, s *store.Session, id int64, fields domain.TaskFields) (*domain.Task, error)
	Delete(ctx context.Context, s *store.Session, id int64) (bool, error)
}

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	tasks  TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /v1/tasks/.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	fields, err := domain.NewTaskFields(*req.Title, req.Description, req.Completed)
	if err != nil {
		HandleAPIError(w, r, invalidTask(err))
		return
	}

	task, err := h.tasks.Create(r.Context(), s, fields)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	h.log(r).Info("task created", slog.Int64("task_id", task.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// ListTasks handles GET /v1/tasks/.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	skip, limit, err := getPagination(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	tasks, err := h.tasks.GetAll(r.Context(), s, skip, limit)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// GetTask handles GET /v1/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	id, err := getPathID(r, taskIDParam)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	task, err := h.tasks.GetByID(r.Context(), s, id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTask handles PUT /v1/tasks/{id}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	id, err := getPathID(r, taskIDParam)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	fields := req.Fields()
	fields.Normalize()
	if err := fields.Validate(); err != nil {
		HandleAPIError(w, r, invalidTask(err))
		return
	}

	task, err := h.tasks.Update(r.Context(), s, id, fields)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	h.log(r).Info("task updated", slog.Int64("task_id", task.ID))
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /v1/tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	id, err := getPathID(r, taskIDParam)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if _, err := h.tasks.Delete(r.Context(), s, id); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	h.log(r).Info("task deleted", slog.Int64("task_id", id))
	shared.RespondNoContent(w)
}

func (h *TaskHandler) session(w http.ResponseWriter, r *http.Request) (*store.Session, bool) {
	s, err := getSession(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return nil, false
	}
	return s, true
}

func (h *TaskHandler) log(r *http.Request) *slog.Logger {
	return logger.FromContextOrDefault(r.Context(), h.logger)
}

// invalidTask reports a domain validation failure as unprocessable.
func invalidTask(err error) error {
	switch {
	case errors.Is(err, domain.ErrTaskTitleEmpty),
		errors.Is(err, domain.ErrTaskTitleTooLong),
		errors.Is(err, domain.ErrTaskDescriptionTooLong):
		return domain.NewUnprocessableEntity(err.Error(), err)
	default:
		return err
	}
}
