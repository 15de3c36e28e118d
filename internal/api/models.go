package api

import (
	"time"

	"github.com/phrazzld/task-api/internal/domain"
)

// CreateTaskRequest defines the payload for POST /v1/tasks/.
// Length limits are enforced by the domain after the title is trimmed.
type CreateTaskRequest struct {
	Title       *string `json:"title" validate:"required"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// UpdateTaskRequest defines the payload for PUT /v1/tasks/{id}.
// Omitted and null fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// Fields converts the request into domain update fields.
func (r UpdateTaskRequest) Fields() domain.TaskFields {
	return domain.TaskFields{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
	}
}

// TaskResponse is the client view of a task.
type TaskResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// HealthResponse is the body of GET /v1/health/.
type HealthResponse struct {
	Status            string `json:"status"`
	DatabaseConnected bool   `json:"database_connected"`
}

// RouteInfo describes one registered route.
type RouteInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// DocsResponse lists the routes served by the API.
type DocsResponse struct {
	Routes []RouteInfo `json:"routes"`
}

func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt,
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	resp := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		resp = append(resp, taskToResponse(task))
	}
	return resp
}
