package service

import (
	"log/slog"

	"github.com/phrazzld/task-api/internal/domain"
)

// taskEntityName is used in messages about tasks.
const taskEntityName = "Task"

// TaskController is the controller for tasks.
type TaskController = Controller[*domain.Task, domain.TaskFields]

// TaskRepositoryFactory binds a task repository to a session.
type TaskRepositoryFactory = RepositoryFactory[*domain.Task, domain.TaskFields]

// NewTaskController creates the tasks controller.
func NewTaskController(newRepo TaskRepositoryFactory, logger *slog.Logger) *TaskController {
	return NewController[*domain.Task, domain.TaskFields](taskEntityName, newRepo, logger)
}
