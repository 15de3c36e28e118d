package postgres

import "github.com/phrazzld/task-api/internal/domain"

// TaskTable maps domain.Task onto the tasks table.
var TaskTable = Table[*domain.Task, domain.TaskFields]{
	Name:    "tasks",
	Columns: []string{"id", "title", "description", "completed", "created_at"},
	New: func() *domain.Task {
		return &domain.Task{}
	},
	Targets: func(t *domain.Task) []any {
		return []any{&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt}
	},
	Assignments: func(f domain.TaskFields) []Assignment {
		var out []Assignment
		if f.Title != nil {
			out = append(out, Assignment{Column: "title", Value: *f.Title})
		}
		if f.Description != nil {
			out = append(out, Assignment{Column: "description", Value: *f.Description})
		}
		if f.Completed != nil {
			out = append(out, Assignment{Column: "completed", Value: *f.Completed})
		}
		return out
	},
}
