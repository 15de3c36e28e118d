package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Length limits for task text fields.
const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 255
)

// Task validation errors
var (
	// ErrTaskTitleEmpty is returned when a title is empty or whitespace-only.
	ErrTaskTitleEmpty = errors.New("title cannot be empty or whitespace")

	// ErrTaskTitleTooLong is returned when a title exceeds MaxTitleLength characters.
	ErrTaskTitleTooLong = errors.New("title cannot exceed 255 characters")

	// ErrTaskDescriptionTooLong is returned when a description exceeds MaxDescriptionLength characters.
	ErrTaskDescriptionTooLong = errors.New("description cannot exceed 255 characters")
)

// Task is a unit of work tracked by the service.
// ID and CreatedAt are assigned by the store and never change afterwards.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// EntityID returns the task's primary key.
func (t *Task) EntityID() int64 {
	return t.ID
}

// Matches reports whether applying fields to t would change nothing.
// Only title, description and completed take part; a field that is not
// supplied counts as unchanged.
func (t *Task) Matches(fields TaskFields) bool {
	if fields.Title != nil && *fields.Title != t.Title {
		return false
	}
	if fields.Description != nil && !equalOptional(fields.Description, t.Description) {
		return false
	}
	if fields.Completed != nil && *fields.Completed != t.Completed {
		return false
	}
	return true
}

// TaskFields carries the mutable attributes of a Task for create and update.
// A nil pointer means the field was not supplied.
type TaskFields struct {
	Title       *string
	Description *string
	Completed   *bool
}

// NewTaskFields builds a TaskFields value for creation. Completed defaults to
// false when not supplied. The title is normalized.
func NewTaskFields(title string, description *string, completed *bool) (TaskFields, error) {
	done := false
	if completed != nil {
		done = *completed
	}
	fields := TaskFields{
		Title:       &title,
		Description: description,
		Completed:   &done,
	}
	fields.Normalize()
	if err := fields.ValidateForCreate(); err != nil {
		return TaskFields{}, err
	}
	return fields, nil
}

// Normalize trims surrounding whitespace from the title.
func (f *TaskFields) Normalize() {
	if f.Title != nil {
		trimmed := strings.TrimSpace(*f.Title)
		f.Title = &trimmed
	}
}

// ValidateForCreate checks the fields required to insert a new task.
func (f TaskFields) ValidateForCreate() error {
	if f.Title == nil {
		return ErrTaskTitleEmpty
	}
	return f.Validate()
}

// Validate checks every supplied field against the Task invariants.
// It expects Normalize to have been called.
func (f TaskFields) Validate() error {
	if f.Title != nil {
		if *f.Title == "" {
			return ErrTaskTitleEmpty
		}
		if utf8.RuneCountInString(*f.Title) > MaxTitleLength {
			return ErrTaskTitleTooLong
		}
	}
	if f.Description != nil && utf8.RuneCountInString(*f.Description) > MaxDescriptionLength {
		return ErrTaskDescriptionTooLong
	}
	return nil
}

// Empty reports whether no field was supplied.
func (f TaskFields) Empty() bool {
	return f.Title == nil && f.Description == nil && f.Completed == nil
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
