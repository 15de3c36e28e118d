package service_test

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/store"
	"github.com/stretchr/testify/require"
)

// memoryTaskRepository is an in-memory store.Repository for tasks.
// Any non-nil Fn field replaces the default behavior of its method.
type memoryTaskRepository struct {
	tasks  map[int64]domain.Task
	nextID int64

	CreateFn     func(ctx context.Context, fields domain.TaskFields) (*domain.Task, error)
	GetAllFn     func(ctx context.Context, skip, limit int) ([]*domain.Task, error)
	GetByFieldFn func(ctx context.Context, field string, value any) (*domain.Task, bool, error)
	UpdateByIDFn func(ctx context.Context, id int64, fields domain.TaskFields) error
	DeleteByIDFn func(ctx context.Context, id int64) error
	RefreshFn    func(ctx context.Context, task *domain.Task) error

	updates int
	deletes int
}

func newMemoryTaskRepository() *memoryTaskRepository {
	return &memoryTaskRepository{tasks: make(map[int64]domain.Task), nextID: 1}
}

var _ store.Repository[*domain.Task, domain.TaskFields] = (*memoryTaskRepository)(nil)

func (r *memoryTaskRepository) Create(ctx context.Context, fields domain.TaskFields) (*domain.Task, error) {
	if r.CreateFn != nil {
		return r.CreateFn(ctx, fields)
	}
	task := domain.Task{ID: r.nextID, CreatedAt: time.Now().UTC()}
	apply(&task, fields)
	r.tasks[task.ID] = task
	r.nextID++
	return &task, nil
}

func (r *memoryTaskRepository) GetAll(ctx context.Context, skip, limit int) ([]*domain.Task, error) {
	if r.GetAllFn != nil {
		return r.GetAllFn(ctx, skip, limit)
	}
	ids := make([]int64, 0, len(r.tasks))
	for id := range r.tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*domain.Task, 0)
	for i := skip; i < len(ids) && len(out) < limit; i++ {
		task := r.tasks[ids[i]]
		out = append(out, &task)
	}
	return out, nil
}

func (r *memoryTaskRepository) GetByField(ctx context.Context, field string, value any) (*domain.Task, bool, error) {
	if r.GetByFieldFn != nil {
		return r.GetByFieldFn(ctx, field, value)
	}
	if field != "id" {
		return nil, false, domain.NewInvalidArgument("unsupported field")
	}
	task, ok := r.tasks[value.(int64)]
	if !ok {
		return nil, false, nil
	}
	return &task, true, nil
}

func (r *memoryTaskRepository) UpdateByID(ctx context.Context, id int64, fields domain.TaskFields) error {
	r.updates++
	if r.UpdateByIDFn != nil {
		return r.UpdateByIDFn(ctx, id, fields)
	}
	task, ok := r.tasks[id]
	if !ok {
		return store.ErrNoRows
	}
	apply(&task, fields)
	r.tasks[id] = task
	return nil
}

func (r *memoryTaskRepository) DeleteByID(ctx context.Context, id int64) error {
	r.deletes++
	if r.DeleteByIDFn != nil {
		return r.DeleteByIDFn(ctx, id)
	}
	if _, ok := r.tasks[id]; !ok {
		return store.ErrNoRows
	}
	delete(r.tasks, id)
	return nil
}

func (r *memoryTaskRepository) Refresh(ctx context.Context, task *domain.Task) error {
	if r.RefreshFn != nil {
		return r.RefreshFn(ctx, task)
	}
	stored, ok := r.tasks[task.ID]
	if !ok {
		return store.ErrNoRows
	}
	*task = stored
	return nil
}

func apply(task *domain.Task, fields domain.TaskFields) {
	if fields.Title != nil {
		task.Title = *fields.Title
	}
	if fields.Description != nil {
		d := *fields.Description
		task.Description = &d
	}
	if fields.Completed != nil {
		task.Completed = *fields.Completed
	}
}

type testPools struct {
	primary *sql.DB
	replica *sql.DB
}

func (p testPools) Primary() *sql.DB { return p.primary }
func (p testPools) Replica() *sql.DB { return p.replica }

// newTestSession opens a session whose primary pool is a sqlmock, so tests
// can assert transaction boundaries.
func newTestSession(t *testing.T) (*store.Session, sqlmock.Sqlmock) {
	t.Helper()

	primary, mock, err := sqlmock.New()
	require.NoError(t, err)
	replica, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = primary.Close()
		_ = replica.Close()
	})

	manager := store.NewSessionManager(testPools{primary: primary, replica: replica}, false, nil)
	s := manager.Begin(context.Background())
	t.Cleanup(s.End)
	return s, mock
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
