package api

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/store"
	"github.com/stretchr/testify/require"
)

// MockTaskService is a mock implementation of TaskService for testing
type MockTaskService struct {
	CreateFn  func(ctx context.Context, s *store.Session, fields domain.TaskFields) (*domain.Task, error)
	GetAllFn  func(ctx context.Context, s *store.Session, skip, limit int) ([]*domain.Task, error)
	GetByIDFn func(ctx context.Context, s *store.Session, id int64) (*domain.Task, error)
	UpdateFn  func(ctx context.Context, s *store.Session, id int64, fields domain.TaskFields) (*domain.Task, error)
	DeleteFn  func(ctx context.Context, s *store.Session, id int64) (bool, error)
}

// Create implements TaskService
func (m *MockTaskService) Create(ctx context.Context, s *store.Session, fields domain.TaskFields) (*domain.Task, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, s, fields)
	}
	return nil, nil
}

// GetAll implements TaskService
func (m *MockTaskService) GetAll(ctx context.Context, s *store.Session, skip, limit int) ([]*domain.Task, error) {
	if m.GetAllFn != nil {
		return m.GetAllFn(ctx, s, skip, limit)
	}
	return []*domain.Task{}, nil
}

// GetByID implements TaskService
func (m *MockTaskService) GetByID(ctx context.Context, s *store.Session, id int64) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, s, id)
	}
	return nil, nil
}

// Update implements TaskService
func (m *MockTaskService) Update(
	ctx context.Context,
	s *store.Session,
	id int64,
	fields domain.TaskFields,
) (*domain.Task, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, s, id, fields)
	}
	return nil, nil
}

// Delete implements TaskService
func (m *MockTaskService) Delete(ctx context.Context, s *store.Session, id int64) (bool, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, s, id)
	}
	return true, nil
}

// MockHealthChecker reports a fixed probe result.
type MockHealthChecker struct {
	Healthy bool
	Calls   int
}

// HealthProbe implements HealthChecker
func (m *MockHealthChecker) HealthProbe(context.Context) bool {
	m.Calls++
	return m.Healthy
}

type testPools struct {
	primary *sql.DB
	replica *sql.DB
}

func (p testPools) Primary() *sql.DB { return p.primary }
func (p testPools) Replica() *sql.DB { return p.replica }

// newTestSession opens a session over sqlmock pools. The handlers under test
// never reach the pools because the service is mocked.
func newTestSession(t *testing.T) *store.Session {
	t.Helper()

	primary, _, err := sqlmock.New()
	require.NoError(t, err)
	replica, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = primary.Close()
		_ = replica.Close()
	})

	s := store.NewSessionManager(testPools{primary: primary, replica: replica}, false, nil).
		Begin(context.Background())
	t.Cleanup(s.End)
	return s
}

// newTaskRouter mounts the task handler the way the server does, with a
// fixed session injected into every request.
func newTaskRouter(t *testing.T, svc TaskService) (http.Handler, *store.Session) {
	t.Helper()

	s := newTestSession(t)
	h := NewTaskHandler(svc, nil)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(store.WithSession(req.Context(), s)))
		})
	})
	r.Route("/v1/tasks", func(r chi.Router) {
		r.Post("/", h.CreateTask)
		r.Get("/", h.ListTasks)
		r.Get("/{id}", h.GetTask)
		r.Put("/{id}", h.UpdateTask)
		r.Delete("/{id}", h.DeleteTask)
	})
	return r, s
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
