package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/platform/logger"
	"github.com/phrazzld/task-api/internal/store"
)

// Repository implements store.Repository for any entity described by a Table.
// Every statement is routed through the store.Router it was built with, so a
// repository bound to a session reads from the replica and writes to the
// primary without knowing either.
type Repository[T store.Entity, F any] struct {
	router store.Router
	table  Table[T, F]
	logger *slog.Logger
}

// NewRepository creates a repository for table that routes statements through router.
// If logger is nil, a default logger will be used.
func NewRepository[T store.Entity, F any](router store.Router, table Table[T, F], logger *slog.Logger) *Repository[T, F] {
	if router == nil {
		panic("router cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Repository[T, F]{
		router: router,
		table:  table,
		logger: logger.With(slog.String("component", table.Name+"_repository")),
	}
}

// TaskRepository is the repository for domain.Task.
type TaskRepository = Repository[*domain.Task, domain.TaskFields]

// NewTaskRepository creates the tasks repository.
func NewTaskRepository(router store.Router, logger *slog.Logger) *TaskRepository {
	return NewRepository(router, TaskTable, logger)
}

// Ensure the task repository implements the store contract
var _ store.Repository[*domain.Task, domain.TaskFields] = (*TaskRepository)(nil)

// handle routes query to the database handle its statement kind requires.
func (r *Repository[T, F]) handle(ctx context.Context, query string) (store.DBTX, error) {
	db, err := r.router.Route(ctx, store.Classify(query))
	if err != nil {
		return nil, domain.NewDatabaseError("failed to acquire connection", err)
	}
	return db, nil
}

// fail logs err with the operation that produced it and maps it to a domain error.
func (r *Repository[T, F]) fail(ctx context.Context, operation string, err error, attrs ...any) error {
	log := logger.FromContextOrDefault(ctx, r.logger)
	mapped := MapError(err)

	args := append([]any{
		slog.String("operation", operation),
		slog.String("error_kind", domain.KindOf(mapped).String()),
		slog.String("error", err.Error()),
	}, attrs...)

	if domain.KindOf(mapped) == domain.KindDatabase {
		log.Error("repository operation failed", args...)
	} else {
		log.Warn("repository operation rejected", args...)
	}
	return mapped
}

// Create implements store.Repository.Create.
// The generated id and timestamps are read back with RETURNING.
func (r *Repository[T, F]) Create(ctx context.Context, fields F) (T, error) {
	var zero T

	query, args := r.table.insertQuery(r.table.Assignments(fields))
	db, err := r.handle(ctx, query)
	if err != nil {
		return zero, r.fail(ctx, "create", err)
	}

	entity := r.table.New()
	if err := db.QueryRowContext(ctx, query, args...).Scan(r.table.Targets(entity)...); err != nil {
		return zero, r.fail(ctx, "create", err)
	}

	logger.FromContextOrDefault(ctx, r.logger).Debug("entity created",
		slog.Int64("id", entity.EntityID()))
	return entity, nil
}

// GetAll implements store.Repository.GetAll.
// A negative skip or limit is an InvalidArgument error and never reaches the database.
func (r *Repository[T, F]) GetAll(ctx context.Context, skip, limit int) ([]T, error) {
	if skip < 0 || limit < 0 {
		err := domain.NewInvalidArgument(fmt.Sprintf("skip and limit must not be negative, got %d and %d", skip, limit))
		return nil, r.fail(ctx, "get_all", err, slog.Int("skip", skip), slog.Int("limit", limit))
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s ASC OFFSET $1 LIMIT $2",
		r.table.selectList(), r.table.Name, r.table.keyColumn())

	db, err := r.handle(ctx, query)
	if err != nil {
		return nil, r.fail(ctx, "get_all", err)
	}

	rows, err := db.QueryContext(ctx, query, skip, limit)
	if err != nil {
		return nil, r.fail(ctx, "get_all", err, slog.Int("skip", skip), slog.Int("limit", limit))
	}
	defer func() { _ = rows.Close() }()

	entities := make([]T, 0)
	for rows.Next() {
		entity := r.table.New()
		if err := rows.Scan(r.table.Targets(entity)...); err != nil {
			return nil, r.fail(ctx, "get_all", err)
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(ctx, "get_all", err)
	}

	return entities, nil
}

// GetByField implements store.Repository.GetByField.
func (r *Repository[T, F]) GetByField(ctx context.Context, field string, value any) (T, bool, error) {
	var zero T

	if !r.table.hasColumn(field) {
		err := domain.NewInvalidArgument(fmt.Sprintf("%q is not a field of %s", field, r.table.Name))
		return zero, false, r.fail(ctx, "get_by_field", err)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 LIMIT 1",
		r.table.selectList(), r.table.Name, field)

	db, err := r.handle(ctx, query)
	if err != nil {
		return zero, false, r.fail(ctx, "get_by_field", err)
	}

	entity := r.table.New()
	err = db.QueryRowContext(ctx, query, value).Scan(r.table.Targets(entity)...)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, r.fail(ctx, "get_by_field", err, slog.String("field", field))
	}

	return entity, true, nil
}

// UpdateByID implements store.Repository.UpdateByID.
// Supplying no fields is a no-op.
func (r *Repository[T, F]) UpdateByID(ctx context.Context, id int64, fields F) error {
	assignments := r.table.Assignments(fields)
	if len(assignments) == 0 {
		return nil
	}

	query, args := r.table.updateQuery(id, assignments)
	db, err := r.handle(ctx, query)
	if err != nil {
		return r.fail(ctx, "update", err)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return r.fail(ctx, "update", err, slog.Int64("id", id))
	}

	if err := CheckRowsAffected(result); err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return err
		}
		return r.fail(ctx, "update", err, slog.Int64("id", id))
	}
	return nil
}

// DeleteByID implements store.Repository.DeleteByID.
func (r *Repository[T, F]) DeleteByID(ctx context.Context, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", r.table.Name, r.table.keyColumn())

	db, err := r.handle(ctx, query)
	if err != nil {
		return r.fail(ctx, "delete", err)
	}

	result, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return r.fail(ctx, "delete", err, slog.Int64("id", id))
	}

	if err := CheckRowsAffected(result); err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return err
		}
		return r.fail(ctx, "delete", err, slog.Int64("id", id))
	}
	return nil
}

// Refresh implements store.Repository.Refresh.
func (r *Repository[T, F]) Refresh(ctx context.Context, entity T) error {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		r.table.selectList(), r.table.Name, r.table.keyColumn())

	db, err := r.handle(ctx, query)
	if err != nil {
		return r.fail(ctx, "refresh", err)
	}

	err = db.QueryRowContext(ctx, query, entity.EntityID()).Scan(r.table.Targets(entity)...)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNoRows
	}
	if err != nil {
		return r.fail(ctx, "refresh", err, slog.Int64("id", entity.EntityID()))
	}
	return nil
}
