package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/platform/logger"
	"github.com/phrazzld/task-api/internal/store"
)

// Record is an entity that can tell whether a set of field values would
// change it.
type Record[F any] interface {
	store.Entity
	Matches(fields F) bool
}

// RepositoryFactory binds a repository to the router of one session.
type RepositoryFactory[T store.Entity, F any] func(router store.Router) store.Repository[T, F]

// Controller implements create, list, get, update and delete for one entity
// type on top of its repository.
type Controller[T Record[F], F any] struct {
	entity  string
	newRepo RepositoryFactory[T, F]
	logger  *slog.Logger
}

// NewController creates a controller for the entity named entity. The name
// appears in not-found messages, e.g. "Task with id: 3 does not exist".
func NewController[T Record[F], F any](entity string, newRepo RepositoryFactory[T, F], logger *slog.Logger) *Controller[T, F] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller[T, F]{
		entity:  entity,
		newRepo: newRepo,
		logger:  logger.With(slog.String("component", "controller"), slog.String("entity", entity)),
	}
}

// Create stores a new entity in its own transaction.
func (c *Controller[T, F]) Create(ctx context.Context, s *store.Session, fields F) (T, error) {
	repo := c.newRepo(s)

	created, err := store.Transactional(ctx, s, func(ctx context.Context) (T, error) {
		return repo.Create(ctx, fields)
	})
	if err != nil {
		return created, c.fail(ctx, "create", err)
	}
	return created, nil
}

// GetAll returns one page of entities. It runs outside a transaction.
func (c *Controller[T, F]) GetAll(ctx context.Context, s *store.Session, skip, limit int) ([]T, error) {
	entities, err := c.newRepo(s).GetAll(ctx, skip, limit)
	if err != nil {
		return nil, c.fail(ctx, "get_all", err)
	}
	return entities, nil
}

// GetByID returns the entity with the given id or a not-found error.
func (c *Controller[T, F]) GetByID(ctx context.Context, s *store.Session, id int64) (T, error) {
	entity, err := c.getByID(ctx, c.newRepo(s), id)
	if err != nil {
		return entity, c.fail(ctx, "get_by_id", err)
	}
	return entity, nil
}

// Update applies fields to the entity with the given id and returns the
// stored result. An update that would change nothing is rejected.
func (c *Controller[T, F]) Update(ctx context.Context, s *store.Session, id int64, fields F) (T, error) {
	repo := c.newRepo(s)

	updated, err := store.Transactional(ctx, s, func(ctx context.Context) (T, error) {
		var zero T

		current, err := c.getByID(ctx, repo, id)
		if err != nil {
			return zero, err
		}

		if current.Matches(fields) {
			return zero, domain.NewUnprocessableEntity("No updates provided", nil)
		}

		if err := repo.UpdateByID(ctx, id, fields); err != nil {
			if errors.Is(err, store.ErrNoRows) {
				return zero, notFound(c.entity, id)
			}
			return zero, err
		}

		fresh, err := c.getByID(ctx, repo, id)
		if err != nil {
			return zero, err
		}

		if err := repo.Refresh(ctx, fresh); err != nil {
			if errors.Is(err, store.ErrNoRows) {
				return zero, notFound(c.entity, id)
			}
			return zero, err
		}
		return fresh, nil
	})
	if err != nil {
		return updated, c.fail(ctx, "update", err)
	}
	return updated, nil
}

// Delete removes the entity with the given id. It reports true on success.
func (c *Controller[T, F]) Delete(ctx context.Context, s *store.Session, id int64) (bool, error) {
	repo := c.newRepo(s)

	err := store.RunInTransaction(ctx, s, func(ctx context.Context) error {
		if _, err := c.getByID(ctx, repo, id); err != nil {
			return err
		}

		if err := repo.DeleteByID(ctx, id); err != nil {
			// Lost a race with a concurrent delete.
			if errors.Is(err, store.ErrNoRows) {
				return notFound(c.entity, id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return false, c.fail(ctx, "delete", err)
	}
	return true, nil
}

func (c *Controller[T, F]) getByID(ctx context.Context, repo store.Repository[T, F], id int64) (T, error) {
	entity, ok, err := repo.GetByField(ctx, "id", id)
	if err != nil {
		return entity, err
	}
	if !ok {
		return entity, notFound(c.entity, id)
	}
	return entity, nil
}

// fail logs err and returns the error the caller should see.
func (c *Controller[T, F]) fail(ctx context.Context, operation string, err error) error {
	widened := widen(err)

	log := logger.FromContextOrDefault(ctx, c.logger)
	if domain.KindOf(widened) == domain.KindInternal {
		log.Error("operation failed",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
	} else {
		log.Debug("operation rejected",
			slog.String("operation", operation),
			slog.String("error_kind", domain.KindOf(widened).String()))
	}
	return widened
}
