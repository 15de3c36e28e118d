package store

import "context"

// Entity is the capability every persisted record offers the generic layers.
type Entity interface {
	EntityID() int64
}

// Repository is the persistence contract for one entity type T whose mutable
// attributes travel as F. Implementations never commit; transaction
// boundaries belong to the caller.
type Repository[T Entity, F any] interface {
	// Create inserts a new record and returns it with its generated id
	// and timestamps populated.
	Create(ctx context.Context, fields F) (T, error)

	// GetAll returns up to limit records after skipping skip, ordered by id.
	// It returns an empty slice when nothing matches.
	GetAll(ctx context.Context, skip, limit int) ([]T, error)

	// GetByField looks a record up by equality on one attribute. The boolean
	// is false when no record matches. An unknown field name is reported as
	// an invalid argument error.
	GetByField(ctx context.Context, field string, value any) (T, bool, error)

	// UpdateByID applies the supplied fields to the record with the given id.
	// ErrNoRows is returned when no record matched.
	UpdateByID(ctx context.Context, id int64, fields F) error

	// DeleteByID removes the record with the given id.
	// ErrNoRows is returned when no record matched.
	DeleteByID(ctx context.Context, id int64) error

	// Refresh reloads entity in place from the store.
	Refresh(ctx context.Context, entity T) error
}
