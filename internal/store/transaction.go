package store

import (
	"context"
	"log/slog"

	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/platform/logger"
)

// Transactional runs fn inside a transaction on the session's primary connection.
//
// When the session already has an active transaction fn simply joins it and the
// outer call decides its outcome. Otherwise a new transaction is started, which
// is committed when fn succeeds and rolled back when fn returns an error or
// panics. The error returned by fn is passed back unchanged; a failed rollback
// is only logged. A failed commit is reported as a database error.
func Transactional[T any](ctx context.Context, s *Session, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if s.InTransaction() {
		return fn(ctx)
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	tx, err := s.beginTx(ctx)
	if err != nil {
		log.Error("failed to begin transaction",
			slog.String("error", err.Error()))
		return zero, domain.NewDatabaseError("failed to begin transaction", err)
	}

	// Set up defer to handle panics and roll back the transaction if needed
	defer func() {
		if p := recover(); p != nil {
			if txErr := tx.Rollback(); txErr != nil {
				log.Error("failed to roll back transaction after panic",
					slog.String("error", txErr.Error()),
					slog.Any("panic", p))
			} else {
				log.Error("rolled back transaction after panic",
					slog.Any("panic", p))
			}
			s.clearTx(tx)
			// ALLOW-PANIC: Propagating caught panic from transaction
			panic(p)
		}
	}()

	result, err := fn(ctx)
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			log.Error("failed to roll back transaction",
				slog.String("rollback_error", rollbackErr.Error()),
				slog.String("original_error", err.Error()))
		} else {
			log.Debug("rolled back transaction due to error",
				slog.String("error", err.Error()))
		}
		s.clearTx(tx)
		return zero, err
	}

	err = tx.Commit()
	s.clearTx(tx)
	if err != nil {
		log.Error("failed to commit transaction",
			slog.String("error", err.Error()))
		return zero, domain.NewDatabaseError("failed to commit transaction", err)
	}

	log.Debug("transaction committed successfully")
	return result, nil
}

// RunInTransaction is Transactional for units of work that produce no value.
func RunInTransaction(ctx context.Context, s *Session, fn func(ctx context.Context) error) error {
	_, err := Transactional(ctx, s, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
