package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/store"
)

// PostgreSQL error codes
const (
	// uniqueViolationCode is the PostgreSQL error code for unique constraint violations
	uniqueViolationCode = "23505"

	// foreignKeyViolationCode is the PostgreSQL error code for foreign key violations
	foreignKeyViolationCode = "23503"

	// checkViolationCode is the PostgreSQL error code for check constraint violations
	checkViolationCode = "23514"

	// notNullViolationCode is the PostgreSQL error code for not null violations
	notNullViolationCode = "23502"

	// undefinedTableCode is the PostgreSQL error code for a missing relation
	undefinedTableCode = "42P01"
)

// MapError translates a database error into the domain error taxonomy.
// Constraint violations become unprocessable entity errors; every other
// failure becomes a database error. Errors that are already classified
// pass through untouched.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var classified *domain.Error
	if errors.As(err, &classified) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return domain.NewUnprocessableEntity("Unique constraint violation", err)
		case notNullViolationCode:
			return domain.NewUnprocessableEntity("Required field cannot be null", err)
		case checkViolationCode:
			return domain.NewUnprocessableEntity("Check constraint violation", err)
		case foreignKeyViolationCode:
			return domain.NewUnprocessableEntity("Foreign key violation", err)
		case undefinedTableCode:
			return domain.NewDatabaseError("table does not exist", err)
		}
	}

	return domain.NewDatabaseError("database error", err)
}

// CheckRowsAffected examines the number of rows affected by a database operation.
// If no rows were affected, it returns store.ErrNoRows.
// This is useful for UPDATE and DELETE operations where the absence of affected rows
// typically indicates that the target record doesn't exist.
func CheckRowsAffected(result sql.Result) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return store.ErrNoRows
	}

	return nil
}
