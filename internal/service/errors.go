package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/task-api/internal/domain"
)

// notFound builds the error reported when no entity has the given id.
func notFound(entity string, id int64) error {
	return domain.NewNotFound(fmt.Sprintf("%s with id: %d does not exist", entity, id))
}

// widen converts store faults into internal server errors. Errors the client
// can act on (not found, unprocessable entity, bad request) pass through.
func widen(err error) error {
	if err == nil {
		return nil
	}

	var classified *domain.Error
	if !errors.As(err, &classified) {
		return domain.NewInternal(err)
	}
	if classified.Kind == domain.KindDatabase {
		return domain.NewInternal(err)
	}
	return err
}
