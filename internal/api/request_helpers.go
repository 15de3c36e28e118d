package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/store"
)

// Pagination bounds for list endpoints.
const (
	DefaultSkip  = 0
	DefaultLimit = 100
	MaxLimit     = 100
)

// taskIDParam is the chi path parameter holding a task id.
const taskIDParam = "id"

// getPathID extracts a numeric id from the URL path parameters.
func getPathID(r *http.Request, paramName string) (int64, error) {
	raw := chi.URLParam(r, paramName)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.NewBadRequest("Expected number, but received string", err)
	}
	return id, nil
}

// getPagination reads skip and limit from the query string. Non-numeric
// values are bad requests; values outside the bounds are unprocessable.
func getPagination(r *http.Request) (skip, limit int, err error) {
	query := r.URL.Query()

	skip, err = queryInt(query.Get("skip"), "skip", DefaultSkip)
	if err != nil {
		return 0, 0, err
	}
	limit, err = queryInt(query.Get("limit"), "limit", DefaultLimit)
	if err != nil {
		return 0, 0, err
	}

	if skip < 0 {
		return 0, 0, domain.NewUnprocessableEntity("Query parameter 'skip' must be greater than or equal to 0", nil)
	}
	if limit < 1 || limit > MaxLimit {
		return 0, 0, domain.NewUnprocessableEntity(
			fmt.Sprintf("Query parameter 'limit' must be between 1 and %d", MaxLimit), nil)
	}
	return skip, limit, nil
}

func queryInt(raw, name string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewBadRequest(
			fmt.Sprintf("Query parameter '%s' expected number, but received string", name), err)
	}
	return n, nil
}

// getSession returns the session opened for this request by the scope
// middleware. A missing session is a wiring fault.
func getSession(r *http.Request) (*store.Session, error) {
	s, err := store.SessionFrom(r.Context())
	if err != nil {
		return nil, domain.NewInternal(err)
	}
	return s, nil
}
