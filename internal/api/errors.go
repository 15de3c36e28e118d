package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/task-api/internal/api/shared"
	"github.com/phrazzld/task-api/internal/domain"
)

// internalErrorDetail is the only detail a client ever sees for a 5xx.
const internalErrorDetail = "Internal server error"

// MapErrorToStatusCode maps classified errors to HTTP status codes. Anything
// without a client-facing kind, including a nil error, is a 500.
func MapErrorToStatusCode(err error) int {
	if err == nil {
		return http.StatusInternalServerError
	}

	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnprocessableEntity:
		return http.StatusUnprocessableEntity
	case domain.KindBadRequest:
		return http.StatusBadRequest
	case domain.KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// MapErrorToCode returns the machine-readable error code for err.
func MapErrorToCode(err error) string {
	switch MapErrorToStatusCode(err) {
	case http.StatusNotFound:
		return shared.CodeNotFound
	case http.StatusUnprocessableEntity:
		return shared.CodeUnprocessableEntity
	case http.StatusBadRequest:
		return shared.CodeInvalidFormat
	case http.StatusTooManyRequests:
		return shared.CodeTooManyRequests
	default:
		return shared.CodeInternalServerError
	}
}

// GetSafeErrorMessage returns the detail that may be shown to a client.
// Internal, database and invalid-argument errors never expose their detail.
func GetSafeErrorMessage(err error) string {
	if MapErrorToStatusCode(err) == http.StatusInternalServerError {
		return internalErrorDetail
	}

	if detail := domain.DetailOf(err); detail != "" {
		return detail
	}

	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return "Not found"
	case domain.KindTooManyRequests:
		return "Too many requests"
	case domain.KindBadRequest:
		return "Invalid request"
	default:
		return "Validation error"
	}
}

// sqlStateError is implemented by driver errors that carry a SQLSTATE code.
type sqlStateError interface {
	SQLState() string
}

// HandleAPIError writes the error response for err and logs the cause.
// Client errors raised by the database, such as a constraint the request
// validation let through, are logged at WARN instead of DEBUG.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	var opts []shared.ResponseOption
	var driverErr sqlStateError
	if errors.As(err, &driverErr) {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(
		w,
		r,
		MapErrorToStatusCode(err),
		MapErrorToCode(err),
		GetSafeErrorMessage(err),
		err,
		opts...,
	)
}

// NotFound answers requests for unknown routes with the JSON error envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusNotFound, shared.CodeNotFound, "Not found")
}

// MethodNotAllowed answers known routes hit with an unsupported method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusMethodNotAllowed, shared.CodeMethodNotAllowed, "Method not allowed")
}
