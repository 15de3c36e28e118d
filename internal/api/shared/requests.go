package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/task-api/internal/domain"
)

// MaxBodyBytes caps the size of a decoded request body.
const MaxBodyBytes = 1 << 20

// Global validator instance for reuse
var validate = validator.New()

// DecodeJSON decodes the request body into the given struct.
//
// Syntactically broken bodies are reported as bad request errors. Bodies that
// parse but do not fit v (unknown fields, wrong types, trailing data) are
// reported as unprocessable entity errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return classifyDecodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.NewUnprocessableEntity("Request body must contain a single JSON object", err)
	}
	return nil
}

func classifyDecodeError(err error) error {
	var (
		syntaxErr   *json.SyntaxError
		typeErr     *json.UnmarshalTypeError
		maxBytesErr *http.MaxBytesError
	)

	switch {
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return domain.NewBadRequest("Malformed JSON body", err)
	case errors.Is(err, io.EOF):
		return domain.NewBadRequest("Request body is empty", err)
	case errors.As(err, &typeErr):
		return domain.NewUnprocessableEntity(
			fmt.Sprintf("Field '%s' has an invalid type, expected %s", typeErr.Field, typeErr.Type), err)
	case errors.As(err, &maxBytesErr):
		return domain.NewUnprocessableEntity("Request body is too large", err)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return domain.NewUnprocessableEntity(fmt.Sprintf("Unknown field %s", field), err)
	default:
		return domain.NewBadRequest("Malformed JSON body", err)
	}
}

// ValidateRequest validates the given struct using the validator package.
// A failure is reported as an unprocessable entity error naming the first
// offending field.
func ValidateRequest(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return domain.NewUnprocessableEntity(SanitizeValidationError(err), err)
	}
	return nil
}

// SanitizeValidationError turns validator output into a short client message.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Validation error"
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", field)
	case "max":
		return fmt.Sprintf("Field '%s' must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("Field '%s' must be at least %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("Field '%s' is invalid", field)
	}
}
