// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an Error. The API layer maps each kind to an HTTP status
// and a machine-readable code.
type Kind uint8

// Error kinds.
const (
	// KindInternal is an unexpected fault. Never exposes its detail to clients.
	KindInternal Kind = iota
	// KindNotFound means the requested entity does not exist.
	KindNotFound
	// KindUnprocessableEntity covers constraint violations and no-op updates.
	KindUnprocessableEntity
	// KindBadRequest covers malformed input such as a non-numeric path id.
	KindBadRequest
	// KindDatabase is a store infrastructure or programming fault.
	KindDatabase
	// KindInvalidArgument is caller misuse, e.g. an unknown field name.
	// Reaching the API boundary with this kind is a defect.
	KindInvalidArgument
	// KindTooManyRequests is raised by admission control.
	KindTooManyRequests
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnprocessableEntity:
		return "unprocessable_entity"
	case KindBadRequest:
		return "bad_request"
	case KindDatabase:
		return "database"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindTooManyRequests:
		return "too_many_requests"
	default:
		return "internal"
	}
}

// Error is a classified failure. Detail is the human-readable message meant
// for clients; Err is the underlying cause and is only ever logged.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped cause to support errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so that the
// sentinels below match any error of their kind regardless of detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrUnprocessableEntity = &Error{Kind: KindUnprocessableEntity}
	ErrBadRequest          = &Error{Kind: KindBadRequest}
	ErrDatabase            = &Error{Kind: KindDatabase}
	ErrInternal            = &Error{Kind: KindInternal}
	ErrInvalidArgument     = &Error{Kind: KindInvalidArgument}
	ErrTooManyRequests     = &Error{Kind: KindTooManyRequests}
)

// NewNotFound creates a not-found error with the given detail.
func NewNotFound(detail string) error {
	return &Error{Kind: KindNotFound, Detail: detail}
}

// NewUnprocessableEntity creates a constraint or no-op error.
func NewUnprocessableEntity(detail string, err error) error {
	return &Error{Kind: KindUnprocessableEntity, Detail: detail, Err: err}
}

// NewBadRequest creates a malformed-input error.
func NewBadRequest(detail string, err error) error {
	return &Error{Kind: KindBadRequest, Detail: detail, Err: err}
}

// NewDatabaseError creates a store fault error.
func NewDatabaseError(detail string, err error) error {
	return &Error{Kind: KindDatabase, Detail: detail, Err: err}
}

// NewInternal widens err into an internal server error.
func NewInternal(err error) error {
	return &Error{Kind: KindInternal, Detail: "Internal server error", Err: err}
}

// NewInvalidArgument creates a caller-misuse error.
func NewInvalidArgument(detail string) error {
	return &Error{Kind: KindInvalidArgument, Detail: detail}
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// KindInternal when err carries no classification.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// DetailOf returns the detail of the outermost *Error in err's chain.
func DetailOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return ""
}
