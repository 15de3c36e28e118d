package store

import "errors"

// Common store errors used across all store implementations.
var (
	// ErrNoRows is returned by targeted updates and deletes that matched nothing.
	ErrNoRows = errors.New("no rows affected")

	// ErrSessionClosed is returned when a statement is routed through a session
	// whose request scope has already ended.
	ErrSessionClosed = errors.New("session closed")

	// ErrNoSession is returned when a request context carries no session.
	ErrNoSession = errors.New("no session in context")
)
