// Package store defines the persistence contracts of the service and the
// request-scoped unit of work that carries them out.
//
// A Session is opened for every inbound request. It lazily pins at most one
// connection from each pool, routes every statement to the primary or the
// replica according to its kind, and owns the transaction started by
// Transactional. Repositories never open connections themselves; they ask the
// Router for a DBTX per statement.
package store
