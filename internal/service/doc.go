// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// The generic Controller owns the transaction boundaries of every operation:
// writes run through store.Transactional on the caller's session, reads run
// outside a transaction so they can be served by the replica. Controllers
// translate store failures into the errors the API exposes: a missing record
// becomes a not-found error naming the entity, and database faults are widened
// to internal server errors.
package service
