// Package testdb provides a real PostgreSQL database for integration tests.
//
// Helpers are compiled only with the integration build tag. A database is
// taken from TASKAPI_TEST_DATABASE_URL when set; otherwise a disposable
// PostgreSQL container is started with testcontainers-go. Either way the
// embedded migrations are applied before the database is handed out.
package testdb
