//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"os"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/task-api/internal/platform/postgres"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// URLEnvVar names the variable holding an externally managed test database.
const URLEnvVar = "TASKAPI_TEST_DATABASE_URL"

// dockerAvailable checks whether the Docker daemon is reachable.
// testcontainers-go panics rather than returning an error when Docker
// is not installed, so we probe for it up-front.
func dockerAvailable() bool {
	return exec.Command("docker", "info").Run() == nil
}

// DatabaseURL returns a connection string for a migrated test database,
// skipping the test when none can be provided.
func DatabaseURL(t *testing.T) string {
	t.Helper()

	if url := os.Getenv(URLEnvVar); url != "" {
		return url
	}

	if !dockerAvailable() {
		t.Skip("Docker not available and " + URLEnvVar + " not set, skipping integration tests")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("taskapi"),
		tcpostgres.WithUsername("taskapi"),
		tcpostgres.WithPassword("taskapi"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("failed to start PostgreSQL container: %v", err)
	}

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}
	return url
}

var migrateOnce sync.Map

// Open returns a pool on a freshly truncated, migrated test database.
// The pool is closed when the test ends.
func Open(t *testing.T) (*sql.DB, string) {
	t.Helper()

	url := DatabaseURL(t)

	db, err := sql.Open(postgres.DriverName, url)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("test database unreachable: %v", err)
	}

	if _, done := migrateOnce.LoadOrStore(url, true); !done {
		if err := postgres.Migrate(ctx, db, postgres.MigrateUp, nil); err != nil {
			migrateOnce.Delete(url)
			t.Fatalf("failed to migrate test database: %v", err)
		}
	}

	Reset(t, db)
	return db, url
}

// Reset removes every task and restarts the id sequence.
func Reset(t *testing.T, db *sql.DB) {
	t.Helper()

	if _, err := db.Exec("TRUNCATE tasks RESTART IDENTITY"); err != nil {
		t.Fatalf("failed to reset test database: %v", err)
	}
}

// WithTx runs fn inside a transaction that is always rolled back, so the
// test leaves no rows behind.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			t.Logf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
