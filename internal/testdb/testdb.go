// Package testdb opens a migrated Postgres database for integration tests.
// Tests skip when LOSTFOUND_TEST_DSN is unset, unless LOSTFOUND_TEST_REQUIRE_DB
// is set, in which case they fail.
package testdb

import (
	"database/sql"
	"os"
	"sync"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/lostfound/internal/migrations"
)

const (
	// EnvDSN names the environment variable holding the test database URL.
	EnvDSN = "LOSTFOUND_TEST_DSN"
	// EnvRequire turns a missing EnvDSN into a test failure.
	EnvRequire = "LOSTFOUND_TEST_REQUIRE_DB"
)

var (
	migrateOnce sync.Once
	migrateErr  error
)

// Open returns a connection to the test database with every migration
// applied, closing it when t finishes. Rows are not cleaned up; tests
// isolate themselves with fresh random ids.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		if os.Getenv(EnvRequire) != "" {
			t.Fatalf("%s is set but %s is empty", EnvRequire, EnvDSN)
		}
		t.Skipf("%s not set; skipping integration test", EnvDSN)
	}

	migrateOnce.Do(func() {
		migrateErr = migrations.Up(dsn)
	})
	if migrateErr != nil {
		t.Fatalf("apply migrations: %v", migrateErr)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Ping(); err != nil {
		t.Fatalf("ping test database: %v", err)
	}
	return db
}
