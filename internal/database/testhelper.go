package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

// OpenTestSQLite opens a SQLite store in t.TempDir(), applies all
// migrations and registers cleanup.
func OpenTestSQLite(t testing.TB) *sql.DB {
	t.Helper()

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open test sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := RunMigrations(context.Background(), db, DriverSQLite); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}
