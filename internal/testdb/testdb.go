// Package testdb opens throwaway, fully migrated sqlite databases for tests.
package testdb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Skryldev/entry-catalog/db"
	"github.com/Skryldev/entry-catalog/migrations"
)

// Open returns a migrated database backed by a file in t.TempDir. A file is
// used instead of :memory: because migrations run on their own connection.
func Open(t testing.TB, hooks ...db.Hook) *db.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "catalog.db") + "?_busy_timeout=5000"
	if err := migrations.Up("sqlite3", dsn, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	database, err := db.Open(db.Config{
		DSN:            dsn,
		DriverName:     "sqlite3",
		DefaultTimeout: 5 * time.Second,
		Hooks:          hooks,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// Clock returns a clock starting at start that advances by step on every
// call, so consecutive writes get distinct timestamps.
func Clock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(step)
		return now
	}
}
