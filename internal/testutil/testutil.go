// Package testutil provides an isolated, migrated in-memory database for
// tests that need a real store.
package testutil

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/monocle-dev/bugtrack/db"
	"github.com/monocle-dev/bugtrack/internal/config"
	"github.com/monocle-dev/bugtrack/internal/logging"
)

// NewDB opens a fresh in-memory SQLite database with foreign keys enabled
// and the full schema migrated. The database is closed when the test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}

	database, err := db.Connect(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close(database)
	})

	if err := db.MigrateDatabase(database); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return database
}
