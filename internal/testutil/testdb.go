package testutil

import (
	"path/filepath"
	"testing"

	"github.com/andy/tallysheet/internal/db"
)

// TestKey encrypts every test database.
const TestKey = "test-key"

// NewTestDB creates an encrypted database file under t.TempDir() with all
// migrations applied. It is closed when the test completes.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "tallysheet.db"), TestKey)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	if err := database.RunMigrations(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return database
}

// NewTestUoW creates a UnitOfWork backed by the given test database.
func NewTestUoW(database *db.DB) db.UnitOfWork {
	return db.NewUnitOfWork(database)
}
