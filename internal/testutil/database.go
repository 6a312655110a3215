// Package testutil provides shared fixtures for the front desk tests: an
// in-memory preference store, a fake booking backend over HTTP and a ready
// session on top of both.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/frontdesk/internal/service"
	"github.com/Veraticus/frontdesk/internal/storage"
)

// TestDB is an in-memory preference database.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a migrated in-memory database. It is closed when the
// test ends.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// Preferences returns the preference store of userID.
func (db *TestDB) Preferences(userID string) service.Preferences {
	return db.Storage.Preferences(userID)
}

// MustSetActiveLocation persists id as the active location of userID.
func (db *TestDB) MustSetActiveLocation(userID string, id int64) {
	db.t.Helper()
	if err := db.Preferences(userID).SetActiveLocation(context.Background(), id); err != nil {
		db.t.Fatalf("failed to persist active location: %v", err)
	}
}
