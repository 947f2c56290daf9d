// Package testutil provides shared fixtures for package tests: stores,
// a small zone directory and a scripted recognizer.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/cordon/internal/storage"
)

// SetupTestStore creates a migrated in-memory SQLite document store.
// It is closed automatically when the test ends.
func SetupTestStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// SetupFileStore creates a JSON document store in a temporary directory.
func SetupFileStore(t *testing.T) *storage.FileStore {
	t.Helper()

	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create file store: %v", err)
	}
	return store
}
