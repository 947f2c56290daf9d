package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/cordon/internal/common"
	"github.com/Veraticus/cordon/internal/service"
)

// Supported backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Open returns a ready document store for backend. For sqlite, path is the
// database file and pending migrations are applied; for json, path is the
// directory holding the documents.
func Open(ctx context.Context, backend, path string) (service.DocumentStore, error) {
	switch backend {
	case BackendJSON, "":
		store, err := NewFileStore(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrPersistence, err)
		}
		return store, nil
	case BackendSQLite:
		store, err := NewSQLiteStorage(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrPersistence, err)
		}
		if _, err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("%w: %w", common.ErrPersistence, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %w %q", common.ErrInvalidConfig, ErrUnknownBackend, backend)
	}
}
