package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_FreshDatabase(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	applied, err := store.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), applied)

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	var indexCount int
	err = store.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='index' AND name='idx_document_history_name'
	`).Scan(&indexCount)
	require.NoError(t, err)
	assert.Equal(t, 1, indexCount)
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	applied, err := store.Migrate(ctx)
	require.NoError(t, err)
	assert.Zero(t, applied)
}

func TestMigrate_VersionsAreSequential(t *testing.T) {
	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version, "migration %q", m.Description)
	}
	assert.Equal(t, migrations[len(migrations)-1].Version, ExpectedSchemaVersion)
}
