package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapAppliesMigrationsOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "extractions.db")

	database, err := Bootstrap(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, RunMigrations(ctx, database))

	var applied int
	require.NoError(t, database.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, 2, applied)

	var columns int
	require.NoError(t, database.QueryRowContext(
		ctx,
		"SELECT COUNT(1) FROM pragma_table_info('extractions') WHERE name IN ('cache_key', 'synthesized', 'duration_ms')",
	).Scan(&columns))
	assert.Equal(t, 3, columns)
	require.NoError(t, database.Close())

	reopened, err := Bootstrap(ctx, dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	require.NoError(t, reopened.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, 2, applied)
}
