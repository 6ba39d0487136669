package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"sitepalette/internal/db"
	"sitepalette/internal/palette"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *ExtractionRepository {
	t.Helper()

	database, err := db.Bootstrap(context.Background(), filepath.Join(t.TempDir(), "extractions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return NewExtractionRepository(database)
}

func sampleResult() palette.Result {
	return palette.Result{
		PrimaryColor:    lo.ToPtr("rgb(220,30,30)"),
		SecondaryColor:  lo.ToPtr("rgb(20,20,20)"),
		AccentColor:     lo.ToPtr("rgb(220,30,30)"),
		TextColor:       lo.ToPtr("rgb(20,20,20)"),
		BackgroundColor: lo.ToPtr("rgb(20,20,20)"),
		MutedColor:      lo.ToPtr("rgba(220,30,30,0.5)"),
		Grayscale:       []string{"rgb(87,87,87)"},
		AllColors: []palette.FormattedColor{
			{Hex: "#dc1e1e", RGB: "rgb(220,30,30)", Area: 0.8},
			{Hex: "#141414", RGB: "rgb(20,20,20)", Area: 0.6},
		},
	}
}

func TestPutThenGetRoundTripsResult(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newTestRepository(t)

	stored, err := repo.Put(ctx, Extraction{
		CacheKey:    "abc|opts",
		ContentHash: "abc",
		SourcePath:  "/tmp/page.png",
		SourceSize:  2048,
		Options:     palette.DefaultExtractOptions(),
		Result:      sampleResult(),
		Synthesized: 1,
		DurationMS:  12,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
	assert.NotEmpty(t, stored.CreatedAt)

	loaded, err := repo.GetByKey(ctx, "abc|opts")
	require.NoError(t, err)
	assert.Equal(t, stored, loaded)
	assert.Equal(t, sampleResult(), loaded.Result)
	assert.Equal(t, 1, loaded.Synthesized)
}

func TestPutReplacesExistingKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newTestRepository(t)

	first, err := repo.Put(ctx, Extraction{CacheKey: "k", ContentHash: "h", SourcePath: "a.png", Result: sampleResult()})
	require.NoError(t, err)

	second, err := repo.Put(ctx, Extraction{CacheKey: "k", ContentHash: "h", SourcePath: "b.png", Result: palette.EmptyResult()})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "b.png", second.SourcePath)
	assert.True(t, second.Result.Empty())
	assert.NotNil(t, second.Result.AllColors)
}

func TestGetMissingReturnsSentinel(t *testing.T) {
	t.Parallel()

	_, err := newTestRepository(t).GetByKey(context.Background(), "missing")
	require.ErrorIs(t, err, ErrExtractionNotFound)
	assert.NotErrorIs(t, err, sql.ErrNoRows)
}

func TestListPruneAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newTestRepository(t)

	timestamps := []string{"2026-01-01T00:00:00Z", "2026-01-02T00:00:00Z", "2026-01-03T00:00:00Z"}
	for index, createdAt := range timestamps {
		_, err := repo.Put(ctx, Extraction{
			CacheKey:    createdAt,
			ContentHash: lo.Ternary(index == 0, "shared", "other"),
			SourcePath:  createdAt + ".png",
			Result:      sampleResult(),
			CreatedAt:   createdAt,
		})
		require.NoError(t, err)
	}

	listed, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, timestamps[2], listed[0].CreatedAt)

	shared, err := repo.ListByContentHash(ctx, "SHARED")
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, timestamps[0], shared[0].CreatedAt)

	removed, err := repo.Prune(ctx, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	require.NoError(t, repo.Delete(ctx, listed[0].ID))
	require.ErrorIs(t, repo.Delete(ctx, listed[0].ID), ErrExtractionNotFound)

	remaining, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, timestamps[1], remaining[0].CreatedAt)
}

func TestListByContentHashReachesPastListLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newTestRepository(t)

	_, err := repo.Put(ctx, Extraction{
		CacheKey:    "old|opts",
		ContentHash: "old",
		SourcePath:  "old.png",
		Result:      sampleResult(),
		CreatedAt:   "2020-01-01T00:00:00Z",
	})
	require.NoError(t, err)

	tx, err := repo.db.BeginTx(ctx, nil)
	require.NoError(t, err)
	for index := 0; index < maxListLimit+20; index++ {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO extractions(id, cache_key, content_hash, source_path, options_json, result_json, created_at)
			 VALUES (?, ?, 'newer', 'newer.png', '{}', '{}', ?)`,
			fmt.Sprintf("id-%04d", index),
			fmt.Sprintf("newer|%d", index),
			fmt.Sprintf("2026-01-01T00:00:%02dZ", index%60),
		)
		require.NoError(t, err)
	}
	require.NoError(t, tx.Commit())

	matches, err := repo.ListByContentHash(ctx, " OLD ")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "old.png", matches[0].SourcePath)

	newer, err := repo.ListByContentHash(ctx, "newer")
	require.NoError(t, err)
	assert.Len(t, newer, maxListLimit+20)
}
