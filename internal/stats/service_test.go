package stats

import (
	"context"
	"path/filepath"
	"testing"

	"sitepalette/internal/db"
	"sitepalette/internal/palette"
	"sitepalette/internal/store"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOverviewOnEmptyDatabase(t *testing.T) {
	t.Parallel()

	database, err := db.Bootstrap(context.Background(), filepath.Join(t.TempDir(), "extractions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	overview, err := NewService(database).GetOverview(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, overview.TotalExtractions)
	assert.Nil(t, overview.LastExtractionAt)
	assert.Empty(t, overview.TopPrimaryColors)
}

func TestGetOverviewAggregatesExtractions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, err := db.Bootstrap(ctx, filepath.Join(t.TempDir(), "extractions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	repo := store.NewExtractionRepository(database)
	entries := []struct {
		key, hash, primary string
		size               int64
		synthesized        int
		durationMS         int64
	}{
		{"a|1", "a", "rgb(220,30,30)", 100, 2, 10},
		{"a|2", "a", "rgb(220,30,30)", 100, 0, 20},
		{"b|1", "b", "rgb(0,0,255)", 300, 1, 30},
	}
	for _, entry := range entries {
		result := palette.EmptyResult()
		result.PrimaryColor = lo.ToPtr(entry.primary)
		_, err := repo.Put(ctx, store.Extraction{
			CacheKey:    entry.key,
			ContentHash: entry.hash,
			SourcePath:  "/tmp/" + entry.hash + ".png",
			SourceSize:  entry.size,
			Options:     palette.DefaultExtractOptions(),
			Result:      result,
			Synthesized: entry.synthesized,
			DurationMS:  entry.durationMS,
		})
		require.NoError(t, err)
	}

	_, err = repo.Put(ctx, store.Extraction{
		CacheKey:    "c|1",
		ContentHash: "c",
		SourcePath:  "/tmp/c.png",
		Options:     palette.DefaultExtractOptions(),
		Result:      palette.EmptyResult(),
	})
	require.NoError(t, err)

	overview, err := NewService(database).GetOverview(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 4, overview.TotalExtractions)
	assert.Equal(t, 3, overview.UniqueScreenshots)
	assert.Equal(t, int64(500), overview.TotalBytes)
	assert.Equal(t, 3, overview.SynthesizedColors)
	assert.InDelta(t, 15.0, overview.AverageDurationMS, 0.001)
	require.NotNil(t, overview.LastExtractionAt)
	assert.Equal(t, []ColorStat{{Color: "rgb(220,30,30)", Count: 2}}, overview.TopPrimaryColors)
}

func TestNormalizeTopLimit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, defaultTopLimit, normalizeTopLimit(0))
	assert.Equal(t, 3, normalizeTopLimit(3))
	assert.Equal(t, maxTopLimit, normalizeTopLimit(1000))
}
