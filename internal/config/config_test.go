package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveThenLoadKeepsOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)
	cfg := Default()
	cfg.Extract.MinColorCount = 7
	cfg.Extract.SimilarityThreshold = 35
	cfg.LogFormat = "json"

	require.NoError(t, Save(path, cfg))
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Extract.MinColorCount)
	assert.InDelta(t, 35, loaded.Extract.SimilarityThreshold, 1e-9)
	assert.Equal(t, "json", loaded.LogFormat)
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("extract:\n  minColorCount: 3\nconcurrency: 0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Extract.MinColorCount)
	assert.Equal(t, 5, cfg.Concurrency)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("extract: [unterminated"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestApplyEnvOverridesValues(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"LOG_LEVEL":                       "debug",
		EnvPrefix + "MIN_COLOR_COUNT":      "9",
		EnvPrefix + "SIMILARITY_THRESHOLD": "12.5",
		EnvPrefix + "LOG_FORMAT":           "json",
		EnvPrefix + "LOG_FILE":             "true",
	}
	lookup := func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}

	cfg, err := Default().ApplyEnv(lookup)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9, cfg.Extract.MinColorCount)
	assert.InDelta(t, 12.5, cfg.Extract.SimilarityThreshold, 1e-9)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.LogFile)
}

func TestApplyEnvRejectsBadNumbers(t *testing.T) {
	t.Parallel()

	lookup := func(key string) (string, bool) {
		if key == EnvPrefix+"SAMPLE_SIZE" {
			return "huge", true
		}
		return "", false
	}

	_, err := Default().ApplyEnv(lookup)
	require.Error(t, err)
}

func TestLoadDotEnvSkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(EnvPrefix+"DOTENV_LOADED=loaded\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv(EnvPrefix + "DOTENV_LOADED") })

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), envFile))
	assert.Equal(t, "loaded", os.Getenv(EnvPrefix+"DOTENV_LOADED"))
}

func TestResolvePathsCreatesDirectories(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "data")
	paths, err := ResolvePaths("sitepalette", base)
	require.NoError(t, err)

	assert.Equal(t, base, paths.BaseDir)
	assert.Equal(t, filepath.Join(base, ConfigFileName), paths.ConfigPath)
	for _, dir := range []string{paths.BaseDir, paths.ScreenshotDir, paths.LogDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestLoadRejectsOutOfRangeMinColorCount(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("extract:\n  minColorCount: 40\n"), 0o644))

	_, err := Load(path)
	require.ErrorContains(t, err, "min color count 40")
}

func TestApplyEnvRejectsOutOfRangeOptions(t *testing.T) {
	t.Parallel()

	for name, value := range map[string]string{
		"MIN_COLOR_COUNT":      "40",
		"SAMPLE_SIZE":          "4",
		"AREA_THRESHOLD":       "1.5",
		"SIMILARITY_THRESHOLD": "-1",
	} {
		lookup := func(key string) (string, bool) {
			if key == EnvPrefix+name {
				return value, true
			}
			return "", false
		}

		_, err := Default().ApplyEnv(lookup)
		assert.Error(t, err, name)
	}
}
