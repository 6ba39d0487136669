package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	ConfigFileName = "sitepalette.yaml"
	dbFileName     = "extractions.db"
)

type Paths struct {
	BaseDir       string
	DBPath        string
	ConfigPath    string
	ScreenshotDir string
	LogDir        string
}

// ResolvePaths uses dataDir when set, otherwise the user config dir.
func ResolvePaths(appSlug string, dataDir string) (Paths, error) {
	baseDir := strings.TrimSpace(dataDir)
	if baseDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return Paths{}, fmt.Errorf("resolve user config dir: %w", err)
		}
		baseDir = filepath.Join(configDir, appSlug)
	}

	baseDir, err := filepath.Abs(filepath.Clean(baseDir))
	if err != nil {
		return Paths{}, fmt.Errorf("resolve data dir: %w", err)
	}

	paths := Paths{
		BaseDir:       baseDir,
		DBPath:        filepath.Join(baseDir, dbFileName),
		ConfigPath:    filepath.Join(baseDir, ConfigFileName),
		ScreenshotDir: filepath.Join(baseDir, "screenshots"),
		LogDir:        filepath.Join(baseDir, "logs"),
	}

	for _, dir := range []string{paths.BaseDir, paths.ScreenshotDir, paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Paths{}, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	return paths, nil
}
