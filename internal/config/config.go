package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sitepalette/internal/palette"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const EnvPrefix = "SITEPALETTE_"

type Config struct {
	Extract      palette.ExtractOptions `yaml:"extract"`
	LogLevel     string                 `yaml:"logLevel"`
	LogFormat    string                 `yaml:"logFormat"`
	LogFile      bool                   `yaml:"logFile"`
	Concurrency  int                    `yaml:"concurrency"`
	CacheEntries int                    `yaml:"cacheEntries"`
}

func Default() Config {
	return Config{
		Extract:      palette.DefaultExtractOptions(),
		LogLevel:     "info",
		LogFormat:    "text",
		LogFile:      false,
		Concurrency:  5,
		CacheEntries: 96,
	}
}

// Load reads the YAML config at path. A missing file yields Default().
func Load(path string) (Config, error) {
	cfg := Default()

	body, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(body, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := palette.ValidateExtractOptions(cfg.Extract); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg.withDefaults(), nil
}

func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	body, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace config: %w", err)
	}

	return nil
}

// LoadDotEnv loads the given .env files into the process environment
// without overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	existing := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

// ApplyEnv overlays SITEPALETTE_* variables (and LOG_LEVEL) read via lookup.
func (c Config) ApplyEnv(lookup func(string) (string, bool)) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if value, ok := lookup("LOG_LEVEL"); ok && value != "" {
		c.LogLevel = value
	}

	stringVars := map[string]*string{
		"LOG_LEVEL":  &c.LogLevel,
		"LOG_FORMAT": &c.LogFormat,
	}
	for name, target := range stringVars {
		if value, ok := lookup(EnvPrefix + name); ok && value != "" {
			*target = strings.TrimSpace(value)
		}
	}

	intVars := map[string]*int{
		"SAMPLE_SIZE":      &c.Extract.SampleSize,
		"MIN_COLOR_COUNT":  &c.Extract.MinColorCount,
		"SPREAD_THRESHOLD": &c.Extract.SpreadThreshold,
		"WORKERS":          &c.Extract.WorkerCount,
		"CONCURRENCY":      &c.Concurrency,
		"CACHE_ENTRIES":    &c.CacheEntries,
	}
	for name, target := range intVars {
		value, ok := lookup(EnvPrefix + name)
		if !ok || value == "" {
			continue
		}
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s%s: %w", EnvPrefix, name, err)
		}
		*target = parsed
	}

	floatVars := map[string]*float64{
		"AREA_THRESHOLD":       &c.Extract.AreaThreshold,
		"SIMILARITY_THRESHOLD": &c.Extract.SimilarityThreshold,
	}
	for name, target := range floatVars {
		value, ok := lookup(EnvPrefix + name)
		if !ok || value == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s%s: %w", EnvPrefix, name, err)
		}
		*target = parsed
	}

	if value, ok := lookup(EnvPrefix + "LOG_FILE"); ok && value != "" {
		enabled, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return Config{}, fmt.Errorf("parse %sLOG_FILE: %w", EnvPrefix, err)
		}
		c.LogFile = enabled
	}

	if err := palette.ValidateExtractOptions(c.Extract); err != nil {
		return Config{}, fmt.Errorf("environment: %w", err)
	}

	return c.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	def := Default()
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = def.LogLevel
	}
	if strings.TrimSpace(c.LogFormat) == "" {
		c.LogFormat = def.LogFormat
	}
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.CacheEntries <= 0 {
		c.CacheEntries = def.CacheEntries
	}
	return c
}
