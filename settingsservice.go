package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sitepalette/internal/config"

	"gopkg.in/yaml.v2"
)

// SettingsService manages the on-disk YAML config.
type SettingsService struct {
	configPath string
}

func NewSettingsService(configPath string) *SettingsService {
	return &SettingsService{configPath: configPath}
}

func (s *SettingsService) Path() string {
	return s.configPath
}

// Generate writes the default config. An existing file is kept unless
// overwrite is set.
func (s *SettingsService) Generate(overwrite bool) (string, error) {
	target, err := normalizePath(s.configPath)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(target); err == nil && !overwrite {
		return "", fmt.Errorf("config %s already exists", target)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat config: %w", err)
	}

	if err := config.Save(target, config.Default()); err != nil {
		return "", err
	}

	return target, nil
}

func (s *SettingsService) Render(settings config.Config) (string, error) {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(data), nil
}

func normalizePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is required")
	}

	absPath, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	return filepath.Clean(absPath), nil
}
