package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"sitepalette/internal/palette"
	"sitepalette/internal/screenshot"
	"sitepalette/internal/store"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const defaultThemeCacheEntries = 96

const defaultBatchConcurrency = 5

type themeCacheEntry struct {
	extraction store.Extraction
	cachedAt   time.Time
}

// ThemeReport is one screenshot's outcome. Result always has the full
// record shape, even when Error is set.
type ThemeReport struct {
	Source      string         `json:"source"`
	ContentHash string         `json:"contentHash,omitempty"`
	SourceSize  int64          `json:"sourceSize"`
	Cached      bool           `json:"cached"`
	Result      palette.Result `json:"result"`
	SiteStyle   SiteStyle      `json:"siteStyle"`
	Error       string         `json:"error,omitempty"`
}

// SiteStyle mirrors the summary block downstream theming consumes.
type SiteStyle struct {
	Colors []string `json:"colors"`
	Grays  []string `json:"grays"`
}

type ThemeService struct {
	extractor  *palette.Extractor
	repo       *store.ExtractionRepository
	options    palette.ExtractOptions
	maxEntries int
	useCache   bool
	cacheMu    sync.RWMutex
	cache      map[string]themeCacheEntry
}

func NewThemeService(extractor *palette.Extractor, repo *store.ExtractionRepository, options palette.ExtractOptions, maxEntries int) *ThemeService {
	if maxEntries <= 0 {
		maxEntries = defaultThemeCacheEntries
	}
	return &ThemeService{
		extractor:  extractor,
		repo:       repo,
		options:    palette.NormalizeExtractOptions(options),
		maxEntries: maxEntries,
		useCache:   true,
		cache:      make(map[string]themeCacheEntry),
	}
}

// DisableCache forces every Generate call to re-run extraction.
func (s *ThemeService) DisableCache() {
	s.useCache = false
}

func (s *ThemeService) Options() palette.ExtractOptions {
	return s.options
}

// Generate never returns a nil report: failures carry the empty result.
func (s *ThemeService) Generate(ctx context.Context, screenshotPath string) (ThemeReport, error) {
	report := ThemeReport{Source: screenshotPath, Result: palette.EmptyResult()}

	resolvedPath, err := normalizePath(screenshotPath)
	if err != nil {
		return s.failed(report, err)
	}
	report.Source = resolvedPath

	if info, err := os.Stat(resolvedPath); err != nil {
		return s.failed(report, fmt.Errorf("screenshot not found: %w", err))
	} else if info.IsDir() {
		return s.failed(report, errors.New("screenshot path is a directory"))
	}

	fingerprint, err := screenshot.Identify(resolvedPath)
	if err != nil {
		return s.failed(report, err)
	}
	report.ContentHash = fingerprint.Hash
	report.SourceSize = fingerprint.Size

	cacheKey := buildThemeCacheKey(fingerprint.Hash, s.options)
	if s.useCache {
		if cached, ok := s.loadCached(ctx, cacheKey); ok {
			log.WithField("source", resolvedPath).Debug("palette cache hit")
			report.Cached = true
			return s.completed(report, cached.Result), nil
		}
		log.WithField("source", resolvedPath).Debug("palette cache miss")
	}

	startedAt := time.Now()
	extraction, err := s.extractor.ExtractFromPath(resolvedPath, s.options)
	if err != nil {
		return s.failed(report, fmt.Errorf("generate palette: %w", err))
	}

	stored := store.Extraction{
		CacheKey:    cacheKey,
		ContentHash: fingerprint.Hash,
		SourcePath:  resolvedPath,
		SourceSize:  fingerprint.Size,
		Options:     extraction.Options,
		Result:      extraction.Result,
		Synthesized: extraction.Synthesized,
		DurationMS:  time.Since(startedAt).Milliseconds(),
	}
	if s.useCache {
		s.storeCached(ctx, stored)
	}

	log.WithFields(log.Fields{
		"source":      resolvedPath,
		"colors":      len(extraction.Result.AllColors),
		"synthesized": extraction.Synthesized,
		"duration":    time.Since(startedAt).Round(time.Millisecond),
	}).Info("extraction successful")

	return s.completed(report, extraction.Result), nil
}

// GenerateBatch runs Generate over paths with at most concurrency in flight.
// Reports keep the input order; a failed path only affects its own report.
func (s *ThemeService) GenerateBatch(ctx context.Context, paths []string, concurrency int) []ThemeReport {
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}

	reports := make([]ThemeReport, len(paths))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	for index, screenshotPath := range paths {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				reports[index], _ = s.failed(ThemeReport{Source: screenshotPath}, err)
				return nil
			}
			reports[index], _ = s.Generate(groupCtx, screenshotPath)
			return nil
		})
	}
	_ = group.Wait()

	return reports
}

func (s *ThemeService) completed(report ThemeReport, result palette.Result) ThemeReport {
	report.Result = result
	report.SiteStyle = buildSiteStyle(result)
	return report
}

func (s *ThemeService) failed(report ThemeReport, err error) (ThemeReport, error) {
	log.WithField("source", report.Source).Errorf("extraction failed: %v", err)
	report.Error = err.Error()
	report.Result = palette.EmptyResult()
	report.SiteStyle = buildSiteStyle(report.Result)
	return report, err
}

func buildSiteStyle(result palette.Result) SiteStyle {
	style := SiteStyle{Colors: []string{}, Grays: []string{}}
	for _, value := range []*string{result.PrimaryColor, result.MutedColor} {
		if value != nil && *value != "" {
			style.Colors = append(style.Colors, *value)
		}
	}
	style.Grays = append(style.Grays, result.Grayscale...)
	return style
}

func buildThemeCacheKey(contentHash string, options palette.ExtractOptions) string {
	return fmt.Sprintf(
		"%s|ss:%d|at:%0.4f|sim:%0.4f|min:%d|spread:%d",
		contentHash,
		options.SampleSize,
		options.AreaThreshold,
		options.SimilarityThreshold,
		options.MinColorCount,
		options.SpreadThreshold,
	)
}

func (s *ThemeService) loadCached(ctx context.Context, cacheKey string) (store.Extraction, bool) {
	s.cacheMu.RLock()
	entry, ok := s.cache[cacheKey]
	s.cacheMu.RUnlock()
	if ok {
		return entry.extraction, true
	}

	if s.repo == nil {
		return store.Extraction{}, false
	}

	stored, err := s.repo.GetByKey(ctx, cacheKey)
	if err != nil {
		if !errors.Is(err, store.ErrExtractionNotFound) {
			log.Warnf("read palette cache: %v", err)
		}
		return store.Extraction{}, false
	}

	s.remember(cacheKey, stored)
	return stored, true
}

func (s *ThemeService) storeCached(ctx context.Context, extraction store.Extraction) {
	if s.repo != nil {
		persisted, err := s.repo.Put(ctx, extraction)
		if err != nil {
			log.Warnf("write palette cache: %v", err)
		} else {
			extraction = persisted
		}
	}

	s.remember(extraction.CacheKey, extraction)
}

func (s *ThemeService) remember(cacheKey string, extraction store.Extraction) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.cache[cacheKey] = themeCacheEntry{
		extraction: extraction,
		cachedAt:   time.Now(),
	}

	if len(s.cache) <= s.maxEntries {
		return
	}

	oldestKey := ""
	oldestAt := time.Now()
	for key, entry := range s.cache {
		if oldestKey == "" || entry.cachedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.cachedAt
		}
	}

	if oldestKey != "" {
		delete(s.cache, oldestKey)
	}
}
