package main

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"sitepalette/internal/screenshot"
	"sitepalette/internal/watcher"

	log "github.com/sirupsen/logrus"
)

// WatchService feeds settled screenshots from a directory into the
// ThemeService and streams one JSON report per line.
type WatchService struct {
	watcher    *watcher.Service
	themes     *ThemeService
	archiveDir string
	outMu      sync.Mutex
	encoder    *json.Encoder
}

func NewWatchService(themes *ThemeService, out io.Writer, archiveDir string) *WatchService {
	service := &WatchService{
		themes:     themes,
		archiveDir: archiveDir,
		encoder:    json.NewEncoder(out),
	}
	service.watcher = watcher.NewService(service.handle)
	service.watcher.SetEmitter(func(eventName string, payload any) {
		progress, ok := payload.(watcher.Progress)
		if !ok {
			return
		}
		log.WithFields(log.Fields{
			"event":  eventName,
			"phase":  progress.Phase,
			"status": progress.Status,
			"path":   progress.Path,
		}).Debug(progress.Message)
	})
	return service
}

func (s *WatchService) SetSettleDelay(delay time.Duration) {
	s.watcher.SetSettleDelay(delay)
}

// Run optionally processes files already in dir, then blocks until ctx ends.
func (s *WatchService) Run(ctx context.Context, dir string, existing bool) error {
	if existing {
		count, err := s.watcher.ScanExisting(ctx, dir)
		if err != nil {
			return err
		}
		log.WithField("dir", dir).Infof("processed %d existing screenshots", count)
	}

	return s.watcher.Watch(ctx, dir)
}

func (s *WatchService) GetStatus() watcher.Status {
	return s.watcher.GetStatus()
}

func (s *WatchService) handle(ctx context.Context, path string) error {
	source := path
	if s.archiveDir != "" {
		archived, err := screenshot.Archive(path, s.archiveDir)
		if err != nil {
			log.WithField("source", path).Warnf("archive screenshot: %v", err)
		} else {
			source = archived
		}
	}

	report, err := s.themes.Generate(ctx, source)

	s.outMu.Lock()
	encodeErr := s.encoder.Encode(report)
	s.outMu.Unlock()

	if encodeErr != nil {
		log.Warnf("write report: %v", encodeErr)
	}

	return err
}
