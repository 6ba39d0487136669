package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sitepalette/internal/screenshot"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

const EventProgress = "watcher:progress"

const defaultSettleDelay = 750 * time.Millisecond

// Handler processes one settled screenshot path.
type Handler func(ctx context.Context, path string) error

type Progress struct {
	Phase   string `json:"phase"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
	Status  string `json:"status"`
	At      string `json:"at"`
}

type Status struct {
	Running   bool   `json:"running"`
	Dir       string `json:"dir"`
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
	LastPath  string `json:"lastPath,omitempty"`
	LastError string `json:"lastError,omitempty"`
	LastRunAt string `json:"lastRunAt,omitempty"`
	Pending   int    `json:"pending"`
}

type Emitter func(eventName string, payload any)

type Service struct {
	mu          sync.Mutex
	running     bool
	dir         string
	processed   int
	failed      int
	lastPath    string
	lastError   string
	lastRun     time.Time
	pending     map[string]*time.Timer
	inflight    sync.WaitGroup
	settleDelay time.Duration
	handler     Handler
	emit        Emitter
}

func NewService(handler Handler) *Service {
	return &Service{
		handler:     handler,
		pending:     make(map[string]*time.Timer),
		settleDelay: defaultSettleDelay,
	}
}

func (s *Service) SetEmitter(emitter Emitter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emit = emitter
}

// SetSettleDelay changes how long a file must stay quiet before processing.
func (s *Service) SetSettleDelay(delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if delay > 0 {
		s.settleDelay = delay
	}
}

func (s *Service) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Running:   s.running,
		Dir:       s.dir,
		Processed: s.processed,
		Failed:    s.failed,
		LastPath:  s.lastPath,
		LastError: s.lastError,
		Pending:   len(s.pending),
	}
	if !s.lastRun.IsZero() {
		status.LastRunAt = s.lastRun.UTC().Format(time.RFC3339)
	}

	return status
}

// ScanExisting hands every supported file directly inside dir to the
// handler. Subdirectories are skipped, matching what Watch observes.
func (s *Service) ScanExisting(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", dir, err)
	}

	seen := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return seen, err
		}
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() || !screenshot.IsSupported(path) {
			continue
		}

		seen++
		s.process(ctx, path)
	}

	return seen, nil
}

// Watch blocks until ctx is cancelled, processing screenshots created or
// rewritten in dir once they have been quiet for the settle delay. It returns
// only after every handler it started has finished.
func (s *Service) Watch(ctx context.Context, dir string) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("watcher already running")
	}
	s.running = true
	s.dir = dir
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		for path, timer := range s.pending {
			timer.Stop()
			delete(s.pending, path)
		}
		s.mu.Unlock()

		s.inflight.Wait()

		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}
	defer fsWatcher.Close()

	if err := fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	s.emitProgress(Progress{Phase: "start", Message: fmt.Sprintf("Watching %s", dir), Status: "running"})
	log.Infof("watching %s for screenshots", dir)

	for {
		select {
		case <-ctx.Done():
			s.emitProgress(Progress{Phase: "done", Message: "Watcher stopped", Status: "completed"})
			return nil
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !screenshot.IsSupported(event.Name) {
				continue
			}
			s.schedule(ctx, event.Name)
		case watchErr, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			log.Warnf("fs watcher error: %v", watchErr)
		}
	}
}

func (s *Service) schedule(ctx context.Context, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.pending[path]; ok {
		timer.Reset(s.settleDelay)
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(s.settleDelay, func() {
		s.mu.Lock()
		// a Reset on an already fired timer runs the callback twice
		if s.pending[path] != timer {
			s.mu.Unlock()
			return
		}
		delete(s.pending, path)
		if !s.running || ctx.Err() != nil {
			s.mu.Unlock()
			return
		}
		s.inflight.Add(1)
		s.mu.Unlock()

		defer s.inflight.Done()
		s.process(ctx, path)
	})
	s.pending[path] = timer
}

func (s *Service) process(ctx context.Context, path string) {
	err := s.handler(ctx, path)

	s.mu.Lock()
	s.lastPath = path
	s.lastRun = time.Now().UTC()
	if err != nil {
		s.failed++
		s.lastError = err.Error()
	} else {
		s.processed++
		s.lastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		log.WithField("path", path).Errorf("screenshot processing failed: %v", err)
		s.emitProgress(Progress{Phase: "extract", Path: path, Message: err.Error(), Status: "failed"})
		return
	}

	s.emitProgress(Progress{Phase: "extract", Path: path, Message: "Extracted palette", Status: "completed"})
}

func (s *Service) emitProgress(progress Progress) {
	s.mu.Lock()
	emit := s.emit
	s.mu.Unlock()

	if emit == nil {
		return
	}

	if progress.At == "" {
		progress.At = time.Now().UTC().Format(time.RFC3339)
	}
	emit(EventProgress, progress)
}
