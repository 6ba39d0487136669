package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sitepalette/internal/screenshot"
	"sitepalette/internal/store"

	log "github.com/sirupsen/logrus"
)

type HistoryService struct {
	repo *store.ExtractionRepository
}

func NewHistoryService(repo *store.ExtractionRepository) *HistoryService {
	return &HistoryService{repo: repo}
}

// List returns the newest extractions, or every extraction of one
// screenshot when contentHash is set.
func (s *HistoryService) List(ctx context.Context, limit int, contentHash string) ([]store.Extraction, error) {
	hash := strings.ToLower(strings.TrimSpace(contentHash))
	if hash == "" {
		return s.repo.List(ctx, limit)
	}
	if !screenshot.IsValidHash(hash) {
		return nil, fmt.Errorf("invalid content hash %q", contentHash)
	}
	return s.repo.ListByContentHash(ctx, hash)
}

// Prune keeps the newest keep extractions.
func (s *HistoryService) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, errors.New("prune count must not be negative")
	}

	removed, err := s.repo.Prune(ctx, keep)
	if err != nil {
		return 0, err
	}

	log.WithField("kept", keep).Infof("pruned %d cached extractions", removed)
	return removed, nil
}

func (s *HistoryService) Delete(ctx context.Context, ids []string) error {
	for _, id := range ids {
		trimmed := strings.TrimSpace(id)
		err := s.repo.Delete(ctx, trimmed)
		if errors.Is(err, store.ErrExtractionNotFound) {
			return fmt.Errorf("extraction %s does not exist", trimmed)
		}
		if err != nil {
			return err
		}
		log.WithField("id", trimmed).Debug("deleted cached extraction")
	}
	return nil
}
