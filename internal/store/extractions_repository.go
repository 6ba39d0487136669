package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"sitepalette/internal/palette"

	"github.com/google/uuid"
)

var ErrExtractionNotFound = errors.New("extraction not found")

const (
	defaultListLimit = 20
	maxListLimit     = 500
)

type Extraction struct {
	ID          string                 `json:"id"`
	CacheKey    string                 `json:"cacheKey"`
	ContentHash string                 `json:"contentHash"`
	SourcePath  string                 `json:"sourcePath"`
	SourceSize  int64                  `json:"sourceSize"`
	Options     palette.ExtractOptions `json:"options"`
	Result      palette.Result         `json:"result"`
	Synthesized int                    `json:"synthesized"`
	DurationMS  int64                  `json:"durationMs"`
	CreatedAt   string                 `json:"createdAt"`
}

type ExtractionRepository struct {
	db *sql.DB
}

func NewExtractionRepository(database *sql.DB) *ExtractionRepository {
	return &ExtractionRepository{db: database}
}

const selectColumns = "id, cache_key, content_hash, source_path, source_size, options_json, result_json, synthesized, duration_ms, created_at"

func (r *ExtractionRepository) GetByKey(ctx context.Context, cacheKey string) (Extraction, error) {
	row := r.db.QueryRowContext(
		ctx,
		"SELECT "+selectColumns+" FROM extractions WHERE cache_key = ?",
		cacheKey,
	)

	extraction, err := scanExtraction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Extraction{}, ErrExtractionNotFound
		}
		return Extraction{}, fmt.Errorf("get extraction %s: %w", cacheKey, err)
	}

	return extraction, nil
}

// Put inserts or replaces the extraction stored under its cache key.
// A missing ID or CreatedAt is filled in.
func (r *ExtractionRepository) Put(ctx context.Context, extraction Extraction) (Extraction, error) {
	if strings.TrimSpace(extraction.CacheKey) == "" {
		return Extraction{}, errors.New("cache key is required")
	}
	if extraction.ID == "" {
		extraction.ID = uuid.NewString()
	}
	if extraction.CreatedAt == "" {
		extraction.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}

	optionsJSON, err := json.Marshal(extraction.Options)
	if err != nil {
		return Extraction{}, fmt.Errorf("encode extraction options: %w", err)
	}
	resultJSON, err := json.Marshal(extraction.Result)
	if err != nil {
		return Extraction{}, fmt.Errorf("encode extraction result: %w", err)
	}

	_, err = r.db.ExecContext(
		ctx,
		`INSERT INTO extractions(id, cache_key, content_hash, source_path, source_size, options_json, result_json, synthesized, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET
			source_path = excluded.source_path,
			source_size = excluded.source_size,
			options_json = excluded.options_json,
			result_json = excluded.result_json,
			synthesized = excluded.synthesized,
			duration_ms = excluded.duration_ms,
			created_at = excluded.created_at`,
		extraction.ID,
		extraction.CacheKey,
		extraction.ContentHash,
		extraction.SourcePath,
		extraction.SourceSize,
		string(optionsJSON),
		string(resultJSON),
		extraction.Synthesized,
		extraction.DurationMS,
		extraction.CreatedAt,
	)
	if err != nil {
		return Extraction{}, fmt.Errorf("upsert extraction %s: %w", extraction.CacheKey, err)
	}

	return r.GetByKey(ctx, extraction.CacheKey)
}

// List returns the newest extractions first.
func (r *ExtractionRepository) List(ctx context.Context, limit int) ([]Extraction, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	return r.queryExtractions(
		ctx,
		"SELECT "+selectColumns+" FROM extractions ORDER BY created_at DESC, id LIMIT ?",
		limit,
	)
}

// ListByContentHash returns every extraction of one screenshot, newest first.
func (r *ExtractionRepository) ListByContentHash(ctx context.Context, contentHash string) ([]Extraction, error) {
	return r.queryExtractions(
		ctx,
		"SELECT "+selectColumns+" FROM extractions WHERE content_hash = ? ORDER BY created_at DESC, id",
		strings.ToLower(strings.TrimSpace(contentHash)),
	)
}

func (r *ExtractionRepository) queryExtractions(ctx context.Context, query string, args ...any) ([]Extraction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list extractions: %w", err)
	}
	defer rows.Close()

	extractions := make([]Extraction, 0)
	for rows.Next() {
		extraction, err := scanExtraction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan extraction row: %w", err)
		}
		extractions = append(extractions, extraction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate extraction rows: %w", err)
	}

	return extractions, nil
}

func (r *ExtractionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM extractions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete extraction %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read deleted extraction count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrExtractionNotFound
	}

	return nil
}

// Prune keeps the newest keep rows and returns how many were removed.
func (r *ExtractionRepository) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM extractions WHERE id NOT IN (
			SELECT id FROM extractions ORDER BY created_at DESC, id LIMIT ?
		)`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune extractions: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read pruned extraction count: %w", err)
	}

	return removed, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExtraction(row rowScanner) (Extraction, error) {
	var extraction Extraction
	var optionsJSON string
	var resultJSON string
	if err := row.Scan(
		&extraction.ID,
		&extraction.CacheKey,
		&extraction.ContentHash,
		&extraction.SourcePath,
		&extraction.SourceSize,
		&optionsJSON,
		&resultJSON,
		&extraction.Synthesized,
		&extraction.DurationMS,
		&extraction.CreatedAt,
	); err != nil {
		return Extraction{}, err
	}

	if err := json.Unmarshal([]byte(optionsJSON), &extraction.Options); err != nil {
		return Extraction{}, fmt.Errorf("decode extraction options: %w", err)
	}

	extraction.Result = palette.EmptyResult()
	if err := json.Unmarshal([]byte(resultJSON), &extraction.Result); err != nil {
		return Extraction{}, fmt.Errorf("decode extraction result: %w", err)
	}

	return extraction, nil
}
