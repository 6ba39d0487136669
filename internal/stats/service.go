package stats

import (
	"context"
	"database/sql"
	"fmt"
)

const defaultTopLimit = 5

const maxTopLimit = 25

type Overview struct {
	TotalExtractions  int         `json:"totalExtractions"`
	UniqueScreenshots int         `json:"uniqueScreenshots"`
	TotalBytes        int64       `json:"totalBytes"`
	SynthesizedColors int         `json:"synthesizedColors"`
	AverageDurationMS float64     `json:"averageDurationMs"`
	LastExtractionAt  *string     `json:"lastExtractionAt,omitempty"`
	TopPrimaryColors  []ColorStat `json:"topPrimaryColors"`
}

// ColorStat counts how many stored extractions chose Color as primary.
type ColorStat struct {
	Color string `json:"color"`
	Count int    `json:"count"`
}

type Service struct {
	db *sql.DB
}

func NewService(database *sql.DB) *Service {
	return &Service{db: database}
}

func (s *Service) GetOverview(ctx context.Context, limit int) (Overview, error) {
	overview := Overview{TopPrimaryColors: []ColorStat{}}
	if s.db == nil {
		return overview, nil
	}

	limit = normalizeTopLimit(limit)

	var (
		totalBytes sql.NullInt64
		avgMS      sql.NullFloat64
		lastAt     sql.NullString
		synthTotal sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT content_hash),
			SUM(source_size),
			SUM(synthesized),
			AVG(duration_ms),
			MAX(created_at)
		FROM extractions
	`).Scan(
		&overview.TotalExtractions,
		&overview.UniqueScreenshots,
		&totalBytes,
		&synthTotal,
		&avgMS,
		&lastAt,
	)
	if err != nil {
		return Overview{}, fmt.Errorf("summarize extractions: %w", err)
	}

	overview.TotalBytes = totalBytes.Int64
	overview.SynthesizedColors = int(synthTotal.Int64)
	overview.AverageDurationMS = avgMS.Float64
	if lastAt.Valid && lastAt.String != "" {
		value := lastAt.String
		overview.LastExtractionAt = &value
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT json_extract(result_json, '$.primaryColor') AS primary_color, COUNT(*) AS uses
		FROM extractions
		WHERE json_extract(result_json, '$.primaryColor') IS NOT NULL
		GROUP BY primary_color
		ORDER BY uses DESC, primary_color ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return Overview{}, fmt.Errorf("rank primary colors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stat ColorStat
		if err := rows.Scan(&stat.Color, &stat.Count); err != nil {
			return Overview{}, fmt.Errorf("scan primary color: %w", err)
		}
		overview.TopPrimaryColors = append(overview.TopPrimaryColors, stat)
	}
	if err := rows.Err(); err != nil {
		return Overview{}, fmt.Errorf("iterate primary colors: %w", err)
	}

	return overview, nil
}

func normalizeTopLimit(limit int) int {
	if limit <= 0 {
		return defaultTopLimit
	}
	if limit > maxTopLimit {
		return maxTopLimit
	}
	return limit
}
