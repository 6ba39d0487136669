package main

import (
	"context"

	"sitepalette/internal/stats"
)

type StatsService struct {
	stats *stats.Service
}

func NewStatsService(statsDomain *stats.Service) *StatsService {
	return &StatsService{stats: statsDomain}
}

func (s *StatsService) GetOverview(ctx context.Context, limit int) (stats.Overview, error) {
	return s.stats.GetOverview(ctx, limit)
}
