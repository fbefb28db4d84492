package service

import (
	"context"

	"github.com/amolo254/pamoja/internal/model"
	"github.com/amolo254/pamoja/internal/repository"
)

// StatsService exposes the admin dashboard aggregate.
type StatsService interface {
	// Summary returns platform-wide totals.
	Summary(ctx context.Context) (model.StatsSummary, error)
}

type StatsServiceImpl struct {
	stats repository.StatsRepository
}

// NewStatsService constructs StatsService.
func NewStatsService(stats repository.StatsRepository) *StatsServiceImpl {
	return &StatsServiceImpl{stats: stats}
}

// Summary returns platform-wide totals.
func (s *StatsServiceImpl) Summary(ctx context.Context) (model.StatsSummary, error) {
	return s.stats.Summary(ctx)
}
