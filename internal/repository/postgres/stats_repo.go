package postgres

import (
	"context"

	"github.com/amolo254/pamoja/internal/model"
)

// StatsRepo implements StatsRepository using PostgreSQL.
type StatsRepo struct{ db *DB }

// NewStatsRepo constructs a stats repository.
func NewStatsRepo(db *DB) *StatsRepo { return &StatsRepo{db: db} }

// Summary computes the admin aggregate in a single round trip.
func (r *StatsRepo) Summary(ctx context.Context) (model.StatsSummary, error) {
	const q = `
SELECT
  (SELECT count(*) FROM users WHERE role='donor'),
  (SELECT count(*) FROM charities WHERE status='approved'),
  (SELECT count(*) FROM charities WHERE status='pending'),
  (SELECT count(*) FROM donations WHERE status='SUCCEEDED'),
  (SELECT coalesce(sum(amount),0) FROM donations WHERE status='SUCCEEDED')`
	var s model.StatsSummary
	err := r.db.Pool.QueryRow(ctx, q).Scan(
		&s.Donors, &s.CharitiesApproved, &s.CharitiesPending, &s.DonationsSettled, &s.AmountSettled)
	if err != nil {
		return model.StatsSummary{}, err
	}
	return s, nil
}
