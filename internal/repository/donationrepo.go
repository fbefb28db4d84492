package repository

import (
	"context"

	"github.com/amolo254/pamoja/internal/model"
	"github.com/gofrs/uuid/v5"
)

// DonationRepository stores donation attempts and settlement outcomes.
type DonationRepository interface {
	// Create inserts a new PENDING donation.
	Create(ctx context.Context, d *model.Donation) error
	// GetByID loads a donation by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Donation, error)
	// Settle moves the donation identified by checkout request id to a
	// terminal status. Donations already terminal are left untouched
	// (late or duplicate callbacks are a no-op, not an error).
	Settle(ctx context.Context, checkoutRequestID string, status model.DonationStatus, receipt string) error
	// ListByDonor returns a donor's donations, newest first.
	ListByDonor(ctx context.Context, donorID uuid.UUID) ([]model.Donation, error)
	// ListByCharity returns donations received by a charity, newest first.
	ListByCharity(ctx context.Context, charityID uuid.UUID) ([]model.Donation, error)
}

// StatsRepository aggregates platform-wide figures.
type StatsRepository interface {
	// Summary computes the admin dashboard aggregate in one shot.
	Summary(ctx context.Context) (model.StatsSummary, error)
}
