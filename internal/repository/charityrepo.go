package repository

import (
	"context"

	"github.com/amolo254/pamoja/internal/model"
	"github.com/gofrs/uuid/v5"
)

// CharityRepository stores charity applications and their published content.
type CharityRepository interface {
	// Create inserts a new charity application (status=pending).
	Create(ctx context.Context, c *model.Charity) error
	// GetByID loads a charity by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Charity, error)
	// GetByOwner loads the charity owned by the given user.
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Charity, error)
	// ListByStatus returns charities with the given review status.
	ListByStatus(ctx context.Context, status model.CharityStatus) ([]model.Charity, error)
	// SetStatus records the admin review decision; returns ErrNotFound
	// if the charity does not exist or is no longer pending.
	SetStatus(ctx context.Context, id uuid.UUID, status model.CharityStatus) error

	// AddBeneficiary inserts a beneficiary for a charity.
	AddBeneficiary(ctx context.Context, b *model.Beneficiary) error
	// ListBeneficiaries returns a charity's beneficiaries, newest first.
	ListBeneficiaries(ctx context.Context, charityID uuid.UUID) ([]model.Beneficiary, error)
	// DeleteBeneficiary removes a beneficiary owned by the charity.
	DeleteBeneficiary(ctx context.Context, charityID, id uuid.UUID) error

	// AddStory inserts a story for a charity.
	AddStory(ctx context.Context, s *model.Story) error
	// ListStories returns a charity's stories, newest first.
	ListStories(ctx context.Context, charityID uuid.UUID) ([]model.Story, error)
	// DeleteStory removes a story owned by the charity.
	DeleteStory(ctx context.Context, charityID, id uuid.UUID) error
}
