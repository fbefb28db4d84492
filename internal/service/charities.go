package service

import (
	"context"
	"fmt"

	"github.com/amolo254/pamoja/internal/errs"
	"github.com/amolo254/pamoja/internal/model"
	"github.com/amolo254/pamoja/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// CharityService covers the application lifecycle and published content.
type CharityService interface {
	// Apply submits a charity application for admin review.
	Apply(ctx context.Context, ownerID uuid.UUID, name, description string) (*model.Charity, error)
	// Own returns the charity owned by the given user (application view).
	Own(ctx context.Context, ownerID uuid.UUID) (*model.Charity, error)
	// Get returns a single charity.
	Get(ctx context.Context, id uuid.UUID) (*model.Charity, error)
	// ListApproved returns charities donors may browse.
	ListApproved(ctx context.Context) ([]model.Charity, error)
	// ListPending returns applications awaiting review.
	ListPending(ctx context.Context) ([]model.Charity, error)
	// Review applies the admin decision to a pending application.
	Review(ctx context.Context, id uuid.UUID, approve bool) error

	// AddBeneficiary adds a beneficiary to the owner's approved charity.
	AddBeneficiary(ctx context.Context, ownerID uuid.UUID, name, description string) (*model.Beneficiary, error)
	// ListBeneficiaries returns a charity's beneficiaries.
	ListBeneficiaries(ctx context.Context, charityID uuid.UUID) ([]model.Beneficiary, error)
	// DeleteBeneficiary removes a beneficiary from the owner's charity.
	DeleteBeneficiary(ctx context.Context, ownerID, beneficiaryID uuid.UUID) error

	// AddStory publishes a story for the owner's approved charity.
	AddStory(ctx context.Context, ownerID uuid.UUID, title, body string) (*model.Story, error)
	// ListStories returns a charity's stories.
	ListStories(ctx context.Context, charityID uuid.UUID) ([]model.Story, error)
	// DeleteStory removes a story from the owner's charity.
	DeleteStory(ctx context.Context, ownerID, storyID uuid.UUID) error
}

type CharityServiceImpl struct {
	charities repository.CharityRepository
}

// NewCharityService constructs CharityService.
func NewCharityService(charities repository.CharityRepository) *CharityServiceImpl {
	return &CharityServiceImpl{charities: charities}
}

// Apply submits a new application (status=pending). One per owner.
func (s *CharityServiceImpl) Apply(ctx context.Context, ownerID uuid.UUID, name, description string) (*model.Charity, error) {
	if ownerID == uuid.Nil || name == "" {
		return nil, fmt.Errorf("%w: name required", errs.ErrValidation)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	c := &model.Charity{
		ID:          id,
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Status:      model.CharityPending,
	}
	if err := s.charities.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Own returns the caller's charity.
func (s *CharityServiceImpl) Own(ctx context.Context, ownerID uuid.UUID) (*model.Charity, error) {
	return s.charities.GetByOwner(ctx, ownerID)
}

// Get returns a single charity.
func (s *CharityServiceImpl) Get(ctx context.Context, id uuid.UUID) (*model.Charity, error) {
	return s.charities.GetByID(ctx, id)
}

// ListApproved returns charities donors may browse.
func (s *CharityServiceImpl) ListApproved(ctx context.Context) ([]model.Charity, error) {
	return s.charities.ListByStatus(ctx, model.CharityApproved)
}

// ListPending returns applications awaiting review.
func (s *CharityServiceImpl) ListPending(ctx context.Context) ([]model.Charity, error) {
	return s.charities.ListByStatus(ctx, model.CharityPending)
}

// Review approves or rejects a pending application.
func (s *CharityServiceImpl) Review(ctx context.Context, id uuid.UUID, approve bool) error {
	status := model.CharityRejected
	if approve {
		status = model.CharityApproved
	}
	return s.charities.SetStatus(ctx, id, status)
}

// approvedOwn resolves the caller's charity and requires it approved,
// the precondition for publishing content.
func (s *CharityServiceImpl) approvedOwn(ctx context.Context, ownerID uuid.UUID) (*model.Charity, error) {
	c, err := s.charities.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if c.Status != model.CharityApproved {
		return nil, errs.ErrForbidden
	}
	return c, nil
}

// AddBeneficiary adds a beneficiary to the owner's approved charity.
func (s *CharityServiceImpl) AddBeneficiary(ctx context.Context, ownerID uuid.UUID, name, description string) (*model.Beneficiary, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name required", errs.ErrValidation)
	}
	c, err := s.approvedOwn(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	b := &model.Beneficiary{ID: id, CharityID: c.ID, Name: name, Description: description}
	if err := s.charities.AddBeneficiary(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ListBeneficiaries returns a charity's beneficiaries.
func (s *CharityServiceImpl) ListBeneficiaries(ctx context.Context, charityID uuid.UUID) ([]model.Beneficiary, error) {
	return s.charities.ListBeneficiaries(ctx, charityID)
}

// DeleteBeneficiary removes a beneficiary from the owner's charity.
func (s *CharityServiceImpl) DeleteBeneficiary(ctx context.Context, ownerID, beneficiaryID uuid.UUID) error {
	c, err := s.charities.GetByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	return s.charities.DeleteBeneficiary(ctx, c.ID, beneficiaryID)
}

// AddStory publishes a story for the owner's approved charity.
func (s *CharityServiceImpl) AddStory(ctx context.Context, ownerID uuid.UUID, title, body string) (*model.Story, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title required", errs.ErrValidation)
	}
	c, err := s.approvedOwn(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	st := &model.Story{ID: id, CharityID: c.ID, Title: title, Body: body}
	if err := s.charities.AddStory(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// ListStories returns a charity's stories.
func (s *CharityServiceImpl) ListStories(ctx context.Context, charityID uuid.UUID) ([]model.Story, error) {
	return s.charities.ListStories(ctx, charityID)
}

// DeleteStory removes a story from the owner's charity.
func (s *CharityServiceImpl) DeleteStory(ctx context.Context, ownerID, storyID uuid.UUID) error {
	c, err := s.charities.GetByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	return s.charities.DeleteStory(ctx, c.ID, storyID)
}
