package postgres

import (
	"context"
	"errors"

	"github.com/amolo254/pamoja/internal/errs"
	"github.com/amolo254/pamoja/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// CharityRepo implements CharityRepository using PostgreSQL.
type CharityRepo struct{ db *DB }

// NewCharityRepo constructs a charity repository.
func NewCharityRepo(db *DB) *CharityRepo { return &CharityRepo{db: db} }

// Create inserts a new charity application.
func (r *CharityRepo) Create(ctx context.Context, c *model.Charity) error {
	const q = `
INSERT INTO charities (id, owner_id, name, description, status)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, c.ID, c.OwnerID, c.Name, c.Description, string(c.Status))
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

const charityCols = `id, owner_id, name, description, status, created_at, reviewed_at`

func scanCharity(row pgx.Row) (*model.Charity, error) {
	var c model.Charity
	var status string
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Description, &status, &c.CreatedAt, &c.ReviewedAt); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	c.Status = model.CharityStatus(status)
	return &c, nil
}

// GetByID selects a charity by ID.
func (r *CharityRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Charity, error) {
	const q = `SELECT ` + charityCols + ` FROM charities WHERE id=$1`
	return scanCharity(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByOwner selects the charity owned by a user.
func (r *CharityRepo) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Charity, error) {
	const q = `SELECT ` + charityCols + ` FROM charities WHERE owner_id=$1`
	return scanCharity(r.db.Pool.QueryRow(ctx, q, ownerID))
}

// ListByStatus returns charities with the given review status, newest first.
func (r *CharityRepo) ListByStatus(ctx context.Context, status model.CharityStatus) ([]model.Charity, error) {
	const q = `SELECT ` + charityCols + ` FROM charities WHERE status=$1 ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Charity{}
	for rows.Next() {
		var c model.Charity
		var st string
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Description, &st, &c.CreatedAt, &c.ReviewedAt); err != nil {
			return nil, err
		}
		c.Status = model.CharityStatus(st)
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetStatus applies the review decision to a still-pending charity.
func (r *CharityRepo) SetStatus(ctx context.Context, id uuid.UUID, status model.CharityStatus) error {
	const q = `
UPDATE charities SET status=$2, reviewed_at=now()
WHERE id=$1 AND status='pending'`
	tag, err := r.db.Pool.Exec(ctx, q, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// AddBeneficiary inserts a beneficiary row.
func (r *CharityRepo) AddBeneficiary(ctx context.Context, b *model.Beneficiary) error {
	const q = `
INSERT INTO beneficiaries (id, charity_id, name, description)
VALUES ($1, $2, $3, $4)`
	_, err := r.db.Pool.Exec(ctx, q, b.ID, b.CharityID, b.Name, b.Description)
	return err
}

// ListBeneficiaries returns a charity's beneficiaries, newest first.
func (r *CharityRepo) ListBeneficiaries(ctx context.Context, charityID uuid.UUID) ([]model.Beneficiary, error) {
	const q = `
SELECT id, charity_id, name, description, created_at
FROM beneficiaries WHERE charity_id=$1 ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, charityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Beneficiary{}
	for rows.Next() {
		var b model.Beneficiary
		if err := rows.Scan(&b.ID, &b.CharityID, &b.Name, &b.Description, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteBeneficiary removes a beneficiary owned by the charity.
func (r *CharityRepo) DeleteBeneficiary(ctx context.Context, charityID, id uuid.UUID) error {
	const q = `DELETE FROM beneficiaries WHERE id=$1 AND charity_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, id, charityID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// AddStory inserts a story row.
func (r *CharityRepo) AddStory(ctx context.Context, s *model.Story) error {
	const q = `
INSERT INTO stories (id, charity_id, title, body)
VALUES ($1, $2, $3, $4)`
	_, err := r.db.Pool.Exec(ctx, q, s.ID, s.CharityID, s.Title, s.Body)
	return err
}

// ListStories returns a charity's stories, newest first.
func (r *CharityRepo) ListStories(ctx context.Context, charityID uuid.UUID) ([]model.Story, error) {
	const q = `
SELECT id, charity_id, title, body, created_at
FROM stories WHERE charity_id=$1 ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, charityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Story{}
	for rows.Next() {
		var s model.Story
		if err := rows.Scan(&s.ID, &s.CharityID, &s.Title, &s.Body, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteStory removes a story owned by the charity.
func (r *CharityRepo) DeleteStory(ctx context.Context, charityID, id uuid.UUID) error {
	const q = `DELETE FROM stories WHERE id=$1 AND charity_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, id, charityID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
