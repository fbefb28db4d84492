package postgres

import (
	"context"
	"errors"

	"github.com/amolo254/pamoja/internal/errs"
	"github.com/amolo254/pamoja/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// DonationRepo implements DonationRepository using PostgreSQL.
type DonationRepo struct{ db *DB }

// NewDonationRepo constructs a donation repository.
func NewDonationRepo(db *DB) *DonationRepo { return &DonationRepo{db: db} }

// Create inserts a new PENDING donation row.
func (r *DonationRepo) Create(ctx context.Context, d *model.Donation) error {
	const q = `
INSERT INTO donations (id, donor_id, charity_id, amount, phone_number, message, anonymous, status, checkout_request_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Pool.Exec(ctx, q,
		d.ID, d.DonorID, d.CharityID, d.Amount, d.PhoneNumber, d.Message, d.Anonymous,
		string(d.Status), d.CheckoutRequestID)
	return err
}

const donationCols = `id, donor_id, charity_id, amount, phone_number, message, anonymous, status, checkout_request_id, mpesa_receipt_number, created_at, updated_at`

func scanDonation(row pgx.Row) (*model.Donation, error) {
	var d model.Donation
	var status string
	err := row.Scan(&d.ID, &d.DonorID, &d.CharityID, &d.Amount, &d.PhoneNumber, &d.Message,
		&d.Anonymous, &status, &d.CheckoutRequestID, &d.MpesaReceiptNumber, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	d.Status = model.DonationStatus(status)
	return &d, nil
}

// GetByID selects a donation by ID.
func (r *DonationRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Donation, error) {
	const q = `SELECT ` + donationCols + ` FROM donations WHERE id=$1`
	return scanDonation(r.db.Pool.QueryRow(ctx, q, id))
}

// Settle moves a PENDING donation to a terminal status. Terminal rows
// are left untouched so duplicate gateway callbacks are a no-op.
func (r *DonationRepo) Settle(ctx context.Context, checkoutRequestID string, status model.DonationStatus, receipt string) error {
	const q = `
UPDATE donations
SET status=$2, mpesa_receipt_number=$3, updated_at=now()
WHERE checkout_request_id=$1 AND status='PENDING'`
	_, err := r.db.Pool.Exec(ctx, q, checkoutRequestID, string(status), receipt)
	return err
}

// ListByDonor returns a donor's donations, newest first.
func (r *DonationRepo) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]model.Donation, error) {
	const q = `SELECT ` + donationCols + ` FROM donations WHERE donor_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, q, donorID)
}

// ListByCharity returns donations received by a charity, newest first.
func (r *DonationRepo) ListByCharity(ctx context.Context, charityID uuid.UUID) ([]model.Donation, error) {
	const q = `SELECT ` + donationCols + ` FROM donations WHERE charity_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, q, charityID)
}

func (r *DonationRepo) list(ctx context.Context, q string, arg any) ([]model.Donation, error) {
	rows, err := r.db.Pool.Query(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Donation{}
	for rows.Next() {
		var d model.Donation
		var status string
		if err := rows.Scan(&d.ID, &d.DonorID, &d.CharityID, &d.Amount, &d.PhoneNumber, &d.Message,
			&d.Anonymous, &status, &d.CheckoutRequestID, &d.MpesaReceiptNumber, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		d.Status = model.DonationStatus(status)
		out = append(out, d)
	}
	return out, rows.Err()
}
