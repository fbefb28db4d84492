package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/amolo254/pamoja/internal/errs"
	"github.com/amolo254/pamoja/internal/model"
	"github.com/amolo254/pamoja/internal/mpesa"
	"github.com/amolo254/pamoja/internal/repository"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// InitiateDonation captures the immutable inputs of a donation attempt.
type InitiateDonation struct {
	CharityID   uuid.UUID
	Amount      int64
	PhoneNumber string
	Message     string
	Anonymous   bool
}

// DonationService turns donor intents into STK pushes and settles outcomes.
type DonationService interface {
	// Initiate validates the request, fires the STK push and records a
	// PENDING donation. Gateway rejection leaves no donation behind.
	Initiate(ctx context.Context, donorID uuid.UUID, in InitiateDonation) (*model.Donation, error)
	// Status returns the donation for polling; only the initiating donor may read it.
	Status(ctx context.Context, requesterID, donationID uuid.UUID) (*model.Donation, error)
	// HandleCallback applies a gateway settlement result. Idempotent.
	HandleCallback(ctx context.Context, res mpesa.CallbackResult) error
	// ListByDonor returns the donor's donation history.
	ListByDonor(ctx context.Context, donorID uuid.UUID) ([]model.Donation, error)
	// ListByCharity returns donations received by the charity.
	ListByCharity(ctx context.Context, charityID uuid.UUID) ([]model.Donation, error)
}

type DonationServiceImpl struct {
	donations repository.DonationRepository
	charities repository.CharityRepository
	gateway   mpesa.Gateway
	log       *zap.Logger
}

// NewDonationService constructs DonationService with required dependencies.
func NewDonationService(
	donations repository.DonationRepository,
	charities repository.CharityRepository,
	gateway mpesa.Gateway,
	log *zap.Logger,
) *DonationServiceImpl {
	return &DonationServiceImpl{donations: donations, charities: charities, gateway: gateway, log: log}
}

var rePhone = regexp.MustCompile(`^(?:\+?254|0)([17]\d{8})$`)

// NormalizePhone validates a Kenyan mobile number and normalizes it to
// the 254XXXXXXXXX form the gateway expects.
func NormalizePhone(s string) (string, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	m := rePhone.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("%w: invalid phone number", errs.ErrValidation)
	}
	return "254" + m[1], nil
}

// Initiate validates, pushes, then persists. The gateway call comes
// first so a rejected push never creates a donation row.
func (s *DonationServiceImpl) Initiate(ctx context.Context, donorID uuid.UUID, in InitiateDonation) (*model.Donation, error) {
	if donorID == uuid.Nil || in.CharityID == uuid.Nil {
		return nil, errs.ErrValidation
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", errs.ErrValidation)
	}
	phone, err := NormalizePhone(in.PhoneNumber)
	if err != nil {
		return nil, err
	}

	charity, err := s.charities.GetByID(ctx, in.CharityID)
	if err != nil {
		return nil, err
	}
	if charity.Status != model.CharityApproved {
		return nil, fmt.Errorf("%w: charity not accepting donations", errs.ErrValidation)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	checkout, err := s.gateway.STKPush(ctx, phone, in.Amount, id.String())
	if err != nil {
		s.log.Warn("stk push failed", zap.Error(err), zap.String("charity_id", charity.ID.String()))
		return nil, fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}

	d := &model.Donation{
		ID:                id,
		DonorID:           donorID,
		CharityID:         in.CharityID,
		Amount:            in.Amount,
		PhoneNumber:       phone,
		Message:           in.Message,
		Anonymous:         in.Anonymous,
		Status:            model.DonationPending,
		CheckoutRequestID: checkout,
	}
	if err := s.donations.Create(ctx, d); err != nil {
		return nil, err
	}
	s.log.Info("donation initiated",
		zap.String("donation_id", d.ID.String()),
		zap.Int64("amount", d.Amount),
	)
	return d, nil
}

// Status returns the donation if the requester initiated it.
func (s *DonationServiceImpl) Status(ctx context.Context, requesterID, donationID uuid.UUID) (*model.Donation, error) {
	d, err := s.donations.GetByID(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if d.DonorID != requesterID {
		return nil, errs.ErrForbidden
	}
	return d, nil
}

// HandleCallback settles the donation named by the checkout request id.
// Late or duplicate callbacks hit an already-terminal row and change nothing.
func (s *DonationServiceImpl) HandleCallback(ctx context.Context, res mpesa.CallbackResult) error {
	if res.CheckoutRequestID == "" {
		return errs.ErrValidation
	}
	status := model.DonationFailed
	receipt := ""
	if res.ResultCode == 0 {
		status = model.DonationSucceeded
		receipt = res.ReceiptNumber
	}
	if err := s.donations.Settle(ctx, res.CheckoutRequestID, status, receipt); err != nil {
		return err
	}
	s.log.Info("donation settled",
		zap.String("checkout_request_id", res.CheckoutRequestID),
		zap.String("status", string(status)),
	)
	return nil
}

// ListByDonor returns the donor's donation history.
func (s *DonationServiceImpl) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]model.Donation, error) {
	return s.donations.ListByDonor(ctx, donorID)
}

// ListByCharity returns donations received by the charity.
func (s *DonationServiceImpl) ListByCharity(ctx context.Context, charityID uuid.UUID) ([]model.Donation, error) {
	return s.donations.ListByCharity(ctx, charityID)
}
