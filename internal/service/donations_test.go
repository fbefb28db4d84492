package service

import (
	"context"
	"errors"
	"testing"

	"github.com/amolo254/pamoja/internal/errs"
	"github.com/amolo254/pamoja/internal/model"
	"github.com/amolo254/pamoja/internal/mpesa"
	"github.com/amolo254/pamoja/internal/repository"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

type fakeDonations struct {
	byID map[uuid.UUID]*model.Donation

	createCalls int
	createErr   error
}

var _ repository.DonationRepository = (*fakeDonations)(nil)

func newFakeDonations() *fakeDonations {
	return &fakeDonations{byID: map[uuid.UUID]*model.Donation{}}
}

func (f *fakeDonations) Create(_ context.Context, d *model.Donation) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	cpy := *d
	f.byID[d.ID] = &cpy
	return nil
}
func (f *fakeDonations) GetByID(_ context.Context, id uuid.UUID) (*model.Donation, error) {
	d, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cpy := *d
	return &cpy, nil
}
func (f *fakeDonations) Settle(_ context.Context, checkoutRequestID string, status model.DonationStatus, receipt string) error {
	for _, d := range f.byID {
		if d.CheckoutRequestID == checkoutRequestID && d.Status == model.DonationPending {
			d.Status = status
			d.MpesaReceiptNumber = receipt
		}
	}
	return nil
}
func (f *fakeDonations) ListByDonor(_ context.Context, donorID uuid.UUID) ([]model.Donation, error) {
	out := []model.Donation{}
	for _, d := range f.byID {
		if d.DonorID == donorID {
			out = append(out, *d)
		}
	}
	return out, nil
}
func (f *fakeDonations) ListByCharity(_ context.Context, charityID uuid.UUID) ([]model.Donation, error) {
	out := []model.Donation{}
	for _, d := range f.byID {
		if d.CharityID == charityID {
			out = append(out, *d)
		}
	}
	return out, nil
}

type fakeGateway struct {
	checkout string
	err      error

	calls     int
	lastPhone string
}

func (g *fakeGateway) STKPush(_ context.Context, phone string, _ int64, _ string) (string, error) {
	g.calls++
	g.lastPhone = phone
	return g.checkout, g.err
}

func approvedCharity(t *testing.T, repo *fakeCharities) *model.Charity {
	t.Helper()
	c := &model.Charity{
		ID:      uuid.Must(uuid.NewV4()),
		OwnerID: uuid.Must(uuid.NewV4()),
		Name:    "Maji Safi",
		Status:  model.CharityApproved,
	}
	repo.byID[c.ID] = c
	return c
}

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"0712345678", "254712345678", true},
		{"0112345678", "254112345678", true},
		{"+254712345678", "254712345678", true},
		{"254712345678", "254712345678", true},
		{" 0712 345 678 ", "254712345678", true},
		{"0812345678", "", false},
		{"071234567", "", false},
		{"not-a-phone", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := NormalizePhone(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("NormalizePhone(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
			}
			continue
		}
		if !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("NormalizePhone(%q): want validation error, got %v", tc.in, err)
		}
	}
}

func TestDonation_Initiate(t *testing.T) {
	t.Parallel()

	charities := newFakeCharities()
	donations := newFakeDonations()
	gw := &fakeGateway{checkout: "ws_CO_1"}
	s := NewDonationService(donations, charities, gw, zap.NewNop())

	donorID := uuid.Must(uuid.NewV4())
	c := approvedCharity(t, charities)

	if _, err := s.Initiate(context.Background(), donorID, InitiateDonation{CharityID: c.ID, Amount: 0, PhoneNumber: "0712345678"}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want validation error on zero amount, got %v", err)
	}
	if _, err := s.Initiate(context.Background(), donorID, InitiateDonation{CharityID: c.ID, Amount: 100, PhoneNumber: "bad"}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want validation error on bad phone, got %v", err)
	}

	d, err := s.Initiate(context.Background(), donorID, InitiateDonation{
		CharityID:   c.ID,
		Amount:      500,
		PhoneNumber: "0712345678",
		Message:     "keep going",
	})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if d.Status != model.DonationPending {
		t.Fatalf("new donation should be PENDING, got %s", d.Status)
	}
	if d.CheckoutRequestID != "ws_CO_1" {
		t.Fatalf("checkout id not recorded: %q", d.CheckoutRequestID)
	}
	if gw.lastPhone != "254712345678" {
		t.Fatalf("gateway got un-normalized phone %q", gw.lastPhone)
	}
}

func TestDonation_Initiate_UnapprovedCharity(t *testing.T) {
	t.Parallel()

	charities := newFakeCharities()
	donations := newFakeDonations()
	gw := &fakeGateway{checkout: "ws_CO_1"}
	s := NewDonationService(donations, charities, gw, zap.NewNop())

	c := &model.Charity{ID: uuid.Must(uuid.NewV4()), OwnerID: uuid.Must(uuid.NewV4()), Status: model.CharityPending}
	charities.byID[c.ID] = c

	_, err := s.Initiate(context.Background(), uuid.Must(uuid.NewV4()), InitiateDonation{
		CharityID: c.ID, Amount: 100, PhoneNumber: "0712345678",
	})
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want validation error for unapproved charity, got %v", err)
	}
	if gw.calls != 0 {
		t.Fatalf("gateway must not be called for unapproved charity")
	}
}

func TestDonation_Initiate_GatewayRejectionLeavesNoRow(t *testing.T) {
	t.Parallel()

	charities := newFakeCharities()
	donations := newFakeDonations()
	gw := &fakeGateway{err: errors.New("daraja down")}
	s := NewDonationService(donations, charities, gw, zap.NewNop())
	c := approvedCharity(t, charities)

	_, err := s.Initiate(context.Background(), uuid.Must(uuid.NewV4()), InitiateDonation{
		CharityID: c.ID, Amount: 100, PhoneNumber: "0712345678",
	})
	if err == nil {
		t.Fatalf("want error on gateway rejection")
	}
	if donations.createCalls != 0 {
		t.Fatalf("rejected push must not create a donation row")
	}
}

func TestDonation_Status_OwnerOnly(t *testing.T) {
	t.Parallel()

	charities := newFakeCharities()
	donations := newFakeDonations()
	s := NewDonationService(donations, charities, &fakeGateway{checkout: "ws_CO_1"}, zap.NewNop())
	c := approvedCharity(t, charities)

	donorID := uuid.Must(uuid.NewV4())
	d, err := s.Initiate(context.Background(), donorID, InitiateDonation{
		CharityID: c.ID, Amount: 100, PhoneNumber: "0712345678",
	})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	if _, err := s.Status(context.Background(), donorID, d.ID); err != nil {
		t.Fatalf("Status as owner: %v", err)
	}
	if _, err := s.Status(context.Background(), uuid.Must(uuid.NewV4()), d.ID); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("want ErrForbidden for another caller, got %v", err)
	}
	if _, err := s.Status(context.Background(), donorID, uuid.Must(uuid.NewV4())); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound for unknown donation, got %v", err)
	}
}

func TestDonation_HandleCallback(t *testing.T) {
	t.Parallel()

	charities := newFakeCharities()
	donations := newFakeDonations()
	s := NewDonationService(donations, charities, &fakeGateway{checkout: "ws_CO_1"}, zap.NewNop())
	c := approvedCharity(t, charities)

	donorID := uuid.Must(uuid.NewV4())
	d, err := s.Initiate(context.Background(), donorID, InitiateDonation{
		CharityID: c.ID, Amount: 100, PhoneNumber: "0712345678",
	})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	if err := s.HandleCallback(context.Background(), mpesa.CallbackResult{}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want validation error on empty checkout id, got %v", err)
	}

	if err := s.HandleCallback(context.Background(), mpesa.CallbackResult{
		CheckoutRequestID: "ws_CO_1",
		ResultCode:        0,
		ReceiptNumber:     "QJD4K8L2MN",
	}); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	got, _ := s.Status(context.Background(), donorID, d.ID)
	if got.Status != model.DonationSucceeded || got.MpesaReceiptNumber != "QJD4K8L2MN" {
		t.Fatalf("bad settled donation: %+v", got)
	}

	// a late duplicate callback changes nothing
	if err := s.HandleCallback(context.Background(), mpesa.CallbackResult{
		CheckoutRequestID: "ws_CO_1",
		ResultCode:        1032,
		ResultDesc:        "Request cancelled by user",
	}); err != nil {
		t.Fatalf("duplicate callback: %v", err)
	}
	got, _ = s.Status(context.Background(), donorID, d.ID)
	if got.Status != model.DonationSucceeded {
		t.Fatalf("duplicate callback flipped terminal status: %s", got.Status)
	}
}

func TestDonation_HandleCallback_Failure(t *testing.T) {
	t.Parallel()

	charities := newFakeCharities()
	donations := newFakeDonations()
	s := NewDonationService(donations, charities, &fakeGateway{checkout: "ws_CO_2"}, zap.NewNop())
	c := approvedCharity(t, charities)

	donorID := uuid.Must(uuid.NewV4())
	d, err := s.Initiate(context.Background(), donorID, InitiateDonation{
		CharityID: c.ID, Amount: 100, PhoneNumber: "0712345678",
	})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	if err := s.HandleCallback(context.Background(), mpesa.CallbackResult{
		CheckoutRequestID: "ws_CO_2",
		ResultCode:        1032,
		ResultDesc:        "Request cancelled by user",
	}); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	got, _ := s.Status(context.Background(), donorID, d.ID)
	if got.Status != model.DonationFailed || got.MpesaReceiptNumber != "" {
		t.Fatalf("bad failed donation: %+v", got)
	}
}
