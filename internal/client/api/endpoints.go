package api

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// User is the account as the API reports it.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthResult is the body of successful login/register calls.
type AuthResult struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}

// Charity is a charity as the API reports it.
type Charity struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Donation is a donation as the API reports it.
type Donation struct {
	ID                 string    `json:"id"`
	CharityID          string    `json:"charity_id"`
	Amount             int64     `json:"amount"`
	Message            string    `json:"message"`
	Anonymous          bool      `json:"is_anonymous"`
	Status             string    `json:"status"`
	MpesaReceiptNumber string    `json:"mpesa_receipt_number"`
	CreatedAt          time.Time `json:"created_at"`
}

// DonationAck is the acknowledgment of an initiation request.
type DonationAck struct {
	Donation Donation `json:"donation"`
	Message  string   `json:"message"`
}

// DonationStatus is one poll result from the status endpoint.
type DonationStatus struct {
	Status             string `json:"status"`
	MpesaReceiptNumber string `json:"mpesa_receipt_number"`
}

// InitiateDonationRequest captures the donation inputs.
type InitiateDonationRequest struct {
	CharityID   string `json:"charity_id"`
	Amount      int64  `json:"amount"`
	PhoneNumber string `json:"phone_number"`
	Message     string `json:"message,omitempty"`
	Anonymous   bool   `json:"is_anonymous,omitempty"`
}

// Stats is the admin dashboard aggregate.
type Stats struct {
	Donors            int64 `json:"donors"`
	CharitiesApproved int64 `json:"charities_approved"`
	CharitiesPending  int64 `json:"charities_pending"`
	DonationsSettled  int64 `json:"donations_settled"`
	AmountSettled     int64 `json:"amount_settled"`
}

// Login authenticates and returns the user and fresh token. The token
// is NOT persisted here; the session manager owns that side effect.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/login",
		map[string]string{"email": email, "password": password}, &out)
	return out, err
}

// Register creates an account and returns the user and fresh token.
func (c *Client) Register(ctx context.Context, email, password, role string) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/register",
		map[string]string{"email": email, "password": password, "role": role}, &out)
	return out, err
}

// Me returns the identity behind the persisted token.
func (c *Client) Me(ctx context.Context) (User, error) {
	var out struct {
		User User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out)
	return out.User, err
}

// Charities lists approved charities.
func (c *Client) Charities(ctx context.Context) ([]Charity, error) {
	var out struct {
		Charities []Charity `json:"charities"`
	}
	err := c.do(ctx, http.MethodGet, "/charities", nil, &out)
	return out.Charities, err
}

// Charity returns a single charity.
func (c *Client) Charity(ctx context.Context, id string) (Charity, error) {
	var out struct {
		Charity Charity `json:"charity"`
	}
	err := c.do(ctx, http.MethodGet, "/charities/"+url.PathEscape(id), nil, &out)
	return out.Charity, err
}

// InitiateDonation asks the server to fire the STK push.
func (c *Client) InitiateDonation(ctx context.Context, req InitiateDonationRequest) (DonationAck, error) {
	var out DonationAck
	err := c.do(ctx, http.MethodPost, "/donations", req, &out)
	return out, err
}

// DonationStatus polls the settlement state of a donation.
func (c *Client) DonationStatus(ctx context.Context, id string) (DonationStatus, error) {
	var out DonationStatus
	err := c.do(ctx, http.MethodGet, "/donations/"+url.PathEscape(id)+"/status", nil, &out)
	return out, err
}

// MyDonations returns the caller's donation history.
func (c *Client) MyDonations(ctx context.Context) ([]Donation, error) {
	var out struct {
		Donations []Donation `json:"donations"`
	}
	err := c.do(ctx, http.MethodGet, "/donations", nil, &out)
	return out.Donations, err
}

// Apply submits a charity application.
func (c *Client) Apply(ctx context.Context, name, description string) (Charity, error) {
	var out struct {
		Charity Charity `json:"charity"`
	}
	err := c.do(ctx, http.MethodPost, "/charity/apply",
		map[string]string{"name": name, "description": description}, &out)
	return out.Charity, err
}

// OwnApplication returns the caller's charity application.
func (c *Client) OwnApplication(ctx context.Context) (Charity, error) {
	var out struct {
		Charity Charity `json:"charity"`
	}
	err := c.do(ctx, http.MethodGet, "/charity/application", nil, &out)
	return out.Charity, err
}

// PendingApplications lists applications awaiting admin review.
func (c *Client) PendingApplications(ctx context.Context) ([]Charity, error) {
	var out struct {
		Applications []Charity `json:"applications"`
	}
	err := c.do(ctx, http.MethodGet, "/admin/applications", nil, &out)
	return out.Applications, err
}

// ReviewApplication approves or rejects a pending application.
func (c *Client) ReviewApplication(ctx context.Context, id string, approve bool) error {
	verb := "reject"
	if approve {
		verb = "approve"
	}
	return c.do(ctx, http.MethodPost, "/admin/applications/"+url.PathEscape(id)+"/"+verb, nil, nil)
}

// AdminStats returns platform totals.
func (c *Client) AdminStats(ctx context.Context) (Stats, error) {
	var out Stats
	err := c.do(ctx, http.MethodGet, "/admin/stats", nil, &out)
	return out, err
}
