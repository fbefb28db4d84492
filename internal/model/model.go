// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Role is the account kind carried in the JWT and checked by handlers.
type Role string

// Account roles. Admin accounts are seeded, never self-registered.
const (
	RoleDonor   Role = "donor"
	RoleCharity Role = "charity"
	RoleAdmin   Role = "admin"
)

// SelfRegistrable reports whether the role may be chosen at registration.
func (r Role) SelfRegistrable() bool {
	return r == RoleDonor || r == RoleCharity
}

// Tokens collects issued access/refresh tokens (refresh optional).
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // access token expiry (for diagnostics)
}

// User represents an account. Password material is never stored in plaintext.
type User struct {
	ID        uuid.UUID // PK
	Email     string    // unique
	Role      Role
	PwdHash   []byte // Argon2id(password, SaltAuth)
	SaltAuth  []byte // per-user auth salt
	CreatedAt time.Time
}

// CharityStatus tracks an application through admin review.
type CharityStatus string

const (
	CharityPending  CharityStatus = "pending"
	CharityApproved CharityStatus = "approved"
	CharityRejected CharityStatus = "rejected"
)

// Charity is an organisation applying to (and once approved, able to)
// receive donations. One charity per owning user.
type Charity struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID // FK -> users.id
	Name        string
	Description string
	Status      CharityStatus
	CreatedAt   time.Time
	ReviewedAt  *time.Time // set on approve/reject
}

// Beneficiary is a person or group a charity supports.
type Beneficiary struct {
	ID          uuid.UUID
	CharityID   uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
}

// Story is a charity-published update shown to donors.
type Story struct {
	ID        uuid.UUID
	CharityID uuid.UUID
	Title     string
	Body      string
	CreatedAt time.Time
}

// DonationStatus is the settlement state as reported on the wire.
type DonationStatus string

// Wire values match the status endpoint contract; PENDING is the only
// non-terminal state.
const (
	DonationPending   DonationStatus = "PENDING"
	DonationSucceeded DonationStatus = "SUCCEEDED"
	DonationFailed    DonationStatus = "FAILED"
)

// Terminal reports whether the status admits no further transition.
func (s DonationStatus) Terminal() bool {
	return s == DonationSucceeded || s == DonationFailed
}

// Donation is a single STK-push attempt. Amount is whole shillings.
type Donation struct {
	ID                 uuid.UUID
	DonorID            uuid.UUID
	CharityID          uuid.UUID
	Amount             int64
	PhoneNumber        string // normalized 2547XXXXXXXX
	Message            string
	Anonymous          bool
	Status             DonationStatus
	CheckoutRequestID  string // gateway correlation id
	MpesaReceiptNumber string // set only once Status=SUCCEEDED
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// StatsSummary aggregates platform-wide figures for the admin dashboard.
type StatsSummary struct {
	Donors            int64
	CharitiesApproved int64
	CharitiesPending  int64
	DonationsSettled  int64
	AmountSettled     int64 // sum over SUCCEEDED donations
}
