package rest

import (
	"time"

	"github.com/amolo254/pamoja/internal/model"
)

// userDTO is the public view of an account.
type userDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toUserDTO(u model.User) userDTO {
	return userDTO{ID: u.ID.String(), Email: u.Email, Role: string(u.Role)}
}

type charityDTO struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
}

func toCharityDTO(c model.Charity) charityDTO {
	return charityDTO{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
		Status:      string(c.Status),
		CreatedAt:   c.CreatedAt,
		ReviewedAt:  c.ReviewedAt,
	}
}

type beneficiaryDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toBeneficiaryDTO(b model.Beneficiary) beneficiaryDTO {
	return beneficiaryDTO{ID: b.ID.String(), Name: b.Name, Description: b.Description, CreatedAt: b.CreatedAt}
}

type storyDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func toStoryDTO(s model.Story) storyDTO {
	return storyDTO{ID: s.ID.String(), Title: s.Title, Body: s.Body, CreatedAt: s.CreatedAt}
}

// donationDTO hides the donor's phone number from list consumers and
// honours the anonymous flag by blanking the donor id.
type donationDTO struct {
	ID                 string    `json:"id"`
	CharityID          string    `json:"charity_id"`
	DonorID            string    `json:"donor_id,omitempty"`
	Amount             int64     `json:"amount"`
	Message            string    `json:"message,omitempty"`
	Anonymous          bool      `json:"is_anonymous"`
	Status             string    `json:"status"`
	MpesaReceiptNumber string    `json:"mpesa_receipt_number,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

func toDonationDTO(d model.Donation) donationDTO {
	out := donationDTO{
		ID:                 d.ID.String(),
		CharityID:          d.CharityID.String(),
		Amount:             d.Amount,
		Message:            d.Message,
		Anonymous:          d.Anonymous,
		Status:             string(d.Status),
		MpesaReceiptNumber: d.MpesaReceiptNumber,
		CreatedAt:          d.CreatedAt,
	}
	if !d.Anonymous {
		out.DonorID = d.DonorID.String()
	}
	return out
}

func toDonationDTOs(ds []model.Donation) []donationDTO {
	out := make([]donationDTO, 0, len(ds))
	for _, d := range ds {
		out = append(out, toDonationDTO(d))
	}
	return out
}
