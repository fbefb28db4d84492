package rest

import (
	"encoding/json"
	"net/http"

	"github.com/amolo254/pamoja/internal/errs"
	"github.com/amolo254/pamoja/internal/model"
	"github.com/amolo254/pamoja/internal/mpesa"
	"github.com/amolo254/pamoja/internal/service"
	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/mux"
)

type initiateDonationBody struct {
	CharityID   string `json:"charity_id"`
	Amount      int64  `json:"amount"`
	PhoneNumber string `json:"phone_number"`
	Message     string `json:"message,omitempty"`
	Anonymous   bool   `json:"is_anonymous,omitempty"`
}

func (s *Server) handleInitiateDonation(w http.ResponseWriter, r *http.Request) {
	id, _ := callerFrom(r.Context())

	var body initiateDonationBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	charityID, err := uuid.FromString(body.CharityID)
	if err != nil {
		s.writeError(w, errs.ErrValidation)
		return
	}

	d, err := s.donations.Initiate(r.Context(), id.UserID, service.InitiateDonation{
		CharityID:   charityID,
		Amount:      body.Amount,
		PhoneNumber: body.PhoneNumber,
		Message:     body.Message,
		Anonymous:   body.Anonymous,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"donation": toDonationDTO(*d),
		"message":  "STK push sent, confirm on your phone",
	})
}

func (s *Server) handleMyDonations(w http.ResponseWriter, r *http.Request) {
	id, _ := callerFrom(r.Context())
	ds, err := s.donations.ListByDonor(r.Context(), id.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"donations": toDonationDTOs(ds)})
}

// statusResponse is the polling contract: receipt only once SUCCEEDED.
type statusResponse struct {
	Status             string `json:"status"`
	MpesaReceiptNumber string `json:"mpesa_receipt_number,omitempty"`
}

func (s *Server) handleDonationStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := callerFrom(r.Context())
	donationID, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, errs.ErrValidation)
		return
	}
	d, err := s.donations.Status(r.Context(), id.UserID, donationID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := statusResponse{Status: string(d.Status)}
	if d.Status == model.DonationSucceeded {
		resp.MpesaReceiptNumber = d.MpesaReceiptNumber
	}
	writeJSON(w, http.StatusOK, resp)
}

// stkCallbackBody mirrors the Daraja result envelope.
type stkCallbackBody struct {
	Body struct {
		StkCallback struct {
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []struct {
					Name  string `json:"Name"`
					Value any    `json:"Value"`
				} `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// handleMpesaCallback accepts the gateway's settlement result. It is
// unauthenticated (the gateway cannot carry our bearer tokens) and
// always answers 200 so the gateway does not retry parse failures forever.
func (s *Server) handleMpesaCallback(w http.ResponseWriter, r *http.Request) {
	var body stkCallbackBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"result": "ignored"})
		return
	}
	cb := body.Body.StkCallback

	receipt := ""
	for _, item := range cb.CallbackMetadata.Item {
		if item.Name == "MpesaReceiptNumber" {
			if v, ok := item.Value.(string); ok {
				receipt = v
			}
		}
	}

	err := s.donations.HandleCallback(r.Context(), mpesa.CallbackResult{
		CheckoutRequestID: cb.CheckoutRequestID,
		ResultCode:        cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
		ReceiptNumber:     receipt,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "ok"})
}
