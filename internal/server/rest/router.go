package rest

import (
	"net/http"

	"github.com/amolo254/pamoja/internal/model"
	"github.com/gorilla/mux"
)

// Router builds the full route table with middleware applied.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(Recover(s.log), Logging(s.log))

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// auth
	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/me", s.requireAuth(s.handleMe)).Methods(http.MethodGet)

	// public charity browsing
	r.HandleFunc("/charities", s.handleListCharities).Methods(http.MethodGet)
	r.HandleFunc("/charities/{id}", s.handleGetCharity).Methods(http.MethodGet)
	r.HandleFunc("/charities/{id}/stories", s.handleCharityStories).Methods(http.MethodGet)
	r.HandleFunc("/charities/{id}/beneficiaries", s.handleCharityBeneficiaries).Methods(http.MethodGet)

	// donations
	r.HandleFunc("/donations", s.requireAuth(s.handleInitiateDonation)).Methods(http.MethodPost)
	r.HandleFunc("/donations", s.requireAuth(s.handleMyDonations)).Methods(http.MethodGet)
	r.HandleFunc("/donations/{id}/status", s.requireAuth(s.handleDonationStatus)).Methods(http.MethodGet)
	r.HandleFunc("/mpesa/callback", s.handleMpesaCallback).Methods(http.MethodPost)

	// charity self-management
	r.HandleFunc("/charity/apply", s.requireRole(model.RoleCharity, s.handleApply)).Methods(http.MethodPost)
	r.HandleFunc("/charity/application", s.requireRole(model.RoleCharity, s.handleOwnApplication)).Methods(http.MethodGet)
	r.HandleFunc("/charity/donations", s.requireRole(model.RoleCharity, s.handleReceivedDonations)).Methods(http.MethodGet)
	r.HandleFunc("/charity/beneficiaries", s.requireRole(model.RoleCharity, s.handleAddBeneficiary)).Methods(http.MethodPost)
	r.HandleFunc("/charity/beneficiaries/{id}", s.requireRole(model.RoleCharity, s.handleDeleteBeneficiary)).Methods(http.MethodDelete)
	r.HandleFunc("/charity/stories", s.requireRole(model.RoleCharity, s.handleAddStory)).Methods(http.MethodPost)
	r.HandleFunc("/charity/stories/{id}", s.requireRole(model.RoleCharity, s.handleDeleteStory)).Methods(http.MethodDelete)

	// admin review + stats (approve/reject are POST)
	r.HandleFunc("/admin/applications", s.requireRole(model.RoleAdmin, s.handleListApplications)).Methods(http.MethodGet)
	r.HandleFunc("/admin/applications/{id}/approve", s.requireRole(model.RoleAdmin, s.handleApprove)).Methods(http.MethodPost)
	r.HandleFunc("/admin/applications/{id}/reject", s.requireRole(model.RoleAdmin, s.handleReject)).Methods(http.MethodPost)
	r.HandleFunc("/admin/stats", s.requireRole(model.RoleAdmin, s.handleStats)).Methods(http.MethodGet)

	return r
}
