package rest

import (
	"net/http"
)

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	cs, err := s.charities.ListPending(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]charityDTO, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCharityDTO(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"applications": out})
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.review(w, r, true)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	s.review(w, r, false)
}

func (s *Server) review(w http.ResponseWriter, r *http.Request, approve bool) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.charities.Review(r.Context(), id, approve); err != nil {
		s.writeError(w, err)
		return
	}
	result := "rejected"
	if approve {
		result = "approved"
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": result})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sum, err := s.stats.Summary(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"donors":             sum.Donors,
		"charities_approved": sum.CharitiesApproved,
		"charities_pending":  sum.CharitiesPending,
		"donations_settled":  sum.DonationsSettled,
		"amount_settled":     sum.AmountSettled,
	})
}
