package rest

import (
	"net/http"

	"github.com/amolo254/pamoja/internal/errs"
	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/mux"
)

func (s *Server) handleListCharities(w http.ResponseWriter, r *http.Request) {
	cs, err := s.charities.ListApproved(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]charityDTO, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCharityDTO(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"charities": out})
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, errs.ErrValidation
	}
	return id, nil
}

func (s *Server) handleGetCharity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	c, err := s.charities.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]charityDTO{"charity": toCharityDTO(*c)})
}

func (s *Server) handleCharityStories(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sts, err := s.charities.ListStories(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]storyDTO, 0, len(sts))
	for _, st := range sts {
		out = append(out, toStoryDTO(st))
	}
	writeJSON(w, http.StatusOK, map[string]any{"stories": out})
}

func (s *Server) handleCharityBeneficiaries(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	bs, err := s.charities.ListBeneficiaries(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]beneficiaryDTO, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBeneficiaryDTO(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"beneficiaries": out})
}

type applyBody struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	id, _ := callerFrom(r.Context())
	var body applyBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	c, err := s.charities.Apply(r.Context(), id.UserID, body.Name, body.Description)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]charityDTO{"charity": toCharityDTO(*c)})
}

func (s *Server) handleOwnApplication(w http.ResponseWriter, r *http.Request) {
	id, _ := callerFrom(r.Context())
	c, err := s.charities.Own(r.Context(), id.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]charityDTO{"charity": toCharityDTO(*c)})
}

func (s *Server) handleReceivedDonations(w http.ResponseWriter, r *http.Request) {
	id, _ := callerFrom(r.Context())
	c, err := s.charities.Own(r.Context(), id.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	ds, err := s.donations.ListByCharity(r.Context(), c.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"donations": toDonationDTOs(ds)})
}

type namedBody struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleAddBeneficiary(w http.ResponseWriter, r *http.Request) {
	id, _ := callerFrom(r.Context())
	var body namedBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	b, err := s.charities.AddBeneficiary(r.Context(), id.UserID, body.Name, body.Description)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]beneficiaryDTO{"beneficiary": toBeneficiaryDTO(*b)})
}

func (s *Server) handleDeleteBeneficiary(w http.ResponseWriter, r *http.Request) {
	id, _ := callerFrom(r.Context())
	bid, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.charities.DeleteBeneficiary(r.Context(), id.UserID, bid); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "deleted"})
}

type storyBody struct {
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
}

func (s *Server) handleAddStory(w http.ResponseWriter, r *http.Request) {
	id, _ := callerFrom(r.Context())
	var body storyBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	st, err := s.charities.AddStory(r.Context(), id.UserID, body.Title, body.Body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]storyDTO{"story": toStoryDTO(*st)})
}

func (s *Server) handleDeleteStory(w http.ResponseWriter, r *http.Request) {
	id, _ := callerFrom(r.Context())
	sid, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.charities.DeleteStory(r.Context(), id.UserID, sid); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "deleted"})
}
