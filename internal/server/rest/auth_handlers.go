package rest

import (
	"net/http"

	"github.com/amolo254/pamoja/internal/model"
)

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// authResponse is the body of successful login/register calls.
type authResponse struct {
	User        userDTO `json:"user"`
	AccessToken string  `json:"access_token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	u, tok, err := s.auth.Register(r.Context(), body.Email, body.Password, model.Role(body.Role))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{User: toUserDTO(u), AccessToken: tok.AccessToken})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	u, tok, err := s.auth.LoginWithIP(r.Context(), body.Email, body.Password, r.RemoteAddr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: toUserDTO(u), AccessToken: tok.AccessToken})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, _ := callerFrom(r.Context())
	u, err := s.auth.GetUser(r.Context(), id.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]userDTO{"user": toUserDTO(*u)})
}
