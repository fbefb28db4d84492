// Package rest exposes the platform's JSON API over HTTP.
package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/amolo254/pamoja/internal/errs"
	"github.com/amolo254/pamoja/internal/service"
	"go.uber.org/zap"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth      service.AuthService
	donations service.DonationService
	charities service.CharityService
	stats     service.StatsService
	signKey   []byte
	log       *zap.Logger
}

// New constructs a REST server with injected services.
func New(
	auth service.AuthService,
	donations service.DonationService,
	charities service.CharityService,
	stats service.StatsService,
	signKey []byte,
	log *zap.Logger,
) *Server {
	return &Server{
		auth:      auth,
		donations: donations,
		charities: charities,
		stats:     stats,
		signKey:   signKey,
		log:       log,
	}
}

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps sentinel errors to status codes and stable bodies.
// The "Token expired" body is load-bearing: clients key reactive
// de-authentication off it.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrTokenExpired):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Token expired"})
	case errors.Is(err, errs.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Invalid credentials"})
	case errors.Is(err, errs.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Error: "forbidden"})
	case errors.Is(err, errs.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, errs.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody{Error: "already exists"})
	case errors.Is(err, errs.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many attempts, try again later"})
	case errors.Is(err, errs.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	default:
		s.log.Error("handler error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal"})
	}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.ErrValidation
	}
	return nil
}
