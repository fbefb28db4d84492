package rest

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/amolo254/pamoja/internal/errs"
	"github.com/amolo254/pamoja/internal/model"
	"github.com/amolo254/pamoja/internal/service"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

type ctxKey int

const identityKey ctxKey = iota

// identity is the verified caller stashed in the request context.
type identity struct {
	UserID uuid.UUID
	Role   model.Role
}

func callerFrom(ctx context.Context) (identity, bool) {
	id, ok := ctx.Value(identityKey).(identity)
	return id, ok
}

// Logging logs one line per request with method, path, status and duration.
func Logging(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			// no payloads, only metadata
			log.Info("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.status),
				zap.Duration("dur", time.Since(start)),
				zap.String("peer", r.RemoteAddr),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Recover converts handler panics into 500 responses.
func Recover(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic",
						zap.Any("reason", rec),
						zap.ByteString("stack", debug.Stack()),
						zap.String("path", r.URL.Path),
					)
					writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts "Authorization: Bearer <JWT>" from the request.
func bearerToken(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
		return strings.TrimSpace(v[7:])
	}
	return ""
}

// requireAuth verifies the bearer token and stashes the caller identity.
// Any verification failure answers with a session-ending body ("Token
// expired" or "Invalid token") that triggers client-side
// de-authentication; "Invalid credentials" is reserved for login.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := bearerToken(r)
		if tok == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing token"})
			return
		}
		userID, role, err := service.VerifyAccessToken(tok, s.signKey)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, errs.ErrTokenExpired) {
				msg = "Token expired"
			}
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: msg})
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, identity{UserID: userID, Role: role})
		next(w, r.WithContext(ctx))
	}
}

// requireRole additionally restricts the handler to one role.
func (s *Server) requireRole(role model.Role, next http.HandlerFunc) http.HandlerFunc {
	return s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		id, _ := callerFrom(r.Context())
		if id.Role != role {
			writeJSON(w, http.StatusForbidden, errorBody{Error: "forbidden"})
			return
		}
		next(w, r)
	})
}
