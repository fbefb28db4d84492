// Package session owns the client's authentication state: who the
// current user is, backed by the persisted bearer token.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/amolo254/pamoja/internal/client/api"
	"github.com/amolo254/pamoja/internal/client/store"
	"github.com/amolo254/pamoja/internal/errs"
	"go.uber.org/zap"
)

// Status is the session lifecycle state.
type Status int

const (
	// StatusInitializing holds until the first Restore resolves.
	StatusInitializing Status = iota
	// StatusUnauthenticated means no valid credential is held.
	StatusUnauthenticated
	// StatusAuthenticating means a login/register call is in flight.
	StatusAuthenticating
	// StatusAuthenticated means user identity is confirmed by the server.
	StatusAuthenticated
	// StatusAuthError means the last login/register attempt was rejected.
	StatusAuthError
)

func (s Status) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAuthError:
		return "auth_error"
	default:
		return "unknown"
	}
}

// ErrBusy is returned when a login/register call is attempted while
// another identity-affecting call is still in flight.
var ErrBusy = errors.New("authentication already in progress")

// Backend is the slice of the API client the session needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (api.AuthResult, error)
	Register(ctx context.Context, email, password, role string) (api.AuthResult, error)
	Me(ctx context.Context) (api.User, error)
}

// Manager is the single source of truth for the current user. One
// instance lives for the whole process; it is reset in place, never
// recreated.
type Manager struct {
	backend Backend
	tokens  store.Store
	log     *zap.Logger

	mu       sync.Mutex
	status   Status
	user     *api.User
	errMsg   string
	expired  bool
	restored bool
	inflight bool
}

// NewManager constructs a session manager in the Initializing state.
// Wire reactive de-authentication with client.OnAuthExpired(m.HandleAuthExpired).
func NewManager(backend Backend, tokens store.Store, log *zap.Logger) *Manager {
	return &Manager{backend: backend, tokens: tokens, log: log, status: StatusInitializing}
}

// Restore resolves the startup state from the persisted token. It never
// fails outward: any problem (no token, network down, token rejected)
// lands on Unauthenticated. Only the first call does work; later calls
// return the settled status.
func (m *Manager) Restore(ctx context.Context) Status {
	m.mu.Lock()
	if m.restored {
		st := m.status
		m.mu.Unlock()
		return st
	}
	m.restored = true
	m.mu.Unlock()

	tok, err := m.tokens.Load()
	if err != nil || tok == "" {
		return m.settle(StatusUnauthenticated, nil)
	}

	u, err := m.backend.Me(ctx)
	if err != nil {
		// stale or rejected credential: silently degrade
		_ = m.tokens.Clear()
		return m.settle(StatusUnauthenticated, nil)
	}
	return m.settle(StatusAuthenticated, &u)
}

func (m *Manager) settle(st Status, u *api.User) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	// reactive de-auth may have fired while Me was in flight; expiry wins
	if m.expired {
		return m.status
	}
	m.status = st
	m.user = u
	return st
}

// Login authenticates and returns the user so the caller can compute a
// redirect. On rejection the reason is stored for inline display and
// the error is returned as well.
func (m *Manager) Login(ctx context.Context, email, password string) (api.User, error) {
	if email == "" || password == "" {
		return api.User{}, fmt.Errorf("%w: email and password required", errs.ErrValidation)
	}
	return m.authenticate(ctx, func() (api.AuthResult, error) {
		return m.backend.Login(ctx, email, password)
	})
}

// Register creates an account (donor or charity) and signs in.
func (m *Manager) Register(ctx context.Context, email, password, role string) (api.User, error) {
	if email == "" || password == "" {
		return api.User{}, fmt.Errorf("%w: email and password required", errs.ErrValidation)
	}
	if role != "donor" && role != "charity" {
		return api.User{}, fmt.Errorf("%w: role must be donor or charity", errs.ErrValidation)
	}
	return m.authenticate(ctx, func() (api.AuthResult, error) {
		return m.backend.Register(ctx, email, password, role)
	})
}

// authenticate runs one identity-affecting call. Only one may be in
// flight at a time; a second is refused rather than queued so a stale
// result can never overwrite a newer one.
func (m *Manager) authenticate(ctx context.Context, call func() (api.AuthResult, error)) (api.User, error) {
	m.mu.Lock()
	if m.inflight {
		m.mu.Unlock()
		return api.User{}, ErrBusy
	}
	m.inflight = true
	m.status = StatusAuthenticating
	// a confirmed identity exists only while Authenticated
	m.user = nil
	m.errMsg = ""
	m.mu.Unlock()

	res, err := call()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inflight = false

	if err != nil {
		_ = m.tokens.Clear()
		m.status = StatusAuthError
		m.user = nil
		m.errMsg = reasonFor(err)
		return api.User{}, err
	}

	if serr := m.tokens.Save(res.AccessToken); serr != nil {
		// in-memory session still works; only restore-on-next-run is lost
		m.log.Warn("persist token", zap.Error(serr))
	}
	m.status = StatusAuthenticated
	m.user = &res.User
	m.errMsg = ""
	m.expired = false
	return res.User, nil
}

// reasonFor maps an API failure to the message shown inline on the form.
func reasonFor(err error) string {
	var apiErr *api.Error
	hasMsg := errors.As(err, &apiErr) && apiErr.Message != ""
	switch {
	case errors.Is(err, errs.ErrUnavailable):
		return "could not reach the server, check your connection"
	case errors.Is(err, errs.ErrUnauthorized):
		if hasMsg {
			return apiErr.Message
		}
		return "invalid credentials"
	case errors.Is(err, errs.ErrValidation):
		return "validation error"
	default:
		if hasMsg {
			return apiErr.Message
		}
		return "something went wrong, please try again"
	}
}

// Logout discards the credential unconditionally. No network call;
// calling it while already unauthenticated changes nothing.
func (m *Manager) Logout() {
	_ = m.tokens.Clear()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = StatusUnauthenticated
	m.user = nil
	m.errMsg = ""
	m.expired = false
}

// ClearError clears the stored rejection reason, nothing else.
func (m *Manager) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errMsg = ""
}

// HandleAuthExpired is the reactive de-authentication hook: any API
// response reporting the token expired or revoked forces the session
// back to Unauthenticated, remembering why so the login view can say so.
// The HTTP layer has already cleared the persisted token.
func (m *Manager) HandleAuthExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = StatusUnauthenticated
	m.user = nil
	m.errMsg = ""
	m.expired = true
	m.log.Info("session ended: token expired")
}

// Status returns the current lifecycle state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// User returns a copy of the confirmed identity, or false when absent.
func (m *Manager) User() (api.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return api.User{}, false
	}
	return *m.user, true
}

// Err returns the stored rejection reason ("" when none).
func (m *Manager) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errMsg
}

// Expired reports whether the session ended because the token expired.
func (m *Manager) Expired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expired
}

// RedirectPath maps a role to its landing route. Total: anything
// unrecognized (including "") lands on the login route.
func RedirectPath(role string) string {
	switch role {
	case "donor":
		return "/donor/dashboard"
	case "charity":
		return "/charity/dashboard"
	case "admin":
		return "/admin/dashboard"
	default:
		return "/login"
	}
}
