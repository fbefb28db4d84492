// Package service contains application services for auth, donations, charities and stats.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	pkgcrypto "github.com/amolo254/pamoja/internal/crypto"
	"github.com/amolo254/pamoja/internal/errs"
	"github.com/amolo254/pamoja/internal/limiter"
	"github.com/amolo254/pamoja/internal/model"
	"github.com/amolo254/pamoja/internal/repository"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the JWT payload: registered claims plus the account role.
type TokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// AuthService defines authentication operations.
type AuthService interface {
	// Register creates a new user with secure password hashing and signs them in.
	Register(ctx context.Context, email, password string, role model.Role) (model.User, model.Tokens, error)
	// LoginWithIP applies rate-limiting and authenticates the user.
	LoginWithIP(ctx context.Context, email, password, ip string) (model.User, model.Tokens, error)
	// GetUser loads the account behind a verified token subject.
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, signKey []byte, accessTTL time.Duration, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, signKey: signKey, accessTTL: accessTTL, lim: lim}
}

// Register creates a new user record with a per-user salt and issues tokens.
// Only donor and charity roles may self-register.
func (s *AuthServiceImpl) Register(ctx context.Context, email, password string, role model.Role) (model.User, model.Tokens, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return model.User{}, model.Tokens{}, errs.ErrValidation
	}
	if !role.SelfRegistrable() {
		return model.User{}, model.Tokens{}, errs.ErrValidation
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return model.User{}, model.Tokens{}, err
	}
	saltAuth, err := pkgcrypto.RandBytes(16)
	if err != nil {
		return model.User{}, model.Tokens{}, err
	}
	u := &model.User{
		ID:       uid,
		Email:    email,
		Role:     role,
		PwdHash:  pkgcrypto.HashPassword([]byte(password), saltAuth),
		SaltAuth: saltAuth,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return model.User{}, model.Tokens{}, err
	}

	tok, err := s.issueAccessToken(u.ID, u.Role)
	if err != nil {
		return model.User{}, model.Tokens{}, err
	}
	return *u, tok, nil
}

// LoginWithIP authenticates with rate limiting by (email, ip).
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, email, password, ip string) (model.User, model.Tokens, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return model.User{}, model.Tokens{}, err
	}
	if !allowed {
		return model.User{}, model.Tokens{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), u.SaltAuth, u.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
			return model.User{}, model.Tokens{}, errs.ErrRateLimited
		}
		// hide existence of the account on wrong password
		return model.User{}, model.Tokens{}, errs.ErrUnauthorized
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, email, ipHash)

	tok, err := s.issueAccessToken(u.ID, u.Role)
	if err != nil {
		return model.User{}, model.Tokens{}, err
	}
	return *u, tok, nil
}

// GetUser loads the account behind a verified token subject.
func (s *AuthServiceImpl) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// issueAccessToken creates a signed HS256 JWT for the given subject and role.
func (s *AuthServiceImpl) issueAccessToken(userID uuid.UUID, role model.Role) (model.Tokens, error) {
	now := time.Now()
	exp := now.Add(s.accessTTL)
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role: string(role),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: signed, ExpiresAt: exp}, nil
}

// VerifyAccessToken parses and validates a bearer token against the signing key.
// Expired tokens map to ErrTokenExpired so the REST layer can tell the
// client to drop its session; any other defect maps to ErrUnauthorized.
func VerifyAccessToken(tokenStr string, signKey []byte) (uuid.UUID, model.Role, error) {
	var claims TokenClaims
	parsed, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return signKey, nil
	}, jwt.WithLeeway(30*time.Second))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, "", errs.ErrTokenExpired
		}
		return uuid.Nil, "", errs.ErrUnauthorized
	}
	if !parsed.Valid {
		return uuid.Nil, "", errs.ErrUnauthorized
	}
	id, err := uuid.FromString(claims.Subject)
	if err != nil {
		return uuid.Nil, "", errs.ErrUnauthorized
	}
	return id, model.Role(claims.Role), nil
}
