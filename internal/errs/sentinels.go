// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service/client layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenExpired indicates the presented bearer token is expired or revoked.
	ErrTokenExpired = errors.New("token expired")

	// ErrForbidden indicates the authenticated role may not perform the action.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrValidation indicates rejected input (bad phone, zero amount, ...).
	ErrValidation = errors.New("validation failed")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable indicates the server could not be reached at all,
	// as opposed to a server-returned error.
	ErrUnavailable = errors.New("service unavailable")
)
