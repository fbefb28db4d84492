// Package api is the HTTP client for the platform's JSON API. It
// attaches the persisted bearer token to every request and inspects
// every response before callers see it, so a token-expired answer from
// any endpoint tears the session down exactly once.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/amolo254/pamoja/internal/client/store"
	"github.com/amolo254/pamoja/internal/errs"
	"go.uber.org/zap"
)

// Error is a server-returned failure. It unwraps to one of the errs
// sentinels so callers can branch with errors.Is while still showing
// the server's message.
type Error struct {
	Status   int
	Message  string
	sentinel error
}

func (e *Error) Error() string { return e.Message }

// Unwrap exposes the sentinel for errors.Is.
func (e *Error) Unwrap() error { return e.sentinel }

// Client is the platform API client.
type Client struct {
	httpc   *http.Client
	baseURL string
	tokens  store.Store
	log     *zap.Logger

	onAuthExpired func()
}

// New constructs a client for the given base URL.
func New(baseURL string, tokens store.Store, log *zap.Logger) *Client {
	return &Client{
		httpc:   &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		log:     log,
	}
}

// OnAuthExpired registers the callback fired when any response reports
// the bearer token expired or revoked. Registration instead of a direct
// session dependency keeps this layer below the session manager.
func (c *Client) OnAuthExpired(fn func()) { c.onAuthExpired = fn }

// do performs one request/response cycle. Transport-level failures are
// tagged ErrUnavailable to distinguish them from server-returned errors.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok, err := c.tokens.Load(); err == nil && tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		// a 2xx with an undecodable body means the server is unusable,
		// not that the caller did anything wrong
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", errs.ErrUnavailable, err)
		}
		return nil
	}
	return c.asError(resp)
}

// asError maps a non-2xx response to an *Error. A 401 whose body says
// the token expired or was revoked additionally clears the persisted
// token and fires the registered callback, once per offending response.
func (c *Client) asError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	msg := body.Error
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	sentinel := fmt.Errorf("http %d", resp.StatusCode)
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if tokenInvalidated(msg) {
			_ = c.tokens.Clear()
			if c.onAuthExpired != nil {
				c.onAuthExpired()
			}
			sentinel = errs.ErrTokenExpired
		} else {
			sentinel = errs.ErrUnauthorized
		}
	case http.StatusForbidden:
		sentinel = errs.ErrForbidden
	case http.StatusNotFound:
		sentinel = errs.ErrNotFound
	case http.StatusConflict:
		sentinel = errs.ErrAlreadyExists
	case http.StatusUnprocessableEntity:
		sentinel = errs.ErrValidation
	case http.StatusTooManyRequests:
		sentinel = errs.ErrRateLimited
	}
	return &Error{Status: resp.StatusCode, Message: msg, sentinel: sentinel}
}

// tokenInvalidated reports whether a 401 body marks the session as over
// (expired or revoked credential) rather than a failed login attempt.
func tokenInvalidated(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "expired") || strings.Contains(m, "revoked") || strings.Contains(m, "invalid token")
}
