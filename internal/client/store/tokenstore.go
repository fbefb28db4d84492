// Package store persists the bearer credential between client runs.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Store is the single source of truth for the persisted bearer token.
// Only the session manager and the HTTP layer's expiry path may write it.
type Store interface {
	// Load returns the saved token, or "" when absent or stale.
	Load() (string, error)
	// Save persists the token.
	Save(token string) error
	// Clear removes the token. Clearing an empty store is a no-op.
	Clear() error
}

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// File keeps the token in a JSON file under the user config dir.
type File struct{ path string }

// NewFile constructs a file store rooted at XDG_CONFIG_HOME (or ~/.config).
func NewFile() *File {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return &File{path: filepath.Join(dir, "pamoja", "token.json")}
}

// NewFileAt constructs a file store at an explicit path.
func NewFileAt(path string) *File { return &File{path: path} }

// Load reads the saved token. Missing, unreadable or expired files all
// read as "no token" so startup restore can degrade silently.
func (f *File) Load() (string, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", nil
	}
	if tf.AccessToken == "" || (!tf.ExpiresAt.IsZero() && time.Now().After(tf.ExpiresAt)) {
		return "", nil
	}
	return tf.AccessToken, nil
}

// Save writes the token, deriving expiry from the JWT exp claim when present.
func (f *File) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	var claims jwt.RegisteredClaims
	_, _ = jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) { return nil, nil },
		jwt.WithoutClaimsValidation(),
	)
	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	b, err := json.MarshalIndent(tokenFile{AccessToken: token, ExpiresAt: exp}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, b, 0o600)
}

// Clear removes the token file.
func (f *File) Clear() error {
	err := os.Remove(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Memory is an in-process store for tests.
type Memory struct {
	mu  sync.Mutex
	tok string
}

// Load returns the saved token.
func (m *Memory) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tok, nil
}

// Save persists the token.
func (m *Memory) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = token
	return nil
}

// Clear removes the token.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = ""
	return nil
}
