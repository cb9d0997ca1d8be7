// Package auth owns the session token lifecycle. The token lives in one
// explicit Context that is injected into every network-capable component;
// login sets it, logout and any 401 clear it. Nothing else reads or writes
// the stored token.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenFileName is the single fixed key the token persists under, inside the
// application config directory.
const TokenFileName = "token"

// Context holds the bearer token for the current session.
type Context struct {
	mu     sync.RWMutex
	token  string
	path   string
	logger *slog.Logger
}

// NewContext creates an auth context persisting the token at path. If a token
// is already persisted there, it is loaded so a restart resumes the session.
func NewContext(path string, logger *slog.Logger) (*Context, error) {
	c := &Context{path: path, logger: logger}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		c.token = strings.TrimSpace(string(data))
	case errors.Is(err, os.ErrNotExist):
		// No stored session; start logged out.
	default:
		return nil, fmt.Errorf("read token file: %w", err)
	}

	return c, nil
}

// DefaultTokenPath returns the token location under the user config dir.
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "paytak", TokenFileName), nil
}

// SetToken stores the token in memory and persists it.
func (c *Context) SetToken(token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token

	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(c.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// Clear wipes the token from memory and disk. Used by logout and by the
// uniform 401 handler; safe to call when already cleared.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = ""
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.logger.Warn("failed to remove token file", "path", c.path, "error", err)
	}
}

// Token returns the current token and whether one is set.
func (c *Context) Token() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, c.token != ""
}

// Expired reports whether the stored token carries an exp claim in the past.
// The signature is not verified - that is the server's job - this only lets
// the client drop a dead token without wasting a request. Tokens without a
// readable exp claim are not considered expired.
func (c *Context) Expired() bool {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
