package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paytak", TokenFileName)

	c, err := NewContext(path, discardLogger())
	if err != nil {
		t.Fatalf("NewContext() error: %v", err)
	}

	if _, ok := c.Token(); ok {
		t.Fatal("fresh context should have no token")
	}

	if err := c.SetToken("abc123"); err != nil {
		t.Fatalf("SetToken() error: %v", err)
	}

	// A new context at the same path resumes the session.
	resumed, err := NewContext(path, discardLogger())
	if err != nil {
		t.Fatalf("NewContext() error: %v", err)
	}
	got, ok := resumed.Token()
	if !ok || got != "abc123" {
		t.Errorf("resumed Token() = %q, %v; want %q, true", got, ok, "abc123")
	}
}

func TestClearRemovesToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), TokenFileName)

	c, err := NewContext(path, discardLogger())
	if err != nil {
		t.Fatalf("NewContext() error: %v", err)
	}
	if err := c.SetToken("abc123"); err != nil {
		t.Fatalf("SetToken() error: %v", err)
	}

	c.Clear()
	if _, ok := c.Token(); ok {
		t.Error("Token() should report no token after Clear()")
	}

	// Clearing twice is fine.
	c.Clear()

	resumed, err := NewContext(path, discardLogger())
	if err != nil {
		t.Fatalf("NewContext() error: %v", err)
	}
	if _, ok := resumed.Token(); ok {
		t.Error("cleared token should not survive a restart")
	}
}

// unsignedJWT builds a structurally valid but unsigned JWT with the given
// expiry, enough for the unverified exp peek.
func unsignedJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(map[string]any{"exp": exp.Unix(), "sub": "42"})
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	sig := base64.RawURLEncoding.EncodeToString([]byte("sig"))
	return fmt.Sprintf("%s.%s.%s", header, base64.RawURLEncoding.EncodeToString(payload), sig)
}

func TestExpired(t *testing.T) {
	tests := []struct {
		name  string
		token func(t *testing.T) string
		want  bool
	}{
		{"no token", func(*testing.T) string { return "" }, false},
		{"not a jwt", func(*testing.T) string { return "opaque-session-token" }, false},
		{
			"future expiry",
			func(t *testing.T) string { return unsignedJWT(t, time.Now().Add(time.Hour)) },
			false,
		},
		{
			"past expiry",
			func(t *testing.T) string { return unsignedJWT(t, time.Now().Add(-time.Hour)) },
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewContext(filepath.Join(t.TempDir(), TokenFileName), discardLogger())
			if err != nil {
				t.Fatalf("NewContext() error: %v", err)
			}
			if tok := tt.token(t); tok != "" {
				if err := c.SetToken(tok); err != nil {
					t.Fatalf("SetToken() error: %v", err)
				}
			}
			if got := c.Expired(); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}
