package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pet-adoption-portal/internal/platform/logger"
	"pet-adoption-portal/internal/ports/auth"
	"pet-adoption-portal/internal/ports/capabilities"
)

type fakeVerifier struct{}

func (fakeVerifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if token == "good" {
		return auth.Claims{UserID: "u-1", Username: "ana"}, nil
	}
	return auth.Claims{}, errors.New("bad token")
}

type fakeCaps map[string]bool

func (f fakeCaps) HasFeature(ctx context.Context, in capabilities.CapabilityCheck) (bool, error) {
	return f[in.UserID], nil
}

func whoami(w http.ResponseWriter, r *http.Request) {
	c, ok := GetClaims(r.Context())
	if !ok {
		_, _ = w.Write([]byte("anon"))
		return
	}
	_, _ = w.Write([]byte(c.UserID))
}

func serve(h http.Handler, req *http.Request) string {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Body.String()
}

func TestAuthContext_CookieBearerAndDevHeader(t *testing.T) {
	h := AuthContext(fakeVerifier{}, AuthOptions{CookieName: "sid"})(http.HandlerFunc(whoami))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "good"})
	if got := serve(h, req); got != "u-1" {
		t.Fatalf("cookie: got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	if got := serve(h, req); got != "u-1" {
		t.Fatalf("bearer: got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	if got := serve(h, req); got != "anon" {
		t.Fatalf("bad token should be anonymous, got %q", got)
	}

	// Con verifier y sin DevHeaders, el header de debug se ignora.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DebugUserHeader, "intruder")
	if got := serve(h, req); got != "anon" {
		t.Fatalf("debug header must be ignored, got %q", got)
	}

	dev := AuthContext(nil, AuthOptions{})(http.HandlerFunc(whoami))
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DebugUserHeader, "dev-1")
	if got := serve(dev, req); got != "dev-1" {
		t.Fatalf("dev header: got %q", got)
	}
}

func TestRequireCapability(t *testing.T) {
	caps := fakeCaps{"mod-1": true}
	h := AuthContext(nil, AuthOptions{})(RequireCapability(caps, capabilities.CapabilityModerate)(http.HandlerFunc(whoami)))

	cases := []struct {
		user string
		want int
	}{
		{"", http.StatusUnauthorized},
		{"user-1", http.StatusForbidden},
		{"mod-1", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.user != "" {
			req.Header.Set(DebugUserHeader, tc.user)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("user %q: expected %d got %d", tc.user, tc.want, rec.Code)
		}
	}
}

func TestRecover_LogsAndReturns500(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: logger.Debug, Format: logger.FormatJSON, Output: &buf})

	h := Recover(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Fatalf("expected panic log, got %q", buf.String())
	}
}
