package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mw "github.com/5w1tchy/bookshelf/internal/api/middlewares"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	mw.SecurityHeaders(okHandler()).ServeHTTP(rec, httptest.NewRequest("GET", "/books/", nil))

	tests := []struct {
		header   string
		expected string
	}{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"Referrer-Policy", "same-origin"},
	}
	for _, tt := range tests {
		if got := rec.Header().Get(tt.header); got != tt.expected {
			t.Errorf("Header %s: expected %q, got %q", tt.header, tt.expected, got)
		}
	}

	csp := rec.Header().Get("Content-Security-Policy")
	if !strings.HasPrefix(csp, "default-src 'self'") || !strings.Contains(csp, "books.google.com") {
		t.Errorf("unexpected CSP %q", csp)
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}
}

func TestSecurityHeaders_HSTS_OverHTTPS(t *testing.T) {
	// httptest.NewRequest fills req.TLS for https targets
	req := httptest.NewRequest("GET", "https://example.com/books/", nil)
	rec := httptest.NewRecorder()
	mw.SecurityHeaders(okHandler()).ServeHTTP(rec, req)

	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("Expected HSTS over TLS")
	}
}

func TestSecurityHeaders_CacheControl(t *testing.T) {
	rec := httptest.NewRecorder()
	mw.SecurityHeaders(okHandler()).ServeHTTP(rec, httptest.NewRequest("GET", "/books/", nil))

	if !strings.Contains(rec.Header().Get("Cache-Control"), "no-store") {
		t.Error("Expected no-store Cache-Control header")
	}
}
