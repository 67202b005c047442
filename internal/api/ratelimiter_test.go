package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticLimiter struct {
	allow bool
}

func (s *staticLimiter) Allow() bool {
	return s.allow
}

func TestRateLimitMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		allow    bool
		wantCode int
	}{
		{"limiter denies", false, http.StatusTooManyRequests},
		{"limiter allows", true, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			middleware := rateLimitMiddleware(&staticLimiter{allow: tt.allow}, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusNoContent)
			}))

			rec := httptest.NewRecorder()
			middleware.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runtime-config", nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if called != tt.allow {
				t.Fatalf("expected handler called=%v, got %v", tt.allow, called)
			}
		})
	}
}

func TestRateLimitMiddlewareWithoutLimiter(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	if got := rateLimitMiddleware(nil, next); got == nil {
		t.Fatalf("expected the next handler to be returned unchanged")
	}
}

func TestNewTokenBucketLimiterClampsNonPositiveValues(t *testing.T) {
	limiter := newTokenBucketLimiter(-1, 0)
	if !limiter.Allow() {
		t.Fatalf("expected first request to be allowed")
	}
	if limiter.Allow() {
		t.Fatalf("expected burst to be clamped to one request")
	}
}
