package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mindlog/mindlog/internal/cache"
	"github.com/mindlog/mindlog/internal/metrics"
)

type stubLimiter struct {
	result *cache.RateLimitResult
	err    error
	ips    []string
}

func (s *stubLimiter) CheckIPRateLimit(_ context.Context, _, ip string, _, _ int) (*cache.RateLimitResult, error) {
	s.ips = append(s.ips, ip)
	return s.result, s.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		enabled    bool
		limiter    *stubLimiter
		wantStatus int
		wantRetry  string
	}{
		{"disabled", false, &stubLimiter{}, http.StatusOK, ""},
		{"allowed", true, &stubLimiter{result: &cache.RateLimitResult{Allowed: true, Remaining: 4, ResetAt: time.Now()}}, http.StatusOK, ""},
		{"limited", true, &stubLimiter{result: &cache.RateLimitResult{Allowed: false, RetryAfter: 3 * time.Second, ResetAt: time.Now()}}, http.StatusTooManyRequests, "3"},
		{"limiter error fails open", true, &stubLimiter{err: errors.New("redis down")}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := metrics.NewInMemory()
			mw := RateLimitIP(RateLimitConfig{
				Logger:  discardLogger(),
				Limiter: tt.limiter,
				Metrics: rec,
				Enabled: tt.enabled,
				Bucket:  "auth",
				RPS:     5,
				Burst:   5,
			})

			w := httptest.NewRecorder()
			mw(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Retry-After"); got != tt.wantRetry {
				t.Errorf("Retry-After = %q, want %q", got, tt.wantRetry)
			}
			if tt.wantStatus == http.StatusTooManyRequests && rec.Snapshot().RateLimited != 1 {
				t.Error("rate limited request not counted")
			}
		})
	}
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr without port", "10.1.2.3:5555", nil, "10.1.2.3"},
		{"x-forwarded-for first hop", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "203.0.113.7"},
		{"x-real-ip", "10.0.0.1:1", map[string]string{"X-Real-IP": "198.51.100.2"}, "198.51.100.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
