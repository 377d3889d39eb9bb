package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mindlog/mindlog/internal/metrics"
)

func TestMetricsHandler(t *testing.T) {
	rec := metrics.NewInMemory()
	rec.IncTokenFetch("success")
	rec.IncTokenCacheHit()
	rec.IncTokenCacheHit()
	rec.IncUpstreamError("search", "timeout")
	rec.ObserveUpstreamDuration("search", 1500*time.Millisecond)
	rec.IncRecordCreated("journal")

	h := NewMetricsHandler(rec)
	w := httptest.NewRecorder()
	h.Metrics(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := w.Body.String()
	for _, want := range []string{
		`mindlog_icd_token_fetches_total{status="success"} 1`,
		`mindlog_icd_token_cache_hits_total 2`,
		`mindlog_icd_upstream_errors_total{op="search",kind="timeout"} 1`,
		`mindlog_icd_upstream_duration_seconds_sum{op="search"} 1.500000`,
		`mindlog_records_created_total{kind="journal"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in:\n%s", want, body)
		}
	}
}

func TestMetricsHandler_NoSnapshotter(t *testing.T) {
	h := NewMetricsHandler(nil)
	w := httptest.NewRecorder()
	h.Metrics(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
