package handler

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/mindlog/mindlog/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "mindlog_icd_token_fetches_total{status=\"success\"} %d\n", snap.TokenFetchSuccess)
	writeMetric(w, "mindlog_icd_token_fetches_total{status=\"failed\"} %d\n", snap.TokenFetchFailed)
	writeMetric(w, "mindlog_icd_token_cache_hits_total %d\n", snap.TokenCacheHits)
	writeMetric(w, "mindlog_icd_search_cache_hits_total %d\n", snap.SearchCacheHits)
	writeMetric(w, "mindlog_icd_search_cache_misses_total %d\n", snap.SearchCacheMisses)

	for _, key := range sortedKeys(snap.UpstreamErrors) {
		op, kind, _ := strings.Cut(key, "/")
		writeMetric(w, "mindlog_icd_upstream_errors_total{op=%q,kind=%q} %d\n", op, kind, snap.UpstreamErrors[key])
	}
	for _, op := range sortedKeys(snap.UpstreamCalls) {
		writeMetric(w, "mindlog_icd_upstream_duration_seconds_count{op=%q} %d\n", op, snap.UpstreamCalls[op])
		writeMetric(w, "mindlog_icd_upstream_duration_seconds_sum{op=%q} %.6f\n", op, float64(snap.UpstreamDurationsNs[op])/1e9)
	}

	for _, kind := range sortedKeys(snap.RecordsCreated) {
		writeMetric(w, "mindlog_records_created_total{kind=%q} %d\n", kind, snap.RecordsCreated[kind])
	}
	for _, reason := range sortedKeys(snap.AuthFailures) {
		writeMetric(w, "mindlog_auth_failures_total{reason=%q} %d\n", reason, snap.AuthFailures[reason])
	}
	writeMetric(w, "mindlog_rate_limited_total %d\n", snap.RateLimited)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
