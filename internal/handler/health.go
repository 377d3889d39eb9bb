package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 3 * time.Second

// Pinger is any dependency that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type dependency struct {
	name string
	p    Pinger
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	deps   []dependency
	logger *slog.Logger
}

// NewHealthHandler probes postgres and redis. Either may be nil, in which
// case it is reported as "not configured" and does not fail readiness.
func NewHealthHandler(db, cache Pinger, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		deps:   []dependency{{"postgres", db}, {"redis", cache}},
		logger: logger,
	}
}

// ProbeResponse is the body of /healthz and /readyz.
type ProbeResponse struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is one dependency's outcome.
type CheckResult struct {
	State     string `json:"state"`
	LatencyMS int64  `json:"latency_ms,omitempty"`
}

// Healthz answers 200 while the process serves requests.
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ProbeResponse{Status: "ok"})
}

// Readyz pings every dependency in parallel and answers 503 if any is down.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		checks = make(map[string]CheckResult, len(h.deps))
		ready  = true
	)

	var g errgroup.Group
	for _, d := range h.deps {
		if d.p == nil {
			mu.Lock()
			checks[d.name] = CheckResult{State: "not configured"}
			mu.Unlock()
			continue
		}
		g.Go(func() error {
			start := time.Now()
			err := d.p.Ping(ctx)
			res := CheckResult{State: "ok", LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				h.logger.Warn("readiness_check_failed", "component", d.name, "error", err.Error())
				res.State = "unavailable"
			}

			mu.Lock()
			defer mu.Unlock()
			checks[d.name] = res
			if err != nil {
				ready = false
			}
			return nil
		})
	}
	_ = g.Wait()

	if !ready {
		writeJSON(w, http.StatusServiceUnavailable, ProbeResponse{Status: "unavailable", Checks: checks})
		return
	}
	writeJSON(w, http.StatusOK, ProbeResponse{Status: "ok", Checks: checks})
}
