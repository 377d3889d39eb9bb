// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Classification provider metrics
	IncTokenFetch(status string) // status: "success" or "failed"
	IncTokenCacheHit()
	IncUpstreamError(op, kind string)
	ObserveUpstreamDuration(op string, d time.Duration)
	IncSearchCacheHit()
	IncSearchCacheMiss()

	// Gateway metrics
	IncRecordCreated(kind string)
	IncAuthFailure(reason string)
	IncRateLimited()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
