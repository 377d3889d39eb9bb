package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncTokenFetch(status string) {}
func (n *NoopRecorder) IncTokenCacheHit() {}
func (n *NoopRecorder) IncUpstreamError(op, kind string) {}
func (n *NoopRecorder) ObserveUpstreamDuration(op string, d time.Duration) {}
func (n *NoopRecorder) IncSearchCacheHit() {}
func (n *NoopRecorder) IncSearchCacheMiss() {}
func (n *NoopRecorder) IncRecordCreated(kind string) {}
func (n *NoopRecorder) IncAuthFailure(reason string) {}
func (n *NoopRecorder) IncRateLimited() {}
