package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	TokenFetchSuccess   uint64            `json:"token_fetch_success"`
	TokenFetchFailed    uint64            `json:"token_fetch_failed"`
	TokenCacheHits      uint64            `json:"token_cache_hits"`
	SearchCacheHits     uint64            `json:"search_cache_hits"`
	SearchCacheMisses   uint64            `json:"search_cache_misses"`
	RateLimited         uint64            `json:"rate_limited"`
	UpstreamErrors      map[string]uint64 `json:"upstream_errors"`        // key: op/kind
	UpstreamCalls       map[string]uint64 `json:"upstream_calls"`         // key: op
	UpstreamDurationsNs map[string]int64  `json:"upstream_durations_ns"`  // key: op
	RecordsCreated      map[string]uint64 `json:"records_created"`        // key: kind
	AuthFailures        map[string]uint64 `json:"auth_failures"`          // key: reason
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics endpoint
// and the tests.
type InMemoryRecorder struct {
	tokenFetchSuccess uint64
	tokenFetchFailed  uint64
	tokenCacheHits    uint64
	searchCacheHits   uint64
	searchCacheMisses uint64
	rateLimited       uint64

	mu                  sync.Mutex
	upstreamErrors      map[string]uint64
	upstreamCalls       map[string]uint64
	upstreamDurationsNs map[string]int64
	recordsCreated      map[string]uint64
	authFailures        map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		upstreamErrors:      make(map[string]uint64),
		upstreamCalls:       make(map[string]uint64),
		upstreamDurationsNs: make(map[string]int64),
		recordsCreated:      make(map[string]uint64),
		authFailures:        make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		TokenFetchSuccess:   atomic.LoadUint64(&m.tokenFetchSuccess),
		TokenFetchFailed:    atomic.LoadUint64(&m.tokenFetchFailed),
		TokenCacheHits:      atomic.LoadUint64(&m.tokenCacheHits),
		SearchCacheHits:     atomic.LoadUint64(&m.searchCacheHits),
		SearchCacheMisses:   atomic.LoadUint64(&m.searchCacheMisses),
		RateLimited:         atomic.LoadUint64(&m.rateLimited),
		UpstreamErrors:      copyMap(m.upstreamErrors),
		UpstreamCalls:       copyMap(m.upstreamCalls),
		UpstreamDurationsNs: copyMap(m.upstreamDurationsNs),
		RecordsCreated:      copyMap(m.recordsCreated),
		AuthFailures:        copyMap(m.authFailures),
	}
}

func copyMap[V uint64 | int64](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// IncTokenFetch counts a token fetch by outcome.
func (m *InMemoryRecorder) IncTokenFetch(status string) {
	if status == "success" {
		atomic.AddUint64(&m.tokenFetchSuccess, 1)
		return
	}
	atomic.AddUint64(&m.tokenFetchFailed, 1)
}

func (m *InMemoryRecorder) IncTokenCacheHit() {
	atomic.AddUint64(&m.tokenCacheHits, 1)
}

func (m *InMemoryRecorder) IncSearchCacheHit() {
	atomic.AddUint64(&m.searchCacheHits, 1)
}

func (m *InMemoryRecorder) IncSearchCacheMiss() {
	atomic.AddUint64(&m.searchCacheMisses, 1)
}

func (m *InMemoryRecorder) IncRateLimited() {
	atomic.AddUint64(&m.rateLimited, 1)
}

// IncUpstreamError counts a failed provider call.
func (m *InMemoryRecorder) IncUpstreamError(op, kind string) {
	m.mu.Lock()
	m.upstreamErrors[op+"/"+kind]++
	m.mu.Unlock()
}

// ObserveUpstreamDuration records the duration of a provider call.
func (m *InMemoryRecorder) ObserveUpstreamDuration(op string, d time.Duration) {
	m.mu.Lock()
	m.upstreamCalls[op]++
	m.upstreamDurationsNs[op] += d.Nanoseconds()
	m.mu.Unlock()
}

func (m *InMemoryRecorder) IncRecordCreated(kind string) {
	m.mu.Lock()
	m.recordsCreated[kind]++
	m.mu.Unlock()
}

func (m *InMemoryRecorder) IncAuthFailure(reason string) {
	m.mu.Lock()
	m.authFailures[reason]++
	m.mu.Unlock()
}
