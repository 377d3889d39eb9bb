package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestInMemoryRecorder_Snapshot(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncTokenFetch("success")
	m.IncTokenFetch("failed")
	m.IncTokenCacheHit()
	m.IncTokenCacheHit()
	m.IncUpstreamError("search", "timeout")
	m.ObserveUpstreamDuration("search", 3*time.Millisecond)
	m.IncRecordCreated("mood")
	m.IncAuthFailure("invalid_password")

	s := m.Snapshot()
	if s.TokenFetchSuccess != 1 || s.TokenFetchFailed != 1 {
		t.Fatalf("token fetch = %d/%d, want 1/1", s.TokenFetchSuccess, s.TokenFetchFailed)
	}
	if s.TokenCacheHits != 2 {
		t.Fatalf("TokenCacheHits = %d, want 2", s.TokenCacheHits)
	}
	if s.UpstreamErrors["search/timeout"] != 1 {
		t.Fatalf("UpstreamErrors = %v", s.UpstreamErrors)
	}
	if s.UpstreamDurationsNs["search"] != int64(3*time.Millisecond) {
		t.Fatalf("UpstreamDurationsNs = %v", s.UpstreamDurationsNs)
	}
	if s.RecordsCreated["mood"] != 1 || s.AuthFailures["invalid_password"] != 1 {
		t.Fatalf("unexpected snapshot: %+v", s)
	}

	// Snapshot maps are copies.
	s.RecordsCreated["mood"] = 99
	if got := m.Snapshot().RecordsCreated["mood"]; got != 1 {
		t.Fatalf("snapshot aliasing: got %d", got)
	}
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncRecordCreated("journal")
			m.IncSearchCacheMiss()
		}()
	}
	wg.Wait()

	s := m.Snapshot()
	if s.RecordsCreated["journal"] != 50 || s.SearchCacheMisses != 50 {
		t.Fatalf("unexpected counts: %+v", s)
	}
}
