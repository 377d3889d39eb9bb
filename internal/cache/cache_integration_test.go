//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mindlog/mindlog/internal/model"
	"github.com/mindlog/mindlog/internal/testutil"
)

func TestIntegrationCache_Principal(t *testing.T) {
	ctx, c := newTestCache(t)

	got, err := c.GetPrincipal(ctx, "missing")
	if err != nil || got != nil {
		t.Fatalf("expected miss, got %+v, %v", got, err)
	}

	want := &model.Principal{UserID: "u1", Username: "ann"}
	if err := c.SetPrincipal(ctx, "k1", want, time.Minute); err != nil {
		t.Fatalf("SetPrincipal failed: %v", err)
	}
	got, err = c.GetPrincipal(ctx, "k1")
	if err != nil || got == nil || *got != *want {
		t.Fatalf("GetPrincipal = %+v, %v", got, err)
	}

	if err := c.SetPrincipal(ctx, "k2", want, 50*time.Millisecond); err != nil {
		t.Fatalf("SetPrincipal failed: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	if got, _ := c.GetPrincipal(ctx, "k2"); got != nil {
		t.Fatalf("expected miss after TTL, got %+v", got)
	}
}

func TestIntegrationCache_Search(t *testing.T) {
	ctx, c := newTestCache(t)

	if _, err := c.GetSearch(ctx, "r|en", "anxiety"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	matches := []model.ConditionMatch{{Code: "6B00", Title: "Generalised anxiety disorder", CleanTitle: "Generalised anxiety disorder"}}
	if err := c.SetSearch(ctx, "r|en", "anxiety", matches, time.Minute); err != nil {
		t.Fatalf("SetSearch failed: %v", err)
	}

	got, err := c.GetSearch(ctx, "r|en", "Anxiety")
	if err != nil {
		t.Fatalf("GetSearch failed: %v", err)
	}
	if len(got) != 1 || got[0].Code != "6B00" {
		t.Fatalf("GetSearch = %+v", got)
	}
}

func TestIntegrationCache_RateLimit(t *testing.T) {
	ctx, c := newTestCache(t)

	for i := 0; i < 3; i++ {
		res, err := c.CheckIPRateLimit(ctx, "auth", "10.0.0.1", 1, 3)
		if err != nil || !res.Allowed {
			t.Fatalf("request %d should be allowed: %+v, %v", i, res, err)
		}
	}

	res, _ := c.CheckIPRateLimit(ctx, "auth", "10.0.0.1", 1, 3)
	if res.Allowed {
		t.Fatal("fourth request should be limited")
	}
	if res.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %v, want > 0", res.RetryAfter)
	}

	other, _ := c.CheckIPRateLimit(ctx, "auth", "10.0.0.2", 1, 3)
	if !other.Allowed {
		t.Error("other IPs have their own bucket")
	}
}

func newTestCache(t *testing.T) (context.Context, *Cache) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	c, err := New(ctx, testutil.RequireEnv(t, "REDIS_URL"))
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	return ctx, c
}
