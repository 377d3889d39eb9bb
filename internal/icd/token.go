package icd

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// tokenCache holds one bearer token. The zero value is the NoToken state.
type tokenCache struct {
	mu     sync.RWMutex
	token  string
	expiry time.Time
	flight singleflight.Group
}

// get returns the cached token if it is still valid at now.
func (t *tokenCache) get(now time.Time) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.token == "" || !now.Before(t.expiry) {
		return "", false
	}
	return t.token, true
}

func (t *tokenCache) set(token string, expiry time.Time) {
	t.mu.Lock()
	t.token, t.expiry = token, expiry
	t.mu.Unlock()
}

// invalidate drops token if it is still the cached one.
func (t *tokenCache) invalidate(token string) {
	t.mu.Lock()
	if t.token == token {
		t.token, t.expiry = "", time.Time{}
	}
	t.mu.Unlock()
}

// Token returns a bearer token, fetching a new one when none is cached or
// the cached one has expired. Concurrent callers share one in-flight fetch.
// A failed fetch leaves the cache as it was. A caller whose ctx ends stops
// waiting; the fetch itself carries on for the others.
func (c *Client) Token(ctx context.Context) (string, error) {
	if !c.configured() {
		return "", ErrNotConfigured
	}

	if tok, ok := c.tokens.get(c.now()); ok {
		c.metrics.IncTokenCacheHit()
		return tok, nil
	}

	// The flight outlives any single caller; per-attempt deadlines still apply.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.tokens.flight.DoChan("token", func() (any, error) {
		if tok, ok := c.tokens.get(c.now()); ok {
			return tok, nil
		}
		return c.refreshToken(flightCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", &Error{Op: "token", Kind: ErrUpstreamTimeout, Err: ctx.Err()}
	}
}

func (c *Client) refreshToken(ctx context.Context) (string, error) {
	start := time.Now()

	var tok *oauth2.Token
	err := c.withTimeout(ctx, "token", func(ctx context.Context) error {
		t, err := c.oauth.Token(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient))
		if err != nil {
			return &Error{Op: "token", Kind: ErrUpstreamAuth, Err: err}
		}
		if t.AccessToken == "" || t.Expiry.IsZero() {
			return &Error{Op: "token", Kind: ErrUpstreamAuth, Err: errMalformedToken}
		}
		tok = t
		return nil
	})
	c.metrics.ObserveUpstreamDuration("token", time.Since(start))
	if err != nil {
		c.metrics.IncTokenFetch("failed")
		c.metrics.IncUpstreamError("token", KindName(err))
		c.logger.Warn("icd_token_fetch_failed", "error", err)
		return "", err
	}

	expiry := tok.Expiry.Add(-c.cfg.SafetyMargin)
	c.tokens.set(tok.AccessToken, expiry)
	c.metrics.IncTokenFetch("success")
	c.logger.Info("icd_token_fetched", "expires_at", expiry.UTC().Format(time.RFC3339))

	return tok.AccessToken, nil
}
