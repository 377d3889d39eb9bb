// Package icd is a client for the WHO ICD-11 classification API.
package icd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	DefaultTokenURL         = "https://icdaccessmanagement.who.int/connect/token"
	DefaultBaseURL          = "https://id.who.int/icd"
	DefaultScope            = "icdapi_access"
	DefaultRelease          = "release/11/2023-01/mms"
	DefaultLanguage         = "en"
	DefaultCategoryEntityID = "334847586"
	DefaultTimeout          = 10 * time.Second
	DefaultSafetyMargin     = 60 * time.Second

	// MinQueryLength is the shortest accepted search query, in characters.
	MinQueryLength = 2

	maxResponseBytes = 10 << 20
)

// Config configures the provider client. Zero fields take the defaults above.
// A negative SafetyMargin caches tokens until their reported expiry.
type Config struct {
	TokenURL         string
	BaseURL          string
	ClientID         string
	ClientSecret     string
	Scope            string
	Release          string
	Language         string
	CategoryEntityID string
	Timeout          time.Duration
	SafetyMargin     time.Duration
}

func (c Config) withDefaults() Config {
	if c.TokenURL == "" {
		c.TokenURL = DefaultTokenURL
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Scope == "" {
		c.Scope = DefaultScope
	}
	if c.Release == "" {
		c.Release = DefaultRelease
	}
	c.Release = strings.Trim(c.Release, "/")
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.CategoryEntityID == "" {
		c.CategoryEntityID = DefaultCategoryEntityID
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	switch {
	case c.SafetyMargin == 0:
		c.SafetyMargin = DefaultSafetyMargin
	case c.SafetyMargin < 0:
		c.SafetyMargin = 0
	}
	return c
}

// Recorder receives client metrics.
type Recorder interface {
	IncTokenFetch(status string)
	IncTokenCacheHit()
	IncUpstreamError(op, kind string)
	ObserveUpstreamDuration(op string, d time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) IncTokenFetch(string)                          {}
func (noopRecorder) IncTokenCacheHit()                             {}
func (noopRecorder) IncUpstreamError(string, string)               {}
func (noopRecorder) ObserveUpstreamDuration(string, time.Duration) {}

// Client talks to the classification provider. It is safe for concurrent use.
type Client struct {
	cfg        Config
	oauth      *clientcredentials.Config
	httpClient *http.Client
	tokens     tokenCache
	now        func() time.Time
	metrics    Recorder
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for token and API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithClock sets the time source used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func WithMetrics(r Recorder) Option {
	return func(c *Client) { c.metrics = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client.
func New(cfg Config, opts ...Option) *Client {
	cfg = cfg.withDefaults()
	c := &Client{
		cfg: cfg,
		oauth: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       []string{cfg.Scope},
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		now:     time.Now,
		metrics: noopRecorder{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = NewHTTPClient()
	}
	return c
}

// Close forgets the cached token and drops idle provider connections.
func (c *Client) Close(context.Context) error {
	c.tokens.set("", time.Time{})
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) configured() bool {
	return c.cfg.ClientID != "" && c.cfg.ClientSecret != ""
}

// Categories returns the raw entity document of the configured mental-health
// category.
func (c *Client) Categories(ctx context.Context) (json.RawMessage, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := c.cfg.BaseURL + "/entity/" + c.cfg.CategoryEntityID
	start := time.Now()
	var body []byte
	err = c.withTimeout(ctx, "categories", func(ctx context.Context) error {
		b, err := c.get(ctx, endpoint, token)
		if err != nil {
			return &Error{Op: "categories", Kind: ErrUpstream, Err: err}
		}
		body = b
		return nil
	})
	c.metrics.ObserveUpstreamDuration("categories", time.Since(start))
	if err == nil && !json.Valid(body) {
		err = &Error{Op: "categories", Kind: ErrUpstream, Err: errUnexpectedShape}
	}
	if err != nil {
		c.metrics.IncUpstreamError("categories", KindName(err))
		return nil, err
	}
	return json.RawMessage(body), nil
}

// get performs an authenticated GET and returns the full body of a 2xx
// response. A 401 drops the token from the cache.
func (c *Client) get(ctx context.Context, endpoint, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("API-Version", "v2")
	req.Header.Set("Accept-Language", c.cfg.Language)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.invalidate(token)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{Code: resp.StatusCode, Body: snippet(body)}
	}
	return body, nil
}

// withTimeout runs fn under the configured per-call timeout. A call that
// times out is retried once, immediately, unless the caller's own context
// is already done. A final timeout is reported as ErrUpstreamTimeout.
func (c *Client) withTimeout(ctx context.Context, op string, fn func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= 2; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		err = fn(callCtx)
		cancel()

		if err == nil || !isTimeout(err) {
			return err
		}
		if ctx.Err() != nil {
			break
		}
		c.logger.Warn("icd_call_timeout", "op", op, "attempt", attempt)
	}
	return &Error{Op: op, Kind: ErrUpstreamTimeout, Err: cause(err)}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// cause strips a classified wrapper so the timeout error does not carry a
// second kind.
func cause(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Err
	}
	return err
}

func snippet(b []byte) string {
	const max = 200
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return fmt.Sprintf("%s...", s[:max])
	}
	return s
}
