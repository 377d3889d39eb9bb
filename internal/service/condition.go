package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mindlog/mindlog/internal/cache"
	"github.com/mindlog/mindlog/internal/icd"
	"github.com/mindlog/mindlog/internal/metrics"
	"github.com/mindlog/mindlog/internal/model"
)

// ConditionClient is the classification provider.
type ConditionClient interface {
	SearchConditions(ctx context.Context, query string) ([]model.ConditionMatch, error)
	Categories(ctx context.Context) (json.RawMessage, error)
}

// SearchCache stores search results per release/language scope.
type SearchCache interface {
	GetSearch(ctx context.Context, scope, query string) ([]model.ConditionMatch, error)
	SetSearch(ctx context.Context, scope, query string, matches []model.ConditionMatch, ttl time.Duration) error
}

// ConditionService fronts the classification provider with a result cache.
type ConditionService struct {
	client  ConditionClient
	cache   SearchCache
	scope   string
	ttl     time.Duration
	metrics metrics.Recorder
	logger  *slog.Logger
}

// ConditionOptions configures a ConditionService. Cache may be nil.
type ConditionOptions struct {
	Cache    SearchCache
	Scope    string
	TTL      time.Duration
	Recorder metrics.Recorder
	Logger   *slog.Logger
}

func NewConditionService(client ConditionClient, opts ConditionOptions) *ConditionService {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NewNoop()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &ConditionService{
		client:  client,
		cache:   opts.Cache,
		scope:   opts.Scope,
		ttl:     opts.TTL,
		metrics: opts.Recorder,
		logger:  opts.Logger,
	}
}

// Search validates the query, then serves from cache or the provider.
// Only successful provider results are cached.
func (s *ConditionService) Search(ctx context.Context, query string) ([]model.ConditionMatch, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < icd.MinQueryLength {
		return nil, icd.ErrQueryTooShort
	}

	if s.cache != nil {
		matches, err := s.cache.GetSearch(ctx, s.scope, query)
		if err == nil {
			s.metrics.IncSearchCacheHit()
			return matches, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("search_cache_read_failed", "error", err)
		}
		s.metrics.IncSearchCacheMiss()
	}

	matches, err := s.client.SearchConditions(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetSearch(ctx, s.scope, query, matches, s.ttl); err != nil {
			s.logger.Warn("search_cache_write_failed", "error", err)
		}
	}
	return matches, nil
}

// Categories returns the provider's raw category document.
func (s *ConditionService) Categories(ctx context.Context) (json.RawMessage, error) {
	return s.client.Categories(ctx)
}
