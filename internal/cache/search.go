package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mindlog/mindlog/internal/model"
)

const (
	searchKeyPrefix = "icd:search:"

	// DefaultSearchTTL is the TTL for cached classification search results.
	DefaultSearchTTL = time.Hour
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// GetSearch retrieves cached search results for a query within a release
// and language. Returns ErrCacheMiss if not found.
func (c *Cache) GetSearch(ctx context.Context, scope, query string) ([]model.ConditionMatch, error) {
	var matches []model.ConditionMatch
	found, err := getJSON(ctx, c.client, searchKey(scope, query), &matches)
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	if !found {
		return nil, ErrCacheMiss
	}
	return matches, nil
}

// SetSearch stores search results.
func (c *Cache) SetSearch(ctx context.Context, scope, query string, matches []model.ConditionMatch, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultSearchTTL
	}
	if matches == nil {
		matches = []model.ConditionMatch{}
	}

	if err := setJSON(ctx, c.client, searchKey(scope, query), matches, ttl); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// searchKey normalizes the query so "Anxiety " and "anxiety" share an entry.
// The query is hashed because it is free text.
func searchKey(scope, query string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	sum := sha256.Sum256([]byte(scope + "\x00" + normalized))
	return searchKeyPrefix + hex.EncodeToString(sum[:16])
}
