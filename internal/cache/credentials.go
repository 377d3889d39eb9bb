package cache

import (
	"context"
	"time"

	"github.com/mindlog/mindlog/internal/model"
)

const (
	credentialCachePrefix = "auth:cred:"
	// DefaultCredentialTTL is how long a verified credential pair is trusted.
	DefaultCredentialTTL = 5 * time.Minute
)

// GetPrincipal returns the principal cached under a credential key
// (see auth.CredentialKeyer.Key), or nil on a miss. Redis failures also read as a
// miss so authentication falls back to the database.
func (c *Cache) GetPrincipal(ctx context.Context, credentialKey string) (*model.Principal, error) {
	var p model.Principal
	found, err := getJSON(ctx, c.client, credentialCachePrefix+credentialKey, &p)
	if err != nil || !found || p.UserID == "" {
		return nil, nil //nolint:nilerr
	}
	return &p, nil
}

// SetPrincipal caches a verified principal.
func (c *Cache) SetPrincipal(ctx context.Context, credentialKey string, p *model.Principal, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultCredentialTTL
	}
	return setJSON(ctx, c.client, credentialCachePrefix+credentialKey, p, ttl)
}
