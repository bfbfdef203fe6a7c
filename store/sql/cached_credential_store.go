package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/appnigma/go-integrations-client/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const credentialCacheKeyPrefix = "appnigma::connection_credentials::v1"

// CachedCredentialStore fronts a persistent credential cache with an
// in-process read-through cache. Writes go to the base store first and then
// evict the cached entry.
type CachedCredentialStore struct {
	base  core.CredentialCache
	cache repositorycache.CacheService
}

func NewCachedCredentialStore(base core.CredentialCache, cacheService repositorycache.CacheService) (*CachedCredentialStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base credential store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: credential cache service is required")
	}
	return &CachedCredentialStore{base: base, cache: cacheService}, nil
}

// CredentialCacheKey returns appnigma::connection_credentials::v1::<connection_id>
// with the id URL-path escaped.
func CredentialCacheKey(connectionID string) (string, error) {
	trimmed := strings.TrimSpace(connectionID)
	if trimmed == "" {
		return "", fmt.Errorf("sqlstore: connection id is required")
	}
	return credentialCacheKeyPrefix + "::" + url.PathEscape(trimmed), nil
}

func (s *CachedCredentialStore) Get(ctx context.Context, connectionID string) (core.ConnectionCredentials, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.ConnectionCredentials{}, fmt.Errorf("sqlstore: cached credential store is not configured")
	}
	cacheKey, err := CredentialCacheKey(connectionID)
	if err != nil {
		return core.ConnectionCredentials{}, core.ErrCredentialsNotCached
	}
	return repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.ConnectionCredentials, error) {
		return s.base.Get(ctx, connectionID)
	})
}

func (s *CachedCredentialStore) Put(ctx context.Context, connectionID string, credentials core.ConnectionCredentials) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached credential store is not configured")
	}
	if err := s.base.Put(ctx, connectionID, credentials); err != nil {
		return err
	}
	return s.evict(ctx, connectionID)
}

func (s *CachedCredentialStore) Invalidate(ctx context.Context, connectionID string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached credential store is not configured")
	}
	if err := s.base.Invalidate(ctx, connectionID); err != nil {
		return err
	}
	return s.evict(ctx, connectionID)
}

func (s *CachedCredentialStore) evict(ctx context.Context, connectionID string) error {
	cacheKey, err := CredentialCacheKey(connectionID)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}
