package core

import (
	"context"
	"strings"
	"sync"
)

// MemoryCredentialCache is an in-process CredentialCache. The zero value is
// not usable; construct with NewMemoryCredentialCache.
type MemoryCredentialCache struct {
	mu      sync.RWMutex
	entries map[string]ConnectionCredentials
}

func NewMemoryCredentialCache() *MemoryCredentialCache {
	return &MemoryCredentialCache{entries: map[string]ConnectionCredentials{}}
}

func (c *MemoryCredentialCache) Get(_ context.Context, connectionID string) (ConnectionCredentials, error) {
	if c == nil {
		return ConnectionCredentials{}, ErrCredentialsNotCached
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	credentials, ok := c.entries[strings.TrimSpace(connectionID)]
	if !ok {
		return ConnectionCredentials{}, ErrCredentialsNotCached
	}
	return credentials, nil
}

func (c *MemoryCredentialCache) Put(_ context.Context, connectionID string, credentials ConnectionCredentials) error {
	if c == nil {
		return nil
	}
	connectionID = strings.TrimSpace(connectionID)
	if connectionID == "" {
		return requestValidationError("connection_id", "connection id is required")
	}
	if err := credentials.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = map[string]ConnectionCredentials{}
	}
	c.entries[connectionID] = credentials
	return nil
}

func (c *MemoryCredentialCache) Invalidate(_ context.Context, connectionID string) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, strings.TrimSpace(connectionID))
	return nil
}

func (c *MemoryCredentialCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
