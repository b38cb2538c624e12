package cache

import (
	"sync"
	"time"
)

// refreshMargin is subtracted from the token TTL so callers refresh
// slightly before the access point rejects the token.
const refreshMargin = 30 * time.Second

// TokenCache provides thread-safe caching for a single bearer token with TTL support.
type TokenCache struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

// NewTokenCache creates a new thread-safe token cache.
func NewTokenCache() *TokenCache {
	return &TokenCache{now: time.Now}
}

// Get returns the cached token if it's still valid, otherwise returns empty string.
func (c *TokenCache) Get() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.token == "" || c.now().After(c.expiresAt) {
		return "", false
	}

	return c.token, true
}

// Set stores a token with the specified TTL. TTLs shorter than the
// refresh margin are stored as-is so very short-lived tokens still work.
func (c *TokenCache) Set(token string, ttl time.Duration) {
	if ttl > refreshMargin {
		ttl -= refreshMargin
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token
	c.expiresAt = c.now().Add(ttl)
}

// Invalidate removes the cached token, forcing the next Get to miss.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = ""
	c.expiresAt = time.Time{}
}
