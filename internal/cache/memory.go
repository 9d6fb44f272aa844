// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is an in-process response cache with per-entry expiry.
type MemoryCache struct {
	c *gocache.Cache
}

// NewMemoryCache creates a MemoryCache. Expired entries are purged every
// twice the TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl == 0 {
		ttl = DefaultResponseTTL
	}
	return &MemoryCache{c: gocache.New(ttl, 2*ttl)}
}

// Get retrieves a cached response body.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	body, ok := v.([]byte)
	return body, ok
}

// Set stores a response body with the default expiration.
func (m *MemoryCache) Set(_ context.Context, key string, body []byte) {
	m.c.Set(key, body, gocache.DefaultExpiration)
}

// Flush removes all entries.
func (m *MemoryCache) Flush() {
	m.c.Flush()
}
