// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// responseKeyPrefix prefixes every cached response key.
	responseKeyPrefix = "delivery:"

	// DefaultResponseTTL is how long a response stays cached.
	DefaultResponseTTL = 5 * time.Minute

	scanBatch = 100
)

// ResponseCache keeps Delivery API response bodies in Valkey, namespaced by
// project so several projects can share one instance. Request URLs are
// hashed into fixed-length keys.
type ResponseCache struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
	logger    *slog.Logger
}

// NewResponseCache creates a response cache for one project.
func NewResponseCache(client *redis.Client, projectID string, ttl time.Duration, logger *slog.Logger) *ResponseCache {
	if ttl == 0 {
		ttl = DefaultResponseTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResponseCache{
		client:    client,
		namespace: responseKeyPrefix + projectID + ":",
		ttl:       ttl,
		logger:    logger.With("component", "response_cache", "project_id", projectID),
	}
}

func (rc *ResponseCache) key(requestURL string) string {
	return rc.namespace + uuid.NewSHA1(uuid.NameSpaceURL, []byte(requestURL)).String()
}

// Get returns the cached body for a request URL. Errors are logged and
// reported as a miss.
func (rc *ResponseCache) Get(ctx context.Context, requestURL string) ([]byte, bool) {
	val, err := rc.client.Get(ctx, rc.key(requestURL)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		rc.logger.Warn("response cache get failed", "url", requestURL, "error", err)
		return nil, false
	}
	rc.logger.Debug("response cache hit", "url", requestURL, "bytes", len(val))
	return val, true
}

// Set stores a response body with the configured TTL.
func (rc *ResponseCache) Set(ctx context.Context, requestURL string, body []byte) {
	if err := rc.client.Set(ctx, rc.key(requestURL), body, rc.ttl).Err(); err != nil {
		rc.logger.Warn("response cache set failed", "url", requestURL, "error", err)
	}
}

// InvalidateAll removes every cached response of the project and returns
// how many keys were deleted. Responses of other projects are kept.
func (rc *ResponseCache) InvalidateAll(ctx context.Context) int {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := rc.client.Scan(ctx, cursor, rc.namespace+"*", scanBatch).Result()
		if err != nil {
			rc.logger.Warn("response cache scan failed", "error", err)
			return deleted
		}
		if len(keys) > 0 {
			n, err := rc.client.Del(ctx, keys...).Result()
			if err != nil {
				rc.logger.Warn("response cache delete failed", "error", err)
			}
			deleted += int(n)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	rc.logger.Info("response cache cleared", "deleted", deleted)
	return deleted
}
