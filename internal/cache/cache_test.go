// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"kontentsource/internal/delivery"
)

var (
	_ delivery.ResponseCache = (*ResponseCache)(nil)
	_ delivery.ResponseCache = (*MemoryCache)(nil)
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, responseKeyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(context.Background(), host+":"+port, "", nil)
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	// Verify connection.
	pong, err := client.Ping(context.Background()).Result()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("expected PONG, got %q", pong)
	}
}

func TestResponseCacheSetAndGet(t *testing.T) {
	client := testValkeyClient(t)
	rc := NewResponseCache(client, "proj", 1*time.Minute, nil)

	ctx := context.Background()
	key := "https://deliver.kontent.ai/p/items?system.type=article"

	// Miss.
	data, ok := rc.Get(ctx, key)
	if ok {
		t.Error("expected cache miss")
	}
	if data != nil {
		t.Error("expected nil data on miss")
	}

	// Set.
	body := []byte(`{"items":[]}`)
	rc.Set(ctx, key, body)

	// Hit.
	data, ok = rc.Get(ctx, key)
	if !ok {
		t.Error("expected cache hit")
	}
	if string(data) != string(body) {
		t.Errorf("data mismatch: got %q, want %q", data, body)
	}
}

func TestResponseCacheInvalidateAll(t *testing.T) {
	client := testValkeyClient(t)
	rc := NewResponseCache(client, "proj", 1*time.Minute, nil)

	ctx := context.Background()

	keys := []string{"types", "items?a", "taxonomies"}
	for _, k := range keys {
		rc.Set(ctx, k, []byte(k))
	}

	if n := rc.InvalidateAll(ctx); n != len(keys) {
		t.Errorf("InvalidateAll deleted %d keys, want %d", n, len(keys))
	}

	for _, k := range keys {
		if _, ok := rc.Get(ctx, k); ok {
			t.Errorf("expected miss for %q after InvalidateAll", k)
		}
	}
}

func TestResponseCacheProjectsAreIsolated(t *testing.T) {
	client := testValkeyClient(t)
	ctx := context.Background()

	a := NewResponseCache(client, "project-a", time.Minute, nil)
	b := NewResponseCache(client, "project-b", time.Minute, nil)

	a.Set(ctx, "types", []byte("a"))
	b.Set(ctx, "types", []byte("b"))

	a.InvalidateAll(ctx)

	if _, ok := a.Get(ctx, "types"); ok {
		t.Error("expected miss for project-a after InvalidateAll")
	}
	data, ok := b.Get(ctx, "types")
	if !ok || string(data) != "b" {
		t.Errorf("project-b entry = %q, %v; want %q, true", data, ok, "b")
	}
}

func TestResponseCacheKey(t *testing.T) {
	rc := NewResponseCache(nil, "proj", 0, nil)

	long := "https://deliver.kontent.ai/proj/items?system.type=article&depth=3&language=en-US"
	k1 := rc.key(long)
	k2 := rc.key(long + "&page=2")

	if k1 == k2 {
		t.Error("different URLs must map to different keys")
	}
	if k1 != rc.key(long) {
		t.Error("key must be stable for the same URL")
	}
	if want := len("delivery:proj:") + 36; len(k1) != want {
		t.Errorf("key length = %d, want %d", len(k1), want)
	}
}

func TestNewResponseCacheDefaultTTL(t *testing.T) {
	// TTL = 0 should use default.
	rc := NewResponseCache(nil, "proj", 0, nil)
	if rc.ttl != DefaultResponseTTL {
		t.Errorf("expected DefaultResponseTTL (%v), got %v", DefaultResponseTTL, rc.ttl)
	}
}

func TestMemoryCache(t *testing.T) {
	mc := NewMemoryCache(time.Minute)
	ctx := context.Background()

	if _, ok := mc.Get(ctx, "k"); ok {
		t.Fatal("expected cache miss")
	}

	mc.Set(ctx, "k", []byte("v"))
	data, ok := mc.Get(ctx, "k")
	if !ok || string(data) != "v" {
		t.Fatalf("expected hit with %q, got %q (%v)", "v", data, ok)
	}

	mc.Flush()
	if _, ok := mc.Get(ctx, "k"); ok {
		t.Error("expected miss after Flush")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache(20 * time.Millisecond)
	ctx := context.Background()

	mc.Set(ctx, "k", []byte("v"))
	time.Sleep(40 * time.Millisecond)

	if _, ok := mc.Get(ctx, "k"); ok {
		t.Error("expected miss after expiry")
	}
}
