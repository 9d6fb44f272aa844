// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cache provides the response caches used by the delivery client:
// a cache shared between runs in Valkey (Redis-compatible) and an
// in-process cache for single runs.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// ConnectValkey opens a client for addr (host:port) and pings it. The
// client is closed again when the ping fails.
func ConnectValkey(ctx context.Context, addr, password string, logger *slog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping valkey at %s: %w", addr, err)
	}

	if logger != nil {
		logger.Info("valkey connected", "component", "cache", "addr", addr)
	}
	return client, nil
}
