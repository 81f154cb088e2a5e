// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// qr.go provides a Valkey-backed cache of encoded QR bitmaps. Encoding at
// level H with rounded modules is the most expensive step of a render, and
// its output depends only on the payload and colours, so repeated renders
// of the same code skip it.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// qrKeyPrefix is the Valkey key prefix for cached QR bitmaps.
	qrKeyPrefix = "qr:"

	// DefaultQRTTL is how long an encoded bitmap stays cached.
	DefaultQRTTL = 10 * time.Minute
)

// QRCache stores PNG-encoded QR bitmaps in Valkey.
type QRCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewQRCache creates a new bitmap cache backed by the given Valkey client.
func NewQRCache(client *redis.Client, ttl time.Duration) *QRCache {
	if ttl == 0 {
		ttl = DefaultQRTTL
	}
	return &QRCache{client: client, ttl: ttl}
}

// Get retrieves a cached bitmap. Errors are logged and reported as a miss.
func (c *QRCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, qrKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("qr cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("qr cache hit", "key", key)
	return val, true
}

// Set stores a bitmap with the configured TTL.
func (c *QRCache) Set(ctx context.Context, key string, png []byte) {
	if err := c.client.Set(ctx, qrKeyPrefix+key, png, c.ttl).Err(); err != nil {
		slog.Warn("qr cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes all cached bitmaps by scanning for the prefix.
func (c *QRCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, qrKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("qr cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("qr cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("qr cache cleared", "deleted", deleted)
	}
}
