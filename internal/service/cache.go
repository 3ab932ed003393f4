package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"book-discovery-recommendation-service/internal/metrics"
)

// cache is a JSON cache over Redis. A nil client disables caching.
type cache struct {
	redis *redis.Client
	name  string
}

func newCache(rdb *redis.Client, name string) cache {
	return cache{redis: rdb, name: name}
}

// get decodes the cached value for key into dst and reports whether it was found.
func (c cache) get(ctx context.Context, key string, dst any) bool {
	if c.redis == nil {
		return false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Error("failed to read cache", "key", key, "error", err)
		}
		metrics.RecordCacheMiss(c.name)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		slog.Warn("discarding undecodable cache entry", "key", key, "error", err)
		metrics.RecordCacheMiss(c.name)
		return false
	}
	slog.Debug("cache hit", "key", key)
	metrics.RecordCacheHit(c.name)
	return true
}

func (c cache) set(ctx context.Context, key string, v any, ttl time.Duration) {
	if c.redis == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode cache value", "key", key, "error", err)
		return
	}
	if err := c.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		slog.Error("failed to set cache", "key", key, "error", err)
	}
}

func (c cache) del(ctx context.Context, keys ...string) {
	if c.redis == nil || len(keys) == 0 {
		return
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		slog.Error("failed to delete cache keys", "keys", keys, "error", err)
	}
}

// delPattern removes every key matching a SCAN pattern.
func (c cache) delPattern(ctx context.Context, pattern string) {
	if c.redis == nil {
		return
	}
	var keys []string
	iter := c.redis.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Error("failed to invalidate cache", "pattern", pattern, "error", err)
		return
	}
	c.del(ctx, keys...)
}
