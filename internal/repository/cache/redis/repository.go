package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/campusradio/server/internal/repository/cache"
	"github.com/redis/go-redis/v9"
)

// Repo caches JSON documents in redis under a common prefix.
type Repo struct {
	rc     *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRepo(rc *redis.Client, ttl time.Duration) *Repo {
	return &Repo{
		rc:     rc,
		prefix: "cache:",
		ttl:    ttl,
	}
}

func (r Repo) Get(ctx context.Context, key string, dst any) error {
	funcName := "CacheRepo:Get"
	slog.DebugContext(ctx, funcName, "key", key)

	b, err := r.rc.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return cache.ErrCacheMiss
		}

		return fmt.Errorf("failed to get cached value: %w", err)
	}

	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("failed to decode cached value: %w", err)
	}

	return nil
}

func (r Repo) Set(ctx context.Context, key string, value any) error {
	funcName := "CacheRepo:Set"
	slog.DebugContext(ctx, funcName, "key", key)

	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}

	if err := r.rc.Set(ctx, r.prefix+key, b, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cached value: %w", err)
	}

	return nil
}

func (r Repo) Delete(ctx context.Context, keys ...string) error {
	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		prefixed = append(prefixed, r.prefix+key)
	}

	if err := r.rc.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("failed to delete cached value: %w", err)
	}

	return nil
}
