package tokensource

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache shares fetched tokens between server replicas so that a fleet
// does not multiply parameter-store reads. Redis failures degrade to the
// wrapped source.
type RedisCache struct {
	client *redis.Client
	next   Source
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache wraps next, storing its value under key for ttl. A
// non-positive ttl passes every call straight to next.
func NewRedisCache(client *redis.Client, next Source, key string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		next:   next,
		key:    key,
		ttl:    ttl,
		logger: slog.Default().With(slog.String("component", "tokensource.redis")),
	}
}

func (r *RedisCache) Token(ctx context.Context) (string, error) {
	if r.ttl <= 0 {
		return r.next.Token(ctx)
	}

	tok, err := r.client.Get(ctx, r.key).Result()
	switch {
	case err == nil && tok != "":
		return tok, nil
	case err != nil && !errors.Is(err, redis.Nil):
		r.logger.Warn("redis token lookup failed", slog.String("error", err.Error()))
	}

	tok, err = r.next.Token(ctx)
	if err != nil {
		return "", err
	}

	if err := r.client.Set(ctx, r.key, tok, r.ttl).Err(); err != nil {
		r.logger.Warn("redis token store failed", slog.String("error", err.Error()))
	}
	return tok, nil
}

// Invalidate removes the shared entry.
func (r *RedisCache) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
