package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix   = "transition:idempotency:"
	redisPingTimeout = 5 * time.Second
)

// RedisIdempotencyStore backs the duplicate guard with Redis SETNX so
// that all instances of the service agree on which lifecycle
// transitions were already applied.
type RedisIdempotencyStore struct {
	client *redis.Client
}

// RedisOptions holds the connection settings for the store.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisIdempotencyStore connects to Redis and verifies the
// connection with a ping before returning the store.
func NewRedisIdempotencyStore(opts RedisOptions) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisIdempotencyStore{client: client}, nil
}

// MarkProcessed records key atomically via SETNX with the given TTL.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	isNew, err := s.client.SetNX(ctx, redisKeyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark transition as processed: %w", err)
	}
	return isNew, nil
}

// IsProcessed reports whether key is still recorded.
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	count, err := s.client.Exists(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check transition state: %w", err)
	}
	return count > 0, nil
}

// Close releases the Redis client.
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
