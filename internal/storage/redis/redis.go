package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"knife-atelier/internal/storage"
)

// Storage is the Redis KV backend. Every Set refreshes the key TTL; a zero TTL keeps keys forever.
type Storage struct {
	client *redis.Client
	ttl    time.Duration
}

var _ storage.KV = (*Storage)(nil)

// New creates a new Redis client
func New(addr, password string, db int, ttl time.Duration) *Storage {
	return &Storage{
		client: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			PoolSize:     100,
			MinIdleConns: 10,
		}),
		ttl: ttl,
	}
}

// WaitReady pings Redis with exponential backoff until it answers or the policy gives up.
func (s *Storage) WaitReady(ctx context.Context, logger *zap.Logger) error {
	const operation = "redis.WaitReady"

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = time.Minute
	retryPolicy.MaxInterval = 10 * time.Second

	err := backoff.RetryNotify(
		func() error { return s.client.Ping(ctx).Err() },
		backoff.WithContext(retryPolicy, ctx),
		func(err error, next time.Duration) {
			logger.Warn("Redis ping failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", next))
		},
	)
	if err != nil {
		return fmt.Errorf("%s: redis unreachable: %w", operation, err)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return data, nil
}

func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// CheckRateLimit counts one hit for key and reports whether limit is now exceeded.
func (s *Storage) CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	// Set expiry if this is the first increment
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count > limit, nil
}

// Close closes the Redis connection
func (s *Storage) Close() {
	if s.client != nil {
		_ = s.client.Close()
	}
}
