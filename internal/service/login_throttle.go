package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle counts failed logins per account.
type LoginThrottle interface {
	Blocked(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// RedisLoginThrottle keeps failure counters in Redis keys that expire with the window.
type RedisLoginThrottle struct {
	client      redis.UniversalClient
	prefix      string
	maxFailures int
	window      time.Duration
}

// NewRedisLoginThrottle builds a throttle allowing maxFailures per window.
func NewRedisLoginThrottle(client redis.UniversalClient, maxFailures int, window time.Duration) *RedisLoginThrottle {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &RedisLoginThrottle{
		client:      client,
		prefix:      "login_failures:",
		maxFailures: maxFailures,
		window:      window,
	}
}

func (t *RedisLoginThrottle) Blocked(ctx context.Context, email string) (bool, error) {
	count, err := t.client.Get(ctx, t.prefix+email).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get: %w", err)
	}
	return count >= t.maxFailures, nil
}

func (t *RedisLoginThrottle) RecordFailure(ctx context.Context, email string) error {
	key := t.prefix + email
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis incr: %w", err)
	}
	if count == 1 {
		if err := t.client.Expire(ctx, key, t.window).Err(); err != nil {
			return fmt.Errorf("redis expire: %w", err)
		}
	}
	return nil
}

func (t *RedisLoginThrottle) Reset(ctx context.Context, email string) error {
	return t.client.Del(ctx, t.prefix+email).Err()
}

var _ LoginThrottle = (*RedisLoginThrottle)(nil)
