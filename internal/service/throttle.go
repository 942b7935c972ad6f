package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle counts failed login attempts per account inside a rolling
// window. The auth service converts a full counter into a stored lockout.
type LoginThrottle interface {
	RegisterFailure(ctx context.Context, email string) (int, error)
	Reset(ctx context.Context, email string) error
}

type redisThrottle struct {
	client *redis.Client
	window time.Duration
}

func NewRedisThrottle(client *redis.Client, window time.Duration) LoginThrottle {
	return &redisThrottle{client: client, window: window}
}

func (t *redisThrottle) key(email string) string {
	return "login_failures:" + email
}

func (t *redisThrottle) RegisterFailure(ctx context.Context, email string) (int, error) {
	key := t.key(email)
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment login failures: %w", err)
	}
	if count == 1 {
		if err := t.client.Expire(ctx, key, t.window).Err(); err != nil {
			return int(count), fmt.Errorf("failed to set login failure window: %w", err)
		}
	}
	return int(count), nil
}

func (t *redisThrottle) Reset(ctx context.Context, email string) error {
	return t.client.Del(ctx, t.key(email)).Err()
}
