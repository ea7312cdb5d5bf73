package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// luaReleaseIfMatch deletes the lock key only when its value still
// matches the token that acquired it, so an expired holder cannot
// release a lock someone else now owns.
const luaReleaseIfMatch = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisLock is a Keyed implementation backed by Redis SETNX leases,
// for deployments where multiple processes create versions for the
// same orders.
type RedisLock struct {
	client        *redis.Client
	keyPrefix     string
	ttl           time.Duration
	retryInterval time.Duration
}

// RedisLockOption configures a RedisLock
type RedisLockOption func(*RedisLock)

// WithTTL sets the lease duration. A holder that dies loses the lock
// after the TTL instead of blocking everyone forever.
func WithTTL(ttl time.Duration) RedisLockOption {
	return func(l *RedisLock) { l.ttl = ttl }
}

// WithRetryInterval sets how often a blocked acquirer polls
func WithRetryInterval(interval time.Duration) RedisLockOption {
	return func(l *RedisLock) { l.retryInterval = interval }
}

// NewRedisLock creates a Redis-backed keyed lock
func NewRedisLock(client *redis.Client, keyPrefix string, opts ...RedisLockOption) *RedisLock {
	if keyPrefix == "" {
		keyPrefix = "order:version:lock:"
	}
	l := &RedisLock{
		client:        client,
		keyPrefix:     keyPrefix,
		ttl:           10 * time.Second,
		retryInterval: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Acquire implements Keyed. It polls SETNX until the lease is obtained
// or ctx is done.
func (l *RedisLock) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := l.keyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", lockKey, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	release := func() {
		// Best effort; an expired lease releases itself.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, _ = l.client.Eval(releaseCtx, luaReleaseIfMatch, []string{lockKey}, token).Result()
	}
	return release, nil
}
