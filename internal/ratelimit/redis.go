package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const submitKeyPrefix = "bizdir:submit:"

// RedisLimiter is a fixed-window counter shared across instances.
// INCR and EXPIRE run in one pipeline so the window TTL is set exactly
// once, on the request that creates the key.
type RedisLimiter struct {
	client *redis.Client
	cfg    Config
}

func NewRedisLimiter(client *redis.Client, cfg Config) *RedisLimiter {
	return &RedisLimiter{client: client, cfg: cfg}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	fullKey := submitKeyPrefix + key

	pipe := l.client.TxPipeline()
	count := pipe.Incr(ctx, fullKey)
	pipe.ExpireNX(ctx, fullKey, l.cfg.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	return count.Val() <= int64(l.cfg.Limit), nil
}

var _ Limiter = (*RedisLimiter)(nil)

// MemoryLimiter is a single-process fixed window for tests and for
// deployments without Redis configured.
type MemoryLimiter struct {
	cfg     Config
	mu      sync.Mutex
	counts  map[string]int
	resetAt time.Time
	nowFn   func() time.Time
}

func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	return &MemoryLimiter{
		cfg:    cfg,
		counts: make(map[string]int),
		nowFn:  time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFn()
	if now.After(l.resetAt) {
		l.counts = make(map[string]int)
		l.resetAt = now.Add(l.cfg.Window)
	}
	l.counts[key]++
	return l.counts[key] <= l.cfg.Limit, nil
}

var _ Limiter = (*MemoryLimiter)(nil)
