// Package ratelimit throttles request submissions per user with a fixed
// window counter. The limiter answers allow/deny; availability policy
// (fail open when the backing store is down) is the caller's call.
package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether the caller identified by key may submit now.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Config holds the window parameters shared by all implementations.
type Config struct {
	Limit  int
	Window time.Duration
}
