// Package bucket implements sliding-window request counters.
package bucket

import (
	"context"
	"time"

	"clientview/internal/ratelimit/models"
)

// Store counts requests per key over a sliding window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
	Reset(ctx context.Context, key string) error
}

var (
	_ Store = (*InMemoryBucketStore)(nil)
	_ Store = (*RedisBucketStore)(nil)
)
