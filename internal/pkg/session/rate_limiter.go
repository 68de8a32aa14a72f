// internal/pkg/session/rate_limiter.go
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// Allow counts one request for subject within scope and reports whether it is
// within maxRequests for the current window
func (r *RateLimiter) Allow(ctx context.Context, scope, subject string, maxRequests int64, window time.Duration) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", scope, subject)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	// Set expiration on first attempt
	if count == 1 {
		r.client.Expire(ctx, key, window)
	}

	return count <= maxRequests, nil
}

// Remaining returns how many requests subject has left in the current window
func (r *RateLimiter) Remaining(ctx context.Context, scope, subject string, maxRequests int64) (int64, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", scope, subject)

	count, err := r.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return maxRequests, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get rate limit: %w", err)
	}

	remaining := maxRequests - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
