package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimiter handles request rate limiting.
type RateLimiter struct {
	client *redis.Client
}

// NewRateLimiter creates a new RateLimiter.
func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{
		client: client,
	}
}

// Allow checks if a request is allowed.
// key: unique identifier (e.g., "ip:127.0.0.1:login")
// limit: max requests allowed
// window: time window
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	rateLimitKey := "ratelimit:" + key

	// Increment the counter
	count, err := rl.client.Incr(ctx, rateLimitKey).Result()
	if err != nil {
		return false, err
	}

	// If it's the first request, set the expiration
	if count == 1 {
		if err := rl.client.Expire(ctx, rateLimitKey, window).Err(); err != nil {
			return false, err
		}
	}

	// Check if limit exceeded
	if count > int64(limit) {
		return false, nil
	}

	return true, nil
}

// AllowCommand checks if a terrain-mutating command from a specific session
// is allowed. Counts commands in a fixed one-second window that opens with
// the session's first command and allows at most 20 per window; every
// terrain command request draws from this budget. Tokens do not refill
// within a window.
func (rl *RateLimiter) AllowCommand(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	key := fmt.Sprintf("ratelimit:command:%s", sessionID.String())

	// Token bucket parameters
	const (
		maxTokens  = 20 // Burst capacity
		refillRate = 10 // Tokens per second
		window     = time.Second
	)

	// Use Redis INCR with expiration as simple token bucket
	// For more precise token bucket, would use Lua script
	count, err := rl.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	// Set expiration on first increment (fixed window)
	if count == 1 {
		rl.client.Expire(ctx, key, window)
	}

	// Allow if under max tokens
	allowed := count <= maxTokens

	return allowed, nil
}
