package middleware

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"

	"book-discovery-recommendation-service/internal/metrics"
)

// RateLimiter is a Redis-backed fixed window limiter keyed by client IP.
type RateLimiter struct {
	rdb     *redis.Client
	maxReqs int
	window  time.Duration
}

// NewRateLimiter creates a rate limiter. A nil client disables limiting.
func NewRateLimiter(rdb *redis.Client, maxReqs int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		rdb:     rdb,
		maxReqs: maxReqs,
		window:  window,
	}
}

// Handler returns a Fiber middleware handler for rate limiting.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		if rl.rdb == nil || rl.maxReqs <= 0 {
			return c.Next()
		}

		key := fmt.Sprintf("ratelimit:%s", c.IP())
		ctx := c.Context()

		count, err := rl.rdb.Incr(ctx, key).Result()
		if err != nil {
			// fail open
			slog.Warn("rate limiter unavailable", "error", err)
			return c.Next()
		}
		if count == 1 {
			rl.rdb.Expire(ctx, key, rl.window)
		}

		ttl, err := rl.rdb.TTL(ctx, key).Result()
		if err != nil || ttl < 0 {
			ttl = rl.window
		}
		reset := int(ttl.Seconds())

		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.maxReqs))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(rl.maxReqs)-count), 10))
		c.Set("X-RateLimit-Reset", strconv.Itoa(reset))

		if count > int64(rl.maxReqs) {
			metrics.RecordRateLimited()
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "rate limit exceeded",
				"retry_after": reset,
			})
		}

		return c.Next()
	}
}
