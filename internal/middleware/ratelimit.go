// Package middleware carries the Fiber handler chain: authentication,
// request logging, tracing and rate limiting.
package middleware

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when the counter store is
// unreachable.
type FailPolicy int

const (
	// FailOpen lets the request through. Suitable for browse traffic.
	FailOpen FailPolicy = iota
	// FailClosed answers 503. Used on abuse-sensitive routes such as login.
	FailClosed
)

// CheckRateLimit counts a hit for id against the named resource and reports
// whether it is still inside the limit. Counting is skipped entirely in the
// "test" and "development" environments.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if env == "test" || env == "development" {
		return true, nil
	}

	if rdb == nil {
		return false, fmt.Errorf("rate limit store not configured")
	}

	// Fixed window: INCR, and start the clock on the first hit.
	key := fmt.Sprintf("ratelimit:%s:%s", resource, id)
	hits, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if hits == 1 {
		rdb.Expire(ctx, key, window)
	}
	return hits <= int64(limit), nil
}

// RateLimit enforces limit requests per window, failing open when Redis is
// down. An optional name overrides the request path as the counter bucket.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy is RateLimit with an explicit unavailability policy.
// Authenticated requests are bucketed per user, anonymous ones per client IP.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id string
		if userID := c.Locals("userID"); userID != nil {
			id = fmt.Sprintf("user:%v", userID)
		} else {
			id = "ip:" + c.IP()
		}

		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		allowed, err := CheckRateLimit(context.Background(), rdb, resource, id, limit, window)
		if err != nil {
			if policy == FailClosed {
				Logger.Warn("rate limit store unavailable, refusing request",
					"resource", resource, "path", c.Path(), "error", err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limit unavailable",
				})
			}
			return c.Next()
		}

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
