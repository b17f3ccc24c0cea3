package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimit enforces a fixed-window request limit per caller, keyed by the
// authenticated user when available and by client IP otherwise. Counters
// live in Redis so the limit holds across instances. Redis being down fails
// open; throttling is not worth an outage.
func RateLimit(client *redis.Client, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if client == nil || limit <= 0 {
			return c.Next()
		}

		key := "ratelimit:ip:" + c.IP()
		if userID, ok := c.Locals("user_id").(string); ok && userID != "" {
			key = "ratelimit:user:" + userID
		}

		pipe := client.Pipeline()
		count := pipe.Incr(c.Context(), key)
		pipe.Expire(c.Context(), key, window)
		if _, err := pipe.Exec(c.Context()); err != nil {
			return c.Next()
		}

		if count.Val() > int64(limit) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests",
			})
		}

		return c.Next()
	}
}
