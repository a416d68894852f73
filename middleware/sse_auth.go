// middleware/sse_auth.go
package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// SelfOnlyMiddleware guards per-account streams: when the gateway identified
// the caller, it may only open the stream of its own :telegram_id.
// Requests without a gateway identity pass through.
//
// Usage:
//
//	app.Get("/api/user/:telegram_id/events/stream", middleware.SelfOnlyMiddleware(), handler)
func SelfOnlyMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := UserID(c)
		target := c.Params("telegram_id")
		if caller != "" && caller != target {
			log.Warn().Str("caller", caller).Str("target", target).Msg("🚫 [SSE_AUTH] stream of another account refused")
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "forbidden",
				"message": "cannot subscribe to another account's events",
			})
		}
		return c.Next()
	}
}
