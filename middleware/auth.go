// middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	UserIDHeader = "X-User-ID"
	UserIDLocal  = "user_id"
)

// UserContextMiddleware picks up the caller identity forwarded by an upstream
// gateway. The header is trusted as given and may be absent: handlers fall
// back to the telegram_id carried by the request itself.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get(UserIDHeader))
		c.Locals(UserIDLocal, userID)

		if userID != "" {
			log.Debug().Str("telegram_id", userID).Str("path", c.Path()).Msg("👤 [USER_CTX] gateway identity")
		}
		return c.Next()
	}
}

// UserID returns the identity set by UserContextMiddleware, or "".
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDLocal).(string)
	return id
}
