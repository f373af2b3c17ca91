package middleware

import (
	"log/slog"

	"scamshield/internal/logging"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger attaches a logger carrying the request id to the request
// context. It expects fiber's requestid middleware to run first.
func RequestLogger(base *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid, _ := c.Locals("requestid").(string)
		ctx := logging.WithRequestID(c.UserContext(), rid)
		ctx = logging.WithLogger(ctx, base)
		c.SetUserContext(ctx)
		return c.Next()
	}
}
