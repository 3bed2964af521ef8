package middleware

import (
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/logging"
	"github.com/gofiber/fiber/v2"
)

// RequestScope puts the request id and path on the user context so service
// logs written with a context carry them. Install it after requestid.
func RequestScope() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, _ := c.Locals("requestid").(string)
		c.SetUserContext(logging.WithRequest(c.UserContext(), id, c.Path()))
		return c.Next()
	}
}
