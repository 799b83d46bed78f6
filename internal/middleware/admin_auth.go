package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

const adminPassHeader = "X-Admin-Pass"

// AdminAuth returns a middleware that requires the shared admin secret in the
// X-Admin-Pass header. The comparison is constant-time.
func AdminAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		presented := c.Get(adminPassHeader)
		if presented == "" || secret == "" ||
			subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
			return fiber.NewError(http.StatusUnauthorized, "unauthorized")
		}
		return c.Next()
	}
}
