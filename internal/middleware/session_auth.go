package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/srivaari-capital/backend/internal/session"
)

const identityKey = "session_identity"

// SessionAuth returns a middleware that resolves the session cookie to an
// identity and rejects anonymous callers. Resolution is read-only: passing
// through the guard never changes session state.
func SessionAuth(cookieName string, sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cookieName)
		identity, ok, err := sessions.Resolve(c.UserContext(), token)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, "session failure")
		}
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "unauthenticated")
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// IdentityFrom extracts the identity stored by SessionAuth.
func IdentityFrom(c *fiber.Ctx) (session.Identity, bool) {
	identity, ok := c.Locals(identityKey).(session.Identity)
	return identity, ok
}
