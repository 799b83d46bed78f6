package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/srivaari-capital/backend/internal/account"
)

// RegisterAccountRoutes wires signup, login, logout and whoami endpoints.
// Logout sits behind the session guard; me does not, since it answers for
// anonymous callers too.
func RegisterAccountRoutes(r fiber.Router, h *account.Handler, guard fiber.Handler, rateLimiter fiber.Handler) {
	r.Post("/signup", h.Signup)
	if rateLimiter != nil {
		r.Post("/login", rateLimiter, h.Login)
	} else {
		r.Post("/login", h.Login)
	}
	r.Post("/logout", guard, h.Logout)
	r.Get("/me", h.Me)
}
