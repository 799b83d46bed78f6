package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/srivaari-capital/backend/internal/loan"
)

// RegisterLoanRoutes wires the session-guarded application endpoint and the
// shared-secret admin listing.
func RegisterLoanRoutes(r fiber.Router, h *loan.Handler, guard fiber.Handler, adminGuard fiber.Handler) {
	r.Post("/apply", guard, h.Apply)
	r.Get("/admin/applications", adminGuard, h.AdminList)
}
