package loan

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/srivaari-capital/backend/internal/middleware"
)

// Handler exposes the application submission and admin listing endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds a loan HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type applyRequest struct {
	Name          string      `json:"name"`
	Phone         string      `json:"phone"`
	Email         string      `json:"email"`
	Address       string      `json:"address"`
	LoanAmount    json.Number `json:"loan_amount"`
	Purpose       string      `json:"purpose"`
	MonthlyIncome json.Number `json:"monthly_income"`
}

// Apply records a loan application for the authenticated user. Numeric fields
// are coerced here at the boundary; input that does not parse is rejected
// rather than stored as a sentinel.
func (h *Handler) Apply(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthenticated")
	}

	var req applyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	if req.LoanAmount == "" {
		return fiber.NewError(http.StatusBadRequest, ErrMissingField.Error())
	}
	amount, err := req.LoanAmount.Float64()
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, ErrInvalidAmount.Error())
	}

	var income *float64
	if req.MonthlyIncome != "" {
		v, err := req.MonthlyIncome.Float64()
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, "monthly income must be a number")
		}
		income = &v
	}

	app, err := h.svc.Submit(c.UserContext(), SubmitInput{
		UserID:        identity.UserID,
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		LoanAmount:    amount,
		Purpose:       req.Purpose,
		MonthlyIncome: income,
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrMissingField), errors.Is(err, ErrInvalidAmount):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, "storage failure")
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"success": true, "id": app.ID})
}

// AdminList returns every persisted application. Access control lives in the
// admin guard middleware, not here.
func (h *Handler) AdminList(c *fiber.Ctx) error {
	apps, err := h.svc.ListAll(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "storage failure")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"applications": apps})
}
