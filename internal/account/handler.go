package account

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/srivaari-capital/backend/internal/config"
	"github.com/srivaari-capital/backend/internal/session"
)

// Handler exposes signup/login/logout/me endpoints.
type Handler struct {
	cfg      config.Config
	svc      *Service
	sessions *session.Manager
}

// NewHandler builds an account HTTP handler.
func NewHandler(cfg config.Config, svc *Service, sessions *session.Manager) *Handler {
	return &Handler{cfg: cfg, svc: svc, sessions: sessions}
}

type signupRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a user and logs the browser straight in.
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.svc.Signup(c.UserContext(), SignupInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Password: req.Password,
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrMissingField), errors.Is(err, ErrDuplicateEmail):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, "storage failure")
	}

	token, err := h.sessions.Issue(c.UserContext(), session.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Phone:  user.Phone,
	})
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "session failure")
	}
	h.setSessionCookie(c, token)

	return c.Status(http.StatusCreated).JSON(fiber.Map{"success": true, "id": user.ID})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and issues a fresh session.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.svc.Login(c.UserContext(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, ErrMissingField):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, "storage failure")
	}

	token, err := h.sessions.Issue(c.UserContext(), session.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Phone:  user.Phone,
	})
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "session failure")
	}
	h.setSessionCookie(c, token)

	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true, "id": user.ID, "name": user.Name})
}

// Logout destroys the current session. The cookie is only cleared once the
// backing store confirmed the destroy, so an unconfirmed session is never
// reported as logged out.
func (h *Handler) Logout(c *fiber.Ctx) error {
	token := c.Cookies(h.cfg.SessionCookie)
	if err := h.sessions.Destroy(c.UserContext(), token); err != nil {
		return fiber.NewError(http.StatusInternalServerError, "session failure")
	}
	h.clearSessionCookie(c)
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true})
}

// Me reports the identity behind the caller's cookie. It never fails: an
// unknown, expired, or unreadable session just reads as logged out.
func (h *Handler) Me(c *fiber.Ctx) error {
	token := c.Cookies(h.cfg.SessionCookie)
	id, ok, err := h.sessions.Resolve(c.UserContext(), token)
	if err != nil || !ok {
		return c.Status(http.StatusOK).JSON(fiber.Map{"loggedIn": false})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"loggedIn": true,
		"id":       id.UserID,
		"email":    id.Email,
		"name":     id.Name,
		"phone":    id.Phone,
	})
}

func (h *Handler) setSessionCookie(c *fiber.Ctx, token string) {
	cookie := &fiber.Cookie{
		Name:     h.cfg.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HTTPOnly: true,
		Secure:   h.cfg.Production(),
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	// Cross-site frontends need SameSite=None, which browsers only accept
	// over HTTPS.
	if h.cfg.Production() {
		cookie.SameSite = fiber.CookieSameSiteNoneMode
	}
	c.Cookie(cookie)
}

func (h *Handler) clearSessionCookie(c *fiber.Ctx) {
	cookie := &fiber.Cookie{
		Name:     h.cfg.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cfg.Production(),
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if h.cfg.Production() {
		cookie.SameSite = fiber.CookieSameSiteNoneMode
	}
	c.Cookie(cookie)
}
