package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gym-platform/internal/api/dto"
	"github.com/spec-kit/gym-platform/internal/auth"
	"github.com/spec-kit/gym-platform/internal/config"
	"github.com/spec-kit/gym-platform/internal/service"
)

// OperatorsHandler exposes auth endpoints for dashboard operators.
type OperatorsHandler struct {
	auth    *service.AuthService
	authCfg config.AuthConfig
}

// NewOperatorsHandler constructs handler.
func NewOperatorsHandler(authService *service.AuthService, authCfg config.AuthConfig) *OperatorsHandler {
	return &OperatorsHandler{auth: authService, authCfg: authCfg}
}

// Login handles POST /operator/auth/login.
func (h *OperatorsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	operator, token, exp, err := h.auth.LoginOperator(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(auth.SessionCookie(h.authCfg.OperatorCookieName, token, exp, h.authCfg.CookieSecure))
	return c.JSON(fiber.Map{
		"success": true,
		"operator": fiber.Map{
			"id":    operator.ID,
			"name":  operator.Name,
			"email": operator.Email,
		},
	})
}

// Logout handles POST /operator/auth/logout.
func (h *OperatorsHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(auth.ClearSessionCookie(h.authCfg.OperatorCookieName, h.authCfg.CookieSecure))
	return c.JSON(fiber.Map{"success": true})
}
