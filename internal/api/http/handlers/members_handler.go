package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gym-platform/internal/api/dto"
	"github.com/spec-kit/gym-platform/internal/auth"
	"github.com/spec-kit/gym-platform/internal/config"
	"github.com/spec-kit/gym-platform/internal/service"
)

// MembersHandler exposes auth endpoints for gym members.
type MembersHandler struct {
	auth    *service.AuthService
	authCfg config.AuthConfig
}

// NewMembersHandler constructs handler.
func NewMembersHandler(authService *service.AuthService, authCfg config.AuthConfig) *MembersHandler {
	return &MembersHandler{auth: authService, authCfg: authCfg}
}

// Register handles POST /member/auth/register.
func (h *MembersHandler) Register(c *fiber.Ctx) error {
	var req dto.MemberRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name, email, password required")
	}

	member, token, exp, err := h.auth.RegisterMember(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(auth.SessionCookie(h.authCfg.MemberCookieName, token, exp, h.authCfg.CookieSecure))
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"member": fiber.Map{
			"id":    member.ID,
			"name":  member.Name,
			"email": member.Email,
		},
	})
}

// Login handles POST /member/auth/login.
func (h *MembersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	member, token, exp, err := h.auth.LoginMember(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(auth.SessionCookie(h.authCfg.MemberCookieName, token, exp, h.authCfg.CookieSecure))
	return c.JSON(fiber.Map{
		"success": true,
		"member": fiber.Map{
			"id":    member.ID,
			"name":  member.Name,
			"email": member.Email,
		},
	})
}

// Logout handles POST /member/auth/logout.
func (h *MembersHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(auth.ClearSessionCookie(h.authCfg.MemberCookieName, h.authCfg.CookieSecure))
	return c.JSON(fiber.Map{"success": true})
}
