package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dealership/internal/api/dto"
	"github.com/spec-kit/dealership/internal/auth"
	"github.com/spec-kit/dealership/internal/service"
)

// AuthHandler exposes registration, login and logout.
type AuthHandler struct {
	auth     *service.AuthService
	cookies  *auth.CookieBinding
	homePath string
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookies *auth.CookieBinding, homePath string) *AuthHandler {
	if homePath == "" {
		homePath = "/"
	}
	return &AuthHandler{auth: authService, cookies: cookies, homePath: homePath}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	result, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return serviceError(err)
	}

	h.cookies.Attach(c, result.Token)
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": h.response(result, req.Redirect),
	})
}

// Login handles POST /auth/login. The redirect field, usually copied from
// the login page's query string, is honoured only for same-origin paths.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Redirect == "" {
		req.Redirect = c.Query(auth.RedirectParam)
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return serviceError(err)
	}

	h.cookies.Attach(c, result.Token)
	return c.JSON(fiber.Map{
		"data": h.response(result, req.Redirect),
	})
}

// Logout handles POST /auth/logout. It succeeds with or without a session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.cookies.Clear(c)
	return c.JSON(fiber.Map{
		"data": fiber.Map{"redirect": h.homePath},
	})
}

// Me handles GET /auth/me and reports the current session, if any.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return c.JSON(fiber.Map{"data": dto.NewSessionResponse(nil)})
	}
	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(&session)})
}

func (h *AuthHandler) response(result *service.AuthResult, redirect string) dto.AuthResponse {
	return dto.AuthResponse{
		Identity:  dto.NewIdentityResponse(result.Identity),
		ExpiresAt: result.Session.ExpiresAt,
		Redirect:  auth.SafeRedirect(redirect, h.homePath),
	}
}
