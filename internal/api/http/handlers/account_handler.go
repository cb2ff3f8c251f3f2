package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dealership/internal/api/dto"
	"github.com/spec-kit/dealership/internal/auth"
	"github.com/spec-kit/dealership/internal/service"
	apperrors "github.com/spec-kit/dealership/pkg/util"
)

// AccountHandler serves the signed-in customer's own account.
type AccountHandler struct {
	auth  *service.AuthService
	staff *service.StaffService
}

// NewAccountHandler constructs handler.
func NewAccountHandler(authService *service.AuthService, staffService *service.StaffService) *AccountHandler {
	return &AccountHandler{auth: authService, staff: staffService}
}

// Show handles GET /account.
func (h *AccountHandler) Show(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	identity, err := h.staff.Profile(c.UserContext(), session)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"identity": dto.NewIdentityResponse(*identity),
			"session":  dto.NewSessionResponse(&session),
		},
	})
}

// ChangePassword handles PUT /account/password.
func (h *AccountHandler) ChangePassword(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return fiber.NewError(http.StatusBadRequest, "current and new password required")
	}

	if err := h.auth.ChangePassword(c.UserContext(), session, req.CurrentPassword, req.NewPassword); err != nil {
		return serviceError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}
