package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dealership/internal/api/dto"
	"github.com/spec-kit/dealership/internal/auth"
)

// PagesHandler answers the navigation endpoints that a front end renders.
type PagesHandler struct {
	homePath string
}

// NewPagesHandler constructs handler.
func NewPagesHandler(homePath string) *PagesHandler {
	if homePath == "" {
		homePath = "/"
	}
	return &PagesHandler{homePath: homePath}
}

// Home handles GET /.
func (h *PagesHandler) Home(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": fiber.Map{
		"page":    "home",
		"session": h.session(c),
	}})
}

// Login handles GET /login. Signed-in visitors are sent on to their target.
func (h *PagesHandler) Login(c *fiber.Ctx) error {
	target := auth.SafeRedirect(c.Query(auth.RedirectParam), h.homePath)
	if _, ok := auth.SessionFromContext(c); ok {
		return c.Redirect(target, fiber.StatusFound)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"page":     "login",
		"redirect": target,
	}})
}

// Admin handles GET /admin.
func (h *PagesHandler) Admin(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": fiber.Map{
		"page":    "admin",
		"session": h.session(c),
	}})
}

func (h *PagesHandler) session(c *fiber.Ctx) dto.SessionResponse {
	if session, ok := auth.SessionFromContext(c); ok {
		return dto.NewSessionResponse(&session)
	}
	return dto.NewSessionResponse(nil)
}
