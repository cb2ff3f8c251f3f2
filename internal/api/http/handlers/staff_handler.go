package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dealership/internal/api/dto"
	"github.com/spec-kit/dealership/internal/auth"
	"github.com/spec-kit/dealership/internal/domain"
	"github.com/spec-kit/dealership/internal/service"
)

// StaffHandler exposes back-office identity administration.
type StaffHandler struct {
	staff *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staffService *service.StaffService) *StaffHandler {
	return &StaffHandler{staff: staffService}
}

// ListCustomers handles GET /admin/customers.
func (h *StaffHandler) ListCustomers(c *fiber.Ctx) error {
	actor, err := h.actor(c)
	if err != nil {
		return err
	}
	list, err := h.staff.ListCustomers(c.UserContext(), actor, parseListFilters(c))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{"data": identityResponses(list)})
}

// ListStaff handles GET /admin/staff.
func (h *StaffHandler) ListStaff(c *fiber.Ctx) error {
	actor, err := h.actor(c)
	if err != nil {
		return err
	}
	list, err := h.staff.ListStaff(c.UserContext(), actor, parseListFilters(c))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{"data": identityResponses(list)})
}

// CreateStaff handles POST /admin/staff.
func (h *StaffHandler) CreateStaff(c *fiber.Ctx) error {
	actor, err := h.actor(c)
	if err != nil {
		return err
	}
	var req dto.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	role := domain.RoleStaff
	if req.Role != "" {
		role = domain.Role(req.Role)
	}

	created, err := h.staff.CreateStaff(c.UserContext(), actor, req.Name, req.Email, req.Password, role)
	if err != nil {
		return serviceError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewIdentityResponse(*created)})
}

// ChangeRole handles PATCH /admin/staff/:id/role.
func (h *StaffHandler) ChangeRole(c *fiber.Ctx) error {
	actor, err := h.actor(c)
	if err != nil {
		return err
	}
	var req dto.ChangeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	updated, err := h.staff.ChangeRole(c.UserContext(), actor, c.Params("id"), domain.Role(req.Role))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewIdentityResponse(*updated)})
}

// SetActive handles PATCH /admin/staff/:id/active.
func (h *StaffHandler) SetActive(c *fiber.Ctx) error {
	actor, err := h.actor(c)
	if err != nil {
		return err
	}
	var req dto.SetActiveRequest
	if err := c.BodyParser(&req); err != nil || req.Active == nil {
		return fiber.NewError(http.StatusBadRequest, "active flag required")
	}

	updated, err := h.staff.SetActive(c.UserContext(), actor, c.Params("id"), *req.Active)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewIdentityResponse(*updated)})
}

func (h *StaffHandler) actor(c *fiber.Ctx) (domain.Session, error) {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return domain.Session{}, fiber.NewError(http.StatusUnauthorized, "authentication required")
	}
	return session, nil
}

func identityResponses(list []domain.Identity) []dto.IdentityResponse {
	resp := make([]dto.IdentityResponse, 0, len(list))
	for _, identity := range list {
		resp = append(resp, dto.NewIdentityResponse(identity))
	}
	return resp
}

func parseListFilters(c *fiber.Ctx) service.ListFilters {
	filters := service.ListFilters{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if val := c.Query("active"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			filters.Active = &parsed
		}
	}
	return filters
}
