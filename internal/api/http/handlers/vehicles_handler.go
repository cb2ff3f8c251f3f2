package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dealership/internal/api/dto"
	"github.com/spec-kit/dealership/internal/auth"
	"github.com/spec-kit/dealership/internal/domain"
	"github.com/spec-kit/dealership/internal/repository"
	"github.com/spec-kit/dealership/internal/service"
	apperrors "github.com/spec-kit/dealership/pkg/util"
)

// VehiclesHandler serves the public catalogue.
type VehiclesHandler struct {
	vehicles *service.VehicleService
}

// NewVehiclesHandler constructs handler.
func NewVehiclesHandler(vehicles *service.VehicleService) *VehiclesHandler {
	return &VehiclesHandler{vehicles: vehicles}
}

// List handles GET /vehicles.
func (h *VehiclesHandler) List(c *fiber.Ctx) error {
	filter, err := parseVehicleFilter(c)
	if err != nil {
		return err
	}
	vehicles, err := h.vehicles.List(c.UserContext(), filter)
	if err != nil {
		return serviceError(err)
	}

	resp := make([]dto.VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		resp = append(resp, dto.NewVehicleResponse(v))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Show handles GET /vehicles/:slug. Anonymous visitors see only the primary photo.
func (h *VehiclesHandler) Show(c *fiber.Ctx) error {
	_, authenticated := auth.SessionFromContext(c)

	detail, err := h.vehicles.Detail(c.UserContext(), c.Params("slug"), authenticated)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{
		"data": dto.VehicleDetailResponse{
			VehicleResponse: dto.NewVehicleResponse(detail.Vehicle),
			Gallery: dto.GalleryResponse{
				Photos: dto.NewPhotoResponses(detail.Photos.Items),
				Total:  detail.Photos.Total,
				Hidden: detail.Photos.Hidden,
				Gated:  detail.Photos.Gated,
			},
		},
	})
}

func parseVehicleFilter(c *fiber.Ctx) (repository.VehicleFilter, error) {
	filter := repository.VehicleFilter{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if v := c.Query("brand"); v != "" {
		filter.Brand = &v
	}
	if v := c.Query("category"); v != "" {
		filter.Category = &v
	}
	if v := c.Query("status"); v != "" {
		status := domain.VehicleStatus(v)
		filter.Status = &status
	}

	ints := []struct {
		key string
		dst **int
	}{
		{"min_year", &filter.MinYear},
		{"max_year", &filter.MaxYear},
	}
	for _, p := range ints {
		raw := c.Query(p.key)
		if raw == "" {
			continue
		}
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid "+p.key, map[string]any{p.key: raw})
		}
		*p.dst = &parsed
	}

	prices := []struct {
		key string
		dst **int64
	}{
		{"min_price", &filter.MinPriceCents},
		{"max_price", &filter.MaxPriceCents},
	}
	for _, p := range prices {
		raw := c.Query(p.key)
		if raw == "" {
			continue
		}
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid "+p.key, map[string]any{p.key: raw})
		}
		*p.dst = &parsed
	}
	return filter, nil
}
