package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/dealership/internal/disclosure"
	"github.com/spec-kit/dealership/internal/domain"
	"github.com/spec-kit/dealership/internal/repository"
)

// ErrVehicleNotFound is returned for unknown slugs.
var ErrVehicleNotFound = errors.New("vehicle not found")

// VehicleDetail is a vehicle together with the part of its gallery the
// caller may see.
type VehicleDetail struct {
	Vehicle domain.Vehicle
	Photos  disclosure.Disclosure[domain.VehiclePhoto]
}

// VehicleService serves the public catalogue.
type VehicleService struct {
	vehicles repository.VehicleRepository
}

// NewVehicleService constructs the service.
func NewVehicleService(vehicles repository.VehicleRepository) *VehicleService {
	return &VehicleService{vehicles: vehicles}
}

// List returns vehicles matching the filter.
func (s *VehicleService) List(ctx context.Context, filter repository.VehicleFilter) ([]domain.Vehicle, error) {
	return s.vehicles.List(ctx, filter)
}

// Detail loads a vehicle by slug. Anonymous callers only get the primary photo.
func (s *VehicleService) Detail(ctx context.Context, slug string, authenticated bool) (*VehicleDetail, error) {
	vehicle, err := s.vehicles.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	photos, err := s.vehicles.ListPhotos(ctx, vehicle.ID)
	if err != nil {
		return nil, err
	}
	return &VehicleDetail{
		Vehicle: *vehicle,
		Photos:  disclosure.RevealPhotos(photos, authenticated),
	}, nil
}
