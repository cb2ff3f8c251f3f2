package domain

import "time"

// VehicleStatus represents stock states for a listed vehicle.
type VehicleStatus string

const (
	VehicleStatusAvailable VehicleStatus = "available"
	VehicleStatusReserved  VehicleStatus = "reserved"
	VehicleStatusSold      VehicleStatus = "sold"
)

// Vehicle is a car listed on the public storefront.
type Vehicle struct {
	ID         string
	Slug       string
	Title      string
	Brand      string
	Category   string
	Year       int
	PriceCents int64
	MileageKm  int
	Status     VehicleStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// VehiclePhoto is one image from a vehicle's gallery.
type VehiclePhoto struct {
	ID        string
	VehicleID string
	URL       string
	Position  int
	Primary   bool
}
