package dto

import "github.com/spec-kit/dealership/internal/domain"

// VehicleResponse is the catalogue view of a vehicle.
type VehicleResponse struct {
	ID         string               `json:"id"`
	Slug       string               `json:"slug"`
	Title      string               `json:"title"`
	Brand      string               `json:"brand"`
	Category   string               `json:"category"`
	Year       int                  `json:"year"`
	PriceCents int64                `json:"price_cents"`
	MileageKm  int                  `json:"mileage_km"`
	Status     domain.VehicleStatus `json:"status"`
}

// PhotoResponse is one visible gallery entry.
type PhotoResponse struct {
	URL      string `json:"url"`
	Position int    `json:"position"`
	Primary  bool   `json:"primary"`
}

// GalleryResponse reports the visible photos and how many are withheld.
type GalleryResponse struct {
	Photos []PhotoResponse `json:"photos"`
	Total  int             `json:"total"`
	Hidden int             `json:"hidden"`
	Gated  bool            `json:"gated"`
}

// VehicleDetailResponse combines a vehicle with its gallery.
type VehicleDetailResponse struct {
	VehicleResponse
	Gallery GalleryResponse `json:"gallery"`
}

// NewVehicleResponse maps a domain vehicle.
func NewVehicleResponse(v domain.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:         v.ID,
		Slug:       v.Slug,
		Title:      v.Title,
		Brand:      v.Brand,
		Category:   v.Category,
		Year:       v.Year,
		PriceCents: v.PriceCents,
		MileageKm:  v.MileageKm,
		Status:     v.Status,
	}
}

// NewPhotoResponses maps visible photos.
func NewPhotoResponses(photos []domain.VehiclePhoto) []PhotoResponse {
	out := make([]PhotoResponse, 0, len(photos))
	for _, p := range photos {
		out = append(out, PhotoResponse{URL: p.URL, Position: p.Position, Primary: p.Primary})
	}
	return out
}
