package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/dealership/internal/domain"
)

// VehicleRepository reads the public vehicle catalogue.
type VehicleRepository interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Vehicle, error)
	List(ctx context.Context, filter VehicleFilter) ([]domain.Vehicle, error)
	ListPhotos(ctx context.Context, vehicleID string) ([]domain.VehiclePhoto, error)
}

// VehicleFilter holds storefront search criteria. Every predicate is bound
// as a query parameter.
type VehicleFilter struct {
	Brand         *string
	Category      *string
	MinYear       *int
	MaxYear       *int
	MinPriceCents *int64
	MaxPriceCents *int64
	Status        *domain.VehicleStatus
	Limit         int
	Offset        int
}

// predicates renders the filter as parameterized clauses starting at $1.
func (f VehicleFilter) predicates() ([]string, []any) {
	var clauses []string
	var args []any
	add := func(expr string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(expr, len(args)))
	}

	if f.Brand != nil {
		add("lower(brand)=lower($%d)", *f.Brand)
	}
	if f.Category != nil {
		add("lower(category)=lower($%d)", *f.Category)
	}
	if f.MinYear != nil {
		add("year>=$%d", *f.MinYear)
	}
	if f.MaxYear != nil {
		add("year<=$%d", *f.MaxYear)
	}
	if f.MinPriceCents != nil {
		add("price_cents>=$%d", *f.MinPriceCents)
	}
	if f.MaxPriceCents != nil {
		add("price_cents<=$%d", *f.MaxPriceCents)
	}
	if f.Status != nil {
		add("status=$%d", *f.Status)
	}
	return clauses, args
}

// Matches applies the same predicates in memory.
func (f VehicleFilter) Matches(v domain.Vehicle) bool {
	switch {
	case f.Brand != nil && !strings.EqualFold(v.Brand, *f.Brand):
		return false
	case f.Category != nil && !strings.EqualFold(v.Category, *f.Category):
		return false
	case f.MinYear != nil && v.Year < *f.MinYear:
		return false
	case f.MaxYear != nil && v.Year > *f.MaxYear:
		return false
	case f.MinPriceCents != nil && v.PriceCents < *f.MinPriceCents:
		return false
	case f.MaxPriceCents != nil && v.PriceCents > *f.MaxPriceCents:
		return false
	case f.Status != nil && v.Status != *f.Status:
		return false
	}
	return true
}

type vehicleRepository struct {
	pool *pgxpool.Pool
}

// NewVehicleRepository returns a Postgres-backed implementation.
func NewVehicleRepository(pool *pgxpool.Pool) VehicleRepository {
	return &vehicleRepository{pool: pool}
}

const vehicleColumns = `id, slug, title, brand, category, year, price_cents, mileage_km, status, created_at, updated_at`

func (r *vehicleRepository) GetBySlug(ctx context.Context, slug string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE slug=$1`

	var v domain.Vehicle
	if err := r.pool.QueryRow(ctx, query, slug).Scan(
		&v.ID, &v.Slug, &v.Title, &v.Brand, &v.Category, &v.Year,
		&v.PriceCents, &v.MileageKm, &v.Status, &v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *vehicleRepository) List(ctx context.Context, filter VehicleFilter) ([]domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles`
	clauses, args := filter.predicates()
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(
			&v.ID, &v.Slug, &v.Title, &v.Brand, &v.Category, &v.Year,
			&v.PriceCents, &v.MileageKm, &v.Status, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

func (r *vehicleRepository) ListPhotos(ctx context.Context, vehicleID string) ([]domain.VehiclePhoto, error) {
	const query = `
        SELECT id, vehicle_id, url, position, is_primary
        FROM vehicle_photos WHERE vehicle_id=$1
        ORDER BY position ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.VehiclePhoto
	for rows.Next() {
		var p domain.VehiclePhoto
		if err := rows.Scan(&p.ID, &p.VehicleID, &p.URL, &p.Position, &p.Primary); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
