package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/dealership/internal/domain"
)

// MemoryIdentityRepository keeps identities in process memory. It backs
// development runs without Postgres and the test suites.
type MemoryIdentityRepository struct {
	mu      sync.RWMutex
	byID    map[string]*Credentials
	byEmail map[string]string
	now     func() time.Time
}

// NewMemoryIdentityRepository builds an empty store.
func NewMemoryIdentityRepository() *MemoryIdentityRepository {
	return &MemoryIdentityRepository{
		byID:    make(map[string]*Credentials),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (r *MemoryIdentityRepository) Create(_ context.Context, identity *domain.Identity, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := domain.NormalizeEmail(identity.Email)
	if _, exists := r.byEmail[email]; exists {
		return ErrEmailTaken
	}

	now := r.now()
	identity.ID = uuid.NewString()
	identity.Email = email
	identity.CreatedAt = now
	identity.UpdatedAt = now

	r.byID[identity.ID] = &Credentials{Identity: *identity, PasswordHash: passwordHash}
	r.byEmail[email] = identity.ID
	return nil
}

func (r *MemoryIdentityRepository) GetByID(_ context.Context, id string) (*domain.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	creds, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	identity := creds.Identity
	return &identity, nil
}

func (r *MemoryIdentityRepository) GetCredentialsByEmail(_ context.Context, email string) (*Credentials, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	creds := *r.byID[id]
	return &creds, nil
}

func (r *MemoryIdentityRepository) GetCredentialsByID(_ context.Context, id string) (*Credentials, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	creds, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *creds
	return &copied, nil
}

func (r *MemoryIdentityRepository) UpdatePasswordHash(_ context.Context, id, passwordHash string) error {
	return r.update(id, func(c *Credentials) { c.PasswordHash = passwordHash })
}

func (r *MemoryIdentityRepository) UpdateRole(_ context.Context, id string, role domain.Role) error {
	return r.update(id, func(c *Credentials) { c.Identity.Role = role })
}

func (r *MemoryIdentityRepository) SetActive(_ context.Context, id string, active bool) error {
	return r.update(id, func(c *Credentials) { c.Identity.Active = active })
}

func (r *MemoryIdentityRepository) update(id string, mutate func(*Credentials)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	creds, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	mutate(creds)
	creds.Identity.UpdatedAt = r.now()
	return nil
}

func (r *MemoryIdentityRepository) List(_ context.Context, filter IdentityFilter) ([]domain.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Identity
	for _, creds := range r.byID {
		identity := creds.Identity
		if len(filter.Roles) > 0 && !slices.Contains(filter.Roles, identity.Role) {
			continue
		}
		if filter.Active != nil && identity.Active != *filter.Active {
			continue
		}
		result = append(result, identity)
	}
	slices.SortFunc(result, func(a, b domain.Identity) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return page(result, filter.Limit, filter.Offset), nil
}

// MemoryVehicleRepository keeps a vehicle catalogue in process memory.
type MemoryVehicleRepository struct {
	mu       sync.RWMutex
	vehicles []domain.Vehicle
	photos   map[string][]domain.VehiclePhoto
}

// NewMemoryVehicleRepository builds an empty catalogue.
func NewMemoryVehicleRepository() *MemoryVehicleRepository {
	return &MemoryVehicleRepository{photos: make(map[string][]domain.VehiclePhoto)}
}

// Add stores a vehicle with its gallery, assigning ids where missing.
func (r *MemoryVehicleRepository) Add(vehicle domain.Vehicle, photos ...domain.VehiclePhoto) domain.Vehicle {
	r.mu.Lock()
	defer r.mu.Unlock()

	if vehicle.ID == "" {
		vehicle.ID = uuid.NewString()
	}
	if vehicle.CreatedAt.IsZero() {
		vehicle.CreatedAt = time.Now()
		vehicle.UpdatedAt = vehicle.CreatedAt
	}
	for i := range photos {
		photos[i].VehicleID = vehicle.ID
		if photos[i].ID == "" {
			photos[i].ID = uuid.NewString()
		}
	}
	r.vehicles = append(r.vehicles, vehicle)
	r.photos[vehicle.ID] = slices.Clone(photos)
	return vehicle
}

func (r *MemoryVehicleRepository) GetBySlug(_ context.Context, slug string) (*domain.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range r.vehicles {
		if v.Slug == slug {
			found := v
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryVehicleRepository) List(_ context.Context, filter VehicleFilter) ([]domain.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Vehicle
	for _, v := range r.vehicles {
		if filter.Matches(v) {
			result = append(result, v)
		}
	}
	slices.SortStableFunc(result, func(a, b domain.Vehicle) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return page(result, filter.Limit, filter.Offset), nil
}

func (r *MemoryVehicleRepository) ListPhotos(_ context.Context, vehicleID string) ([]domain.VehiclePhoto, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	photos := slices.Clone(r.photos[vehicleID])
	slices.SortStableFunc(photos, func(a, b domain.VehiclePhoto) int {
		return a.Position - b.Position
	})
	return photos, nil
}

func page[T any](items []T, limit, offset int) []T {
	limit, offset = normalizePage(limit, offset)
	if offset >= len(items) {
		return nil
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}

var (
	_ IdentityRepository = (*MemoryIdentityRepository)(nil)
	_ VehicleRepository  = (*MemoryVehicleRepository)(nil)
)
