package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/dealership/internal/domain"
)

func TestMemoryIdentityRepository_CaseInsensitiveEmail(t *testing.T) {
	repo := NewMemoryIdentityRepository()
	ctx := context.Background()

	identity := &domain.Identity{Email: "A@X.com", Name: "Alice", Role: domain.RoleCustomer, Active: true}
	require.NoError(t, repo.Create(ctx, identity, "hash"))
	assert.NotEmpty(t, identity.ID)
	assert.Equal(t, "a@x.com", identity.Email)

	creds, err := repo.GetCredentialsByEmail(ctx, " a@X.COM ")
	require.NoError(t, err)
	assert.Equal(t, identity.ID, creds.Identity.ID)
	assert.Equal(t, "hash", creds.PasswordHash)

	err = repo.Create(ctx, &domain.Identity{Email: "a@x.COM", Name: "Dup", Role: domain.RoleCustomer}, "h2")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestMemoryIdentityRepository_MissingRows(t *testing.T) {
	repo := NewMemoryIdentityRepository()
	ctx := context.Background()

	_, err := repo.GetCredentialsByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.ErrorIs(t, repo.UpdateRole(ctx, "missing", domain.RoleStaff), pgx.ErrNoRows)
}

func TestMemoryIdentityRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryIdentityRepository()
	ctx := context.Background()

	identity := &domain.Identity{Email: "s@x.com", Name: "Sam", Role: domain.RoleStaff, Active: true}
	require.NoError(t, repo.Create(ctx, identity, "hash"))

	got, err := repo.GetByID(ctx, identity.ID)
	require.NoError(t, err)
	got.Role = domain.RoleSuperStaff

	again, err := repo.GetByID(ctx, identity.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, again.Role)
}

func TestMemoryIdentityRepository_ListFilters(t *testing.T) {
	repo := NewMemoryIdentityRepository()
	ctx := context.Background()

	for _, seed := range []struct {
		email  string
		role   domain.Role
		active bool
	}{
		{"c1@x.com", domain.RoleCustomer, true},
		{"c2@x.com", domain.RoleCustomer, false},
		{"s1@x.com", domain.RoleStaff, true},
		{"s2@x.com", domain.RoleSuperStaff, true},
	} {
		require.NoError(t, repo.Create(ctx, &domain.Identity{Email: seed.email, Name: seed.email, Role: seed.role, Active: seed.active}, "h"))
	}

	staff, err := repo.List(ctx, IdentityFilter{Roles: []domain.Role{domain.RoleStaff, domain.RoleSuperStaff}})
	require.NoError(t, err)
	assert.Len(t, staff, 2)

	active := true
	customers, err := repo.List(ctx, IdentityFilter{Roles: []domain.Role{domain.RoleCustomer}, Active: &active})
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "c1@x.com", customers[0].Email)
}

func TestVehicleFilter_PredicatesAreParameterized(t *testing.T) {
	brand := "Volvo'; DROP TABLE vehicles; --"
	minYear := 2018
	status := domain.VehicleStatusAvailable

	clauses, args := VehicleFilter{Brand: &brand, MinYear: &minYear, Status: &status}.predicates()

	assert.Equal(t, []string{"lower(brand)=lower($1)", "year>=$2", "status=$3"}, clauses)
	assert.Equal(t, []any{brand, minYear, status}, args)
}

func TestMemoryVehicleRepository_ListAndPhotos(t *testing.T) {
	repo := NewMemoryVehicleRepository()
	ctx := context.Background()

	volvo := repo.Add(domain.Vehicle{Slug: "volvo-xc60", Brand: "Volvo", Year: 2021, PriceCents: 3_500_000},
		domain.VehiclePhoto{URL: "/b.jpg", Position: 2},
		domain.VehiclePhoto{URL: "/a.jpg", Position: 1},
	)
	repo.Add(domain.Vehicle{Slug: "fiat-500", Brand: "Fiat", Year: 2015, PriceCents: 900_000})

	brand := "volvo"
	list, err := repo.List(ctx, VehicleFilter{Brand: &brand})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "volvo-xc60", list[0].Slug)

	maxPrice := int64(1_000_000)
	list, err = repo.List(ctx, VehicleFilter{MaxPriceCents: &maxPrice})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "fiat-500", list[0].Slug)

	photos, err := repo.ListPhotos(ctx, volvo.ID)
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, "/a.jpg", photos[0].URL)
	assert.Equal(t, volvo.ID, photos[0].VehicleID)

	_, err = repo.GetBySlug(ctx, "missing")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
