package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/dealership/internal/auth"
	"github.com/spec-kit/dealership/internal/domain"
	"github.com/spec-kit/dealership/internal/events"
	"github.com/spec-kit/dealership/internal/repository"
)

func newStaffFixture(t *testing.T) (*StaffService, *repository.MemoryIdentityRepository, domain.Session) {
	t.Helper()
	identities := repository.NewMemoryIdentityRepository()
	svc := NewStaffService(StaffDependencies{
		Identities: identities,
		Hasher:     auth.NewPasswordHasher(bcrypt.MinCost),
		Dispatcher: events.NewInMemoryDispatcher(nil),
	})

	root := &domain.Identity{Email: "root@x.com", Name: "Root", Role: domain.RoleSuperStaff, Active: true}
	require.NoError(t, identities.Create(context.Background(), root, "unused"))
	return svc, identities, domain.Session{SubjectID: root.ID, Email: root.Email, Role: root.Role}
}

func TestCreateStaff(t *testing.T) {
	svc, _, root := newStaffFixture(t)
	ctx := context.Background()

	created, err := svc.CreateStaff(ctx, root, "Sam", "sam@x.com", "secret1", domain.RoleStaff)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, created.Role)
	assert.True(t, created.Active)

	_, err = svc.CreateStaff(ctx, root, "Cus", "c@x.com", "secret1", domain.RoleCustomer)
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.CreateStaff(ctx, root, "Dup", "SAM@x.com", "secret1", domain.RoleStaff)
	assert.ErrorIs(t, err, ErrEmailTaken)

	staffActor := domain.Session{SubjectID: created.ID, Role: domain.RoleStaff}
	_, err = svc.CreateStaff(ctx, staffActor, "Eve", "eve@x.com", "secret1", domain.RoleStaff)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListings_RespectTiers(t *testing.T) {
	svc, identities, root := newStaffFixture(t)
	ctx := context.Background()

	require.NoError(t, identities.Create(ctx, &domain.Identity{Email: "c@x.com", Name: "C", Role: domain.RoleCustomer, Active: true}, "h"))
	staff, err := svc.CreateStaff(ctx, root, "Sam", "sam@x.com", "secret1", domain.RoleStaff)
	require.NoError(t, err)
	staffActor := domain.Session{SubjectID: staff.ID, Role: domain.RoleStaff}

	customers, err := svc.ListCustomers(ctx, staffActor, ListFilters{})
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "c@x.com", customers[0].Email)

	_, err = svc.ListStaff(ctx, staffActor, ListFilters{})
	assert.ErrorIs(t, err, ErrForbidden)

	members, err := svc.ListStaff(ctx, root, ListFilters{})
	require.NoError(t, err)
	assert.Len(t, members, 2)

	_, err = svc.ListCustomers(ctx, domain.Session{Role: domain.RoleCustomer}, ListFilters{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestChangeRoleAndActivity(t *testing.T) {
	svc, identities, root := newStaffFixture(t)
	ctx := context.Background()

	customer := &domain.Identity{Email: "c@x.com", Name: "C", Role: domain.RoleCustomer, Active: true}
	require.NoError(t, identities.Create(ctx, customer, "h"))

	updated, err := svc.ChangeRole(ctx, root, customer.ID, domain.RoleStaff)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, updated.Role)

	_, err = svc.ChangeRole(ctx, root, customer.ID, domain.Role("owner"))
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.ChangeRole(ctx, root, root.SubjectID, domain.RoleCustomer)
	assert.ErrorIs(t, err, ErrSelfModification)

	_, err = svc.ChangeRole(ctx, root, "missing", domain.RoleStaff)
	assert.ErrorIs(t, err, ErrIdentityNotFound)

	_, err = svc.ChangeRole(ctx, root, uuid.NewString(), domain.RoleStaff)
	assert.ErrorIs(t, err, ErrIdentityNotFound)

	_, err = svc.SetActive(ctx, root, "abc", false)
	assert.ErrorIs(t, err, ErrIdentityNotFound)

	disabled, err := svc.SetActive(ctx, root, customer.ID, false)
	require.NoError(t, err)
	assert.False(t, disabled.Active)

	stored, err := identities.GetByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, stored.Role)
	assert.False(t, stored.Active)

	_, err = svc.SetActive(ctx, root, root.SubjectID, false)
	assert.ErrorIs(t, err, ErrSelfModification)
}

func TestEnsureSuperStaff_IsIdempotent(t *testing.T) {
	svc, identities, _ := newStaffFixture(t)
	ctx := context.Background()

	first, err := svc.EnsureSuperStaff(ctx, "Boss@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuperStaff, first.Role)

	second, err := svc.EnsureSuperStaff(ctx, "boss@x.com", "different")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	creds, err := identities.GetCredentialsByEmail(ctx, "boss@x.com")
	require.NoError(t, err)
	assert.True(t, auth.NewPasswordHasher(bcrypt.MinCost).Verify("secret1", creds.PasswordHash))
}
