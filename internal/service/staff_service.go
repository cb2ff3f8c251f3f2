package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/dealership/internal/auth"
	"github.com/spec-kit/dealership/internal/domain"
	"github.com/spec-kit/dealership/internal/events"
	"github.com/spec-kit/dealership/internal/repository"
)

// StaffService manages staff accounts and the customer directory.
type StaffService struct {
	identities repository.IdentityRepository
	hasher     *auth.PasswordHasher
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// StaffDependencies encapsulates collaborators for staff management.
type StaffDependencies struct {
	Identities repository.IdentityRepository
	Hasher     *auth.PasswordHasher
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// ListFilters define paging and activity filtering for directory listings.
type ListFilters struct {
	Active *bool
	Limit  int
	Offset int
}

// NewStaffService constructs the service.
func NewStaffService(deps StaffDependencies) *StaffService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{
		identities: deps.Identities,
		hasher:     deps.Hasher,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

func requireRole(actor domain.Session, role domain.Role) error {
	if !actor.Role.Satisfies(role) {
		return ErrForbidden
	}
	return nil
}

// ListCustomers is available to any staff member.
func (s *StaffService) ListCustomers(ctx context.Context, actor domain.Session, filters ListFilters) ([]domain.Identity, error) {
	if err := requireRole(actor, domain.RoleStaff); err != nil {
		return nil, err
	}
	return s.identities.List(ctx, repository.IdentityFilter{
		Roles:  []domain.Role{domain.RoleCustomer},
		Active: filters.Active,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

// ListStaff returns staff and super staff accounts.
func (s *StaffService) ListStaff(ctx context.Context, actor domain.Session, filters ListFilters) ([]domain.Identity, error) {
	if err := requireRole(actor, domain.RoleSuperStaff); err != nil {
		return nil, err
	}
	return s.identities.List(ctx, repository.IdentityFilter{
		Roles:  []domain.Role{domain.RoleStaff, domain.RoleSuperStaff},
		Active: filters.Active,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

// CreateStaff provisions a staff account. Customers are only created
// through self-registration.
func (s *StaffService) CreateStaff(ctx context.Context, actor domain.Session, name, email, password string, role domain.Role) (*domain.Identity, error) {
	if err := requireRole(actor, domain.RoleSuperStaff); err != nil {
		return nil, err
	}
	if !isStaffRole(role) {
		return nil, ErrInvalidRole
	}
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	email, err = validateEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	identity := &domain.Identity{Email: email, Name: name, Role: role, Active: true}
	if err := s.identities.Create(ctx, identity, hash); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventStaffCreated, identity.ID, actor.SubjectID,
		events.IdentityRegisteredPayload{Email: identity.Email, Name: identity.Name}))
	return identity, nil
}

// ChangeRole moves an identity between tiers. Actors cannot change their own role.
func (s *StaffService) ChangeRole(ctx context.Context, actor domain.Session, id string, role domain.Role) (*domain.Identity, error) {
	if err := requireRole(actor, domain.RoleSuperStaff); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if id == actor.SubjectID {
		return nil, ErrSelfModification
	}

	identity, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if identity.Role == role {
		return identity, nil
	}
	if err := s.identities.UpdateRole(ctx, id, role); err != nil {
		return nil, s.notFound(err)
	}

	s.publish(ctx, events.NewEvent(events.EventIdentityRoleChanged, id, actor.SubjectID,
		events.RoleChangedPayload{OldRole: identity.Role, NewRole: role}))
	identity.Role = role
	return identity, nil
}

// SetActive enables or disables login for an identity. Sessions already
// issued stay valid until they expire.
func (s *StaffService) SetActive(ctx context.Context, actor domain.Session, id string, active bool) (*domain.Identity, error) {
	if err := requireRole(actor, domain.RoleSuperStaff); err != nil {
		return nil, err
	}
	if id == actor.SubjectID {
		return nil, ErrSelfModification
	}

	identity, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if identity.Active == active {
		return identity, nil
	}
	if err := s.identities.SetActive(ctx, id, active); err != nil {
		return nil, s.notFound(err)
	}

	s.publish(ctx, events.NewEvent(events.EventIdentityActivity, id, actor.SubjectID,
		events.ActivityChangedPayload{Active: active}))
	identity.Active = active
	return identity, nil
}

// EnsureSuperStaff provisions the first super staff account at startup so a
// fresh store can be administered. An existing account with the email is left
// untouched.
func (s *StaffService) EnsureSuperStaff(ctx context.Context, email, password string) (*domain.Identity, error) {
	email, err := validateEmail(email)
	if err != nil {
		return nil, err
	}
	if creds, err := s.identities.GetCredentialsByEmail(ctx, email); err == nil {
		return &creds.Identity, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	identity := &domain.Identity{Email: email, Name: "Administrator", Role: domain.RoleSuperStaff, Active: true}
	if err := s.identities.Create(ctx, identity, hash); err != nil {
		return nil, err
	}
	s.logger.Info("bootstrap super staff created", zap.String("identity_id", identity.ID))
	return identity, nil
}

// Profile returns the stored identity behind a session.
func (s *StaffService) Profile(ctx context.Context, session domain.Session) (*domain.Identity, error) {
	return s.get(ctx, session.SubjectID)
}

// Identity ids are UUIDs; anything else cannot name a stored identity.
func (s *StaffService) get(ctx context.Context, id string) (*domain.Identity, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrIdentityNotFound
	}
	identity, err := s.identities.GetByID(ctx, id)
	if err != nil {
		return nil, s.notFound(err)
	}
	return identity, nil
}

func (s *StaffService) notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrIdentityNotFound
	}
	return err
}

func (s *StaffService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func isStaffRole(role domain.Role) bool {
	return role == domain.RoleStaff || role == domain.RoleSuperStaff
}
