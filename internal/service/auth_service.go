package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/dealership/internal/auth"
	"github.com/spec-kit/dealership/internal/domain"
	"github.com/spec-kit/dealership/internal/events"
	"github.com/spec-kit/dealership/internal/repository"
)

// LoginRecorder receives login outcomes for metrics.
type LoginRecorder interface {
	RecordLogin(outcome string)
}

// AuthResult is the outcome of a successful registration or login.
type AuthResult struct {
	Identity domain.Identity
	Token    string
	Session  domain.Session
}

// AuthService coordinates registration, login and password changes.
type AuthService struct {
	identities    repository.IdentityRepository
	hasher        *auth.PasswordHasher
	tokens        *auth.TokenCodec
	throttle      LoginThrottle
	dispatcher    events.Dispatcher
	recorder      LoginRecorder
	logger        *zap.Logger
	lookupTimeout time.Duration
	dummyHash     string
}

// AuthDependencies encapsulates collaborators for the auth service.
// Throttle, Dispatcher and Recorder are optional.
type AuthDependencies struct {
	Identities    repository.IdentityRepository
	Hasher        *auth.PasswordHasher
	Tokens        *auth.TokenCodec
	Throttle      LoginThrottle
	Dispatcher    events.Dispatcher
	Recorder      LoginRecorder
	Logger        *zap.Logger
	LookupTimeout time.Duration
}

// NewAuthService builds the service. It hashes a throwaway password so that
// logins for unknown emails cost the same as real verifications.
func NewAuthService(deps AuthDependencies) (*AuthService, error) {
	if deps.Identities == nil || deps.Hasher == nil || deps.Tokens == nil {
		return nil, errors.New("auth service requires identities, hasher and tokens")
	}
	dummy, err := deps.Hasher.Hash("dealership-timing-equalizer")
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		identities:    deps.Identities,
		hasher:        deps.Hasher,
		tokens:        deps.Tokens,
		throttle:      deps.Throttle,
		dispatcher:    deps.Dispatcher,
		recorder:      deps.Recorder,
		logger:        logger,
		lookupTimeout: deps.LookupTimeout,
		dummyHash:     dummy,
	}, nil
}

// Register creates a customer account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
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

	identity := &domain.Identity{
		Email:  email,
		Name:   name,
		Role:   domain.RoleCustomer,
		Active: true,
	}
	if err := s.identities.Create(ctx, identity, hash); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventIdentityRegistered, identity.ID, identity.ID,
		events.IdentityRegisteredPayload{Email: identity.Email, Name: identity.Name}))

	return s.open(*identity)
}

// Login verifies credentials and opens a session. Every credential failure
// is reported as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, s.reject(ctx, email, "missing_fields", nil)
	}

	if s.throttle != nil {
		blocked, err := s.throttle.Blocked(ctx, email)
		if err != nil {
			s.logger.Warn("login throttle unavailable", zap.Error(err))
		} else if blocked {
			s.record("throttled")
			return nil, ErrLoginThrottled
		}
	}

	lookupCtx, cancel := s.lookupContext(ctx)
	creds, err := s.identities.GetCredentialsByEmail(lookupCtx, email)
	cancel()
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, s.reject(ctx, email, "unknown_email", nil)
		}
		return nil, s.reject(ctx, email, "store_error", err)
	}

	matched := s.hasher.Verify(password, creds.PasswordHash)
	if !creds.Identity.Active {
		return nil, s.reject(ctx, email, "inactive", nil)
	}
	if !matched {
		return nil, s.reject(ctx, email, "password_mismatch", nil)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.logger.Warn("login throttle reset failed", zap.Error(err))
		}
	}

	result, err := s.open(creds.Identity)
	if err != nil {
		return nil, err
	}
	s.record("success")
	return result, nil
}

// ChangePassword replaces the password of the session's subject after
// re-verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, session domain.Session, currentPassword, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	lookupCtx, cancel := s.lookupContext(ctx)
	creds, err := s.identities.GetCredentialsByID(lookupCtx, session.SubjectID)
	cancel()
	if err != nil {
		s.logger.Info("password change lookup failed", zap.String("subject_id", session.SubjectID), zap.Error(err))
		return ErrInvalidCredentials
	}
	if !creds.Identity.Active || !s.hasher.Verify(currentPassword, creds.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.identities.UpdatePasswordHash(ctx, creds.Identity.ID, hash); err != nil {
		return err
	}

	s.publish(ctx, events.NewEvent(events.EventPasswordChanged, creds.Identity.ID, session.SubjectID, nil))
	return nil
}

// lookupContext bounds credential reads by the configured timeout.
func (s *AuthService) lookupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.lookupTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.lookupTimeout)
}

func (s *AuthService) open(identity domain.Identity) (*AuthResult, error) {
	token, session, err := s.tokens.Issue(identity)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Identity: identity, Token: token, Session: session}, nil
}

func (s *AuthService) reject(ctx context.Context, email, reason string, cause error) error {
	fields := []zap.Field{zap.String("reason", reason), zap.String("email", email)}
	if cause != nil {
		s.logger.Warn("login failed", append(fields, zap.Error(cause))...)
	} else {
		s.logger.Info("login failed", fields...)
	}

	if s.throttle != nil && email != "" && reason != "store_error" {
		if err := s.throttle.RecordFailure(ctx, email); err != nil {
			s.logger.Warn("login throttle record failed", zap.Error(err))
		}
	}
	s.record("invalid_credentials")
	return ErrInvalidCredentials
}

func (s *AuthService) record(outcome string) {
	if s.recorder != nil {
		s.recorder.RecordLogin(outcome)
	}
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
