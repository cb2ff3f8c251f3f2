package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/dealership/internal/auth"
	"github.com/spec-kit/dealership/internal/domain"
	"github.com/spec-kit/dealership/internal/events"
	"github.com/spec-kit/dealership/internal/repository"
)

const testSecret = "service-test-secret-0123456789abcdef"

type loginCounter struct {
	mu       sync.Mutex
	outcomes []string
}

func (l *loginCounter) RecordLogin(outcome string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outcomes = append(l.outcomes, outcome)
}

type memoryThrottle struct {
	max      int
	failures map[string]int
	err      error
}

func newMemoryThrottle(max int) *memoryThrottle {
	return &memoryThrottle{max: max, failures: map[string]int{}}
}

func (m *memoryThrottle) Blocked(_ context.Context, email string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.failures[email] >= m.max, nil
}

func (m *memoryThrottle) RecordFailure(_ context.Context, email string) error {
	m.failures[email]++
	return m.err
}

func (m *memoryThrottle) Reset(_ context.Context, email string) error {
	delete(m.failures, email)
	return m.err
}

// slowIdentities blocks credential reads until the context gives up.
type slowIdentities struct {
	*repository.MemoryIdentityRepository
}

func (s slowIdentities) GetCredentialsByEmail(ctx context.Context, _ string) (*repository.Credentials, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type brokenIdentities struct {
	*repository.MemoryIdentityRepository
}

func (brokenIdentities) GetCredentialsByEmail(context.Context, string) (*repository.Credentials, error) {
	return nil, errors.New("connection refused")
}

type authFixture struct {
	svc        *AuthService
	identities *repository.MemoryIdentityRepository
	hasher     *auth.PasswordHasher
	tokens     *auth.TokenCodec
	throttle   *memoryThrottle
	recorder   *loginCounter
	dispatcher events.Dispatcher
}

func newAuthFixture(t *testing.T, mutate func(*AuthDependencies)) *authFixture {
	t.Helper()
	tokens, err := auth.NewTokenCodec(testSecret, time.Hour)
	require.NoError(t, err)

	f := &authFixture{
		identities: repository.NewMemoryIdentityRepository(),
		hasher:     auth.NewPasswordHasher(bcrypt.MinCost),
		tokens:     tokens,
		throttle:   newMemoryThrottle(3),
		recorder:   &loginCounter{},
		dispatcher: events.NewInMemoryDispatcher(nil),
	}
	deps := AuthDependencies{
		Identities:    f.identities,
		Hasher:        f.hasher,
		Tokens:        f.tokens,
		Throttle:      f.throttle,
		Dispatcher:    f.dispatcher,
		Recorder:      f.recorder,
		LookupTimeout: time.Second,
	}
	if mutate != nil {
		mutate(&deps)
	}
	f.svc, err = NewAuthService(deps)
	require.NoError(t, err)
	return f
}

func TestRegister_CreatesCustomerAndSession(t *testing.T) {
	f := newAuthFixture(t, nil)

	var registered []events.Event
	f.dispatcher.Subscribe(events.EventIdentityRegistered, func(_ context.Context, e events.Event) error {
		registered = append(registered, e)
		return nil
	})

	result, err := f.svc.Register(context.Background(), " Ana ", "A@X.com", "secret1")
	require.NoError(t, err)

	assert.Equal(t, domain.RoleCustomer, result.Identity.Role)
	assert.Equal(t, "a@x.com", result.Identity.Email)
	assert.Equal(t, "Ana", result.Identity.Name)
	assert.True(t, result.Identity.Active)

	session, err := f.tokens.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.Identity.ID, session.SubjectID)
	assert.Equal(t, domain.RoleCustomer, session.Role)

	require.Len(t, registered, 1)
	assert.Equal(t, result.Identity.ID, registered[0].IdentityID)

	creds, err := f.identities.GetCredentialsByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", creds.PasswordHash)
	assert.True(t, f.hasher.Verify("secret1", creds.PasswordHash))
}

func TestRegister_RejectsBadInput(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()

	tests := []struct {
		name, who, email, password, field string
	}{
		{"missing name", "", "a@x.com", "secret1", "name"},
		{"bad email", "Ana", "not-an-email", "secret1", "email"},
		{"short password", "Ana", "a@x.com", "12345", "password"},
		{"password over bcrypt limit", "Ana", "a@x.com", string(make([]byte, 73)), "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(ctx, tt.who, tt.email, tt.password)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "Ana", "a@x.com", "secret1")
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, "Other", "A@x.com", "secret2")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_Succeeds(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, "Ana", "a@x.com", "secret1")
	require.NoError(t, err)

	result, err := f.svc.Login(ctx, "A@X.COM", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", result.Session.Email)
	assert.Equal(t, []string{"success"}, f.recorder.outcomes)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()
	reg, err := f.svc.Register(ctx, "Ana", "a@x.com", "secret1")
	require.NoError(t, err)

	_, wrongPassword := f.svc.Login(ctx, "a@x.com", "secret2")
	_, unknownEmail := f.svc.Login(ctx, "b@x.com", "secret1")
	_, missing := f.svc.Login(ctx, "", "")

	require.NoError(t, f.identities.SetActive(ctx, reg.Identity.ID, false))
	_, inactive := f.svc.Login(ctx, "a@x.com", "secret1")

	for _, err := range []error{wrongPassword, unknownEmail, missing, inactive} {
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, ErrInvalidCredentials.Error(), err.Error())
	}
}

func TestLogin_StoreFailureFailsClosed(t *testing.T) {
	f := newAuthFixture(t, func(d *AuthDependencies) {
		d.Identities = brokenIdentities{repository.NewMemoryIdentityRepository()}
	})

	_, err := f.svc.Login(context.Background(), "a@x.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, f.throttle.failures)
}

func TestLogin_LookupTimeoutFailsClosed(t *testing.T) {
	f := newAuthFixture(t, func(d *AuthDependencies) {
		d.Identities = slowIdentities{repository.NewMemoryIdentityRepository()}
		d.LookupTimeout = 20 * time.Millisecond
	})

	start := time.Now()
	_, err := f.svc.Login(context.Background(), "a@x.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Less(t, time.Since(start), time.Second)
}

func TestLogin_ThrottlesRepeatedFailures(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, "Ana", "a@x.com", "secret1")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Login(ctx, "a@x.com", "wrong-pass")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err = f.svc.Login(ctx, "a@x.com", "secret1")
	assert.ErrorIs(t, err, ErrLoginThrottled)
	assert.Equal(t, "throttled", f.recorder.outcomes[len(f.recorder.outcomes)-1])
}

func TestLogin_SuccessResetsThrottle(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, "Ana", "a@x.com", "secret1")
	require.NoError(t, err)

	_, _ = f.svc.Login(ctx, "a@x.com", "wrong-pass")
	require.Equal(t, 1, f.throttle.failures["a@x.com"])

	_, err = f.svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Zero(t, f.throttle.failures["a@x.com"])
}

func TestLogin_ThrottleOutageStillChecksCredentials(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, "Ana", "a@x.com", "secret1")
	require.NoError(t, err)

	f.throttle.err = errors.New("redis down")

	_, err = f.svc.Login(ctx, "a@x.com", "secret1")
	assert.NoError(t, err)
	_, err = f.svc.Login(ctx, "a@x.com", "nope-nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()
	reg, err := f.svc.Register(ctx, "Ana", "a@x.com", "secret1")
	require.NoError(t, err)

	err = f.svc.ChangePassword(ctx, reg.Session, "wrong-one", "secret2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = f.svc.ChangePassword(ctx, reg.Session, "secret1", "123")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	require.NoError(t, f.svc.ChangePassword(ctx, reg.Session, "secret1", "secret2"))

	_, err = f.svc.Login(ctx, "a@x.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, "a@x.com", "secret2")
	assert.NoError(t, err)
}

func TestNewAuthService_RequiresCollaborators(t *testing.T) {
	_, err := NewAuthService(AuthDependencies{})
	assert.Error(t, err)
}
