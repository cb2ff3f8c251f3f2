package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/dealership/internal/domain"
)

type recordedDecision struct {
	group    string
	decision string
}

type fakeRecorder struct {
	mu        sync.Mutex
	decisions []recordedDecision
}

func (r *fakeRecorder) RecordGuardDecision(group, decision string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions = append(r.decisions, recordedDecision{group: group, decision: decision})
}

type guardFixture struct {
	app      *fiber.App
	codec    *TokenCodec
	clock    *fakeClock
	recorder *fakeRecorder
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()
	clock := &fakeClock{now: time.Now()}
	codec := newTestCodec(t, clock)
	recorder := &fakeRecorder{}
	guard := NewGuard(codec, NewCookieBinding(codec.TTL(), false), GuardConfig{
		Policy:    DefaultPolicy(),
		LoginPath: "/login",
		HomePath:  "/",
		Recorder:  recorder,
	})

	ok := func(c *fiber.Ctx) error {
		session, found := SessionFromContext(c)
		if found {
			return c.SendString("ok:" + string(session.Role))
		}
		return c.SendString("ok:anonymous")
	}

	app := fiber.New()
	app.Use(guard.Optional())
	app.Get("/", ok)
	app.Get("/vehicles", ok)
	app.Group("/account", guard.Protect(GroupCustomer)).Get("/orders", ok)
	app.Group("/admin/staff", guard.Protect(GroupSuperStaff)).Get("/", ok)
	app.Group("/admin", guard.Protect(GroupStaff)).Get("/vehicles", ok)

	return &guardFixture{app: app, codec: codec, clock: clock, recorder: recorder}
}

func (f *guardFixture) do(t *testing.T, target string, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (f *guardFixture) token(t *testing.T, role domain.Role) string {
	t.Helper()
	token, _, err := f.codec.Issue(testIdentity(role))
	require.NoError(t, err)
	return token
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func redirectTarget(t *testing.T, resp *http.Response) string {
	t.Helper()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	return location.Path
}

func TestGuard_PublicRouteWithoutCookieAllowed(t *testing.T) {
	f := newGuardFixture(t)

	resp := f.do(t, "/vehicles", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok:anonymous", readBody(t, resp))
}

func TestGuard_PublicRouteWithGarbageCookieAllowed(t *testing.T) {
	f := newGuardFixture(t)

	resp := f.do(t, "/", "garbage")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok:anonymous", readBody(t, resp))
}

func TestGuard_StaffRouteWithoutCookieRedirectsToLogin(t *testing.T) {
	f := newGuardFixture(t)

	resp := f.do(t, "/admin/vehicles", "")
	assert.Equal(t, "/login", redirectTarget(t, resp))

	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/admin/vehicles", location.Query().Get(RedirectParam))
}

func TestGuard_RedirectKeepsQueryString(t *testing.T) {
	f := newGuardFixture(t)

	resp := f.do(t, "/account/orders?page=2", "")
	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/account/orders?page=2", location.Query().Get(RedirectParam))
}

func TestGuard_CustomerOnStaffRouteRedirectsHome(t *testing.T) {
	f := newGuardFixture(t)

	resp := f.do(t, "/admin/vehicles", f.token(t, domain.RoleCustomer))
	assert.Equal(t, "/", redirectTarget(t, resp))
	assert.Equal(t, "/", resp.Header.Get("Location"), "home redirect carries no return path")
}

func TestGuard_RoleMatrix(t *testing.T) {
	f := newGuardFixture(t)

	tests := []struct {
		role   domain.Role
		target string
		allow  bool
	}{
		{domain.RoleCustomer, "/account/orders", true},
		{domain.RoleStaff, "/account/orders", true},
		{domain.RoleSuperStaff, "/account/orders", true},
		{domain.RoleCustomer, "/admin/vehicles", false},
		{domain.RoleStaff, "/admin/vehicles", true},
		{domain.RoleSuperStaff, "/admin/vehicles", true},
		{domain.RoleCustomer, "/admin/staff/", false},
		{domain.RoleStaff, "/admin/staff/", false},
		{domain.RoleSuperStaff, "/admin/staff/", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+tt.target, func(t *testing.T) {
			resp := f.do(t, tt.target, f.token(t, tt.role))
			if tt.allow {
				assert.Equal(t, http.StatusOK, resp.StatusCode)
				assert.Equal(t, "ok:"+string(tt.role), readBody(t, resp))
				return
			}
			assert.Equal(t, "/", redirectTarget(t, resp))
		})
	}
}

func TestGuard_ExpiredTokenRedirectsToLoginOnNextRequest(t *testing.T) {
	f := newGuardFixture(t)
	token := f.token(t, domain.RoleStaff)

	resp := f.do(t, "/admin/vehicles", token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	f.clock.now = f.clock.now.Add(8 * 24 * time.Hour)
	resp = f.do(t, "/admin/vehicles", token)
	assert.Equal(t, "/login", redirectTarget(t, resp))
}

func TestGuard_TamperedTokenTreatedAsAnonymous(t *testing.T) {
	f := newGuardFixture(t)
	token := f.token(t, domain.RoleCustomer)

	resp := f.do(t, "/account/orders", token+"x")
	assert.Equal(t, "/login", redirectTarget(t, resp))
}

func TestGuard_RecordsDecisions(t *testing.T) {
	f := newGuardFixture(t)

	f.do(t, "/admin/vehicles", "")
	f.do(t, "/admin/vehicles", f.token(t, domain.RoleCustomer))
	f.do(t, "/admin/vehicles", f.token(t, domain.RoleStaff))

	assert.Equal(t, []recordedDecision{
		{group: "staff", decision: "redirect_login"},
		{group: "staff", decision: "redirect_home"},
		{group: "staff", decision: "allow"},
	}, f.recorder.decisions)
}

func TestPolicy_Decide(t *testing.T) {
	p := DefaultPolicy()
	customer := &domain.Session{Role: domain.RoleCustomer}
	bogus := &domain.Session{Role: domain.Role("owner")}

	assert.Equal(t, Allow, p.Decide(GroupPublic, nil))
	assert.Equal(t, Allow, p.Decide(GroupPublic, customer))
	assert.Equal(t, RedirectLogin, p.Decide(GroupCustomer, nil))
	assert.Equal(t, Allow, p.Decide(GroupCustomer, customer))
	assert.Equal(t, RedirectHome, p.Decide(GroupStaff, customer))
	assert.Equal(t, RedirectHome, p.Decide(GroupCustomer, bogus))
	assert.Equal(t, RedirectHome, p.Decide(RouteGroup("reports"), customer))
	assert.Equal(t, RedirectLogin, p.Decide(RouteGroup("reports"), nil))
}
