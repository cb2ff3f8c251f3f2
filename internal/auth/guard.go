package auth

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/dealership/internal/domain"
)

const sessionKey = "auth_session"

// DecisionRecorder receives guard outcomes for metrics.
type DecisionRecorder interface {
	RecordGuardDecision(group, decision string)
}

// GuardConfig carries the guard's collaborators and redirect targets.
type GuardConfig struct {
	Policy    Policy
	LoginPath string
	HomePath  string
	Logger    *zap.Logger
	Recorder  DecisionRecorder
}

// Guard resolves sessions from cookies and enforces the role policy.
type Guard struct {
	codec     *TokenCodec
	cookies   *CookieBinding
	policy    Policy
	loginPath string
	homePath  string
	logger    *zap.Logger
	recorder  DecisionRecorder
}

// NewGuard constructs the guard.
func NewGuard(codec *TokenCodec, cookies *CookieBinding, cfg GuardConfig) *Guard {
	g := &Guard{
		codec:     codec,
		cookies:   cookies,
		policy:    cfg.Policy,
		loginPath: cfg.LoginPath,
		homePath:  cfg.HomePath,
		logger:    cfg.Logger,
		recorder:  cfg.Recorder,
	}
	if g.policy == nil {
		g.policy = DefaultPolicy()
	}
	if g.loginPath == "" {
		g.loginPath = "/login"
	}
	if g.homePath == "" {
		g.homePath = "/"
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	return g
}

// Optional attaches a verified session to the request when one is present.
// It never blocks the request.
func (g *Guard) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if session, ok := g.Resolve(c); ok {
			c.Locals(sessionKey, &session)
		}
		return c.Next()
	}
}

// Protect enforces the policy for group on every request.
func (g *Guard) Protect(group RouteGroup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var current *domain.Session
		if session, ok := g.Resolve(c); ok {
			current = &session
		}

		decision := g.policy.Decide(group, current)
		if g.recorder != nil {
			g.recorder.RecordGuardDecision(string(group), decision.String())
		}

		switch decision {
		case Allow:
			if current != nil {
				c.Locals(sessionKey, current)
			}
			return c.Next()
		case RedirectLogin:
			return c.Redirect(LoginRedirect(g.loginPath, c.OriginalURL()), fiber.StatusFound)
		default:
			g.logger.Info("insufficient role",
				zap.String("group", string(group)),
				zap.String("subject_id", current.SubjectID),
				zap.String("role", string(current.Role)))
			return c.Redirect(g.homePath, fiber.StatusFound)
		}
	}
}

// Resolve reads and verifies the session cookie. A session already resolved
// earlier in the same request is reused.
func (g *Guard) Resolve(c *fiber.Ctx) (session domain.Session, ok bool) {
	if existing, found := SessionFromContext(c); found {
		return existing, true
	}

	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("session resolution panicked", zap.Any("panic", r))
			session, ok = domain.Session{}, false
		}
	}()

	token, present := g.cookies.Read(c)
	if !present {
		return domain.Session{}, false
	}
	verified, err := g.codec.Verify(token)
	if err != nil {
		return domain.Session{}, false
	}
	return verified, true
}

// SessionFromContext returns the session the guard attached to the request.
func SessionFromContext(c *fiber.Ctx) (domain.Session, bool) {
	session, ok := c.Locals(sessionKey).(*domain.Session)
	if !ok || session == nil {
		return domain.Session{}, false
	}
	return *session, true
}
