package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dealership/internal/api/http/handlers"
	"github.com/spec-kit/dealership/internal/auth"
	"github.com/spec-kit/dealership/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Pages       *handlers.PagesHandler
	Auth        *handlers.AuthHandler
	Account     *handlers.AccountHandler
	Vehicles    *handlers.VehiclesHandler
	Staff       *handlers.StaffHandler
	Guard       *auth.Guard
	AuthLimiter *IPRateLimiter
	Metrics     *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Every request passes through the optional
// session resolver; protected groups then apply their minimum role.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	app.Use(cfg.Guard.Optional())

	app.Get("/", cfg.Pages.Home)
	app.Get("/login", cfg.Pages.Login)
	app.Get("/vehicles", cfg.Vehicles.List)
	app.Get("/vehicles/:slug", cfg.Vehicles.Show)

	// Only credential submissions are limited; logout must always clear the cookie.
	authGroup := app.Group("/auth")
	authGroup.Post("/register", limited(cfg.AuthLimiter, cfg.Auth.Register)...)
	authGroup.Post("/login", limited(cfg.AuthLimiter, cfg.Auth.Login)...)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/me", cfg.Auth.Me)

	account := app.Group("/account", cfg.Guard.Protect(auth.GroupCustomer))
	account.Get("", cfg.Account.Show)
	account.Put("/password", cfg.Account.ChangePassword)

	admin := app.Group("/admin", cfg.Guard.Protect(auth.GroupStaff))
	admin.Get("", cfg.Pages.Admin)
	admin.Get("/customers", cfg.Staff.ListCustomers)

	superStaff := admin.Group("/staff", cfg.Guard.Protect(auth.GroupSuperStaff))
	superStaff.Get("", cfg.Staff.ListStaff)
	superStaff.Post("", cfg.Staff.CreateStaff)
	superStaff.Patch("/:id/role", cfg.Staff.ChangeRole)
	superStaff.Patch("/:id/active", cfg.Staff.SetActive)
}

func limited(limiter *IPRateLimiter, handler fiber.Handler) []fiber.Handler {
	if limiter == nil {
		return []fiber.Handler{handler}
	}
	return []fiber.Handler{limiter.Handler(), handler}
}
