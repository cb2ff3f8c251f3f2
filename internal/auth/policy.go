package auth

import "github.com/spec-kit/dealership/internal/domain"

// RouteGroup names a family of routes sharing one access requirement.
type RouteGroup string

const (
	GroupPublic     RouteGroup = "public"
	GroupCustomer   RouteGroup = "customer"
	GroupStaff      RouteGroup = "staff"
	GroupSuperStaff RouteGroup = "super_staff"
)

// Policy maps protected route groups to the minimal role they require.
// GroupPublic is never listed; a group missing from the policy admits nobody.
type Policy map[RouteGroup]domain.Role

// DefaultPolicy is the storefront's static role policy.
func DefaultPolicy() Policy {
	return Policy{
		GroupCustomer:   domain.RoleCustomer,
		GroupStaff:      domain.RoleStaff,
		GroupSuperStaff: domain.RoleSuperStaff,
	}
}

// Decision is the outcome of a guard check.
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Decide maps the caller's session state and the target group to a decision.
// A nil session means the caller is unauthenticated.
func (p Policy) Decide(group RouteGroup, session *domain.Session) Decision {
	if group == GroupPublic {
		return Allow
	}
	if session == nil {
		return RedirectLogin
	}
	required, ok := p[group]
	if !ok {
		return RedirectHome
	}
	if session.Role.Satisfies(required) {
		return Allow
	}
	return RedirectHome
}
