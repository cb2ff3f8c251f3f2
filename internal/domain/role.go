package domain

// Role enumerates storefront authorization tiers.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleStaff      Role = "staff"
	RoleSuperStaff Role = "super_staff"
)

var roleRanks = map[Role]int{
	RoleCustomer:   1,
	RoleStaff:      2,
	RoleSuperStaff: 3,
}

// Valid reports whether r is one of the known tiers.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Rank returns the position of r in the tier order; unknown roles rank 0.
func (r Role) Rank() int {
	return roleRanks[r]
}

// Satisfies reports whether r is at or above required.
// Unknown roles on either side never satisfy.
func (r Role) Satisfies(required Role) bool {
	have, need := r.Rank(), required.Rank()
	if have == 0 || need == 0 {
		return false
	}
	return have >= need
}

// ParseRole converts raw input into a known role.
func ParseRole(raw string) (Role, bool) {
	role := Role(raw)
	return role, role.Valid()
}
