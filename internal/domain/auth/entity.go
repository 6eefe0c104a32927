package auth

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Maintains leave records and tranches
	RoleEmployee Role = "employee" // Read-only access
)

// CanManageLeave reports whether the role may change allocations, tranches
// or run provisioning.
func (r Role) CanManageLeave() bool {
	return r == RoleOwner || r == RoleManager
}

// TokenType values carried in the "type" claim.
const (
	TokenTypeAccess = "access"
)
