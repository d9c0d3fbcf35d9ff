package enums

import "fmt"

// Role represents a user's permission level. Super admins and admins are
// equivalent for workflow gating; professors sit in between; students have no
// privileged capabilities.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleProfessor  Role = "professor"
	RoleStudent    Role = "aluno"
)

var validRoles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleProfessor,
	RoleStudent,
}

// Capability names a privileged workflow action gated by role.
type Capability string

const (
	CapabilityApproveLoans Capability = "approve_loans"
	CapabilityManageUsers  Capability = "manage_users"
	CapabilityManageItems  Capability = "manage_items"
)

var capabilitiesByRole = map[Role]map[Capability]bool{
	RoleSuperAdmin: {
		CapabilityApproveLoans: true,
		CapabilityManageUsers:  true,
		CapabilityManageItems:  true,
	},
	RoleAdmin: {
		CapabilityApproveLoans: true,
		CapabilityManageUsers:  true,
		CapabilityManageItems:  true,
	},
	RoleProfessor: {
		CapabilityApproveLoans: true,
	},
	RoleStudent: {},
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// HasCapability is the single role dispatch point used by every workflow
// operation. Unknown roles have no capabilities.
func (r Role) HasCapability(capability Capability) bool {
	caps, ok := capabilitiesByRole[r]
	if !ok {
		return false
	}
	return caps[capability]
}

// CanApproveLoans reports whether the role may approve or reject loans.
func (r Role) CanApproveLoans() bool {
	return r.HasCapability(CapabilityApproveLoans)
}

// CanManageUsers reports whether the role may administer user accounts.
func (r Role) CanManageUsers() bool {
	return r.HasCapability(CapabilityManageUsers)
}

// IsAdmin reports whether the role is admin or super admin.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
