package domain

// Role is the effective role derived for a principal at authentication time.
// Tenant users never store a role directly; it comes from the tenant-admin
// extension record or the subject role assignments.
type Role string

const (
	RoleStudent     Role = "student"
	RoleTutor       Role = "tutor"
	RoleTenantAdmin Role = "tenant_admin"
	RoleSystemAdmin Role = "system_admin"
)

func (r Role) String() string { return string(r) }

// PrincipalType distinguishes the two disjoint principal tables.
type PrincipalType string

const (
	PrincipalTenantUser  PrincipalType = "tenant_user"
	PrincipalSystemAdmin PrincipalType = "system_admin"
)

// Fixed allow-lists for the coarse authorization gates. Each gate is a pure
// function of the role claim; callers surface failures as forbidden.
var (
	RolesSystemAdminOnly    = []Role{RoleSystemAdmin}
	RolesTenantAdminOrAbove = []Role{RoleTenantAdmin, RoleSystemAdmin}
	RolesTutorOrAdmin       = []Role{RoleTutor, RoleTenantAdmin, RoleSystemAdmin}
)

// RoleStrings converts an allow-list for use with claim-level middleware.
func RoleStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
