package domain

import "time"

// AccountStatus is the lifecycle state shared by both principal variants.
type AccountStatus string

const (
	AccountPendingActivation AccountStatus = "pending_activation"
	AccountActive            AccountStatus = "active"
	AccountInactive          AccountStatus = "inactive"
	AccountLocked            AccountStatus = "locked"
	AccountSuspended         AccountStatus = "suspended"
)

// CanAuthenticate reports whether the status permits a credential login.
// pending_activation accounts may log in (they are then forced through a
// password change); locked, suspended and inactive accounts fail even with
// correct credentials.
func (s AccountStatus) CanAuthenticate() bool {
	return s == AccountActive || s == AccountPendingActivation
}

// TenantUser is a principal scoped to exactly one tenant. Username and email
// are unique within the tenant, not globally. The user's role is NOT stored
// here; it is derived from the tenant-admin extension and the subject role
// assignments.
type TenantUser struct {
	ID                  string
	TenantID            string
	Username            string
	Email               string
	PasswordHash        string // argon2id PHC encoded
	DisplayName         string
	Status              AccountStatus
	MustChangePassword  bool
	FailedLoginAttempts int
	LockedUntil         *time.Time
	LastLoginAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// SystemAdmin is a global principal with no tenant. Username and email are
// unique system-wide; the role is fixed to system_admin.
type SystemAdmin struct {
	ID                  string
	Username            string
	Email               string
	PasswordHash        string
	DisplayName         string
	Status              AccountStatus
	MustChangePassword  bool
	FailedLoginAttempts int
	LockedUntil         *time.Time
	LastLoginAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TenantAdminGrant is the one-to-one extension record flagging a tenant user
// as tenant administrator. Its existence takes precedence over any subject
// role assignment during role derivation.
type TenantAdminGrant struct {
	UserID    string
	GrantedBy string
	CreatedAt time.Time
}

// PrincipalContext is the fully derived identity returned by a successful
// authentication: which of the two principal variants matched, its derived
// role and tenant scope, and the flags login responses need.
type PrincipalContext struct {
	ID                 string        `json:"id"`
	Username           string        `json:"username"`
	Email              string        `json:"email"`
	DisplayName        string        `json:"display_name"`
	Role               Role          `json:"role"`
	TenantID           string        `json:"tenant_id,omitempty"` // empty for system admins
	GradeLevel         int           `json:"grade_level,omitempty"`
	MustChangePassword bool          `json:"must_change_password"`
	Status             AccountStatus `json:"status"`
	Type               PrincipalType `json:"principal_type"`
}
