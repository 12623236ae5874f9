package store

import (
	"context"
	"errors"
	"time"

	"github.com/studyhall-app/studyhall/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement it. Sub-repositories keep concerns tidy and testable.
type Store interface {
	Tenants() Tenants
	Subjects() Subjects
	TenantUsers() TenantUsers
	SystemAdmins() SystemAdmins
	Assignments() Assignments
	ResetCodes() ResetCodes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction: rolled back if fn errors,
	// committed otherwise. Every multi-step write path (password change,
	// reset-code consumption, provisioning) goes through this.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Tenants interface {
	// CreateTenant inserts a new tenant (id provided by the app via ULID).
	CreateTenant(ctx context.Context, t domain.Tenant) error

	// GetTenantByID returns a tenant by id.
	GetTenantByID(ctx context.Context, id string) (domain.Tenant, error)

	// GetTenantByCode returns a tenant by its unique short code.
	GetTenantByCode(ctx context.Context, code string) (domain.Tenant, error)

	// UpdateTenantStatus moves a tenant between lifecycle states. Tenants
	// are never deleted.
	UpdateTenantStatus(ctx context.Context, tenantID string, status domain.TenantStatus) error

	// CreateDomain binds a domain name to a tenant. The domain string is
	// globally unique.
	CreateDomain(ctx context.Context, d domain.TenantDomain) error

	// GetDomainByName returns the domain record for an exact name match.
	GetDomainByName(ctx context.Context, name string) (domain.TenantDomain, error)

	// ClearPrimaryDomain unsets the primary flag on all of a tenant's
	// domains, making room for a new primary.
	ClearPrimaryDomain(ctx context.Context, tenantID string) error
}

type Subjects interface {
	// CreateSubject inserts a subject within a tenant.
	CreateSubject(ctx context.Context, s domain.Subject) error

	// GetDefaultSubject returns the tenant's reserved default subject.
	GetDefaultSubject(ctx context.Context, tenantID string) (domain.Subject, error)

	// GetSubjectByID returns a subject by id.
	GetSubjectByID(ctx context.Context, id string) (domain.Subject, error)
}

type TenantUsers interface {
	// CreateTenantUser inserts a new tenant-scoped user.
	CreateTenantUser(ctx context.Context, u domain.TenantUser) error

	// GetTenantUserByID returns a user by id.
	GetTenantUserByID(ctx context.Context, id string) (domain.TenantUser, error)

	// GetTenantUserByIdentifier looks up a user within one tenant where the
	// identifier matches the username OR the email.
	GetTenantUserByIdentifier(ctx context.Context, tenantID, identifier string) (domain.TenantUser, error)

	// GetTenantUserByEmail looks up a user by email across tenants (used by
	// the password-reset request, which has no tenant context). Oldest
	// account wins when the same address exists in several tenants.
	GetTenantUserByEmail(ctx context.Context, email string) (domain.TenantUser, error)

	// UpdatePassword atomically replaces the hash, clears the forced-change
	// flag and promotes pending_activation to active.
	UpdatePassword(ctx context.Context, userID, newHash string) error

	// UpdateStatus moves the account between lifecycle states.
	UpdateStatus(ctx context.Context, userID string, status domain.AccountStatus) error

	// RecordLogin stamps last_login_at and resets the failed-attempt counter.
	RecordLogin(ctx context.Context, userID string, at time.Time) error

	// RecordFailedLogin increments the failed-attempt counter and, when
	// lockUntil is non-nil, sets the lockout deadline.
	RecordFailedLogin(ctx context.Context, userID string, lockUntil *time.Time) error

	// GetTenantAdminGrant returns the tenant-admin extension record, or
	// ErrNotFound when the user is not a tenant administrator.
	GetTenantAdminGrant(ctx context.Context, userID string) (domain.TenantAdminGrant, error)

	// CreateTenantAdminGrant flags a user as tenant administrator.
	CreateTenantAdminGrant(ctx context.Context, g domain.TenantAdminGrant) error

	// GetStudentProfile returns the student profile, or ErrNotFound.
	GetStudentProfile(ctx context.Context, userID string) (domain.StudentProfile, error)

	// CreateStudentProfile inserts a student profile.
	CreateStudentProfile(ctx context.Context, p domain.StudentProfile) error
}

type SystemAdmins interface {
	// CreateSystemAdmin inserts a new global administrator.
	CreateSystemAdmin(ctx context.Context, a domain.SystemAdmin) error

	// GetSystemAdminByID returns an admin by id.
	GetSystemAdminByID(ctx context.Context, id string) (domain.SystemAdmin, error)

	// GetSystemAdminByIdentifier looks up an admin where the identifier
	// matches the username OR the email, system-wide.
	GetSystemAdminByIdentifier(ctx context.Context, identifier string) (domain.SystemAdmin, error)

	// GetSystemAdminByEmail looks up an admin by email.
	GetSystemAdminByEmail(ctx context.Context, email string) (domain.SystemAdmin, error)

	// UpdatePassword mirrors TenantUsers.UpdatePassword for admins.
	UpdatePassword(ctx context.Context, adminID, newHash string) error

	// RecordLogin stamps last_login_at and resets the failed-attempt counter.
	RecordLogin(ctx context.Context, adminID string, at time.Time) error

	// RecordFailedLogin increments the failed-attempt counter.
	RecordFailedLogin(ctx context.Context, adminID string, lockUntil *time.Time) error

	// IsEmpty returns true when no system admins exist (bootstrap check).
	IsEmpty(ctx context.Context) (bool, error)
}

type Assignments interface {
	// CreateAssignment inserts a subject role assignment.
	CreateAssignment(ctx context.Context, a domain.SubjectRoleAssignment) error

	// FirstActiveForUser returns the user's oldest active assignment
	// (created_at, then id — the deterministic role-derivation order), or
	// ErrNotFound when none exists.
	FirstActiveForUser(ctx context.Context, userID string) (domain.SubjectRoleAssignment, error)

	// DeactivateAssignment flips an assignment to inactive. Assignments are
	// never deleted; the default-subject assignment is never deactivated
	// (enforced by the service layer).
	DeactivateAssignment(ctx context.Context, assignmentID string) error

	// ListForUser returns all assignments for a user, oldest first.
	ListForUser(ctx context.Context, userID string) ([]domain.SubjectRoleAssignment, error)
}

type ResetCodes interface {
	// CreateResetCode stores a freshly minted, hashed reset code.
	CreateResetCode(ctx context.Context, c domain.PasswordResetCode) error

	// GetLatestValidByEmail returns the newest unused row for the email
	// whose expiry is after now, or ErrNotFound. Older rows are never
	// considered, so a new request supersedes earlier codes.
	GetLatestValidByEmail(ctx context.Context, email string, now time.Time) (domain.PasswordResetCode, error)

	// MarkUsed consumes a code: used=true plus a used-at stamp, guarded on
	// used=false so exactly one of two racing redemptions succeeds. The
	// loser gets ErrNotFound.
	MarkUsed(ctx context.Context, codeID string, at time.Time) error
}
