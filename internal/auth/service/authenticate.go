package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/studyhall-app/studyhall/internal/auth/domain"
	"github.com/studyhall-app/studyhall/internal/auth/store"
	"github.com/studyhall-app/studyhall/pkg/cryptox"
	"github.com/studyhall-app/studyhall/pkg/slogx"
)

// ErrInvalidCredentials is the single error every authentication failure
// collapses into: unknown identifier, wrong password, unusable account
// status, locked-out account. Callers must not distinguish between them.
var ErrInvalidCredentials = errors.New("invalid_credentials")

// Internal failure reasons. Only Login cares about the distinction (a wrong
// password moves the failed counter, a bad status does not); everything
// leaving this package is ErrInvalidCredentials.
var (
	errBadPassword = errors.New("bad password")
	errBadStatus   = errors.New("bad status")
	errLockedOut   = errors.New("locked out")
)

type AuthService struct {
	Store   store.Store
	Tenants *TenantService

	// Lockout policy. Counters are always recorded; login is refused for a
	// locked account only when EnforceLockout is set.
	MaxLoginAttempts int
	LockoutDuration  time.Duration
	EnforceLockout   bool
}

// Authenticate resolves an identifier and password to a principal without
// side effects. Lookup precedence: tenant user within the resolved domain's
// tenant first, then system admin globally.
func (s *AuthService) Authenticate(
	ctx context.Context,
	identifier, password, domainName string,
) (domain.PrincipalContext, error) {
	user, admin, err := s.lookup(ctx, identifier, domainName)
	if err != nil {
		return domain.PrincipalContext{}, err
	}

	switch {
	case user != nil:
		if err := s.checkTenantUser(ctx, *user, password); err != nil {
			return domain.PrincipalContext{}, ErrInvalidCredentials
		}
		return ContextForTenantUser(ctx, s.Store, *user)
	case admin != nil:
		if err := s.checkSystemAdmin(ctx, *admin, password); err != nil {
			return domain.PrincipalContext{}, ErrInvalidCredentials
		}
		return ContextForSystemAdmin(*admin), nil
	default:
		// Burn comparable time so unknown identifiers are not
		// distinguishable from wrong passwords.
		_ = cryptox.VerifySecret(password, dummyHash)
		return domain.PrincipalContext{}, ErrInvalidCredentials
	}
}

// Login is Authenticate plus the bookkeeping a real login carries: a
// successful match stamps last-login and clears the failed counter, a wrong
// password increments it (and arms the lockout deadline once the counter
// reaches the configured maximum).
func (s *AuthService) Login(
	ctx context.Context,
	identifier, password, domainName string,
) (domain.PrincipalContext, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	user, admin, err := s.lookup(ctx, identifier, domainName)
	if err != nil {
		return domain.PrincipalContext{}, err
	}

	switch {
	case user != nil:
		if err := s.checkTenantUser(ctx, *user, password); err != nil {
			if errors.Is(err, errBadPassword) {
				lockUntil := s.lockDeadline(user.FailedLoginAttempts, now)
				if ferr := s.Store.TenantUsers().RecordFailedLogin(ctx, user.ID, lockUntil); ferr != nil {
					l.Error("record failed login", slog.Any("error", ferr))
				}
			}
			return domain.PrincipalContext{}, ErrInvalidCredentials
		}
		if err := s.Store.TenantUsers().RecordLogin(ctx, user.ID, now); err != nil {
			l.Error("record login", slog.Any("error", err))
		}
		return ContextForTenantUser(ctx, s.Store, *user)

	case admin != nil:
		if err := s.checkSystemAdmin(ctx, *admin, password); err != nil {
			if errors.Is(err, errBadPassword) {
				lockUntil := s.lockDeadline(admin.FailedLoginAttempts, now)
				if ferr := s.Store.SystemAdmins().RecordFailedLogin(ctx, admin.ID, lockUntil); ferr != nil {
					l.Error("record failed login", slog.Any("error", ferr))
				}
			}
			return domain.PrincipalContext{}, ErrInvalidCredentials
		}
		if err := s.Store.SystemAdmins().RecordLogin(ctx, admin.ID, now); err != nil {
			l.Error("record login", slog.Any("error", err))
		}
		return ContextForSystemAdmin(*admin), nil

	default:
		_ = cryptox.VerifySecret(password, dummyHash)
		return domain.PrincipalContext{}, ErrInvalidCredentials
	}
}

// lookup finds at most one matching principal. A domain that resolves to an
// active tenant narrows the search to that tenant's users; when it does not
// match (or no domain was given) the system admin table is consulted.
func (s *AuthService) lookup(
	ctx context.Context,
	identifier, domainName string,
) (*domain.TenantUser, *domain.SystemAdmin, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, nil, nil
	}

	if domainName != "" {
		info, err := s.Tenants.Resolve(ctx, domainName)
		if err == nil {
			u, uerr := s.Store.TenantUsers().GetTenantUserByIdentifier(ctx, info.TenantID, identifier)
			if uerr == nil {
				return &u, nil, nil
			}
			if !errors.Is(uerr, store.ErrNotFound) {
				return nil, nil, uerr
			}
		} else if !errors.Is(err, ErrTenantNotFound) {
			return nil, nil, err
		}
	}

	a, err := s.Store.SystemAdmins().GetSystemAdminByIdentifier(ctx, identifier)
	if err == nil {
		return nil, &a, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, nil, err
	}
	return nil, nil, nil
}

func (s *AuthService) checkTenantUser(ctx context.Context, u domain.TenantUser, password string) error {
	l := slogx.FromContext(ctx)

	if s.EnforceLockout && u.LockedUntil != nil && time.Now().UTC().Before(*u.LockedUntil) {
		l.Info("login refused, account locked out", slog.String("user_id", u.ID))
		return errLockedOut
	}
	if err := cryptox.VerifySecret(password, u.PasswordHash); err != nil {
		return errBadPassword
	}
	if !u.Status.CanAuthenticate() {
		l.Info("login refused, account status",
			slog.String("user_id", u.ID),
			slog.String("status", string(u.Status)),
		)
		return errBadStatus
	}
	return nil
}

func (s *AuthService) checkSystemAdmin(ctx context.Context, a domain.SystemAdmin, password string) error {
	l := slogx.FromContext(ctx)

	if s.EnforceLockout && a.LockedUntil != nil && time.Now().UTC().Before(*a.LockedUntil) {
		l.Info("login refused, account locked out", slog.String("admin_id", a.ID))
		return errLockedOut
	}
	if err := cryptox.VerifySecret(password, a.PasswordHash); err != nil {
		return errBadPassword
	}
	if !a.Status.CanAuthenticate() {
		l.Info("login refused, account status",
			slog.String("admin_id", a.ID),
			slog.String("status", string(a.Status)),
		)
		return errBadStatus
	}
	return nil
}

// lockDeadline returns the lockout expiry to arm when this failure brings
// the counter to the maximum, or nil when only the counter should move.
func (s *AuthService) lockDeadline(priorFailures int, now time.Time) *time.Time {
	if s.MaxLoginAttempts <= 0 || priorFailures+1 < s.MaxLoginAttempts {
		return nil
	}
	deadline := now.Add(s.LockoutDuration)
	return &deadline
}

// ContextForTenantUser derives the effective role for a tenant user and
// assembles the principal context. Precedence: the tenant-admin extension
// record wins; otherwise the oldest active subject role assignment; a user
// with no active assignment falls back to student. st may be a transaction.
func ContextForTenantUser(ctx context.Context, st store.Store, u domain.TenantUser) (domain.PrincipalContext, error) {
	role := domain.RoleStudent

	_, err := st.TenantUsers().GetTenantAdminGrant(ctx, u.ID)
	switch {
	case err == nil:
		role = domain.RoleTenantAdmin
	case errors.Is(err, store.ErrNotFound):
		a, aerr := st.Assignments().FirstActiveForUser(ctx, u.ID)
		if aerr == nil {
			role = a.Role
		} else if !errors.Is(aerr, store.ErrNotFound) {
			return domain.PrincipalContext{}, aerr
		}
	default:
		return domain.PrincipalContext{}, err
	}

	pc := domain.PrincipalContext{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.Email,
		DisplayName:        u.DisplayName,
		Role:               role,
		TenantID:           u.TenantID,
		MustChangePassword: u.MustChangePassword,
		Status:             u.Status,
		Type:               domain.PrincipalTenantUser,
	}

	if role == domain.RoleStudent {
		p, perr := st.TenantUsers().GetStudentProfile(ctx, u.ID)
		if perr == nil {
			pc.GradeLevel = p.GradeLevel
		} else if !errors.Is(perr, store.ErrNotFound) {
			return domain.PrincipalContext{}, perr
		}
	}
	return pc, nil
}

// ContextForSystemAdmin assembles the principal context for a system admin.
// The role is fixed and there is no tenant scope, so no lookups are needed.
func ContextForSystemAdmin(a domain.SystemAdmin) domain.PrincipalContext {
	return domain.PrincipalContext{
		ID:                 a.ID,
		Username:           a.Username,
		Email:              a.Email,
		DisplayName:        a.DisplayName,
		Role:               domain.RoleSystemAdmin,
		MustChangePassword: a.MustChangePassword,
		Status:             a.Status,
		Type:               domain.PrincipalSystemAdmin,
	}
}

// dummyHash is a valid argon2id hash of an unguessable throwaway value,
// verified against when no principal matches to keep timing flat.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$t5kSORNEFiEgxNFUYGJuuGhAmzi8qKAbdB3QBRxsPXs"
