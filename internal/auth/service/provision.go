package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/studyhall-app/studyhall/internal/auth/domain"
	"github.com/studyhall-app/studyhall/internal/auth/store"
	"github.com/studyhall-app/studyhall/pkg/cryptox"
	"github.com/studyhall-app/studyhall/pkg/idx"
	"github.com/studyhall-app/studyhall/pkg/slogx"
)

var (
	ErrUserExists    = errors.New("user_exists")
	ErrUserNotFound  = errors.New("user_not_found")
	ErrInvalidUser   = errors.New("invalid_user")
	ErrInvalidStatus = errors.New("invalid_status")
)

// ProvisionService owns the write paths that create the records the
// authentication path reads: tenant users, their default subject
// assignments, admin grants and the initial system admin.
type ProvisionService struct {
	Store store.Store
}

// ProvisionUserInput describes a new tenant user. Role defaults to student;
// tenant_admin creates the admin extension record (the default-subject
// assignment is still created, so the user keeps a role if the grant is
// ever revoked).
type ProvisionUserInput struct {
	TenantID    string
	Username    string
	Email       string
	DisplayName string
	Role        domain.Role
	GradeLevel  int
	AssignedBy  string
}

// ProvisionTenantUser creates a tenant user with a generated temporary
// password, pending activation and a forced password change. All rows land
// in one transaction. The temporary password is returned exactly once and
// never stored in the clear.
func (s *ProvisionService) ProvisionTenantUser(
	ctx context.Context,
	in ProvisionUserInput,
) (domain.TenantUser, string, error) {
	l := slogx.FromContext(ctx)

	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if in.TenantID == "" || in.Username == "" || in.Email == "" {
		return domain.TenantUser{}, "", ErrInvalidUser
	}
	if in.Role == "" {
		in.Role = domain.RoleStudent
	}
	switch in.Role {
	case domain.RoleStudent, domain.RoleTutor, domain.RoleTenantAdmin:
	default:
		return domain.TenantUser{}, "", ErrInvalidUser
	}

	tempPassword, err := cryptox.GenerateTempPassword()
	if err != nil {
		return domain.TenantUser{}, "", err
	}
	hash, err := cryptox.HashSecret(tempPassword)
	if err != nil {
		return domain.TenantUser{}, "", err
	}

	user := domain.TenantUser{
		ID:                 idx.New().String(),
		TenantID:           in.TenantID,
		Username:           in.Username,
		Email:              in.Email,
		PasswordHash:       hash,
		DisplayName:        in.DisplayName,
		Status:             domain.AccountPendingActivation,
		MustChangePassword: true,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Tenants().GetTenantByID(ctx, in.TenantID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrTenantNotFound
			}
			return err
		}
		for _, ident := range []string{in.Username, in.Email} {
			if _, err := tx.TenantUsers().GetTenantUserByIdentifier(ctx, in.TenantID, ident); err == nil {
				return ErrUserExists
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}

		if err := tx.TenantUsers().CreateTenantUser(ctx, user); err != nil {
			return err
		}

		// Every user holds an active assignment to the tenant's default
		// subject so role derivation always lands somewhere.
		subj, err := tx.Subjects().GetDefaultSubject(ctx, in.TenantID)
		if err != nil {
			return err
		}
		assignmentRole := in.Role
		if assignmentRole == domain.RoleTenantAdmin {
			assignmentRole = domain.RoleStudent
		}
		if err := tx.Assignments().CreateAssignment(ctx, domain.SubjectRoleAssignment{
			ID:         idx.New().String(),
			TenantID:   in.TenantID,
			UserID:     user.ID,
			SubjectID:  subj.ID,
			Role:       assignmentRole,
			Status:     domain.AssignmentActive,
			AssignedBy: in.AssignedBy,
		}); err != nil {
			return err
		}

		if in.Role == domain.RoleTenantAdmin {
			if err := tx.TenantUsers().CreateTenantAdminGrant(ctx, domain.TenantAdminGrant{
				UserID:    user.ID,
				GrantedBy: in.AssignedBy,
			}); err != nil {
				return err
			}
		}
		if in.Role == domain.RoleStudent {
			if err := tx.TenantUsers().CreateStudentProfile(ctx, domain.StudentProfile{
				UserID:     user.ID,
				GradeLevel: in.GradeLevel,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.TenantUser{}, "", err
	}

	l.Info("tenant user provisioned",
		slog.String("tenant_id", in.TenantID),
		slog.String("user_id", user.ID),
		slog.String("role", string(in.Role)),
	)
	return user, tempPassword, nil
}

// UpdateUserStatus moves a tenant user between lifecycle states. Accounts
// are never deleted; deactivation and suspension are always reversible.
func (s *ProvisionService) UpdateUserStatus(
	ctx context.Context,
	tenantID, userID string,
	status domain.AccountStatus,
) error {
	switch status {
	case domain.AccountActive, domain.AccountInactive, domain.AccountLocked, domain.AccountSuspended:
	default:
		return ErrInvalidStatus
	}

	u, err := s.Store.TenantUsers().GetTenantUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	// A user id from another tenant must read as absent, not forbidden.
	if u.TenantID != tenantID {
		return ErrUserNotFound
	}

	if err := s.Store.TenantUsers().UpdateStatus(ctx, userID, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// EnsureSystemAdmin creates the initial system administrator when the table
// is empty. Returns the generated temporary password once; subsequent calls
// are no-ops.
func (s *ProvisionService) EnsureSystemAdmin(
	ctx context.Context,
	username, email string,
) (string, bool, error) {
	empty, err := s.Store.SystemAdmins().IsEmpty(ctx)
	if err != nil {
		return "", false, err
	}
	if !empty {
		return "", false, nil
	}

	tempPassword, err := cryptox.GenerateTempPassword()
	if err != nil {
		return "", false, err
	}
	hash, err := cryptox.HashSecret(tempPassword)
	if err != nil {
		return "", false, err
	}

	admin := domain.SystemAdmin{
		ID:                 idx.New().String(),
		Username:           strings.ToLower(strings.TrimSpace(username)),
		Email:              strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:       hash,
		DisplayName:        "System Administrator",
		Status:             domain.AccountPendingActivation,
		MustChangePassword: true,
	}
	if admin.Username == "" || admin.Email == "" {
		return "", false, ErrInvalidUser
	}
	if err := s.Store.SystemAdmins().CreateSystemAdmin(ctx, admin); err != nil {
		return "", false, err
	}
	return tempPassword, true, nil
}
