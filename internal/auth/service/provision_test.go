package service

import (
	"context"
	"testing"

	"github.com/studyhall-app/studyhall/internal/auth/domain"
	"github.com/studyhall-app/studyhall/internal/auth/store"
	"github.com/stretchr/testify/require"
)

func TestProvisionTenantUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	tenant := env.seedTenant(t, "prov", "prov.studyhall.test")

	t.Run("creates a pending student with a temp password", func(t *testing.T) {
		user, tempPassword, err := env.provision.ProvisionTenantUser(ctx, ProvisionUserInput{
			TenantID:    tenant.ID,
			Username:    "Pat",
			Email:       "PAT@Prov.Test",
			DisplayName: "Pat Jones",
			GradeLevel:  9,
			AssignedBy:  "admin-1",
		})
		require.NoError(t, err)
		require.Len(t, tempPassword, 12)
		require.Equal(t, domain.AccountPendingActivation, user.Status)
		require.True(t, user.MustChangePassword)

		// Identifiers are normalized to lowercase.
		require.Equal(t, "pat", user.Username)
		require.Equal(t, "pat@prov.test", user.Email)

		// The plaintext never lands in the row.
		require.NotContains(t, user.PasswordHash, tempPassword)

		profile, err := env.store.TenantUsers().GetStudentProfile(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, 9, profile.GradeLevel)

		a, err := env.store.Assignments().FirstActiveForUser(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleStudent, a.Role)

		subj, err := env.store.Subjects().GetSubjectByID(ctx, a.SubjectID)
		require.NoError(t, err)
		require.True(t, subj.IsDefault)
	})

	t.Run("tenant admin gets a grant and a student assignment", func(t *testing.T) {
		user, _, err := env.provision.ProvisionTenantUser(ctx, ProvisionUserInput{
			TenantID:   tenant.ID,
			Username:   "head",
			Email:      "head@prov.test",
			Role:       domain.RoleTenantAdmin,
			AssignedBy: "admin-1",
		})
		require.NoError(t, err)

		_, err = env.store.TenantUsers().GetTenantAdminGrant(ctx, user.ID)
		require.NoError(t, err)

		// The fallback assignment is student so the user keeps a role if
		// the grant is ever revoked.
		a, err := env.store.Assignments().FirstActiveForUser(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleStudent, a.Role)

		// Tutors and admins carry no student profile.
		_, err = env.store.TenantUsers().GetStudentProfile(ctx, user.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate username is refused", func(t *testing.T) {
		_, _, err := env.provision.ProvisionTenantUser(ctx, ProvisionUserInput{
			TenantID: tenant.ID, Username: "pat", Email: "pat2@prov.test", AssignedBy: "admin-1",
		})
		require.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("duplicate email is refused", func(t *testing.T) {
		_, _, err := env.provision.ProvisionTenantUser(ctx, ProvisionUserInput{
			TenantID: tenant.ID, Username: "pat2", Email: "pat@prov.test", AssignedBy: "admin-1",
		})
		require.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("same identifiers in another tenant are fine", func(t *testing.T) {
		other := env.seedTenant(t, "prov2", "prov2.studyhall.test")
		_, _, err := env.provision.ProvisionTenantUser(ctx, ProvisionUserInput{
			TenantID: other.ID, Username: "pat", Email: "pat@prov.test", AssignedBy: "admin-1",
		})
		require.NoError(t, err)
	})

	t.Run("unknown tenant is refused", func(t *testing.T) {
		_, _, err := env.provision.ProvisionTenantUser(ctx, ProvisionUserInput{
			TenantID: "no-such-tenant", Username: "lost", Email: "lost@prov.test", AssignedBy: "admin-1",
		})
		require.ErrorIs(t, err, ErrTenantNotFound)
	})

	t.Run("system_admin is not a provisionable role", func(t *testing.T) {
		_, _, err := env.provision.ProvisionTenantUser(ctx, ProvisionUserInput{
			TenantID: tenant.ID, Username: "sneaky", Email: "sneaky@prov.test",
			Role: domain.RoleSystemAdmin, AssignedBy: "admin-1",
		})
		require.ErrorIs(t, err, ErrInvalidUser)
	})

	t.Run("missing fields are refused", func(t *testing.T) {
		_, _, err := env.provision.ProvisionTenantUser(ctx, ProvisionUserInput{
			TenantID: tenant.ID, Username: "noemail",
		})
		require.ErrorIs(t, err, ErrInvalidUser)
	})
}

func TestUpdateUserStatus(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	tenant := env.seedTenant(t, "sts", "sts.studyhall.test")
	other := env.seedTenant(t, "sts2", "sts2.studyhall.test")
	user, _ := env.seedUser(t, ProvisionUserInput{
		TenantID: tenant.ID, Username: "uma", Email: "uma@sts.test", AssignedBy: "seed",
	})

	t.Run("suspend and restore", func(t *testing.T) {
		require.NoError(t, env.provision.UpdateUserStatus(ctx, tenant.ID, user.ID, domain.AccountSuspended))
		u, err := env.store.TenantUsers().GetTenantUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, domain.AccountSuspended, u.Status)

		require.NoError(t, env.provision.UpdateUserStatus(ctx, tenant.ID, user.ID, domain.AccountActive))
	})

	t.Run("cross-tenant reads as not found", func(t *testing.T) {
		err := env.provision.UpdateUserStatus(ctx, other.ID, user.ID, domain.AccountSuspended)
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := env.provision.UpdateUserStatus(ctx, tenant.ID, "no-such-user", domain.AccountSuspended)
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("invalid status", func(t *testing.T) {
		err := env.provision.UpdateUserStatus(ctx, tenant.ID, user.ID, domain.AccountStatus("deleted"))
		require.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("pending_activation is not settable by admins", func(t *testing.T) {
		err := env.provision.UpdateUserStatus(ctx, tenant.ID, user.ID, domain.AccountPendingActivation)
		require.ErrorIs(t, err, ErrInvalidStatus)
	})
}
