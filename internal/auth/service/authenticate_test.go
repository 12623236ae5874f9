package service

import (
	"context"
	"testing"
	"time"

	"github.com/studyhall-app/studyhall/internal/auth/domain"
	"github.com/studyhall-app/studyhall/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestLoginTenantUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	tenant := env.seedTenant(t, "west", "west.studyhall.test")
	user, tempPassword := env.seedUser(t, ProvisionUserInput{
		TenantID:    tenant.ID,
		Username:    "sam",
		Email:       "sam@west.test",
		DisplayName: "Sam Student",
		GradeLevel:  7,
		AssignedBy:  "admin-1",
	})

	t.Run("temp password logs in with forced change", func(t *testing.T) {
		pc, err := env.auth.Login(ctx, "sam", tempPassword, "west.studyhall.test")
		require.NoError(t, err)
		require.Equal(t, user.ID, pc.ID)
		require.Equal(t, domain.RoleStudent, pc.Role)
		require.Equal(t, tenant.ID, pc.TenantID)
		require.Equal(t, 7, pc.GradeLevel)
		require.True(t, pc.MustChangePassword)
		require.Equal(t, domain.AccountPendingActivation, pc.Status)
		require.Equal(t, domain.PrincipalTenantUser, pc.Type)
	})

	t.Run("email works as identifier", func(t *testing.T) {
		pc, err := env.auth.Login(ctx, "sam@west.test", tempPassword, "west.studyhall.test")
		require.NoError(t, err)
		require.Equal(t, user.ID, pc.ID)
	})

	t.Run("login stamps last_login_at", func(t *testing.T) {
		u, err := env.store.TenantUsers().GetTenantUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, u.LastLoginAt)
	})

	t.Run("wrong password fails uniformly", func(t *testing.T) {
		_, err := env.auth.Login(ctx, "sam", "wrong-password", "west.studyhall.test")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown identifier fails uniformly", func(t *testing.T) {
		_, err := env.auth.Login(ctx, "nobody", tempPassword, "west.studyhall.test")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong tenant domain fails uniformly", func(t *testing.T) {
		_, err := env.auth.Login(ctx, "sam", tempPassword, "other.studyhall.test")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLoginPrecedenceAcrossTenants(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	// Same username and email in two tenants; the domain decides which
	// account logs in.
	tenantA := env.seedTenant(t, "alpha", "alpha.studyhall.test")
	tenantB := env.seedTenant(t, "beta", "beta.studyhall.test")
	userA, passA := env.seedUser(t, ProvisionUserInput{
		TenantID: tenantA.ID, Username: "alice", Email: "alice@school.test", AssignedBy: "seed",
	})
	userB, passB := env.seedUser(t, ProvisionUserInput{
		TenantID: tenantB.ID, Username: "alice", Email: "alice@school.test", AssignedBy: "seed",
	})

	pcA, err := env.auth.Login(ctx, "alice", passA, "alpha.studyhall.test")
	require.NoError(t, err)
	require.Equal(t, userA.ID, pcA.ID)
	require.Equal(t, tenantA.ID, pcA.TenantID)

	pcB, err := env.auth.Login(ctx, "alice", passB, "beta.studyhall.test")
	require.NoError(t, err)
	require.Equal(t, userB.ID, pcB.ID)
	require.Equal(t, tenantB.ID, pcB.TenantID)

	// Tenant A's password does not open tenant B's account.
	_, err = env.auth.Login(ctx, "alice", passA, "beta.studyhall.test")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSystemAdminLogin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	tempPassword, created, err := env.provision.EnsureSystemAdmin(ctx, "root", "root@studyhall.test")
	require.NoError(t, err)
	require.True(t, created)

	t.Run("logs in without a domain", func(t *testing.T) {
		pc, err := env.auth.Login(ctx, "root", tempPassword, "")
		require.NoError(t, err)
		require.Equal(t, domain.RoleSystemAdmin, pc.Role)
		require.Empty(t, pc.TenantID)
		require.Equal(t, domain.PrincipalSystemAdmin, pc.Type)
	})

	t.Run("falls through an unresolvable domain", func(t *testing.T) {
		pc, err := env.auth.Login(ctx, "root", tempPassword, "nowhere.studyhall.test")
		require.NoError(t, err)
		require.Equal(t, domain.RoleSystemAdmin, pc.Role)
	})

	t.Run("second bootstrap is a no-op", func(t *testing.T) {
		_, created, err := env.provision.EnsureSystemAdmin(ctx, "root2", "root2@studyhall.test")
		require.NoError(t, err)
		require.False(t, created)
	})
}

func TestRoleDerivation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	tenant := env.seedTenant(t, "gamma", "gamma.studyhall.test")

	t.Run("tutor assignment derives tutor", func(t *testing.T) {
		_, pass := env.seedUser(t, ProvisionUserInput{
			TenantID: tenant.ID, Username: "tina", Email: "tina@gamma.test",
			Role: domain.RoleTutor, AssignedBy: "seed",
		})
		pc, err := env.auth.Login(ctx, "tina", pass, "gamma.studyhall.test")
		require.NoError(t, err)
		require.Equal(t, domain.RoleTutor, pc.Role)
		require.Zero(t, pc.GradeLevel)
	})

	t.Run("admin grant takes precedence over assignments", func(t *testing.T) {
		_, pass := env.seedUser(t, ProvisionUserInput{
			TenantID: tenant.ID, Username: "ada", Email: "ada@gamma.test",
			Role: domain.RoleTenantAdmin, AssignedBy: "seed",
		})
		pc, err := env.auth.Login(ctx, "ada", pass, "gamma.studyhall.test")
		require.NoError(t, err)
		require.Equal(t, domain.RoleTenantAdmin, pc.Role)
	})

	t.Run("oldest active assignment wins", func(t *testing.T) {
		user, pass := env.seedUser(t, ProvisionUserInput{
			TenantID: tenant.ID, Username: "omar", Email: "omar@gamma.test",
			Role: domain.RoleStudent, AssignedBy: "seed",
		})

		// A newer tutor assignment on a second subject does not displace the
		// older student assignment on the default subject.
		subjectID := idx.New().String()
		require.NoError(t, env.store.Subjects().CreateSubject(ctx, domain.Subject{
			ID: subjectID, TenantID: tenant.ID, Code: "maths", Name: "Mathematics",
		}))
		tutorAssignment := domain.SubjectRoleAssignment{
			ID: idx.New().String(), TenantID: tenant.ID, UserID: user.ID,
			SubjectID: subjectID, Role: domain.RoleTutor,
			Status: domain.AssignmentActive, AssignedBy: "seed",
		}
		require.NoError(t, env.store.Assignments().CreateAssignment(ctx, tutorAssignment))

		pc, err := env.auth.Login(ctx, "omar", pass, "gamma.studyhall.test")
		require.NoError(t, err)
		require.Equal(t, domain.RoleStudent, pc.Role)

		// Deactivating the older assignment promotes the tutor one.
		first, err := env.store.Assignments().FirstActiveForUser(ctx, user.ID)
		require.NoError(t, err)
		require.NoError(t, env.store.Assignments().DeactivateAssignment(ctx, first.ID))

		pc, err = env.auth.Login(ctx, "omar", pass, "gamma.studyhall.test")
		require.NoError(t, err)
		require.Equal(t, domain.RoleTutor, pc.Role)
	})

	t.Run("no active assignment falls back to student", func(t *testing.T) {
		user, pass := env.seedUser(t, ProvisionUserInput{
			TenantID: tenant.ID, Username: "nora", Email: "nora@gamma.test",
			AssignedBy: "seed",
		})
		assignments, err := env.store.Assignments().ListForUser(ctx, user.ID)
		require.NoError(t, err)
		for _, a := range assignments {
			require.NoError(t, env.store.Assignments().DeactivateAssignment(ctx, a.ID))
		}

		pc, err := env.auth.Login(ctx, "nora", pass, "gamma.studyhall.test")
		require.NoError(t, err)
		require.Equal(t, domain.RoleStudent, pc.Role)
	})
}

func TestStatusBlocksLogin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	tenant := env.seedTenant(t, "delta", "delta.studyhall.test")
	user, pass := env.seedUser(t, ProvisionUserInput{
		TenantID: tenant.ID, Username: "sidney", Email: "sidney@delta.test", AssignedBy: "seed",
	})

	for _, status := range []domain.AccountStatus{
		domain.AccountInactive, domain.AccountLocked, domain.AccountSuspended,
	} {
		require.NoError(t, env.store.TenantUsers().UpdateStatus(ctx, user.ID, status))
		_, err := env.auth.Login(ctx, "sidney", pass, "delta.studyhall.test")
		require.ErrorIs(t, err, ErrInvalidCredentials, "status %s", status)
	}

	require.NoError(t, env.store.TenantUsers().UpdateStatus(ctx, user.ID, domain.AccountActive))
	_, err := env.auth.Login(ctx, "sidney", pass, "delta.studyhall.test")
	require.NoError(t, err)
}

func TestLockout(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	tenant := env.seedTenant(t, "epsilon", "eps.studyhall.test")
	user, pass := env.seedUser(t, ProvisionUserInput{
		TenantID: tenant.ID, Username: "leo", Email: "leo@eps.test", AssignedBy: "seed",
	})

	env.auth.MaxLoginAttempts = 2
	env.auth.LockoutDuration = time.Hour

	t.Run("failures move the counter and arm the deadline", func(t *testing.T) {
		for range 2 {
			_, err := env.auth.Login(ctx, "leo", "wrong", "eps.studyhall.test")
			require.ErrorIs(t, err, ErrInvalidCredentials)
		}
		u, err := env.store.TenantUsers().GetTenantUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, 2, u.FailedLoginAttempts)
		require.NotNil(t, u.LockedUntil)
	})

	t.Run("lockout is not enforced by default", func(t *testing.T) {
		pc, err := env.auth.Login(ctx, "leo", pass, "eps.studyhall.test")
		require.NoError(t, err)
		require.Equal(t, user.ID, pc.ID)

		// A successful login clears the counter and the deadline.
		u, err := env.store.TenantUsers().GetTenantUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Zero(t, u.FailedLoginAttempts)
		require.Nil(t, u.LockedUntil)
	})

	t.Run("enforcement refuses even the correct password", func(t *testing.T) {
		env.auth.EnforceLockout = true
		for range 2 {
			_, err := env.auth.Login(ctx, "leo", "wrong", "eps.studyhall.test")
			require.ErrorIs(t, err, ErrInvalidCredentials)
		}
		_, err := env.auth.Login(ctx, "leo", pass, "eps.studyhall.test")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthenticateHasNoSideEffects(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	tenant := env.seedTenant(t, "zeta", "zeta.studyhall.test")
	user, pass := env.seedUser(t, ProvisionUserInput{
		TenantID: tenant.ID, Username: "quinn", Email: "quinn@zeta.test", AssignedBy: "seed",
	})

	_, err := env.auth.Authenticate(ctx, "quinn", "wrong", "zeta.studyhall.test")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.auth.Authenticate(ctx, "quinn", pass, "zeta.studyhall.test")
	require.NoError(t, err)

	u, err := env.store.TenantUsers().GetTenantUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Zero(t, u.FailedLoginAttempts)
	require.Nil(t, u.LastLoginAt)
}
