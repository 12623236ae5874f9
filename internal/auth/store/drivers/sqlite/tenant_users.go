package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/studyhall-app/studyhall/internal/auth/domain"
)

type tenantUsersRepo struct {
	db dbtx
}

const tenantUserColumns = `id, tenant_id, username, email, password_hash, display_name, status,
	must_change_password, failed_login_attempts, locked_until, last_login_at, created_at, updated_at`

func (r *tenantUsersRepo) CreateTenantUser(ctx context.Context, u domain.TenantUser) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tenant_users (id, tenant_id, username, email, password_hash, display_name,
			status, must_change_password, failed_login_attempts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		u.ID, u.TenantID, u.Username, u.Email, u.PasswordHash, u.DisplayName,
		string(u.Status), u.MustChangePassword, now, now,
	)
	return err
}

func (r *tenantUsersRepo) GetTenantUserByID(ctx context.Context, id string) (domain.TenantUser, error) {
	return scanTenantUser(r.db.QueryRowContext(ctx,
		`SELECT `+tenantUserColumns+` FROM tenant_users WHERE id = ?`, id))
}

func (r *tenantUsersRepo) GetTenantUserByIdentifier(
	ctx context.Context,
	tenantID, identifier string,
) (domain.TenantUser, error) {
	return scanTenantUser(r.db.QueryRowContext(ctx, `
		SELECT `+tenantUserColumns+` FROM tenant_users
		WHERE tenant_id = ? AND (username = ? OR email = ?)`,
		tenantID, identifier, identifier))
}

func (r *tenantUsersRepo) GetTenantUserByEmail(ctx context.Context, email string) (domain.TenantUser, error) {
	// Oldest account wins when the address exists in several tenants.
	return scanTenantUser(r.db.QueryRowContext(ctx, `
		SELECT `+tenantUserColumns+` FROM tenant_users
		WHERE email = ? ORDER BY created_at ASC, id ASC LIMIT 1`, email))
}

// UpdatePassword replaces the hash, clears the forced-change flag and
// promotes pending_activation to active, all in one statement so the write
// is atomic even outside an explicit transaction.
func (r *tenantUsersRepo) UpdatePassword(ctx context.Context, userID, newHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tenant_users SET
			password_hash = ?,
			must_change_password = 0,
			status = CASE WHEN status = 'pending_activation' THEN 'active' ELSE status END,
			updated_at = ?
		WHERE id = ?`,
		newHash, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *tenantUsersRepo) UpdateStatus(
	ctx context.Context,
	userID string,
	status domain.AccountStatus,
) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tenant_users SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *tenantUsersRepo) RecordLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tenant_users SET
			last_login_at = ?,
			failed_login_attempts = 0,
			locked_until = NULL,
			updated_at = ?
		WHERE id = ?`,
		at.UTC(), time.Now().UTC(), userID,
	)
	return err
}

func (r *tenantUsersRepo) RecordFailedLogin(
	ctx context.Context,
	userID string,
	lockUntil *time.Time,
) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tenant_users SET
			failed_login_attempts = failed_login_attempts + 1,
			locked_until = COALESCE(?, locked_until),
			updated_at = ?
		WHERE id = ?`,
		mapOptionalTime(lockUntil), time.Now().UTC(), userID,
	)
	return err
}

func (r *tenantUsersRepo) GetTenantAdminGrant(ctx context.Context, userID string) (domain.TenantAdminGrant, error) {
	var g domain.TenantAdminGrant
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, granted_by, created_at FROM tenant_admins WHERE user_id = ?`, userID,
	).Scan(&g.UserID, &g.GrantedBy, &g.CreatedAt)
	if err != nil {
		return domain.TenantAdminGrant{}, mapNotFound(err)
	}
	return g, nil
}

func (r *tenantUsersRepo) CreateTenantAdminGrant(ctx context.Context, g domain.TenantAdminGrant) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tenant_admins (user_id, granted_by, created_at) VALUES (?, ?, ?)`,
		g.UserID, g.GrantedBy, time.Now().UTC(),
	)
	return err
}

func (r *tenantUsersRepo) GetStudentProfile(ctx context.Context, userID string) (domain.StudentProfile, error) {
	var p domain.StudentProfile
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, grade_level, created_at, updated_at
		FROM student_profiles WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &p.GradeLevel, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.StudentProfile{}, mapNotFound(err)
	}
	return p, nil
}

func (r *tenantUsersRepo) CreateStudentProfile(ctx context.Context, p domain.StudentProfile) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO student_profiles (user_id, grade_level, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		p.UserID, p.GradeLevel, now, now,
	)
	return err
}

func scanTenantUser(row rowScanner) (domain.TenantUser, error) {
	var u domain.TenantUser
	var status string
	var lockedUntil, lastLogin sql.NullTime
	err := row.Scan(
		&u.ID, &u.TenantID, &u.Username, &u.Email, &u.PasswordHash, &u.DisplayName,
		&status, &u.MustChangePassword, &u.FailedLoginAttempts,
		&lockedUntil, &lastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.TenantUser{}, mapNotFound(err)
	}
	u.Status = domain.AccountStatus(status)
	u.LockedUntil = mapNullTimePtr(lockedUntil)
	u.LastLoginAt = mapNullTimePtr(lastLogin)
	return u, nil
}
