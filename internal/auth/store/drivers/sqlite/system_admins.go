package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/studyhall-app/studyhall/internal/auth/domain"
)

type systemAdminsRepo struct {
	db dbtx
}

const systemAdminColumns = `id, username, email, password_hash, display_name, status,
	must_change_password, failed_login_attempts, locked_until, last_login_at, created_at, updated_at`

func (r *systemAdminsRepo) CreateSystemAdmin(ctx context.Context, a domain.SystemAdmin) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO system_admins (id, username, email, password_hash, display_name,
			status, must_change_password, failed_login_attempts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		a.ID, a.Username, a.Email, a.PasswordHash, a.DisplayName,
		string(a.Status), a.MustChangePassword, now, now,
	)
	return err
}

func (r *systemAdminsRepo) GetSystemAdminByID(ctx context.Context, id string) (domain.SystemAdmin, error) {
	return scanSystemAdmin(r.db.QueryRowContext(ctx,
		`SELECT `+systemAdminColumns+` FROM system_admins WHERE id = ?`, id))
}

func (r *systemAdminsRepo) GetSystemAdminByIdentifier(ctx context.Context, identifier string) (domain.SystemAdmin, error) {
	return scanSystemAdmin(r.db.QueryRowContext(ctx, `
		SELECT `+systemAdminColumns+` FROM system_admins
		WHERE username = ? OR email = ?`, identifier, identifier))
}

func (r *systemAdminsRepo) GetSystemAdminByEmail(ctx context.Context, email string) (domain.SystemAdmin, error) {
	return scanSystemAdmin(r.db.QueryRowContext(ctx,
		`SELECT `+systemAdminColumns+` FROM system_admins WHERE email = ?`, email))
}

func (r *systemAdminsRepo) UpdatePassword(ctx context.Context, adminID, newHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE system_admins SET
			password_hash = ?,
			must_change_password = 0,
			status = CASE WHEN status = 'pending_activation' THEN 'active' ELSE status END,
			updated_at = ?
		WHERE id = ?`,
		newHash, time.Now().UTC(), adminID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *systemAdminsRepo) RecordLogin(ctx context.Context, adminID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE system_admins SET
			last_login_at = ?,
			failed_login_attempts = 0,
			locked_until = NULL,
			updated_at = ?
		WHERE id = ?`,
		at.UTC(), time.Now().UTC(), adminID,
	)
	return err
}

func (r *systemAdminsRepo) RecordFailedLogin(
	ctx context.Context,
	adminID string,
	lockUntil *time.Time,
) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE system_admins SET
			failed_login_attempts = failed_login_attempts + 1,
			locked_until = COALESCE(?, locked_until),
			updated_at = ?
		WHERE id = ?`,
		mapOptionalTime(lockUntil), time.Now().UTC(), adminID,
	)
	return err
}

func (r *systemAdminsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM system_admins`).Scan(&n)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func scanSystemAdmin(row rowScanner) (domain.SystemAdmin, error) {
	var a domain.SystemAdmin
	var status string
	var lockedUntil, lastLogin sql.NullTime
	err := row.Scan(
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.DisplayName,
		&status, &a.MustChangePassword, &a.FailedLoginAttempts,
		&lockedUntil, &lastLogin, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.SystemAdmin{}, mapNotFound(err)
	}
	a.Status = domain.AccountStatus(status)
	a.LockedUntil = mapNullTimePtr(lockedUntil)
	a.LastLoginAt = mapNullTimePtr(lastLogin)
	return a, nil
}
