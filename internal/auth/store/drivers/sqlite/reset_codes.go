package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/studyhall-app/studyhall/internal/auth/domain"
)

type resetCodesRepo struct {
	db dbtx
}

func (r *resetCodesRepo) CreateResetCode(ctx context.Context, c domain.PasswordResetCode) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO password_reset_codes (id, email, user_id, code_hash, expires_at, used, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)`,
		c.ID, c.Email, mapOptionalString(c.UserID), c.CodeHash, c.ExpiresAt.UTC(), time.Now().UTC(),
	)
	return err
}

func (r *resetCodesRepo) GetLatestValidByEmail(
	ctx context.Context,
	email string,
	now time.Time,
) (domain.PasswordResetCode, error) {
	var c domain.PasswordResetCode
	var userID sql.NullString
	var usedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, user_id, code_hash, expires_at, used, used_at, created_at
		FROM password_reset_codes
		WHERE email = ? AND used = 0 AND expires_at > ?
		ORDER BY created_at DESC, id DESC LIMIT 1`,
		email, now.UTC(),
	).Scan(&c.ID, &c.Email, &userID, &c.CodeHash, &c.ExpiresAt, &c.Used, &usedAt, &c.CreatedAt)
	if err != nil {
		return domain.PasswordResetCode{}, mapNotFound(err)
	}
	c.UserID = mapNullStringPtr(userID)
	c.UsedAt = mapNullTimePtr(usedAt)
	return c, nil
}

// MarkUsed is guarded on used = 0 so only one of two racing redemptions
// succeeds; the loser sees ErrNotFound.
func (r *resetCodesRepo) MarkUsed(ctx context.Context, codeID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE password_reset_codes SET used = 1, used_at = ?
		WHERE id = ? AND used = 0`,
		at.UTC(), codeID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
