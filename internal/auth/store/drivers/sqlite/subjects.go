package sqlite

import (
	"context"
	"time"

	"github.com/studyhall-app/studyhall/internal/auth/domain"
)

type subjectsRepo struct {
	db dbtx
}

func (r *subjectsRepo) CreateSubject(ctx context.Context, s domain.Subject) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subjects (id, tenant_id, code, name, is_default, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.TenantID, s.Code, s.Name, s.IsDefault, time.Now().UTC(),
	)
	return err
}

func (r *subjectsRepo) GetDefaultSubject(ctx context.Context, tenantID string) (domain.Subject, error) {
	return r.scanSubject(r.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, code, name, is_default, created_at
		FROM subjects WHERE tenant_id = ? AND is_default = 1`, tenantID))
}

func (r *subjectsRepo) GetSubjectByID(ctx context.Context, id string) (domain.Subject, error) {
	return r.scanSubject(r.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, code, name, is_default, created_at
		FROM subjects WHERE id = ?`, id))
}

func (r *subjectsRepo) scanSubject(row rowScanner) (domain.Subject, error) {
	var s domain.Subject
	if err := row.Scan(&s.ID, &s.TenantID, &s.Code, &s.Name, &s.IsDefault, &s.CreatedAt); err != nil {
		return domain.Subject{}, mapNotFound(err)
	}
	return s, nil
}
