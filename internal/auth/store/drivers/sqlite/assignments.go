package sqlite

import (
	"context"
	"time"

	"github.com/studyhall-app/studyhall/internal/auth/domain"
)

type assignmentsRepo struct {
	db dbtx
}

const assignmentColumns = `id, tenant_id, user_id, subject_id, role, status, assigned_by, created_at, updated_at`

func (r *assignmentsRepo) CreateAssignment(ctx context.Context, a domain.SubjectRoleAssignment) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subject_role_assignments (id, tenant_id, user_id, subject_id, role, status, assigned_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.TenantID, a.UserID, a.SubjectID, string(a.Role), string(a.Status), a.AssignedBy, now, now,
	)
	return err
}

func (r *assignmentsRepo) FirstActiveForUser(ctx context.Context, userID string) (domain.SubjectRoleAssignment, error) {
	// Oldest active assignment, ties broken by id for determinism.
	return scanAssignment(r.db.QueryRowContext(ctx, `
		SELECT `+assignmentColumns+` FROM subject_role_assignments
		WHERE user_id = ? AND status = 'active'
		ORDER BY created_at ASC, id ASC LIMIT 1`, userID))
}

func (r *assignmentsRepo) DeactivateAssignment(ctx context.Context, assignmentID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subject_role_assignments SET status = 'inactive', updated_at = ?
		WHERE id = ?`,
		time.Now().UTC(), assignmentID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *assignmentsRepo) ListForUser(ctx context.Context, userID string) ([]domain.SubjectRoleAssignment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+assignmentColumns+` FROM subject_role_assignments
		WHERE user_id = ? ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SubjectRoleAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAssignment(row rowScanner) (domain.SubjectRoleAssignment, error) {
	var a domain.SubjectRoleAssignment
	var role, status string
	err := row.Scan(
		&a.ID, &a.TenantID, &a.UserID, &a.SubjectID,
		&role, &status, &a.AssignedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.SubjectRoleAssignment{}, mapNotFound(err)
	}
	a.Role = domain.Role(role)
	a.Status = domain.AssignmentStatus(status)
	return a, nil
}
