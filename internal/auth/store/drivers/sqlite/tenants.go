package sqlite

import (
	"context"
	"time"

	"github.com/studyhall-app/studyhall/internal/auth/domain"
)

type tenantsRepo struct {
	db dbtx
}

const tenantColumns = `id, code, name, status, settings, created_at, updated_at`

func (r *tenantsRepo) CreateTenant(ctx context.Context, t domain.Tenant) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tenants (id, code, name, status, settings, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Code, t.Name, string(t.Status), t.Settings, now, now,
	)
	return err
}

func (r *tenantsRepo) GetTenantByID(ctx context.Context, id string) (domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = ?`, id)
	return scanTenant(row)
}

func (r *tenantsRepo) GetTenantByCode(ctx context.Context, code string) (domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE code = ?`, code)
	return scanTenant(row)
}

func (r *tenantsRepo) UpdateTenantStatus(
	ctx context.Context,
	tenantID string,
	status domain.TenantStatus,
) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tenants SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), tenantID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *tenantsRepo) CreateDomain(ctx context.Context, d domain.TenantDomain) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tenant_domains (id, tenant_id, domain, is_primary, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.TenantID, d.Domain, d.IsPrimary, string(d.Status), now, now,
	)
	return err
}

func (r *tenantsRepo) GetDomainByName(ctx context.Context, name string) (domain.TenantDomain, error) {
	var d domain.TenantDomain
	var status string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, domain, is_primary, status, created_at, updated_at
		FROM tenant_domains WHERE domain = ?`, name,
	).Scan(&d.ID, &d.TenantID, &d.Domain, &d.IsPrimary, &status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return domain.TenantDomain{}, mapNotFound(err)
	}
	d.Status = domain.DomainStatus(status)
	return d, nil
}

func (r *tenantsRepo) ClearPrimaryDomain(ctx context.Context, tenantID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tenant_domains SET is_primary = 0, updated_at = ?
		WHERE tenant_id = ? AND is_primary = 1`,
		time.Now().UTC(), tenantID,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(row rowScanner) (domain.Tenant, error) {
	var t domain.Tenant
	var status string
	err := row.Scan(&t.ID, &t.Code, &t.Name, &status, &t.Settings, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Tenant{}, mapNotFound(err)
	}
	t.Status = domain.TenantStatus(status)
	return t, nil
}
