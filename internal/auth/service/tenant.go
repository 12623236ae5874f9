package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/studyhall-app/studyhall/internal/auth/domain"
	"github.com/studyhall-app/studyhall/internal/auth/store"
	"github.com/studyhall-app/studyhall/pkg/idx"
	"github.com/studyhall-app/studyhall/pkg/slogx"
)

var (
	ErrTenantNotFound  = errors.New("tenant_not_found")
	ErrTenantCodeTaken = errors.New("tenant_code_taken")
	ErrDomainTaken     = errors.New("domain_taken")
	ErrInvalidTenant   = errors.New("invalid_tenant")
)

type TenantService struct {
	Store store.Store
}

// Resolve maps a hostname to its owning tenant. Both the domain binding and
// the tenant must be active; anything else reads as not found so callers
// cannot probe for suspended tenants.
func (s *TenantService) Resolve(ctx context.Context, domainName string) (domain.TenantInfo, error) {
	domainName = strings.ToLower(strings.TrimSpace(domainName))
	if domainName == "" {
		return domain.TenantInfo{}, ErrTenantNotFound
	}

	d, err := s.Store.Tenants().GetDomainByName(ctx, domainName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TenantInfo{}, ErrTenantNotFound
		}
		return domain.TenantInfo{}, err
	}
	if d.Status != domain.DomainActive {
		return domain.TenantInfo{}, ErrTenantNotFound
	}

	t, err := s.Store.Tenants().GetTenantByID(ctx, d.TenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TenantInfo{}, ErrTenantNotFound
		}
		return domain.TenantInfo{}, err
	}
	if t.Status != domain.TenantActive {
		return domain.TenantInfo{}, ErrTenantNotFound
	}

	return domain.TenantInfo{
		TenantID:     t.ID,
		TenantCode:   t.Code,
		TenantName:   t.Name,
		IsPrimary:    d.IsPrimary,
		TenantStatus: t.Status,
		DomainStatus: d.Status,
	}, nil
}

// CreateTenantInput carries everything needed to provision a new tenant.
type CreateTenantInput struct {
	Code          string
	Name          string
	PrimaryDomain string
	Settings      string
}

// CreateTenant provisions a tenant, its primary domain binding and its
// reserved default subject in one transaction.
func (s *TenantService) CreateTenant(ctx context.Context, in CreateTenantInput) (domain.Tenant, error) {
	l := slogx.FromContext(ctx)

	in.Code = strings.ToLower(strings.TrimSpace(in.Code))
	in.Name = strings.TrimSpace(in.Name)
	in.PrimaryDomain = strings.ToLower(strings.TrimSpace(in.PrimaryDomain))
	if in.Code == "" || in.Name == "" || in.PrimaryDomain == "" {
		return domain.Tenant{}, ErrInvalidTenant
	}
	if in.Settings == "" {
		in.Settings = "{}"
	}

	tenant := domain.Tenant{
		ID:       idx.New().String(),
		Code:     in.Code,
		Name:     in.Name,
		Status:   domain.TenantActive,
		Settings: in.Settings,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Tenants().GetTenantByCode(ctx, in.Code); err == nil {
			return ErrTenantCodeTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if _, err := tx.Tenants().GetDomainByName(ctx, in.PrimaryDomain); err == nil {
			return ErrDomainTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := tx.Tenants().CreateTenant(ctx, tenant); err != nil {
			return err
		}
		if err := tx.Tenants().CreateDomain(ctx, domain.TenantDomain{
			ID:        idx.New().String(),
			TenantID:  tenant.ID,
			Domain:    in.PrimaryDomain,
			IsPrimary: true,
			Status:    domain.DomainActive,
		}); err != nil {
			return err
		}
		return tx.Subjects().CreateSubject(ctx, domain.Subject{
			ID:        idx.New().String(),
			TenantID:  tenant.ID,
			Code:      domain.DefaultSubjectCode,
			Name:      "General",
			IsDefault: true,
		})
	})
	if err != nil {
		return domain.Tenant{}, err
	}

	l.Info("tenant created",
		slog.String("tenant_id", tenant.ID),
		slog.String("code", tenant.Code),
		slog.String("primary_domain", in.PrimaryDomain),
	)
	return tenant, nil
}

// UpdateTenantStatus moves a tenant between lifecycle states.
func (s *TenantService) UpdateTenantStatus(ctx context.Context, tenantID string, status domain.TenantStatus) error {
	err := s.Store.Tenants().UpdateTenantStatus(ctx, tenantID, status)
	if errors.Is(err, store.ErrNotFound) {
		return ErrTenantNotFound
	}
	return err
}
