package http

import (
	"errors"
	"net/http"

	"github.com/studyhall-app/studyhall/internal/auth/service"
	"github.com/studyhall-app/studyhall/pkg/httpx"
	"github.com/studyhall-app/studyhall/pkg/identitysdk"
	"github.com/studyhall-app/studyhall/pkg/slogx"
)

// ResolveTenantHandler serves GET /v1/tenants/resolve.
type ResolveTenantHandler struct {
	TenantService *service.TenantService
}

// ServeHTTP godoc
//
//	@Summary		Resolve a domain to its tenant
//	@Description	Maps a hostname to its owning tenant. Unknown domains, inactive domain
//	@Description	bindings and non-active tenants all read as 404. Safe before login.
//	@Tags			Tenants
//	@Produce		json
//	@Param			domain	query		string	true	"Hostname to resolve"
//	@Success		200		{object}	identitysdk.TenantResponse
//	@Failure		404		{object}	identitysdk.ErrorResponse
//	@Router			/v1/tenants/resolve [get].
func (h *ResolveTenantHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	info, err := h.TenantService.Resolve(ctx, r.URL.Query().Get("domain"))
	if err != nil {
		if errors.Is(err, service.ErrTenantNotFound) {
			httpx.NotFound("No tenant for that domain.").WriteError(w)
			return
		}
		log.Error("tenant resolve failed", "err", err)
		httpx.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identitysdk.TenantResponse{
		TenantID:     info.TenantID,
		TenantCode:   info.TenantCode,
		TenantName:   info.TenantName,
		IsPrimary:    info.IsPrimary,
		TenantStatus: string(info.TenantStatus),
		DomainStatus: string(info.DomainStatus),
	})
}

// CreateTenantHandler serves POST /v1/tenants (system admin only).
type CreateTenantHandler struct {
	TenantService *service.TenantService
}

type createTenantRequest struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	PrimaryDomain string `json:"primary_domain"`
	Settings      string `json:"settings,omitempty"`
}

// ServeHTTP godoc
//
//	@Summary		Create a tenant
//	@Description	Provisions a tenant, its primary domain binding and its default subject
//	@Description	in one transaction. System administrators only.
//	@Tags			Tenants
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		createTenantRequest	true	"New tenant"
//	@Success		201		{object}	identitysdk.CreateTenantResponse
//	@Failure		400		{object}	identitysdk.ErrorResponse
//	@Failure		401		{object}	identitysdk.ErrorResponse
//	@Failure		403		{object}	identitysdk.ErrorResponse
//	@Failure		409		{object}	identitysdk.ErrorResponse
//	@Router			/v1/tenants [post].
func (h *CreateTenantHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req createTenantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ErrInvalidBody.WriteError(w)
		return
	}

	tenant, err := h.TenantService.CreateTenant(ctx, service.CreateTenantInput{
		Code:          req.Code,
		Name:          req.Name,
		PrimaryDomain: req.PrimaryDomain,
		Settings:      req.Settings,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTenant):
			httpx.BadRequest("code, name and primary_domain are required.").WriteError(w)
		case errors.Is(err, service.ErrTenantCodeTaken):
			httpx.APIError{
				Status:      http.StatusConflict,
				Code:        "conflict",
				Description: "Tenant code is already in use.",
			}.WriteError(w)
		case errors.Is(err, service.ErrDomainTaken):
			httpx.APIError{
				Status:      http.StatusConflict,
				Code:        "conflict",
				Description: "Domain is already bound to a tenant.",
			}.WriteError(w)
		default:
			log.Error("tenant create failed", "err", err)
			httpx.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, identitysdk.CreateTenantResponse{
		TenantID:      tenant.ID,
		Code:          tenant.Code,
		Name:          tenant.Name,
		PrimaryDomain: req.PrimaryDomain,
	})
}
