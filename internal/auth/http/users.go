package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/studyhall-app/studyhall/internal/auth/domain"
	"github.com/studyhall-app/studyhall/internal/auth/service"
	"github.com/studyhall-app/studyhall/pkg/httpx"
	"github.com/studyhall-app/studyhall/pkg/identitysdk"
	"github.com/studyhall-app/studyhall/pkg/slogx"
)

// ProvisionUserHandler serves POST /v1/tenants/{id}/users.
type ProvisionUserHandler struct {
	ProvisionService *service.ProvisionService
}

type provisionUserRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role,omitempty"` // student (default), tutor, tenant_admin
	GradeLevel  int    `json:"grade_level,omitempty"`
}

// ServeHTTP godoc
//
//	@Summary		Provision a tenant user
//	@Description	Creates a tenant user with a generated temporary password, a forced
//	@Description	password change and an active assignment to the tenant's default
//	@Description	subject. The temporary password is returned exactly once.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Tenant ID"
//	@Param			request	body		provisionUserRequest	true	"New user"
//	@Success		201		{object}	identitysdk.ProvisionUserResponse
//	@Failure		400		{object}	identitysdk.ErrorResponse
//	@Failure		401		{object}	identitysdk.ErrorResponse
//	@Failure		403		{object}	identitysdk.ErrorResponse
//	@Failure		404		{object}	identitysdk.ErrorResponse
//	@Failure		409		{object}	identitysdk.ErrorResponse
//	@Router			/v1/tenants/{id}/users [post].
func (h *ProvisionUserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	tenantID := r.PathValue("id")
	if !tenantAllowed(ctx, tenantID) {
		httpx.Forbidden(domain.RoleStrings(domain.RolesTenantAdminOrAbove)...).WriteError(w)
		return
	}

	var req provisionUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ErrInvalidBody.WriteError(w)
		return
	}

	user, tempPassword, err := h.ProvisionService.ProvisionTenantUser(ctx, service.ProvisionUserInput{
		TenantID:    tenantID,
		Username:    req.Username,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Role:        domain.Role(req.Role),
		GradeLevel:  req.GradeLevel,
		AssignedBy:  httpx.SubjectFromContext(ctx),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidUser):
			httpx.BadRequest("username, email and a valid role are required.").WriteError(w)
		case errors.Is(err, service.ErrTenantNotFound):
			httpx.NotFound("Tenant not found.").WriteError(w)
		case errors.Is(err, service.ErrUserExists):
			httpx.APIError{
				Status:      http.StatusConflict,
				Code:        "conflict",
				Description: "Username or email already exists in this tenant.",
			}.WriteError(w)
		default:
			log.Error("user provisioning failed", "err", err)
			httpx.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, identitysdk.ProvisionUserResponse{
		UserID:            user.ID,
		Username:          user.Username,
		Email:             user.Email,
		Role:              req.Role,
		Status:            string(user.Status),
		TemporaryPassword: tempPassword,
	})
}

// UserStatusHandler serves PATCH /v1/tenants/{id}/users/{userID}/status.
type UserStatusHandler struct {
	ProvisionService *service.ProvisionService
}

type userStatusRequest struct {
	Status string `json:"status"` // active, inactive, locked, suspended
}

// ServeHTTP godoc
//
//	@Summary		Change a tenant user's account status
//	@Description	Moves an account between lifecycle states. Accounts are never deleted;
//	@Description	every transition is reversible.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string				true	"Tenant ID"
//	@Param			userID	path		string				true	"User ID"
//	@Param			request	body		userStatusRequest	true	"New status"
//	@Success		200		{object}	identitysdk.MessageResponse
//	@Failure		400		{object}	identitysdk.ErrorResponse
//	@Failure		401		{object}	identitysdk.ErrorResponse
//	@Failure		403		{object}	identitysdk.ErrorResponse
//	@Failure		404		{object}	identitysdk.ErrorResponse
//	@Router			/v1/tenants/{id}/users/{userID}/status [patch].
func (h *UserStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	tenantID := r.PathValue("id")
	if !tenantAllowed(ctx, tenantID) {
		httpx.Forbidden(domain.RoleStrings(domain.RolesTenantAdminOrAbove)...).WriteError(w)
		return
	}

	var req userStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ErrInvalidBody.WriteError(w)
		return
	}

	err := h.ProvisionService.UpdateUserStatus(ctx, tenantID, r.PathValue("userID"), domain.AccountStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			httpx.BadRequest("status must be one of: active, inactive, locked, suspended.").WriteError(w)
		case errors.Is(err, service.ErrUserNotFound):
			httpx.NotFound("User not found.").WriteError(w)
		default:
			log.Error("status update failed", "err", err)
			httpx.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identitysdk.MessageResponse{
		Message: "Status updated.",
	})
}

// tenantAllowed reports whether the authenticated principal may administer
// the tenant: system admins may touch any tenant, tenant admins only their
// own. The role gate itself runs earlier in the middleware chain.
func tenantAllowed(ctx context.Context, tenantID string) bool {
	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok {
		return false
	}
	if claims.Role == string(domain.RoleSystemAdmin) {
		return true
	}
	return claims.Role == string(domain.RoleTenantAdmin) && claims.TenantID == tenantID
}
