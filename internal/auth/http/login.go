package http

import (
	"errors"
	"net/http"

	"github.com/studyhall-app/studyhall/internal/auth/domain"
	"github.com/studyhall-app/studyhall/internal/auth/service"
	"github.com/studyhall-app/studyhall/pkg/httpx"
	"github.com/studyhall-app/studyhall/pkg/identitysdk"
	"github.com/studyhall-app/studyhall/pkg/slogx"
)

// LoginHandler serves POST /v1/auth/login.
type LoginHandler struct {
	AuthService  *service.AuthService
	TokenService *service.TokenService
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Domain   string `json:"domain,omitempty"`
}

// ServeHTTP godoc
//
//	@Summary		Login
//	@Description	Authenticates a username (or email) and password. A domain narrows the
//	@Description	lookup to that tenant's users; without one (or when it does not match)
//	@Description	the system admin directory is consulted. Every failure returns the same
//	@Description	401 regardless of cause.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest			true	"Credentials"
//	@Success		200		{object}	identitysdk.LoginResponse
//	@Failure		400		{object}	identitysdk.ErrorResponse
//	@Failure		401		{object}	identitysdk.ErrorResponse
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ErrInvalidBody.WriteError(w)
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.BadRequest("username and password are required.").WriteError(w)
		return
	}

	pc, err := h.AuthService.Login(ctx, req.Username, req.Password, req.Domain)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.ErrUnauthorized.WriteError(w)
			return
		}
		log.Error("login failed", "err", err)
		httpx.ErrServerError.WriteError(w)
		return
	}

	pair, err := h.TokenService.IssuePair(pc)
	if err != nil {
		log.Error("token issue failed", "err", err)
		httpx.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identitysdk.LoginResponse{
		TokenResponse: identitysdk.TokenResponse{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			TokenType:    pair.TokenType,
			ExpiresIn:    pair.ExpiresIn,
		},
		Principal: principalSummary(pc),
	})
}

func principalSummary(pc domain.PrincipalContext) identitysdk.PrincipalSummary {
	return identitysdk.PrincipalSummary{
		ID:                 pc.ID,
		Username:           pc.Username,
		Email:              pc.Email,
		DisplayName:        pc.DisplayName,
		Role:               string(pc.Role),
		TenantID:           pc.TenantID,
		GradeLevel:         pc.GradeLevel,
		MustChangePassword: pc.MustChangePassword,
		PrincipalType:      string(pc.Type),
	}
}
