package http

import (
	"errors"
	"net/http"

	"github.com/studyhall-app/studyhall/internal/auth/service"
	"github.com/studyhall-app/studyhall/pkg/httpx"
	"github.com/studyhall-app/studyhall/pkg/identitysdk"
	"github.com/studyhall-app/studyhall/pkg/slogx"
)

// RefreshHandler serves POST /v1/auth/refresh.
type RefreshHandler struct {
	TokenService *service.TokenService
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ServeHTTP godoc
//
//	@Summary		Refresh access token
//	@Description	Exchanges a valid refresh token for a new access token. Access tokens
//	@Description	are rejected here; only token_type=refresh is accepted.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		refreshRequest	true	"Refresh token"
//	@Success		200		{object}	identitysdk.TokenResponse
//	@Failure		400		{object}	identitysdk.ErrorResponse
//	@Failure		401		{object}	identitysdk.ErrorResponse
//	@Router			/v1/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ErrInvalidBody.WriteError(w)
		return
	}
	if req.RefreshToken == "" {
		httpx.BadRequest("refresh_token is required.").WriteError(w)
		return
	}

	pair, err := h.TokenService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			httpx.ErrInvalidToken.WriteError(w)
			return
		}
		log.Error("refresh failed", "err", err)
		httpx.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identitysdk.TokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   pair.TokenType,
		ExpiresIn:   pair.ExpiresIn,
	})
}
