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

// ChangePasswordHandler serves POST /v1/auth/change-password (bearer).
type ChangePasswordHandler struct {
	PasswordService *service.PasswordService
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password,omitempty"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ServeHTTP godoc
//
//	@Summary		Change password
//	@Description	Rotates the authenticated principal's password. current_password may be
//	@Description	omitted only on accounts carrying the forced-change flag (first login).
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		changePasswordRequest	true	"Password change"
//	@Success		200		{object}	identitysdk.MessageResponse
//	@Failure		400		{object}	identitysdk.ErrorResponse
//	@Failure		401		{object}	identitysdk.ErrorResponse
//	@Router			/v1/auth/change-password [post].
func (h *ChangePasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok {
		httpx.ErrInvalidToken.WriteError(w)
		return
	}

	var req changePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ErrInvalidBody.WriteError(w)
		return
	}

	err := h.PasswordService.ChangePassword(
		ctx,
		claims.Subject,
		domain.PrincipalType(claims.PrincipalType),
		req.CurrentPassword,
		req.NewPassword,
		req.ConfirmPassword,
	)
	if err != nil {
		writePasswordError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identitysdk.MessageResponse{
		Message: "Password updated.",
	})
}

// ForgotPasswordHandler serves POST /v1/auth/forgot-password.
type ForgotPasswordHandler struct {
	PasswordService *service.PasswordService
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ServeHTTP godoc
//
//	@Summary		Request a password reset code
//	@Description	Emails a one-time reset code when the address matches an account. The
//	@Description	response is identical whether or not it matched.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		forgotPasswordRequest	true	"Account email"
//	@Success		200		{object}	identitysdk.MessageResponse
//	@Failure		400		{object}	identitysdk.ErrorResponse
//	@Router			/v1/auth/forgot-password [post].
func (h *ForgotPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req forgotPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ErrInvalidBody.WriteError(w)
		return
	}
	if req.Email == "" {
		httpx.BadRequest("email is required.").WriteError(w)
		return
	}

	if err := h.PasswordService.RequestReset(ctx, req.Email); err != nil {
		// Internal failures still return the generic acknowledgement so the
		// endpoint stays uniform; the error only reaches the log.
		log.Error("reset request failed", "err", err)
	}

	httpx.WriteJSON(w, http.StatusOK, identitysdk.MessageResponse{
		Message: service.ResetRequestAck,
	})
}

// ResetPasswordHandler serves POST /v1/auth/reset-password.
type ResetPasswordHandler struct {
	PasswordService *service.PasswordService
	TokenService    *service.TokenService
}

type resetPasswordRequest struct {
	Email           string `json:"email"`
	OTP             string `json:"otp"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ServeHTTP godoc
//
//	@Summary		Reset password with an emailed code
//	@Description	Redeems the newest valid reset code for the email and sets a new
//	@Description	password. Codes are single use; success returns a fresh token pair.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		resetPasswordRequest	true	"Reset redemption"
//	@Success		200		{object}	identitysdk.LoginResponse
//	@Failure		400		{object}	identitysdk.ErrorResponse
//	@Failure		401		{object}	identitysdk.ErrorResponse
//	@Router			/v1/auth/reset-password [post].
func (h *ResetPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req resetPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ErrInvalidBody.WriteError(w)
		return
	}
	if req.Email == "" || req.OTP == "" {
		httpx.BadRequest("email and otp are required.").WriteError(w)
		return
	}

	pc, err := h.PasswordService.ResetWithOTP(ctx, req.Email, req.OTP, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		writePasswordError(w, log, err)
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

func writePasswordError(w http.ResponseWriter, log interface{ Error(string, ...any) }, err error) {
	switch {
	case errors.Is(err, service.ErrPasswordMismatch):
		httpx.BadRequest("new_password and confirm_password do not match.").WriteError(w)
	case errors.Is(err, service.ErrPasswordTooShort):
		httpx.BadRequest("Password does not meet the minimum length.").WriteError(w)
	case errors.Is(err, service.ErrCurrentRequired):
		httpx.BadRequest("current_password is required.").WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidResetCode),
		errors.Is(err, service.ErrPrincipalNotFound):
		httpx.ErrUnauthorized.WriteError(w)
	default:
		log.Error("password operation failed", "err", err)
		httpx.ErrServerError.WriteError(w)
	}
}
