package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/studyhall-app/studyhall/internal/auth/domain"
	"github.com/studyhall-app/studyhall/internal/auth/store"
	"github.com/studyhall-app/studyhall/pkg/cryptox"
	"github.com/studyhall-app/studyhall/pkg/idx"
	"github.com/studyhall-app/studyhall/pkg/mailx"
	"github.com/studyhall-app/studyhall/pkg/slogx"
)

var (
	ErrPasswordTooShort  = errors.New("password_too_short")
	ErrPasswordMismatch  = errors.New("password_mismatch")
	ErrCurrentRequired   = errors.New("current_password_required")
	ErrInvalidResetCode  = errors.New("invalid_reset_code")
	ErrPrincipalNotFound = errors.New("principal_not_found")
)

// ResetRequestAck is the generic acknowledgement returned for every
// password-reset request, matching or not.
const ResetRequestAck = "If an account exists for that email, a reset code has been sent."

type PasswordService struct {
	Store  store.Store
	Mailer mailx.Mailer

	MinPasswordLength int
	OTPTTL            time.Duration
}

// ChangePassword rotates a principal's password. The current password must
// verify unless it is omitted on a forced-change account (the first-login
// flow, where the caller already holds a valid access token). On success the
// hash swap, flag clear and pending->active promotion land atomically; on
// any validation failure nothing is written.
func (s *PasswordService) ChangePassword(
	ctx context.Context,
	principalID string,
	principalType domain.PrincipalType,
	current, newPassword, confirm string,
) error {
	if err := s.validateNewPassword(newPassword, confirm); err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		var hash string
		var mustChange bool

		switch principalType {
		case domain.PrincipalSystemAdmin:
			a, err := tx.SystemAdmins().GetSystemAdminByID(ctx, principalID)
			if err != nil {
				return mapPrincipalErr(err)
			}
			hash, mustChange = a.PasswordHash, a.MustChangePassword
		default:
			u, err := tx.TenantUsers().GetTenantUserByID(ctx, principalID)
			if err != nil {
				return mapPrincipalErr(err)
			}
			hash, mustChange = u.PasswordHash, u.MustChangePassword
		}

		if current == "" {
			if !mustChange {
				return ErrCurrentRequired
			}
		} else if err := cryptox.VerifySecret(current, hash); err != nil {
			return ErrInvalidCredentials
		}

		newHash, err := cryptox.HashSecret(newPassword)
		if err != nil {
			return err
		}
		if principalType == domain.PrincipalSystemAdmin {
			return tx.SystemAdmins().UpdatePassword(ctx, principalID, newHash)
		}
		return tx.TenantUsers().UpdatePassword(ctx, principalID, newHash)
	})
}

// RequestReset mints a one-time reset code for the account behind the email
// and mails it. It never reveals whether the email matched: the caller gets
// the same nil result either way, and delivery happens off the request
// goroutine so timing stays flat.
func (s *PasswordService) RequestReset(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}

	var userID *string
	var displayName string

	u, err := s.Store.TenantUsers().GetTenantUserByEmail(ctx, email)
	switch {
	case err == nil:
		id := u.ID
		userID = &id
		displayName = u.DisplayName
	case errors.Is(err, store.ErrNotFound):
		a, aerr := s.Store.SystemAdmins().GetSystemAdminByEmail(ctx, email)
		if errors.Is(aerr, store.ErrNotFound) {
			l.Info("reset requested for unknown email")
			return nil
		}
		if aerr != nil {
			return aerr
		}
		displayName = a.DisplayName
	default:
		return err
	}

	code, err := cryptox.GenerateResetCode()
	if err != nil {
		return err
	}
	codeHash, err := cryptox.HashSecret(code)
	if err != nil {
		return err
	}

	if err := s.Store.ResetCodes().CreateResetCode(ctx, domain.PasswordResetCode{
		ID:        idx.New().String(),
		Email:     email,
		UserID:    userID,
		CodeHash:  codeHash,
		ExpiresAt: time.Now().UTC().Add(s.OTPTTL),
	}); err != nil {
		return err
	}

	// Fire and forget. A delivery failure is an ops problem, not a reason
	// to leak account existence to the requester.
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := s.Mailer.Send(sendCtx, mailx.Message{
			To:      email,
			Subject: "Your password reset code",
			TextBody: fmt.Sprintf(
				"Hi %s,\n\nYour password reset code is: %s\n\nIt expires in %d minutes. If you did not request this, you can ignore this email.\n",
				displayName, code, int(s.OTPTTL.Minutes()),
			),
		}); err != nil {
			l.Error("send reset code email", slog.Any("error", err))
		}
	}()

	return nil
}

// ResetWithOTP redeems the newest valid reset code for the email and sets a
// new password. The code is single use: the consuming update is guarded, so
// of two concurrent redemptions exactly one commits and the other fails with
// the uniform invalid-code error. Returns the principal context so the
// caller can issue a fresh token pair.
func (s *PasswordService) ResetWithOTP(
	ctx context.Context,
	email, otp, newPassword, confirm string,
) (domain.PrincipalContext, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	now := time.Now().UTC()

	var pc domain.PrincipalContext

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		code, err := tx.ResetCodes().GetLatestValidByEmail(ctx, email, now)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidResetCode
			}
			return err
		}
		if cryptox.VerifySecret(otp, code.CodeHash) != nil {
			return ErrInvalidResetCode
		}

		if err := s.validateNewPassword(newPassword, confirm); err != nil {
			return err
		}
		newHash, err := cryptox.HashSecret(newPassword)
		if err != nil {
			return err
		}

		if code.UserID != nil {
			u, err := tx.TenantUsers().GetTenantUserByID(ctx, *code.UserID)
			if err != nil {
				return mapPrincipalErr(err)
			}
			if err := tx.TenantUsers().UpdatePassword(ctx, u.ID, newHash); err != nil {
				return err
			}
			pc, err = ContextForTenantUser(ctx, tx, u)
			if err != nil {
				return err
			}
			// Reflect the atomic promotion the update just performed.
			pc.MustChangePassword = false
			if pc.Status == domain.AccountPendingActivation {
				pc.Status = domain.AccountActive
			}
		} else {
			a, err := tx.SystemAdmins().GetSystemAdminByEmail(ctx, email)
			if err != nil {
				return mapPrincipalErr(err)
			}
			if err := tx.SystemAdmins().UpdatePassword(ctx, a.ID, newHash); err != nil {
				return err
			}
			pc = ContextForSystemAdmin(a)
			pc.MustChangePassword = false
			if pc.Status == domain.AccountPendingActivation {
				pc.Status = domain.AccountActive
			}
		}

		if err := tx.ResetCodes().MarkUsed(ctx, code.ID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidResetCode
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.PrincipalContext{}, err
	}
	return pc, nil
}

func (s *PasswordService) validateNewPassword(newPassword, confirm string) error {
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	if len(newPassword) < s.MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func mapPrincipalErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrPrincipalNotFound
	}
	return err
}
