package domain

import "time"

// PasswordResetCode is a stored, hashed one-time reset code addressed to an
// email. UserID is set for tenant users; a nil UserID means the code belongs
// to a system admin and is resolved by email at redemption time. Only the
// newest unused, unexpired row per email is honored; older rows stay in
// storage as an audit trail.
type PasswordResetCode struct {
	ID        string
	Email     string
	UserID    *string
	CodeHash  string // argon2id PHC encoded, same mechanism as passwords
	ExpiresAt time.Time
	Used      bool
	UsedAt    *time.Time
	CreatedAt time.Time
}
