package identitysdk

// ErrorResponse is the standard error body returned by every endpoint.
type ErrorResponse struct {
	// Error is the machine-readable error code.
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error.
	ErrorDescription string `json:"error_description"`
}

// PrincipalSummary is the identity block returned alongside tokens. The
// effective role is derived at authentication time and is not stored on the
// account.
type PrincipalSummary struct {
	ID                 string `json:"id"`
	Username           string `json:"username"`
	Email              string `json:"email"`
	DisplayName        string `json:"display_name"`
	Role               string `json:"role"`
	TenantID           string `json:"tenant_id,omitempty"`
	GradeLevel         int    `json:"grade_level,omitempty"`
	MustChangePassword bool   `json:"must_change_password"`
	PrincipalType      string `json:"principal_type"`
}

// TokenResponse carries a freshly issued token set.
type TokenResponse struct {
	// AccessToken is the short-lived JWT used to authenticate API requests.
	AccessToken string `json:"access_token"`

	// RefreshToken obtains new access tokens; absent on refresh responses.
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is always "Bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
}

// LoginResponse is the POST /v1/auth/login result: tokens plus the derived
// principal summary the client needs before its first authenticated call.
type LoginResponse struct {
	TokenResponse
	Principal PrincipalSummary `json:"principal"`
}

// MessageResponse is a bare acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// TenantResponse is the tenant-resolution result for a hostname.
type TenantResponse struct {
	TenantID     string `json:"tenant_id"`
	TenantCode   string `json:"tenant_code"`
	TenantName   string `json:"tenant_name"`
	IsPrimary    bool   `json:"is_primary"`
	TenantStatus string `json:"tenant_status"`
	DomainStatus string `json:"domain_status"`
}

// CreateTenantResponse is the body returned after provisioning a tenant.
type CreateTenantResponse struct {
	TenantID      string `json:"tenant_id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	PrimaryDomain string `json:"primary_domain"`
}

// ProvisionUserResponse returns the new account and its temporary password.
// The password is shown exactly once; only its hash is stored.
type ProvisionUserResponse struct {
	UserID            string `json:"user_id"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	Role              string `json:"role"`
	Status            string `json:"status"`
	TemporaryPassword string `json:"temporary_password"`
}

// HealthChecks reports per-dependency health on the readiness probe.
type HealthChecks struct {
	Database string `json:"database"`
}

// HealthResponse is the body of the liveness and readiness probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
