package domain

import "time"

// TenantStatus is the lifecycle state of a tenant. Tenants are never hard
// deleted; they move between statuses.
type TenantStatus string

const (
	TenantActive    TenantStatus = "active"
	TenantInactive  TenantStatus = "inactive"
	TenantSuspended TenantStatus = "suspended"
)

// DomainStatus is the lifecycle state of a tenant domain binding.
type DomainStatus string

const (
	DomainActive   DomainStatus = "active"
	DomainInactive DomainStatus = "inactive"
)

// Tenant is an isolated customer organization. It owns domains and scopes
// its users' data. Exactly one of its domains is flagged primary.
type Tenant struct {
	ID        string
	Code      string // unique short code, e.g. "acme"
	Name      string
	Status    TenantStatus
	Settings  string // opaque JSON settings blob
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TenantDomain binds a DNS-like name to exactly one tenant. Domain strings
// are globally unique across all tenants.
type TenantDomain struct {
	ID        string
	TenantID  string
	Domain    string
	IsPrimary bool
	Status    DomainStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TenantInfo is the resolution result handed to unauthenticated callers
// looking up a hostname before login.
type TenantInfo struct {
	TenantID     string       `json:"tenant_id"`
	TenantCode   string       `json:"tenant_code"`
	TenantName   string       `json:"tenant_name"`
	IsPrimary    bool         `json:"is_primary"`
	TenantStatus TenantStatus `json:"tenant_status"`
	DomainStatus DomainStatus `json:"domain_status"`
}

// Subject is a teaching subject within a tenant. Every tenant has one
// reserved default subject; role derivation falls back to it so a tenant
// user always resolves to some role.
type Subject struct {
	ID        string
	TenantID  string
	Code      string
	Name      string
	IsDefault bool
	CreatedAt time.Time
}

// DefaultSubjectCode is the reserved code of each tenant's default subject.
const DefaultSubjectCode = "general"
