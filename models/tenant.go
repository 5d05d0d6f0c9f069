package models

import "time"

// Tenant is the isolation boundary of the daemon. Every sync job, tracked
// folder and tracked file belongs to exactly one tenant, and every call to
// the DAM is authenticated with the tenant's credentials.
//
// Identity (TenantID) is immutable; credentials and the base address may be
// rotated by the job-definition poller.
type Tenant struct {
	// TenantID is the remote-assigned identifier, also sent as a header on
	// every DAM request.
	TenantID string `json:"tenant_id"`

	// Domain is the human-readable tenant domain, used in logs only.
	Domain string `json:"domain"`

	// BaseURL is the root address of the tenant's DAM instance.
	BaseURL string `json:"base_url"`

	// APIKey authenticates this daemon against the tenant's DAM instance.
	// Never logged.
	APIKey string `json:"-"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the Tenant model.
func (t Tenant) TableName() string {
	return "tenants"
}
