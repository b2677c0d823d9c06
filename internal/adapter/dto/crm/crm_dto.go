package crm

// CallRequest proxies one operation to the organization's CRM
type CallRequest struct {
	OrganizationID string                 `json:"organization_id" validate:"required,uuid"`
	Operation      string                 `json:"operation" validate:"required"`
	Params         map[string]interface{} `json:"params"`
}

// CallResponse wraps the raw CRM result
type CallResponse struct {
	Result map[string]interface{} `json:"result"`
}

// TestConnectionRequest validates stored credentials against the live CRM
type TestConnectionRequest struct {
	OrganizationID string `json:"organization_id" validate:"required,uuid"`
}

// CredentialsRequest stores or replaces CRM credentials for an organization
type CredentialsRequest struct {
	OrganizationID string  `json:"organization_id" validate:"required,uuid"`
	Platform       string  `json:"platform" validate:"required,oneof=pipedrive livespace"`
	APIKey         string  `json:"api_key" validate:"required"`
	APISecret      *string `json:"api_secret,omitempty"`
	Domain         *string `json:"domain,omitempty"`
	AuthMode       string  `json:"auth_mode,omitempty" validate:"omitempty,oneof=legacy session"`
}

// CredentialsResponse confirms the stored integration
type CredentialsResponse struct {
	IntegrationID string `json:"integration_id"`
	Platform      string `json:"platform"`
	IsActive      bool   `json:"is_active"`
}
