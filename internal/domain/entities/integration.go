package entities

import (
	"time"

	"github.com/google/uuid"
)

// CrmPlatform identifies a supported CRM provider
type CrmPlatform string

const (
	CrmPlatformPipedrive CrmPlatform = "pipedrive"
	CrmPlatformLivespace CrmPlatform = "livespace"
)

// LivespaceAuthMode selects which Livespace protocol variant the stored
// integration speaks. Both exist in the wild.
type LivespaceAuthMode string

const (
	LivespaceAuthModeLegacy  LivespaceAuthMode = "legacy"
	LivespaceAuthModeSession LivespaceAuthMode = "session"
)

// CrmIntegration represents one organization's connection to a CRM platform.
// One active integration per (organization, platform).
type CrmIntegration struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrganizationID uuid.UUID       `gorm:"type:uuid;not null;index" json:"organization_id"`
	Organization   *Organization   `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Platform       CrmPlatform     `gorm:"type:varchar(20);not null;index" json:"platform"`
	IsActive       bool            `gorm:"default:true;index" json:"is_active"`
	Credentials    *CrmCredentials `gorm:"foreignKey:CrmIntegrationID" json:"-"`
	CreatedAt      time.Time       `gorm:"default:now()" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for CrmIntegration
func (CrmIntegration) TableName() string {
	return "crm_integrations"
}

// CrmCredentials holds encrypted credentials for a CRM integration.
// Ciphertext at rest; plaintext only transiently in request scope.
type CrmCredentials struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CrmIntegrationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"crm_integration_id"`
	// EncryptedAPIKey is ciphertext produced by the database-side encrypt_api_key function.
	EncryptedAPIKey string `gorm:"type:text;not null" json:"-"`
	// EncryptedAPISecret is set for Livespace only.
	EncryptedAPISecret *string `gorm:"type:text" json:"-"`
	// Domain is the Livespace instance base domain, e.g. "acme.livespace.io".
	Domain   *string           `gorm:"type:varchar(255)" json:"domain,omitempty"`
	AuthMode LivespaceAuthMode `gorm:"type:varchar(20);default:'session'" json:"auth_mode"`
	CreatedAt time.Time        `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time        `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for CrmCredentials
func (CrmCredentials) TableName() string {
	return "crm_credentials"
}

// FirefliesIntegration holds an organization's Fireflies transcription API key
type FirefliesIntegration struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrganizationID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"organization_id"`
	EncryptedAPIKey string    `gorm:"type:text;not null" json:"-"`
	IsActive        bool      `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt       time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for FirefliesIntegration
func (FirefliesIntegration) TableName() string {
	return "fireflies_integrations"
}

// TelnyxIntegration holds an organization's Telnyx telephony API key
type TelnyxIntegration struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrganizationID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"organization_id"`
	EncryptedAPIKey string    `gorm:"type:text;not null" json:"-"`
	IsActive        bool      `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt       time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for TelnyxIntegration
func (TelnyxIntegration) TableName() string {
	return "telnyx_integrations"
}
