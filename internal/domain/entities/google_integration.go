package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GoogleIntegration stores one user's Google Workspace connection inside an
// organization: encrypted token pair, expiry, and per-service enablement.
type GoogleIntegration struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index:idx_google_user_org,unique" json:"user_id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index:idx_google_user_org,unique" json:"organization_id"`
	// Token pair is ciphertext produced by the database-side encrypt_api_key function.
	EncryptedAccessToken  string     `gorm:"type:text;not null" json:"-"`
	EncryptedRefreshToken string     `gorm:"type:text;not null" json:"-"`
	TokenExpiresAt        *time.Time `json:"token_expires_at,omitempty"`
	GmailEnabled          bool       `gorm:"default:false" json:"gmail_enabled"`
	CalendarEnabled       bool       `gorm:"default:false" json:"calendar_enabled"`
	DriveEnabled          bool       `gorm:"default:false" json:"drive_enabled"`
	GrantedScopes         datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"granted_scopes"`
	CreatedAt             time.Time  `gorm:"default:now()" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GoogleIntegration
func (GoogleIntegration) TableName() string {
	return "google_integrations"
}

// NeedsRefresh reports whether the access token should be refreshed before
// use. Missing expiry counts as expired.
func (g *GoogleIntegration) NeedsRefresh(now time.Time, window time.Duration) bool {
	if g.TokenExpiresAt == nil {
		return true
	}
	return g.TokenExpiresAt.Before(now.Add(window))
}
