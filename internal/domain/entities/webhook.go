package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WebhookEndpointType scopes a webhook endpoint to a user, an organization,
// or the whole platform.
type WebhookEndpointType string

const (
	WebhookEndpointTypeUser         WebhookEndpointType = "user"
	WebhookEndpointTypeOrganization WebhookEndpointType = "organization"
	WebhookEndpointTypeGlobal       WebhookEndpointType = "global"
)

// WebhookSource identifies the provider that sent an inbound webhook
type WebhookSource string

const (
	WebhookSourceFireflies WebhookSource = "fireflies"
	WebhookSourceTelnyx    WebhookSource = "telnyx"
	WebhookSourceGeneric   WebhookSource = "generic"
)

// RelayTrigger records what initiated a relay attempt
type RelayTrigger string

const (
	RelayTriggerWebhook    RelayTrigger = "webhook"
	RelayTriggerAdminRetry RelayTrigger = "admin_retry"
)

// WebhookEndpoint is an inbound endpoint configuration addressed by an opaque
// path token.
type WebhookEndpoint struct {
	ID             uuid.UUID           `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Token          string              `gorm:"type:varchar(128);unique;not null" json:"-"`
	Type           WebhookEndpointType `gorm:"type:varchar(20);not null;index" json:"type"`
	OrganizationID *uuid.UUID          `gorm:"type:uuid;index" json:"organization_id,omitempty"`
	Organization   *Organization       `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	UserID         *uuid.UUID          `gorm:"type:uuid;index" json:"user_id,omitempty"`
	User           *User               `gorm:"foreignKey:UserID" json:"user,omitempty"`
	IsActive       bool                `gorm:"default:true;index" json:"is_active"`
	CreatedAt      time.Time           `gorm:"default:now()" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for WebhookEndpoint
func (WebhookEndpoint) TableName() string {
	return "webhook_endpoints"
}

// WebhookLog is one append-only audit row per relay attempt, success or
// failure, kept for operational replay.
type WebhookLog struct {
	ID                uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	WebhookEndpointID *uuid.UUID     `gorm:"type:uuid;index" json:"webhook_endpoint_id,omitempty"`
	MeetingID         *uuid.UUID     `gorm:"type:uuid;index" json:"meeting_id,omitempty"`
	Trigger           RelayTrigger   `gorm:"type:varchar(20);not null;default:'webhook'" json:"trigger"`
	Status            string         `gorm:"type:varchar(20);not null" json:"status"` // forwarded | failed | ignored
	HTTPCode          *int           `json:"http_code,omitempty"`
	DurationMs        int64          `json:"duration_ms"`
	ForwardedTo       *string        `gorm:"type:text" json:"forwarded_to,omitempty"`
	RequestBody       datatypes.JSON `gorm:"type:jsonb" json:"request_body,omitempty"`
	ResponseBody      *string        `gorm:"type:text" json:"response_body,omitempty"`
	ErrorMessage      *string        `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt         time.Time      `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for WebhookLog
func (WebhookLog) TableName() string {
	return "webhook_logs"
}
