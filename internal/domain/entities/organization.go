package entities

import (
	"time"

	"github.com/google/uuid"
)

// PlanTier represents the subscription tier of an organization
type PlanTier string

const (
	PlanTierFree       PlanTier = "free"
	PlanTierPro        PlanTier = "pro"
	PlanTierEnterprise PlanTier = "enterprise"
)

// Organization represents a tenant organization
type Organization struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name             string    `gorm:"type:varchar(255);not null" json:"name"`
	WebhookTargetURL *string   `gorm:"type:text" json:"webhook_target_url,omitempty"`
	PlanTier         PlanTier  `gorm:"type:varchar(20);not null;default:'free'" json:"plan_tier"`
	CreatedAt        time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt        time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for Organization
func (Organization) TableName() string {
	return "organizations"
}

// HasWebhookTarget reports whether the organization has a downstream
// automation endpoint configured.
func (o *Organization) HasWebhookTarget() bool {
	return o.WebhookTargetURL != nil && *o.WebhookTargetURL != ""
}
