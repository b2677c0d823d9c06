package payload

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
)

// Document is the single outbound JSON document forwarded to the downstream
// automation system.
type Document struct {
	MeetingID      uuid.UUID  `json:"meeting_id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`

	CallbackURL   string `json:"callback_url"`
	CallbackToken string `json:"callback_token"`

	Meeting MeetingSection `json:"meeting"`

	// MeetingType is the pre-matched type attached to this meeting, if any.
	MeetingType *MeetingTypeView `json:"meeting_type,omitempty"`
	// MeetingTypes is the organization's full catalog with folded scenarios.
	// The automation system re-matches against live deal data it receives
	// later, so it needs everything, not just the pre-matched type.
	MeetingTypes []MeetingTypeView `json:"meeting_types"`

	// WebhookPayload is the raw inbound provider payload, passed through
	// opaque. Provider-specific shapes are interpreted downstream.
	WebhookPayload json.RawMessage `json:"webhook_payload,omitempty"`

	Integrations IntegrationsSection `json:"integrations"`

	User         *UserView        `json:"user,omitempty"`
	Organization OrganizationView `json:"organization"`
}

// MeetingSection carries the meeting's own fields
type MeetingSection struct {
	Transcript  *string    `json:"transcript,omitempty"`
	MeetingDate *time.Time `json:"meeting_date,omitempty"`
	Duration    *int       `json:"duration,omitempty"`
	Status      string     `json:"status"`
}

// MeetingTypeView is a meeting type with its ordered lists and folded scenarios
type MeetingTypeView struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Description *string             `json:"description,omitempty"`
	IsDefault   bool                `json:"is_default"`
	Attributes  []AttributeView     `json:"attributes"`
	Checkpoints []string            `json:"checkpoints"`
	Criteria    []string            `json:"criteria"`
	Scenarios   ScenarioCollections `json:"scenarios"`
}

// AttributeView is one key/value attribute
type AttributeView struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ScenarioCollections groups scenarios by CRM platform
type ScenarioCollections struct {
	Pipedrive []ScenarioView `json:"pipedrive"`
	Livespace []ScenarioView `json:"livespace"`
}

// ScenarioView is a configured scenario rule
type ScenarioView struct {
	PipelineID *string `json:"pipeline_id,omitempty"`
	StageID    *string `json:"stage_id,omitempty"`
	DealStatus *string `json:"deal_status,omitempty"`
	OrderIndex int     `json:"order_index"`
}

// IntegrationsSection carries decrypted credentials for each configured
// integration. Sections are omitted when lookup or decryption failed.
type IntegrationsSection struct {
	Crm       *CrmIntegrationView    `json:"crm,omitempty"`
	Fireflies *APIKeyIntegrationView `json:"fireflies,omitempty"`
	Telnyx    *APIKeyIntegrationView `json:"telnyx,omitempty"`
	Google    *GoogleIntegrationView `json:"google,omitempty"`
}

// CrmIntegrationView carries decrypted CRM credentials
type CrmIntegrationView struct {
	Platform  entities.CrmPlatform `json:"platform"`
	APIKey    string               `json:"api_key"`
	APISecret string               `json:"api_secret,omitempty"`
	Domain    string               `json:"domain,omitempty"`
	AuthMode  string               `json:"auth_mode,omitempty"`
}

// APIKeyIntegrationView carries a single decrypted API key
type APIKeyIntegrationView struct {
	APIKey string `json:"api_key"`
}

// GoogleIntegrationView carries a usable Google access token and enablement flags
type GoogleIntegrationView struct {
	AccessToken     string   `json:"access_token"`
	GmailEnabled    bool     `json:"gmail_enabled"`
	CalendarEnabled bool     `json:"calendar_enabled"`
	DriveEnabled    bool     `json:"drive_enabled"`
	GrantedScopes   []string `json:"granted_scopes"`
}

// UserView is the requesting user's identity
type UserView struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	// EmailSignature is HTML-escaped before it enters the document.
	EmailSignature string `json:"email_signature,omitempty"`
}

// OrganizationView is the owning organization's context
type OrganizationView struct {
	ID       uuid.UUID         `json:"id"`
	Name     string            `json:"name"`
	PlanTier entities.PlanTier `json:"plan_tier"`
}
