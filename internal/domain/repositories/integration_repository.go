package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
)

// CrmCredentialsInput carries already-encrypted credential material for
// storage. Encryption happens in the keystore before this struct is built.
type CrmCredentialsInput struct {
	EncryptedAPIKey    string
	EncryptedAPISecret *string
	Domain             *string
	AuthMode           entities.LivespaceAuthMode
}

// IntegrationRepository defines persistence operations for all integration
// records (CRM, Google, Fireflies, Telnyx).
type IntegrationRepository interface {
	// FindActiveCrm returns the single active CRM integration of an
	// organization, credentials preloaded.
	FindActiveCrm(ctx context.Context, orgID uuid.UUID) (*entities.CrmIntegration, error)
	FindCrmByID(ctx context.Context, id uuid.UUID) (*entities.CrmIntegration, error)
	// UpsertCrmCredentials stores or replaces credentials for (org, platform)
	// and marks the integration active.
	UpsertCrmCredentials(ctx context.Context, orgID uuid.UUID, platform entities.CrmPlatform, in CrmCredentialsInput) (*entities.CrmIntegration, error)

	FindGoogle(ctx context.Context, userID, orgID uuid.UUID) (*entities.GoogleIntegration, error)
	UpdateGoogleToken(ctx context.Context, id uuid.UUID, encryptedAccessToken string, expiresAt time.Time) error

	FindFireflies(ctx context.Context, orgID uuid.UUID) (*entities.FirefliesIntegration, error)
	FindTelnyx(ctx context.Context, orgID uuid.UUID) (*entities.TelnyxIntegration, error)
}
