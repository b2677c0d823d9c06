package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/domain/repositories"
)

// integrationRepository implements the IntegrationRepository interface
type integrationRepository struct {
	db *gorm.DB
}

// NewIntegrationRepository creates a new integration repository
func NewIntegrationRepository(db *gorm.DB) repositories.IntegrationRepository {
	return &integrationRepository{db: db}
}

// FindActiveCrm retrieves the single active CRM integration of an organization
func (r *integrationRepository) FindActiveCrm(ctx context.Context, orgID uuid.UUID) (*entities.CrmIntegration, error) {
	var integration entities.CrmIntegration
	err := r.db.WithContext(ctx).
		Preload("Credentials").
		Preload("Organization").
		Where("organization_id = ? AND is_active = ?", orgID, true).
		First(&integration).Error

	if err != nil {
		return nil, err
	}
	return &integration, nil
}

// FindCrmByID retrieves a CRM integration by id with credentials
func (r *integrationRepository) FindCrmByID(ctx context.Context, id uuid.UUID) (*entities.CrmIntegration, error) {
	var integration entities.CrmIntegration
	err := r.db.WithContext(ctx).
		Preload("Credentials").
		Preload("Organization").
		Where("id = ?", id).
		First(&integration).Error

	if err != nil {
		return nil, err
	}
	return &integration, nil
}

// UpsertCrmCredentials stores or replaces credentials for (org, platform) and
// marks the integration active.
func (r *integrationRepository) UpsertCrmCredentials(ctx context.Context, orgID uuid.UUID, platform entities.CrmPlatform, in repositories.CrmCredentialsInput) (*entities.CrmIntegration, error) {
	var integration entities.CrmIntegration

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("organization_id = ? AND platform = ?", orgID, platform).
			First(&integration).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			integration = entities.CrmIntegration{
				OrganizationID: orgID,
				Platform:       platform,
				IsActive:       true,
			}
			if err := tx.Create(&integration).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		} else {
			if err := tx.Model(&integration).Update("is_active", true).Error; err != nil {
				return err
			}
		}

		var creds entities.CrmCredentials
		err = tx.Where("crm_integration_id = ?", integration.ID).First(&creds).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			creds = entities.CrmCredentials{
				CrmIntegrationID:   integration.ID,
				EncryptedAPIKey:    in.EncryptedAPIKey,
				EncryptedAPISecret: in.EncryptedAPISecret,
				Domain:             in.Domain,
				AuthMode:           in.AuthMode,
			}
			return tx.Create(&creds).Error
		} else if err != nil {
			return err
		}

		return tx.Model(&creds).Updates(map[string]interface{}{
			"encrypted_api_key":    in.EncryptedAPIKey,
			"encrypted_api_secret": in.EncryptedAPISecret,
			"domain":               in.Domain,
			"auth_mode":            in.AuthMode,
			"updated_at":           time.Now().UTC(),
		}).Error
	})

	if err != nil {
		return nil, err
	}
	return r.FindCrmByID(ctx, integration.ID)
}

// FindGoogle retrieves the Google integration for a (user, organization) pair
func (r *integrationRepository) FindGoogle(ctx context.Context, userID, orgID uuid.UUID) (*entities.GoogleIntegration, error) {
	var integration entities.GoogleIntegration
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		First(&integration).Error

	if err != nil {
		return nil, err
	}
	return &integration, nil
}

// UpdateGoogleToken persists a refreshed encrypted access token and expiry
func (r *integrationRepository) UpdateGoogleToken(ctx context.Context, id uuid.UUID, encryptedAccessToken string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entities.GoogleIntegration{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"encrypted_access_token": encryptedAccessToken,
			"token_expires_at":       expiresAt,
			"updated_at":             time.Now().UTC(),
		}).
		Error
}

// FindFireflies retrieves the active Fireflies integration of an organization
func (r *integrationRepository) FindFireflies(ctx context.Context, orgID uuid.UUID) (*entities.FirefliesIntegration, error) {
	var integration entities.FirefliesIntegration
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND is_active = ?", orgID, true).
		First(&integration).Error

	if err != nil {
		return nil, err
	}
	return &integration, nil
}

// FindTelnyx retrieves the active Telnyx integration of an organization
func (r *integrationRepository) FindTelnyx(ctx context.Context, orgID uuid.UUID) (*entities.TelnyxIntegration, error) {
	var integration entities.TelnyxIntegration
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND is_active = ?", orgID, true).
		First(&integration).Error

	if err != nil {
		return nil, err
	}
	return &integration, nil
}
