package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/domain/repositories"
)

// webhookRepository implements the WebhookRepository interface
type webhookRepository struct {
	db *gorm.DB
}

// NewWebhookRepository creates a new webhook repository
func NewWebhookRepository(db *gorm.DB) repositories.WebhookRepository {
	return &webhookRepository{db: db}
}

// FindEndpointByToken resolves an active endpoint by its opaque path token
func (r *webhookRepository) FindEndpointByToken(ctx context.Context, token string) (*entities.WebhookEndpoint, error) {
	var endpoint entities.WebhookEndpoint
	err := r.db.WithContext(ctx).
		Preload("Organization").
		Preload("User").
		Where("token = ? AND is_active = ?", token, true).
		First(&endpoint).Error

	if err != nil {
		return nil, err
	}
	return &endpoint, nil
}

// CreateLog appends one audit row
func (r *webhookRepository) CreateLog(ctx context.Context, log *entities.WebhookLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}
