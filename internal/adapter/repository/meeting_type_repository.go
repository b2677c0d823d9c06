package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/domain/repositories"
)

// meetingTypeRepository implements the MeetingTypeRepository interface
type meetingTypeRepository struct {
	db *gorm.DB
}

// NewMeetingTypeRepository creates a new meeting type repository
func NewMeetingTypeRepository(db *gorm.DB) repositories.MeetingTypeRepository {
	return &meetingTypeRepository{db: db}
}

func orderedChildren(db *gorm.DB) *gorm.DB {
	return db.Order("order_index ASC")
}

// FindByID retrieves a meeting type with ordered child lists
func (r *meetingTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.MeetingType, error) {
	var mt entities.MeetingType
	err := r.db.WithContext(ctx).
		Preload("Attributes", orderedChildren).
		Preload("Checkpoints", orderedChildren).
		Preload("Criteria", orderedChildren).
		Where("id = ?", id).
		First(&mt).Error

	if err != nil {
		return nil, err
	}
	return &mt, nil
}

// FindByOrganization retrieves the full meeting type catalog of an organization
func (r *meetingTypeRepository) FindByOrganization(ctx context.Context, orgID uuid.UUID) ([]*entities.MeetingType, error) {
	var types []*entities.MeetingType
	err := r.db.WithContext(ctx).
		Preload("Attributes", orderedChildren).
		Preload("Checkpoints", orderedChildren).
		Preload("Criteria", orderedChildren).
		Where("organization_id = ?", orgID).
		Order("created_at ASC").
		Find(&types).Error
	return types, err
}

// FindDefault retrieves the organization's default meeting type
func (r *meetingTypeRepository) FindDefault(ctx context.Context, orgID uuid.UUID) (*entities.MeetingType, error) {
	var mt entities.MeetingType
	err := r.db.WithContext(ctx).
		Preload("Attributes", orderedChildren).
		Preload("Checkpoints", orderedChildren).
		Preload("Criteria", orderedChildren).
		Where("organization_id = ? AND is_default = ?", orgID, true).
		First(&mt).Error

	if err != nil {
		return nil, err
	}
	return &mt, nil
}
