package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
)

// MeetingTypeRepository defines persistence operations for meeting types
type MeetingTypeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entities.MeetingType, error)
	// FindByOrganization returns all meeting types of an organization with
	// attribute, checkpoint and criterion lists preloaded in order_index order.
	FindByOrganization(ctx context.Context, orgID uuid.UUID) ([]*entities.MeetingType, error)
	// FindDefault returns the organization's type flagged is_default, or
	// gorm.ErrRecordNotFound when none exists.
	FindDefault(ctx context.Context, orgID uuid.UUID) (*entities.MeetingType, error)
}
