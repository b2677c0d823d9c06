package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
)

// UserRepository defines persistence operations for users
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
}

// OrganizationRepository defines persistence operations for organizations
type OrganizationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Organization, error)
}
