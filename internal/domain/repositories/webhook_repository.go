package repositories

import (
	"context"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
)

// WebhookRepository defines persistence for webhook endpoints and the audit log
type WebhookRepository interface {
	// FindEndpointByToken resolves an active endpoint by its opaque path
	// token, organization preloaded.
	FindEndpointByToken(ctx context.Context, token string) (*entities.WebhookEndpoint, error)
	// CreateLog appends one audit row. Never updates existing rows.
	CreateLog(ctx context.Context, log *entities.WebhookLog) error
}
