package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
)

// ScenarioQuery expresses one exact-match scenario lookup. Nil fields must
// match NULL columns exactly; they are not wildcards.
type ScenarioQuery struct {
	OrganizationID uuid.UUID
	PipelineID     *string
	StageID        *string
	DealStatus     *string
}

// ScenarioRepository defines lookups over both scenario tables
type ScenarioRepository interface {
	// MatchPipedrive returns active Pipedrive scenarios exactly matching the
	// query tuple, ordered by ascending order_index.
	MatchPipedrive(ctx context.Context, q ScenarioQuery) ([]*entities.PipedriveScenario, error)
	// MatchLivespace is the Livespace counterpart; the query's PipelineID is
	// matched against the process_id column.
	MatchLivespace(ctx context.Context, q ScenarioQuery) ([]*entities.LivespaceScenario, error)
	ListPipedriveByOrganization(ctx context.Context, orgID uuid.UUID) ([]*entities.PipedriveScenario, error)
	ListLivespaceByOrganization(ctx context.Context, orgID uuid.UUID) ([]*entities.LivespaceScenario, error)
}
