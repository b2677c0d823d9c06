package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/domain/repositories"
)

// scenarioRepository implements the ScenarioRepository interface
type scenarioRepository struct {
	db *gorm.DB
}

// NewScenarioRepository creates a new scenario repository
func NewScenarioRepository(db *gorm.DB) repositories.ScenarioRepository {
	return &scenarioRepository{db: db}
}

// nullableWhere adds an exact-match condition for a nullable column. A nil
// value matches NULL, not anything.
func nullableWhere(db *gorm.DB, column string, value *string) *gorm.DB {
	if value == nil {
		return db.Where(column + " IS NULL")
	}
	return db.Where(column+" = ?", *value)
}

// MatchPipedrive returns active Pipedrive scenarios exactly matching the tuple
func (r *scenarioRepository) MatchPipedrive(ctx context.Context, q repositories.ScenarioQuery) ([]*entities.PipedriveScenario, error) {
	var scenarios []*entities.PipedriveScenario

	query := r.db.WithContext(ctx).
		Preload("MeetingType").
		Where("organization_id = ? AND is_active = ?", q.OrganizationID, true)
	query = nullableWhere(query, "pipeline_id", q.PipelineID)
	query = nullableWhere(query, "stage_id", q.StageID)
	query = nullableWhere(query, "deal_status", q.DealStatus)

	err := query.Order("order_index ASC").Find(&scenarios).Error
	return scenarios, err
}

// MatchLivespace returns active Livespace scenarios exactly matching the tuple
func (r *scenarioRepository) MatchLivespace(ctx context.Context, q repositories.ScenarioQuery) ([]*entities.LivespaceScenario, error) {
	var scenarios []*entities.LivespaceScenario

	query := r.db.WithContext(ctx).
		Preload("MeetingType").
		Where("organization_id = ? AND is_active = ?", q.OrganizationID, true)
	query = nullableWhere(query, "process_id", q.PipelineID)
	query = nullableWhere(query, "stage_id", q.StageID)
	query = nullableWhere(query, "deal_status", q.DealStatus)

	err := query.Order("order_index ASC").Find(&scenarios).Error
	return scenarios, err
}

// ListPipedriveByOrganization retrieves all active Pipedrive scenarios of an organization
func (r *scenarioRepository) ListPipedriveByOrganization(ctx context.Context, orgID uuid.UUID) ([]*entities.PipedriveScenario, error) {
	var scenarios []*entities.PipedriveScenario
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND is_active = ?", orgID, true).
		Order("order_index ASC").
		Find(&scenarios).Error
	return scenarios, err
}

// ListLivespaceByOrganization retrieves all active Livespace scenarios of an organization
func (r *scenarioRepository) ListLivespaceByOrganization(ctx context.Context, orgID uuid.UUID) ([]*entities.LivespaceScenario, error) {
	var scenarios []*entities.LivespaceScenario
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND is_active = ?", orgID, true).
		Order("order_index ASC").
		Find(&scenarios).Error
	return scenarios, err
}
