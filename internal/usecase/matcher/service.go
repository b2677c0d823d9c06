package matcher

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/meetsync-team/meetsync/errors"
	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/domain/repositories"
)

// Result is the outcome of a meeting-type match. A null meeting type with
// Matched=false is a valid terminal outcome, not a failure.
type Result struct {
	Matched     bool                  `json:"matched"`
	MeetingType *entities.MeetingType `json:"meeting_type,omitempty"`
	// Source records what produced the match: "scenario", "default" or "none".
	Source string `json:"source"`
}

// Service resolves an inbound deal context to a configured meeting type
type Service interface {
	Match(ctx context.Context, orgID uuid.UUID, deal entities.DealContext) (*Result, error)
}

type service struct {
	scenarios    repositories.ScenarioRepository
	meetingTypes repositories.MeetingTypeRepository
	logger       *zap.Logger
}

// NewService creates a matcher service
func NewService(scenarios repositories.ScenarioRepository, meetingTypes repositories.MeetingTypeRepository, logger *zap.Logger) Service {
	return &service{
		scenarios:    scenarios,
		meetingTypes: meetingTypes,
		logger:       logger,
	}
}

// Match tries four scenario queries in strict specificity order, then falls
// back to the organization's default meeting type. Omitted fields are matched
// against NULL exactly; a scenario with stage_id = NULL only matches when no
// stage is given.
func (s *service) Match(ctx context.Context, orgID uuid.UUID, deal entities.DealContext) (*Result, error) {
	if deal.PipelineID != nil {
		queries := []repositories.ScenarioQuery{
			{OrganizationID: orgID, PipelineID: deal.PipelineID, StageID: deal.StageID, DealStatus: deal.DealStatus},
			{OrganizationID: orgID, PipelineID: deal.PipelineID, StageID: deal.StageID},
			{OrganizationID: orgID, PipelineID: deal.PipelineID, DealStatus: deal.DealStatus},
			{OrganizationID: orgID, PipelineID: deal.PipelineID},
		}

		for _, q := range queries {
			mt, err := s.matchOne(ctx, q)
			if err != nil {
				return nil, err
			}
			if mt != nil {
				return &Result{Matched: true, MeetingType: mt, Source: "scenario"}, nil
			}
		}
	}

	def, err := s.meetingTypes.FindDefault(ctx, orgID)
	if err == nil {
		return &Result{Matched: true, MeetingType: def, Source: "default"}, nil
	}
	// only a missing row means "no default configured"
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrDBQueryFailed(err)
	}

	s.logger.Info("no meeting type matched",
		zap.String("organization_id", orgID.String()))

	return &Result{Matched: false, Source: "none"}, nil
}

// matchOne runs one exact query against both scenario tables, Pipedrive
// first. Rows arrive ordered by order_index; the first wins.
func (s *service) matchOne(ctx context.Context, q repositories.ScenarioQuery) (*entities.MeetingType, error) {
	pd, err := s.scenarios.MatchPipedrive(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(pd) > 0 {
		return s.resolveType(ctx, pd[0].MeetingTypeID, pd[0].MeetingType)
	}

	ls, err := s.scenarios.MatchLivespace(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(ls) > 0 {
		return s.resolveType(ctx, ls[0].MeetingTypeID, ls[0].MeetingType)
	}

	return nil, nil
}

// resolveType loads the full meeting type when the scenario preload came back
// without child lists.
func (s *service) resolveType(ctx context.Context, id uuid.UUID, preloaded *entities.MeetingType) (*entities.MeetingType, error) {
	if preloaded != nil && len(preloaded.Attributes) > 0 {
		return preloaded, nil
	}
	mt, err := s.meetingTypes.FindByID(ctx, id)
	if err != nil {
		if preloaded != nil {
			return preloaded, nil
		}
		return nil, err
	}
	return mt, nil
}
