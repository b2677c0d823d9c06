package matcher

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/meetsync-team/meetsync/errors"
	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/domain/repositories"
)

type fakeScenarioRepo struct {
	queries   []repositories.ScenarioQuery
	pipedrive map[int][]*entities.PipedriveScenario // keyed by query ordinal
	livespace map[int][]*entities.LivespaceScenario
	calls     int
}

func (f *fakeScenarioRepo) MatchPipedrive(_ context.Context, q repositories.ScenarioQuery) ([]*entities.PipedriveScenario, error) {
	f.queries = append(f.queries, q)
	rows := f.pipedrive[f.calls]
	return rows, nil
}

func (f *fakeScenarioRepo) MatchLivespace(_ context.Context, _ repositories.ScenarioQuery) ([]*entities.LivespaceScenario, error) {
	rows := f.livespace[f.calls]
	f.calls++
	return rows, nil
}

func (f *fakeScenarioRepo) ListPipedriveByOrganization(context.Context, uuid.UUID) ([]*entities.PipedriveScenario, error) {
	return nil, nil
}

func (f *fakeScenarioRepo) ListLivespaceByOrganization(context.Context, uuid.UUID) ([]*entities.LivespaceScenario, error) {
	return nil, nil
}

type fakeMeetingTypeRepo struct {
	byID       map[uuid.UUID]*entities.MeetingType
	defaultFor *entities.MeetingType
	defaultErr error
}

func (f *fakeMeetingTypeRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.MeetingType, error) {
	if mt, ok := f.byID[id]; ok {
		return mt, nil
	}
	return nil, assert.AnError
}

func (f *fakeMeetingTypeRepo) FindByOrganization(context.Context, uuid.UUID) ([]*entities.MeetingType, error) {
	return nil, nil
}

func (f *fakeMeetingTypeRepo) FindDefault(context.Context, uuid.UUID) (*entities.MeetingType, error) {
	if f.defaultErr != nil {
		return nil, f.defaultErr
	}
	if f.defaultFor == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.defaultFor, nil
}

func strp(s string) *string { return &s }

func TestMatch_SpecificityOrder(t *testing.T) {
	orgID := uuid.New()
	typeID := uuid.New()
	fullType := &entities.MeetingType{
		ID:   typeID,
		Name: "Demo Call",
		Attributes: []entities.MeetingTypeAttribute{
			{Key: "tone", Value: "formal"},
		},
	}

	scenarios := &fakeScenarioRepo{
		pipedrive: map[int][]*entities.PipedriveScenario{
			// third query (pipeline+status) matches
			2: {{MeetingTypeID: typeID, OrderIndex: 0}},
		},
		livespace: map[int][]*entities.LivespaceScenario{},
	}
	types := &fakeMeetingTypeRepo{byID: map[uuid.UUID]*entities.MeetingType{typeID: fullType}}

	svc := NewService(scenarios, types, zap.NewNop())

	result, err := svc.Match(context.Background(), orgID, entities.DealContext{
		PipelineID: strp("12"),
		StageID:    strp("3"),
		DealStatus: strp("open"),
	})
	require.NoError(t, err)
	require.True(t, result.Matched)
	assert.Equal(t, "scenario", result.Source)
	assert.Equal(t, typeID, result.MeetingType.ID)

	// queries stop once a match is found
	require.Len(t, scenarios.queries, 3)

	// first query: full triple
	assert.Equal(t, "12", *scenarios.queries[0].PipelineID)
	assert.Equal(t, "3", *scenarios.queries[0].StageID)
	assert.Equal(t, "open", *scenarios.queries[0].DealStatus)

	// second: pipeline+stage, status omitted so it must match NULL
	assert.Equal(t, "3", *scenarios.queries[1].StageID)
	assert.Nil(t, scenarios.queries[1].DealStatus)

	// third: pipeline+status, stage omitted
	assert.Nil(t, scenarios.queries[2].StageID)
	assert.Equal(t, "open", *scenarios.queries[2].DealStatus)
}

func TestMatch_DefaultFallback(t *testing.T) {
	orgID := uuid.New()
	defaultType := &entities.MeetingType{ID: uuid.New(), Name: "General", IsDefault: true}

	scenarios := &fakeScenarioRepo{
		pipedrive: map[int][]*entities.PipedriveScenario{},
		livespace: map[int][]*entities.LivespaceScenario{},
	}
	types := &fakeMeetingTypeRepo{defaultFor: defaultType}

	svc := NewService(scenarios, types, zap.NewNop())

	result, err := svc.Match(context.Background(), orgID, entities.DealContext{PipelineID: strp("99")})
	require.NoError(t, err)
	require.True(t, result.Matched)
	assert.Equal(t, "default", result.Source)
	assert.Equal(t, defaultType.ID, result.MeetingType.ID)

	// all four specificity levels were tried before the fallback
	assert.Len(t, scenarios.queries, 4)
}

func TestMatch_NoPipelineSkipsScenarios(t *testing.T) {
	orgID := uuid.New()
	defaultType := &entities.MeetingType{ID: uuid.New(), Name: "General", IsDefault: true}

	scenarios := &fakeScenarioRepo{
		pipedrive: map[int][]*entities.PipedriveScenario{},
		livespace: map[int][]*entities.LivespaceScenario{},
	}
	types := &fakeMeetingTypeRepo{defaultFor: defaultType}

	svc := NewService(scenarios, types, zap.NewNop())

	result, err := svc.Match(context.Background(), orgID, entities.DealContext{})
	require.NoError(t, err)
	require.True(t, result.Matched)
	assert.Equal(t, "default", result.Source)
	assert.Empty(t, scenarios.queries)
}

func TestMatch_NoneIsNotAnError(t *testing.T) {
	orgID := uuid.New()

	scenarios := &fakeScenarioRepo{
		pipedrive: map[int][]*entities.PipedriveScenario{},
		livespace: map[int][]*entities.LivespaceScenario{},
	}
	types := &fakeMeetingTypeRepo{}

	svc := NewService(scenarios, types, zap.NewNop())

	result, err := svc.Match(context.Background(), orgID, entities.DealContext{PipelineID: strp("7")})
	require.NoError(t, err)
	assert.False(t, result.Matched)
	assert.Equal(t, "none", result.Source)
	assert.Nil(t, result.MeetingType)
}

func TestMatch_DefaultLookupFailurePropagates(t *testing.T) {
	orgID := uuid.New()

	scenarios := &fakeScenarioRepo{
		pipedrive: map[int][]*entities.PipedriveScenario{},
		livespace: map[int][]*entities.LivespaceScenario{},
	}
	types := &fakeMeetingTypeRepo{defaultErr: assert.AnError}

	svc := NewService(scenarios, types, zap.NewNop())

	result, err := svc.Match(context.Background(), orgID, entities.DealContext{PipelineID: strp("7")})
	require.Error(t, err)
	assert.Nil(t, result)

	var appErr apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.ErrorIs(t, appErr.Raw, assert.AnError)
}

func TestMatch_LivespaceRowsConsidered(t *testing.T) {
	orgID := uuid.New()
	typeID := uuid.New()
	fullType := &entities.MeetingType{
		ID:         typeID,
		Name:       "Process Review",
		Attributes: []entities.MeetingTypeAttribute{{Key: "lang", Value: "pl"}},
	}

	scenarios := &fakeScenarioRepo{
		pipedrive: map[int][]*entities.PipedriveScenario{},
		livespace: map[int][]*entities.LivespaceScenario{
			0: {{MeetingTypeID: typeID, OrderIndex: 1}},
		},
	}
	types := &fakeMeetingTypeRepo{byID: map[uuid.UUID]*entities.MeetingType{typeID: fullType}}

	svc := NewService(scenarios, types, zap.NewNop())

	result, err := svc.Match(context.Background(), orgID, entities.DealContext{
		PipelineID: strp("proc-1"),
		StageID:    strp("s2"),
		DealStatus: strp("won"),
	})
	require.NoError(t, err)
	require.True(t, result.Matched)
	assert.Equal(t, "scenario", result.Source)
	assert.Equal(t, "Process Review", result.MeetingType.Name)
}
