package payload

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/domain/repositories"
)

type fakeMeetingRepo struct {
	meeting *entities.Meeting
	token   string
}

func (f *fakeMeetingRepo) Create(context.Context, *entities.Meeting) error { return nil }

func (f *fakeMeetingRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Meeting, error) {
	if f.meeting == nil || f.meeting.ID != id {
		return nil, errors.New("not found")
	}
	return f.meeting, nil
}

func (f *fakeMeetingRepo) UpdateStatus(context.Context, uuid.UUID, entities.ProcessingStatus) error {
	return nil
}

func (f *fakeMeetingRepo) SetCallbackToken(_ context.Context, _ uuid.UUID, token string) error {
	f.token = token
	return nil
}

func (f *fakeMeetingRepo) ApplyCallback(context.Context, uuid.UUID, string, repositories.CallbackApply) (int64, error) {
	return 0, nil
}

type fakeTypeRepo struct {
	types []*entities.MeetingType
}

func (f *fakeTypeRepo) FindByID(context.Context, uuid.UUID) (*entities.MeetingType, error) {
	return nil, errors.New("not found")
}

func (f *fakeTypeRepo) FindByOrganization(context.Context, uuid.UUID) ([]*entities.MeetingType, error) {
	return f.types, nil
}

func (f *fakeTypeRepo) FindDefault(context.Context, uuid.UUID) (*entities.MeetingType, error) {
	return nil, errors.New("no default")
}

type fakeScenarioRepo struct {
	pipedrive []*entities.PipedriveScenario
	livespace []*entities.LivespaceScenario
}

func (f *fakeScenarioRepo) MatchPipedrive(context.Context, repositories.ScenarioQuery) ([]*entities.PipedriveScenario, error) {
	return nil, nil
}

func (f *fakeScenarioRepo) MatchLivespace(context.Context, repositories.ScenarioQuery) ([]*entities.LivespaceScenario, error) {
	return nil, nil
}

func (f *fakeScenarioRepo) ListPipedriveByOrganization(context.Context, uuid.UUID) ([]*entities.PipedriveScenario, error) {
	return f.pipedrive, nil
}

func (f *fakeScenarioRepo) ListLivespaceByOrganization(context.Context, uuid.UUID) ([]*entities.LivespaceScenario, error) {
	return f.livespace, nil
}

type fakeIntegrationRepo struct {
	crm       *entities.CrmIntegration
	fireflies *entities.FirefliesIntegration
}

func (f *fakeIntegrationRepo) FindActiveCrm(context.Context, uuid.UUID) (*entities.CrmIntegration, error) {
	if f.crm == nil {
		return nil, errors.New("not found")
	}
	return f.crm, nil
}

func (f *fakeIntegrationRepo) FindCrmByID(context.Context, uuid.UUID) (*entities.CrmIntegration, error) {
	return nil, errors.New("not found")
}

func (f *fakeIntegrationRepo) UpsertCrmCredentials(context.Context, uuid.UUID, entities.CrmPlatform, repositories.CrmCredentialsInput) (*entities.CrmIntegration, error) {
	return nil, errors.New("unused")
}

func (f *fakeIntegrationRepo) FindGoogle(context.Context, uuid.UUID, uuid.UUID) (*entities.GoogleIntegration, error) {
	return nil, errors.New("not found")
}

func (f *fakeIntegrationRepo) UpdateGoogleToken(context.Context, uuid.UUID, string, time.Time) error {
	return nil
}

func (f *fakeIntegrationRepo) FindFireflies(context.Context, uuid.UUID) (*entities.FirefliesIntegration, error) {
	if f.fireflies == nil {
		return nil, errors.New("not found")
	}
	return f.fireflies, nil
}

func (f *fakeIntegrationRepo) FindTelnyx(context.Context, uuid.UUID) (*entities.TelnyxIntegration, error) {
	return nil, errors.New("not found")
}

type fakeUserRepo struct {
	user *entities.User
}

func (f *fakeUserRepo) FindByID(context.Context, uuid.UUID) (*entities.User, error) {
	if f.user == nil {
		return nil, errors.New("not found")
	}
	return f.user, nil
}

func (f *fakeUserRepo) FindByEmail(context.Context, string) (*entities.User, error) {
	return nil, errors.New("not found")
}

// selectiveCipher fails decryption for marked ciphertexts
type selectiveCipher struct {
	failFor string
}

func (c selectiveCipher) Decrypt(_ context.Context, ciphertext string) (string, error) {
	if c.failFor != "" && ciphertext == c.failFor {
		return "", errors.New("corrupt ciphertext")
	}
	return "plain:" + ciphertext, nil
}

type fakeGoogleTokens struct{}

func (fakeGoogleTokens) AccessToken(context.Context, *entities.GoogleIntegration) (string, error) {
	return "", errors.New("no google")
}

func newAssembler(meetings *fakeMeetingRepo, integrations *fakeIntegrationRepo, users *fakeUserRepo, cipher SecretCipher, types *fakeTypeRepo, scenarios *fakeScenarioRepo) Service {
	return NewService(
		meetings, types, scenarios, integrations, users,
		cipher, fakeGoogleTokens{},
		"https://api.example.com/", zap.NewNop(),
	)
}

func baseMeeting() *entities.Meeting {
	userID := uuid.New()
	return &entities.Meeting{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		UserID:         &userID,
		Organization: &entities.Organization{
			ID:       uuid.New(),
			Name:     "Acme",
			PlanTier: entities.PlanTierPro,
		},
		ProcessingStatus: entities.ProcessingStatusPending,
	}
}

func TestAssemble_MintsCallbackToken(t *testing.T) {
	meeting := baseMeeting()
	meetings := &fakeMeetingRepo{meeting: meeting}
	svc := newAssembler(meetings, &fakeIntegrationRepo{}, &fakeUserRepo{}, selectiveCipher{}, &fakeTypeRepo{}, &fakeScenarioRepo{})

	doc, err := svc.Assemble(context.Background(), meeting.ID)
	require.NoError(t, err)

	assert.NotEmpty(t, doc.CallbackToken)
	assert.Equal(t, meetings.token, doc.CallbackToken)
	assert.Equal(t, "https://api.example.com/webhooks/n8n/callback", doc.CallbackURL)

	// two different assemblies never mint the same token
	doc2, err := svc.Assemble(context.Background(), meeting.ID)
	require.NoError(t, err)
	assert.NotEqual(t, doc.CallbackToken, doc2.CallbackToken)
}

func TestAssemble_MissingUserTolerated(t *testing.T) {
	meeting := baseMeeting()
	meetings := &fakeMeetingRepo{meeting: meeting}
	svc := newAssembler(meetings, &fakeIntegrationRepo{}, &fakeUserRepo{}, selectiveCipher{}, &fakeTypeRepo{}, &fakeScenarioRepo{})

	doc, err := svc.Assemble(context.Background(), meeting.ID)
	require.NoError(t, err)
	assert.Nil(t, doc.User)
}

func TestAssemble_SignatureEscaped(t *testing.T) {
	meeting := baseMeeting()
	signature := `<b onclick="x()">Best, Jo</b>`
	users := &fakeUserRepo{user: &entities.User{
		ID:             *meeting.UserID,
		Email:          "jo@acme.test",
		FullName:       "Jo Smith",
		EmailSignature: &signature,
	}}
	meetings := &fakeMeetingRepo{meeting: meeting}
	svc := newAssembler(meetings, &fakeIntegrationRepo{}, users, selectiveCipher{}, &fakeTypeRepo{}, &fakeScenarioRepo{})

	doc, err := svc.Assemble(context.Background(), meeting.ID)
	require.NoError(t, err)
	require.NotNil(t, doc.User)
	assert.NotContains(t, doc.User.EmailSignature, "<b")
	assert.Contains(t, doc.User.EmailSignature, "&lt;b")
}

func TestAssemble_FailedIntegrationSectionOmitted(t *testing.T) {
	meeting := baseMeeting()
	meetings := &fakeMeetingRepo{meeting: meeting}
	integrations := &fakeIntegrationRepo{
		fireflies: &entities.FirefliesIntegration{EncryptedAPIKey: "broken-key"},
	}
	cipher := selectiveCipher{failFor: "broken-key"}
	svc := newAssembler(meetings, integrations, &fakeUserRepo{}, cipher, &fakeTypeRepo{}, &fakeScenarioRepo{})

	doc, err := svc.Assemble(context.Background(), meeting.ID)
	require.NoError(t, err)
	assert.Nil(t, doc.Integrations.Fireflies)
	assert.Nil(t, doc.Integrations.Crm)
}

func TestAssemble_ScenariosFoldedIntoTypes(t *testing.T) {
	meeting := baseMeeting()
	typeA := uuid.New()
	typeB := uuid.New()
	pid := "12"

	types := &fakeTypeRepo{types: []*entities.MeetingType{
		{ID: typeA, Name: "Demo"},
		{ID: typeB, Name: "Review"},
	}}
	scenarios := &fakeScenarioRepo{
		pipedrive: []*entities.PipedriveScenario{
			{MeetingTypeID: typeA, PipelineID: &pid, OrderIndex: 0},
		},
		livespace: []*entities.LivespaceScenario{
			{MeetingTypeID: typeB, ProcessID: &pid, OrderIndex: 2},
		},
	}
	meetings := &fakeMeetingRepo{meeting: meeting}
	svc := newAssembler(meetings, &fakeIntegrationRepo{}, &fakeUserRepo{}, selectiveCipher{}, types, scenarios)

	doc, err := svc.Assemble(context.Background(), meeting.ID)
	require.NoError(t, err)
	require.Len(t, doc.MeetingTypes, 2)

	var demo, review *MeetingTypeView
	for i := range doc.MeetingTypes {
		switch doc.MeetingTypes[i].Name {
		case "Demo":
			demo = &doc.MeetingTypes[i]
		case "Review":
			review = &doc.MeetingTypes[i]
		}
	}
	require.NotNil(t, demo)
	require.NotNil(t, review)
	assert.Len(t, demo.Scenarios.Pipedrive, 1)
	assert.Empty(t, demo.Scenarios.Livespace)
	assert.Len(t, review.Scenarios.Livespace, 1)
	assert.Empty(t, review.Scenarios.Pipedrive)
}

func TestAssemble_PreMatchedTypeHighlighted(t *testing.T) {
	meeting := baseMeeting()
	typeID := uuid.New()
	meeting.MeetingTypeID = &typeID

	types := &fakeTypeRepo{types: []*entities.MeetingType{{ID: typeID, Name: "Demo"}}}
	meetings := &fakeMeetingRepo{meeting: meeting}
	svc := newAssembler(meetings, &fakeIntegrationRepo{}, &fakeUserRepo{}, selectiveCipher{}, types, &fakeScenarioRepo{})

	doc, err := svc.Assemble(context.Background(), meeting.ID)
	require.NoError(t, err)
	require.NotNil(t, doc.MeetingType)
	assert.Equal(t, "Demo", doc.MeetingType.Name)
}

func TestMintCallbackToken_Format(t *testing.T) {
	s := &service{now: time.Now}
	token := s.mintCallbackToken()
	require.True(t, strings.Contains(token, "-"))
	parts := strings.SplitN(token, "-", 2)
	assert.Len(t, parts[0], 32)
	assert.NotEmpty(t, parts[1])
}
