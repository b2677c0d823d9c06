package payload

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/domain/repositories"
	"github.com/meetsync-team/meetsync/internal/infrastructure/external/google"
)

// SecretCipher decrypts stored integration secrets
type SecretCipher interface {
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}

// GoogleTokens resolves a usable access token, refreshing near-expiry tokens
type GoogleTokens interface {
	AccessToken(ctx context.Context, integration *entities.GoogleIntegration) (string, error)
}

// Service assembles the outbound automation document for a meeting
type Service interface {
	Assemble(ctx context.Context, meetingID uuid.UUID) (*Document, error)
}

type service struct {
	meetings     repositories.MeetingRepository
	meetingTypes repositories.MeetingTypeRepository
	scenarios    repositories.ScenarioRepository
	integrations repositories.IntegrationRepository
	users        repositories.UserRepository
	cipher       SecretCipher
	google       GoogleTokens
	callbackBase string
	logger       *zap.Logger
	now          func() time.Time
}

// NewService creates a payload assembler
func NewService(
	meetings repositories.MeetingRepository,
	meetingTypes repositories.MeetingTypeRepository,
	scenarios repositories.ScenarioRepository,
	integrations repositories.IntegrationRepository,
	users repositories.UserRepository,
	cipher SecretCipher,
	googleTokens GoogleTokens,
	callbackBase string,
	logger *zap.Logger,
) Service {
	return &service{
		meetings:     meetings,
		meetingTypes: meetingTypes,
		scenarios:    scenarios,
		integrations: integrations,
		users:        users,
		cipher:       cipher,
		google:       googleTokens,
		callbackBase: strings.TrimRight(callbackBase, "/"),
		logger:       logger,
		now:          time.Now,
	}
}

// Assemble builds the outbound document for a meeting. Each integration
// lookup is independently fallible: a failure omits that section and is
// logged, it never aborts the rest of the assembly.
func (s *service) Assemble(ctx context.Context, meetingID uuid.UUID) (*Document, error) {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load meeting %s: %w", meetingID, err)
	}
	if meeting.Organization == nil {
		return nil, fmt.Errorf("meeting %s has no organization", meetingID)
	}
	org := meeting.Organization

	doc := &Document{
		MeetingID:      meeting.ID,
		OrganizationID: org.ID,
		UserID:         meeting.UserID,
		Meeting: MeetingSection{
			Transcript:  meeting.Transcript,
			MeetingDate: meeting.MeetingDate,
			Duration:    meeting.Duration,
			Status:      string(meeting.ProcessingStatus),
		},
		Organization: OrganizationView{
			ID:       org.ID,
			Name:     org.Name,
			PlanTier: org.PlanTier,
		},
	}

	if len(meeting.WebhookMetadata) > 0 {
		doc.WebhookPayload = json.RawMessage(meeting.WebhookMetadata)
	}

	// User profile load is separate from the meeting join so a missing
	// profile cannot fail the whole assembly.
	if meeting.UserID != nil {
		user, err := s.users.FindByID(ctx, *meeting.UserID)
		if err != nil {
			s.logger.Warn("payload: user profile unavailable",
				zap.String("meeting_id", meeting.ID.String()),
				zap.Error(err))
		} else {
			doc.User = userView(user)
		}
	}

	catalog, err := s.buildCatalog(ctx, org.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load meeting type catalog: %w", err)
	}
	doc.MeetingTypes = catalog

	if meeting.MeetingTypeID != nil {
		for i := range catalog {
			if catalog[i].ID == *meeting.MeetingTypeID {
				doc.MeetingType = &catalog[i]
				break
			}
		}
	}

	token := s.mintCallbackToken()
	if err := s.meetings.SetCallbackToken(ctx, meeting.ID, token); err != nil {
		return nil, fmt.Errorf("failed to store callback token: %w", err)
	}
	doc.CallbackToken = token
	doc.CallbackURL = s.callbackBase + "/webhooks/n8n/callback"

	s.attachIntegrations(ctx, meeting, org.ID, doc)

	return doc, nil
}

// mintCallbackToken creates a fresh one-time token: random with a time suffix
func (s *service) mintCallbackToken() string {
	return fmt.Sprintf("%s-%d", strings.ReplaceAll(uuid.NewString(), "-", ""), s.now().UnixNano())
}

// buildCatalog loads all meeting types for the organization and folds every
// scenario into its owning type by meeting_type_id equality.
func (s *service) buildCatalog(ctx context.Context, orgID uuid.UUID) ([]MeetingTypeView, error) {
	types, err := s.meetingTypes.FindByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	pd, err := s.scenarios.ListPipedriveByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	ls, err := s.scenarios.ListLivespaceByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	views := make([]MeetingTypeView, 0, len(types))
	for _, mt := range types {
		view := MeetingTypeView{
			ID:          mt.ID,
			Name:        mt.Name,
			Description: mt.Description,
			IsDefault:   mt.IsDefault,
			Attributes:  make([]AttributeView, 0, len(mt.Attributes)),
			Checkpoints: make([]string, 0, len(mt.Checkpoints)),
			Criteria:    make([]string, 0, len(mt.Criteria)),
			Scenarios: ScenarioCollections{
				Pipedrive: []ScenarioView{},
				Livespace: []ScenarioView{},
			},
		}
		for _, attr := range mt.Attributes {
			view.Attributes = append(view.Attributes, AttributeView{Key: attr.Key, Value: attr.Value})
		}
		for _, cp := range mt.Checkpoints {
			view.Checkpoints = append(view.Checkpoints, cp.Text)
		}
		for _, cr := range mt.Criteria {
			view.Criteria = append(view.Criteria, cr.Text)
		}

		for _, sc := range pd {
			if sc.MeetingTypeID == mt.ID {
				view.Scenarios.Pipedrive = append(view.Scenarios.Pipedrive, ScenarioView{
					PipelineID: sc.PipelineID,
					StageID:    sc.StageID,
					DealStatus: sc.DealStatus,
					OrderIndex: sc.OrderIndex,
				})
			}
		}
		for _, sc := range ls {
			if sc.MeetingTypeID == mt.ID {
				view.Scenarios.Livespace = append(view.Scenarios.Livespace, ScenarioView{
					PipelineID: sc.ProcessID,
					StageID:    sc.StageID,
					DealStatus: sc.DealStatus,
					OrderIndex: sc.OrderIndex,
				})
			}
		}

		views = append(views, view)
	}
	return views, nil
}

// attachIntegrations decrypts and attaches each configured integration's
// credentials. Failures degrade to an omitted section.
func (s *service) attachIntegrations(ctx context.Context, meeting *entities.Meeting, orgID uuid.UUID, doc *Document) {
	if crm, err := s.integrations.FindActiveCrm(ctx, orgID); err == nil {
		if view, err := s.crmView(ctx, crm); err != nil {
			s.logger.Warn("payload: crm integration skipped",
				zap.String("meeting_id", meeting.ID.String()),
				zap.Error(err))
		} else {
			doc.Integrations.Crm = view
		}
	}

	if ff, err := s.integrations.FindFireflies(ctx, orgID); err == nil {
		if key, err := s.cipher.Decrypt(ctx, ff.EncryptedAPIKey); err != nil {
			s.logger.Warn("payload: fireflies integration skipped",
				zap.String("meeting_id", meeting.ID.String()),
				zap.Error(err))
		} else {
			doc.Integrations.Fireflies = &APIKeyIntegrationView{APIKey: key}
		}
	}

	if tx, err := s.integrations.FindTelnyx(ctx, orgID); err == nil {
		if key, err := s.cipher.Decrypt(ctx, tx.EncryptedAPIKey); err != nil {
			s.logger.Warn("payload: telnyx integration skipped",
				zap.String("meeting_id", meeting.ID.String()),
				zap.Error(err))
		} else {
			doc.Integrations.Telnyx = &APIKeyIntegrationView{APIKey: key}
		}
	}

	if meeting.UserID != nil {
		if gi, err := s.integrations.FindGoogle(ctx, *meeting.UserID, orgID); err == nil {
			// Near-expiry tokens are refreshed and persisted before they are
			// attached (see google.RefreshWindow).
			if accessToken, err := s.google.AccessToken(ctx, gi); err != nil {
				s.logger.Warn("payload: google integration skipped",
					zap.String("meeting_id", meeting.ID.String()),
					zap.Error(err))
			} else {
				doc.Integrations.Google = googleView(gi, accessToken)
			}
		}
	}
}

func (s *service) crmView(ctx context.Context, integration *entities.CrmIntegration) (*CrmIntegrationView, error) {
	if integration.Credentials == nil {
		return nil, fmt.Errorf("crm integration %s has no credentials", integration.ID)
	}
	creds := integration.Credentials

	apiKey, err := s.cipher.Decrypt(ctx, creds.EncryptedAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt api key: %w", err)
	}

	view := &CrmIntegrationView{
		Platform: integration.Platform,
		APIKey:   apiKey,
		AuthMode: string(creds.AuthMode),
	}
	if creds.Domain != nil {
		view.Domain = *creds.Domain
	}
	if creds.EncryptedAPISecret != nil {
		secret, err := s.cipher.Decrypt(ctx, *creds.EncryptedAPISecret)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt api secret: %w", err)
		}
		view.APISecret = secret
	}
	return view, nil
}

func userView(user *entities.User) *UserView {
	view := &UserView{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
	}
	if user.EmailSignature != nil {
		view.EmailSignature = html.EscapeString(*user.EmailSignature)
	}
	return view
}

func googleView(gi *entities.GoogleIntegration, accessToken string) *GoogleIntegrationView {
	view := &GoogleIntegrationView{
		AccessToken:     accessToken,
		GmailEnabled:    gi.GmailEnabled,
		CalendarEnabled: gi.CalendarEnabled,
		DriveEnabled:    gi.DriveEnabled,
		GrantedScopes:   []string{},
	}
	var scopes []string
	if len(gi.GrantedScopes) > 0 {
		if err := json.Unmarshal(gi.GrantedScopes, &scopes); err == nil {
			view.GrantedScopes = scopes
		}
	}
	return view
}

var _ GoogleTokens = (*google.TokenManager)(nil)
