package crmsync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/meetsync-team/meetsync/errors"
	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/domain/repositories"
	"github.com/meetsync-team/meetsync/internal/infrastructure/external/crm"
)

// syncTimeout bounds background post-completion sync calls
const syncTimeout = 2 * time.Minute

// SecretCipher encrypts and decrypts integration secrets
type SecretCipher interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}

// CredentialsRequest carries plaintext credentials submitted for storage
type CredentialsRequest struct {
	Platform  entities.CrmPlatform
	APIKey    string
	APISecret *string
	Domain    *string
	AuthMode  entities.LivespaceAuthMode
}

// Service is the CRM access facade. Every entry point authorizes the caller
// against the target organization before touching credentials.
type Service interface {
	Call(ctx context.Context, caller *entities.User, orgID uuid.UUID, operation string, params map[string]interface{}) (map[string]interface{}, error)
	TestConnection(ctx context.Context, caller *entities.User, orgID uuid.UUID) error
	StoreCredentials(ctx context.Context, caller *entities.User, orgID uuid.UUID, req CredentialsRequest) (*entities.CrmIntegration, error)
	TriggerSync(meeting *entities.Meeting)
}

type service struct {
	integrations     repositories.IntegrationRepository
	cipher           SecretCipher
	pipedriveBaseURL string
	logger           *zap.Logger
}

// NewService creates the CRM facade
func NewService(
	integrations repositories.IntegrationRepository,
	cipher SecretCipher,
	pipedriveBaseURL string,
	logger *zap.Logger,
) Service {
	return &service{
		integrations:     integrations,
		cipher:           cipher,
		pipedriveBaseURL: pipedriveBaseURL,
		logger:           logger,
	}
}

// authorize fails closed: callers without owner or admin role on the target
// organization are rejected, super admins always pass.
func (s *service) authorize(caller *entities.User, orgID uuid.UUID) error {
	if caller == nil {
		return apperrors.ErrForbidden("authentication required")
	}
	if !caller.CanManageOrganization(orgID) {
		return apperrors.ErrForbidden("caller may not manage this organization's CRM")
	}
	return nil
}

func (s *service) Call(ctx context.Context, caller *entities.User, orgID uuid.UUID, operation string, params map[string]interface{}) (map[string]interface{}, error) {
	if err := s.authorize(caller, orgID); err != nil {
		return nil, err
	}
	client, platform, err := s.clientFor(ctx, orgID)
	if err != nil {
		return nil, err
	}
	result, err := client.Call(ctx, operation, params)
	if err != nil {
		return nil, apperrors.ErrCrmCallFailed(platform, err)
	}
	return result, nil
}

func (s *service) TestConnection(ctx context.Context, caller *entities.User, orgID uuid.UUID) error {
	if err := s.authorize(caller, orgID); err != nil {
		return err
	}
	client, platform, err := s.clientFor(ctx, orgID)
	if err != nil {
		return err
	}
	if err := client.TestConnection(ctx); err != nil {
		return apperrors.ErrCrmCallFailed(platform, err)
	}
	return nil
}

func (s *service) StoreCredentials(ctx context.Context, caller *entities.User, orgID uuid.UUID, req CredentialsRequest) (*entities.CrmIntegration, error) {
	if err := s.authorize(caller, orgID); err != nil {
		return nil, err
	}
	if req.Platform == entities.CrmPlatformLivespace {
		if req.Domain == nil || *req.Domain == "" || req.APISecret == nil || *req.APISecret == "" {
			return nil, apperrors.ErrConfigurationIncomplete("livespace requires domain, api key and api secret")
		}
	}

	encryptedKey, err := s.cipher.Encrypt(ctx, req.APIKey)
	if err != nil {
		return nil, apperrors.ErrKeystoreFailed("encrypt", err)
	}
	input := repositories.CrmCredentialsInput{
		EncryptedAPIKey: encryptedKey,
		Domain:          req.Domain,
		AuthMode:        req.AuthMode,
	}
	if req.APISecret != nil && *req.APISecret != "" {
		encryptedSecret, err := s.cipher.Encrypt(ctx, *req.APISecret)
		if err != nil {
			return nil, apperrors.ErrKeystoreFailed("encrypt", err)
		}
		input.EncryptedAPISecret = &encryptedSecret
	}

	integration, err := s.integrations.UpsertCrmCredentials(ctx, orgID, req.Platform, input)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}
	return integration, nil
}

// TriggerSync kicks off a background sync of a completed meeting towards the
// organization's CRM. Failures are logged, never surfaced to the caller: the
// analysis result is already stored and must not be affected.
func (s *service) TriggerSync(meeting *entities.Meeting) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		client, _, err := s.clientFor(ctx, meeting.OrganizationID)
		if err != nil {
			s.logger.Warn("crm sync skipped",
				zap.String("meeting_id", meeting.ID.String()),
				zap.String("organization_id", meeting.OrganizationID.String()),
				zap.Error(err))
			return
		}

		params := map[string]interface{}{
			"meeting_id": meeting.ID.String(),
		}
		if meeting.OverallScore != nil {
			params["overall_score"] = *meeting.OverallScore
		}
		if len(meeting.AnalysisData) > 0 {
			params["analysis"] = string(meeting.AnalysisData)
		}

		if _, err := client.Call(ctx, "activities", params); err != nil {
			s.logger.Error("crm sync failed",
				zap.String("meeting_id", meeting.ID.String()),
				zap.Error(err))
			return
		}
		s.logger.Info("crm sync completed",
			zap.String("meeting_id", meeting.ID.String()))
	}()
}

// clientFor builds a CRM client from the organization's active integration.
// Missing or undecryptable credentials yield ErrCrmNotConfigured so the
// caller can distinguish configuration gaps from upstream failures.
func (s *service) clientFor(ctx context.Context, orgID uuid.UUID) (crm.Client, string, error) {
	integration, err := s.integrations.FindActiveCrm(ctx, orgID)
	if err != nil {
		return nil, "", apperrors.ErrCrmIntegrationNotFound(orgID.String())
	}
	platform := string(integration.Platform)
	if integration.Credentials == nil {
		return nil, platform, apperrors.ErrCrmNotConfigured(platform, "credentials")
	}
	creds := integration.Credentials

	apiKey, err := s.cipher.Decrypt(ctx, creds.EncryptedAPIKey)
	if err != nil || apiKey == "" {
		return nil, platform, apperrors.ErrCrmNotConfigured(platform, "api key")
	}

	switch integration.Platform {
	case entities.CrmPlatformPipedrive:
		return crm.NewPipedriveClient(s.pipedriveBaseURL, apiKey), platform, nil

	case entities.CrmPlatformLivespace:
		if creds.Domain == nil || *creds.Domain == "" {
			return nil, platform, apperrors.ErrCrmNotConfigured(platform, "domain")
		}
		if creds.EncryptedAPISecret == nil {
			return nil, platform, apperrors.ErrCrmNotConfigured(platform, "api secret")
		}
		apiSecret, err := s.cipher.Decrypt(ctx, *creds.EncryptedAPISecret)
		if err != nil || apiSecret == "" {
			return nil, platform, apperrors.ErrCrmNotConfigured(platform, "api secret")
		}
		clientCreds := crm.Credentials{
			APIKey:    apiKey,
			APISecret: apiSecret,
			Domain:    *creds.Domain,
		}
		return crm.NewLivespaceClient(clientCreds, crm.StrategyFor(string(creds.AuthMode))), platform, nil

	default:
		return nil, platform, apperrors.ErrCrmNotConfigured(platform, "supported platform")
	}
}
