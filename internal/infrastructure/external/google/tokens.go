package google

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
)

// RefreshWindow is how close to expiry an access token may get before it is
// refreshed ahead of use.
const RefreshWindow = 5 * time.Minute

// SecretCipher encrypts and decrypts stored token material
type SecretCipher interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}

// TokenWriter persists refreshed tokens
type TokenWriter interface {
	UpdateGoogleToken(ctx context.Context, id uuid.UUID, encryptedAccessToken string, expiresAt time.Time) error
}

// TokenManager decides whether a stored Google access token needs a refresh
// before use and performs the refresh against the OAuth2 token endpoint.
// Concurrent refreshes for the same integration are not coordinated; two
// simultaneous requests may both refresh.
type TokenManager struct {
	config *oauth2.Config
	cipher SecretCipher
	writer TokenWriter
	logger *zap.Logger
	now    func() time.Time
}

// NewTokenManager creates a token manager for the configured OAuth client
func NewTokenManager(clientID, clientSecret string, cipher SecretCipher, writer TokenWriter, logger *zap.Logger) *TokenManager {
	return &TokenManager{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     googleoauth.Endpoint,
		},
		cipher: cipher,
		writer: writer,
		logger: logger,
		now:    time.Now,
	}
}

// AccessToken returns a usable plaintext access token for the integration.
// Tokens expiring within RefreshWindow (or with no known expiry) are refreshed
// and persisted first. When the refresh fails the previously stored token is
// returned; callers must tolerate a stale-token failure from the downstream API.
func (m *TokenManager) AccessToken(ctx context.Context, integration *entities.GoogleIntegration) (string, error) {
	stored, err := m.cipher.Decrypt(ctx, integration.EncryptedAccessToken)
	if err != nil {
		return "", err
	}

	if !integration.NeedsRefresh(m.now(), RefreshWindow) {
		return stored, nil
	}

	refreshToken, err := m.cipher.Decrypt(ctx, integration.EncryptedRefreshToken)
	if err != nil {
		m.logger.Error("failed to decrypt google refresh token, using stored access token",
			zap.String("integration_id", integration.ID.String()),
			zap.Error(err))
		return stored, nil
	}

	newToken, err := m.refresh(ctx, refreshToken)
	if err != nil {
		m.logger.Warn("google token refresh failed, falling back to stored token",
			zap.String("integration_id", integration.ID.String()),
			zap.Error(err))
		return stored, nil
	}

	encrypted, err := m.cipher.Encrypt(ctx, newToken.AccessToken)
	if err != nil {
		m.logger.Error("failed to encrypt refreshed google token",
			zap.String("integration_id", integration.ID.String()),
			zap.Error(err))
		return newToken.AccessToken, nil
	}

	if err := m.writer.UpdateGoogleToken(ctx, integration.ID, encrypted, newToken.Expiry); err != nil {
		m.logger.Error("failed to persist refreshed google token",
			zap.String("integration_id", integration.ID.String()),
			zap.Error(err))
	}

	return newToken.AccessToken, nil
}

// refresh exchanges the refresh token for a new access token
func (m *TokenManager) refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	source := m.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	return source.Token()
}
