package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
)

// identityCipher stores secrets as-is so tests can assert on plaintext
type identityCipher struct{}

func (identityCipher) Encrypt(_ context.Context, plaintext string) (string, error) {
	return plaintext, nil
}

func (identityCipher) Decrypt(_ context.Context, ciphertext string) (string, error) {
	return ciphertext, nil
}

type recordingWriter struct {
	updates int
	token   string
}

func (w *recordingWriter) UpdateGoogleToken(_ context.Context, _ uuid.UUID, encryptedAccessToken string, _ time.Time) error {
	w.updates++
	w.token = encryptedAccessToken
	return nil
}

func integrationExpiring(in time.Duration, now time.Time) *entities.GoogleIntegration {
	expiry := now.Add(in)
	return &entities.GoogleIntegration{
		ID:                    uuid.New(),
		EncryptedAccessToken:  "stored-access",
		EncryptedRefreshToken: "stored-refresh",
		TokenExpiresAt:        &expiry,
	}
}

func newTestManager(t *testing.T, tokenURL string, now time.Time, writer *recordingWriter) *TokenManager {
	t.Helper()
	m := NewTokenManager("client-id", "client-secret", identityCipher{}, writer, zap.NewNop())
	m.now = func() time.Time { return now }
	if tokenURL != "" {
		m.config.Endpoint.TokenURL = tokenURL
	}
	return m
}

func TestAccessToken_FreshTokenNotRefreshed(t *testing.T) {
	now := time.Now()
	writer := &recordingWriter{}

	refreshCalls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
	}))
	defer ts.Close()

	m := newTestManager(t, ts.URL, now, writer)

	// expires well outside the refresh window
	token, err := m.AccessToken(context.Background(), integrationExpiring(10*time.Minute, now))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "stored-access" {
		t.Fatalf("expected stored token, got %q", token)
	}
	if refreshCalls != 0 {
		t.Fatalf("fresh token must not trigger a refresh, saw %d calls", refreshCalls)
	}
	if writer.updates != 0 {
		t.Fatalf("nothing should be persisted, saw %d updates", writer.updates)
	}
}

func TestAccessToken_NearExpiryRefreshesAndPersists(t *testing.T) {
	now := time.Now()
	writer := &recordingWriter{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("form parse failed: %v", err)
		}
		if got := r.PostForm.Get("refresh_token"); got != "stored-refresh" {
			t.Fatalf("wrong refresh token sent: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "fresh-access",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer ts.Close()

	m := newTestManager(t, ts.URL, now, writer)

	// 4 minutes out is inside the 5 minute window
	token, err := m.AccessToken(context.Background(), integrationExpiring(4*time.Minute, now))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "fresh-access" {
		t.Fatalf("expected refreshed token, got %q", token)
	}
	if writer.updates != 1 || writer.token != "fresh-access" {
		t.Fatalf("refreshed token not persisted: %+v", writer)
	}
}

func TestAccessToken_MissingExpiryCountsAsExpired(t *testing.T) {
	now := time.Now()
	writer := &recordingWriter{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "fresh-access",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer ts.Close()

	m := newTestManager(t, ts.URL, now, writer)

	integration := integrationExpiring(time.Hour, now)
	integration.TokenExpiresAt = nil

	token, err := m.AccessToken(context.Background(), integration)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "fresh-access" {
		t.Fatalf("nil expiry should force a refresh, got %q", token)
	}
}

func TestAccessToken_RefreshFailureFallsBackToStored(t *testing.T) {
	now := time.Now()
	writer := &recordingWriter{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	m := newTestManager(t, ts.URL, now, writer)

	token, err := m.AccessToken(context.Background(), integrationExpiring(time.Minute, now))
	if err != nil {
		t.Fatalf("stale fallback must not error: %v", err)
	}
	if token != "stored-access" {
		t.Fatalf("expected stored token fallback, got %q", token)
	}
	if writer.updates != 0 {
		t.Fatalf("failed refresh must not persist, saw %d updates", writer.updates)
	}
}
