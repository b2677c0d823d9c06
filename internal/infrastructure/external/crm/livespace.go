package crm

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// AuthStrategy signs and executes one Livespace API call. Two protocol
// variants exist in the wild; stored integration metadata selects which one a
// given account speaks.
type AuthStrategy interface {
	Do(ctx context.Context, client *http.Client, baseURL string, creds Credentials, op string, params map[string]interface{}) (map[string]interface{}, error)
}

// LivespaceClient speaks the Livespace API on the integration's configured
// domain through the selected auth strategy.
type LivespaceClient struct {
	baseURL  string
	creds    Credentials
	strategy AuthStrategy
	client   *http.Client
}

// NewLivespaceClient creates a Livespace client for the integration's domain
func NewLivespaceClient(creds Credentials, strategy AuthStrategy) *LivespaceClient {
	base := creds.Domain
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return &LivespaceClient{
		baseURL:  strings.TrimRight(base, "/"),
		creds:    creds,
		strategy: strategy,
		client:   defaultHTTPClient(),
	}
}

// Call invokes a Livespace method, e.g. "Deal/getAll"
func (l *LivespaceClient) Call(ctx context.Context, op string, params map[string]interface{}) (map[string]interface{}, error) {
	return l.strategy.Do(ctx, l.client, l.baseURL, l.creds, op, params)
}

// TestConnection verifies that the credentials complete the handshake
func (l *LivespaceClient) TestConnection(ctx context.Context) error {
	_, err := l.Call(ctx, "Default/ping", nil)
	return err
}

// livespaceEnvelope is the common response wrapper. A body of
// {status:false, result:<code>} or a present error object is an
// application-level failure even when the HTTP status is 200.
type livespaceEnvelope struct {
	Status *bool                  `json:"status"`
	Result interface{}            `json:"result"`
	Error  map[string]interface{} `json:"error"`
	Data   map[string]interface{} `json:"data"`
}

// checkEnvelope decodes a Livespace response body and rejects logical failures
func checkEnvelope(body []byte, op string) (*livespaceEnvelope, error) {
	var env livespaceEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode livespace response for %s: %w", op, err)
	}
	if env.Status != nil && !*env.Status {
		return nil, fmt.Errorf("livespace %s failed with code %v", op, env.Result)
	}
	if len(env.Error) > 0 {
		return nil, fmt.Errorf("livespace %s returned error: %v", op, env.Error)
	}
	return &env, nil
}

func sha1Hex(input string) string {
	sum := sha1.Sum([]byte(input))
	return hex.EncodeToString(sum[:])
}

// stringifyParam renders a method parameter for form encoding. Non-string
// values are JSON-stringified per the session protocol.
func stringifyParam(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(b)
}

// LegacyStrategy is the header-signed JSON variant:
// signature = SHA1(api_key + api_secret + JSON(params)).
type LegacyStrategy struct{}

// Do executes a signed call in the legacy form factor
func (LegacyStrategy) Do(ctx context.Context, client *http.Client, baseURL string, creds Credentials, op string, params map[string]interface{}) (map[string]interface{}, error) {
	if params == nil {
		params = map[string]interface{}{}
	}
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode livespace params: %w", err)
	}

	signature := sha1Hex(creds.APIKey + creds.APISecret + string(body))

	endpoint := fmt.Sprintf("%s/api/public/json/%s", baseURL, strings.TrimLeft(op, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", creds.APIKey)
	req.Header.Set("X-Api-Signature", signature)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("livespace %s returned status %d", op, resp.StatusCode)
	}

	env, err := checkEnvelope(raw, op)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// SessionStrategy is the two-step session-signed form-encoded variant:
// getToken first, then SHA1(api_key + token + api_secret) on the target call.
type SessionStrategy struct{}

type sessionToken struct {
	Token     string
	SessionID string
}

// getToken obtains a short-lived token and session id using the API key only
func (SessionStrategy) getToken(ctx context.Context, client *http.Client, baseURL string, creds Credentials) (*sessionToken, error) {
	form := url.Values{}
	form.Set("_api_auth", "key")
	form.Set("_api_key", creds.APIKey)

	endpoint := baseURL + "/api/public/json/_Api/auth_call/_api_method/getToken"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("livespace getToken returned status %d", resp.StatusCode)
	}

	env, err := checkEnvelope(raw, "getToken")
	if err != nil {
		return nil, err
	}

	token, _ := env.Data["token"].(string)
	sessionID, _ := env.Data["session_id"].(string)
	if token == "" || sessionID == "" {
		return nil, fmt.Errorf("livespace getToken response missing token or session_id")
	}
	return &sessionToken{Token: token, SessionID: sessionID}, nil
}

// Do performs the session handshake and then the signed target call. A
// getToken failure aborts before any signed follow-up.
func (s SessionStrategy) Do(ctx context.Context, client *http.Client, baseURL string, creds Credentials, op string, params map[string]interface{}) (map[string]interface{}, error) {
	session, err := s.getToken(ctx, client, baseURL, creds)
	if err != nil {
		return nil, err
	}

	sha := sha1Hex(creds.APIKey + session.Token + creds.APISecret)

	form := url.Values{}
	form.Set("_api_auth", "key")
	form.Set("_api_key", creds.APIKey)
	form.Set("_api_sha", sha)
	form.Set("_api_session", session.SessionID)
	for key, value := range params {
		form.Set(key, stringifyParam(value))
	}

	endpoint := fmt.Sprintf("%s/api/public/json/%s", baseURL, strings.TrimLeft(op, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("livespace %s returned status %d", op, resp.StatusCode)
	}

	env, err := checkEnvelope(raw, op)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// StrategyFor returns the auth strategy for a stored auth mode. Session is
// the default for accounts with unknown metadata.
func StrategyFor(mode string) AuthStrategy {
	if mode == "legacy" {
		return LegacyStrategy{}
	}
	return SessionStrategy{}
}
