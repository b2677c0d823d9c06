package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// PipedriveClient speaks the Pipedrive REST API with simple query-string
// token authentication against the fixed global API base.
type PipedriveClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewPipedriveClient creates a Pipedrive client
func NewPipedriveClient(baseURL, apiKey string) *PipedriveClient {
	return &PipedriveClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  defaultHTTPClient(),
	}
}

// Call invokes a Pipedrive endpoint. The op is the resource path, e.g.
// "notes" or "deals/123"; params are sent as the JSON body.
func (p *PipedriveClient) Call(ctx context.Context, op string, params map[string]interface{}) (map[string]interface{}, error) {
	endpoint := fmt.Sprintf("%s/%s?api_token=%s", p.baseURL, strings.TrimLeft(op, "/"), url.QueryEscape(p.apiKey))

	method := http.MethodPost
	var body *bytes.Reader
	if len(params) == 0 {
		method = http.MethodGet
		body = bytes.NewReader(nil)
	} else {
		b, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to encode pipedrive params: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode pipedrive response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("pipedrive returned status %d: %v", resp.StatusCode, decoded["error"])
	}
	if success, ok := decoded["success"].(bool); ok && !success {
		return nil, fmt.Errorf("pipedrive call failed: %v", decoded["error"])
	}

	return decoded, nil
}

// TestConnection verifies the API key against the current-user endpoint
func (p *PipedriveClient) TestConnection(ctx context.Context) error {
	_, err := p.Call(ctx, "users/me", nil)
	return err
}
