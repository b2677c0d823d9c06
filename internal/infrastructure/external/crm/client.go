package crm

import (
	"context"
	"net/http"
	"time"
)

// Credentials is the decrypted credential material for one CRM integration.
// It only ever lives in request scope.
type Credentials struct {
	APIKey    string
	APISecret string
	Domain    string
}

// Client is the uniform call shape over heterogeneous CRM wire protocols.
type Client interface {
	// Call invokes a CRM operation with the given parameters and returns the
	// decoded response payload.
	Call(ctx context.Context, op string, params map[string]interface{}) (map[string]interface{}, error)
	// TestConnection verifies that the stored credentials currently reach the CRM.
	TestConnection(ctx context.Context) error
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
