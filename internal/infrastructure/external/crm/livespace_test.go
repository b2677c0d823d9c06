package crm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLegacyStrategy_SignsRequestBody(t *testing.T) {
	creds := Credentials{APIKey: "key-1", APISecret: "secret-1"}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		if !strings.HasSuffix(r.URL.Path, "/api/public/json/Deal/getAll") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)

		if got := r.Header.Get("X-Api-Key"); got != "key-1" {
			t.Fatalf("unexpected api key header %q", got)
		}
		want := sha1Hex("key-1" + "secret-1" + string(body))
		if got := r.Header.Get("X-Api-Signature"); got != want {
			t.Fatalf("signature mismatch: got %q want %q", got, want)
		}

		var params map[string]interface{}
		if err := json.Unmarshal(body, &params); err != nil {
			t.Fatalf("body is not json: %v", err)
		}
		if params["limit"] != float64(10) {
			t.Fatalf("params not forwarded: %v", params)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data":   map[string]interface{}{"deals": []interface{}{}},
		})
	}))
	defer ts.Close()

	creds.Domain = ts.URL
	client := NewLivespaceClient(creds, LegacyStrategy{})

	data, err := client.Call(context.Background(), "Deal/getAll", map[string]interface{}{"limit": 10})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if _, ok := data["deals"]; !ok {
		t.Fatalf("data not returned: %v", data)
	}
}

func TestSessionStrategy_SignedHandshake(t *testing.T) {
	creds := Credentials{APIKey: "key-2", APISecret: "secret-2"}
	var calls []string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)

		if err := r.ParseForm(); err != nil {
			t.Fatalf("form parse failed: %v", err)
		}

		if strings.Contains(r.URL.Path, "getToken") {
			if r.PostForm.Get("_api_auth") != "key" || r.PostForm.Get("_api_key") != "key-2" {
				t.Fatalf("unexpected getToken form: %v", r.PostForm)
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": true,
				"data": map[string]interface{}{
					"token":      "tok-abc",
					"session_id": "sess-9",
				},
			})
			return
		}

		wantSha := sha1Hex("key-2" + "tok-abc" + "secret-2")
		if got := r.PostForm.Get("_api_sha"); got != wantSha {
			t.Fatalf("session sha mismatch: got %q want %q", got, wantSha)
		}
		if got := r.PostForm.Get("_api_session"); got != "sess-9" {
			t.Fatalf("session id not forwarded: %q", got)
		}
		// non-string params are JSON-stringified in the form body
		if got := r.PostForm.Get("filters"); got != `{"open":true}` {
			t.Fatalf("param stringification wrong: %q", got)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data":   map[string]interface{}{"ok": true},
		})
	}))
	defer ts.Close()

	creds.Domain = ts.URL
	client := NewLivespaceClient(creds, SessionStrategy{})

	data, err := client.Call(context.Background(), "Deal/getAll", map[string]interface{}{
		"filters": map[string]interface{}{"open": true},
	})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if data["ok"] != true {
		t.Fatalf("unexpected data %v", data)
	}
	if len(calls) != 2 {
		t.Fatalf("expected handshake then call, got %v", calls)
	}
}

func TestSessionStrategy_GetTokenLogicalFailureAborts(t *testing.T) {
	var requests int

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		// HTTP 200 with status:false is still a failure
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": false,
			"result": 4,
		})
	}))
	defer ts.Close()

	client := NewLivespaceClient(Credentials{
		APIKey: "k", APISecret: "s", Domain: ts.URL,
	}, SessionStrategy{})

	_, err := client.Call(context.Background(), "Deal/getAll", nil)
	if err == nil {
		t.Fatal("expected error for status:false getToken")
	}
	if !strings.Contains(err.Error(), "4") {
		t.Fatalf("error should name the failure code: %v", err)
	}
	if requests != 1 {
		t.Fatalf("signed call must not happen after failed handshake, saw %d requests", requests)
	}
}

func TestCheckEnvelope_ErrorObject(t *testing.T) {
	_, err := checkEnvelope([]byte(`{"error":{"code":17,"message":"bad key"}}`), "Deal/getAll")
	if err == nil {
		t.Fatal("expected error for error object")
	}
}

func TestNewLivespaceClient_DomainNormalization(t *testing.T) {
	client := NewLivespaceClient(Credentials{Domain: "acme.livespace.io/"}, SessionStrategy{})
	if client.baseURL != "https://acme.livespace.io" {
		t.Fatalf("unexpected base url %q", client.baseURL)
	}
}

func TestStrategyFor_Defaults(t *testing.T) {
	if _, ok := StrategyFor("legacy").(LegacyStrategy); !ok {
		t.Fatal("legacy mode should pick the legacy strategy")
	}
	if _, ok := StrategyFor("").(SessionStrategy); !ok {
		t.Fatal("unknown mode should default to session")
	}
	if _, ok := StrategyFor("session").(SessionStrategy); !ok {
		t.Fatal("session mode should pick the session strategy")
	}
}
