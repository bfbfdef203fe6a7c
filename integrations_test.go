package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const credentialsBody = `{
	"accessToken": "tok_abc",
	"instanceUrl": "https://org.example.com",
	"environment": "production",
	"region": "us-east",
	"tokenType": "Bearer",
	"expiresAt": "2025-01-01T00:00:00Z"
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *AppnigmaClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{APIKey: "ak_test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClient_GetConnectionCredentialsOverREST(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/api/v1/connections/conn_1/credentials" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer ak_test" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if got := r.Header.Get("User-Agent"); !strings.HasPrefix(got, "appnigma-integrations-client-go/"+Version) {
			t.Errorf("unexpected user agent %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, credentialsBody)
	})

	got, err := client.GetConnectionCredentials(context.Background(), GetConnectionCredentialsRequest{ConnectionID: "conn_1"})
	if err != nil {
		t.Fatalf("get credentials: %v", err)
	}
	want := ConnectionCredentials{
		AccessToken: "tok_abc",
		InstanceURL: "https://org.example.com",
		Environment: "production",
		Region:      "us-east",
		TokenType:   "Bearer",
		ExpiresAt:   "2025-01-01T00:00:00Z",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("credentials mismatch (-want +got):\n%s", diff)
	}
}

func TestNewClient_ProxySalesforceRequestOmitsUnsetFields(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/proxy/salesforce" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("X-Connection-Id"); got != "conn_1" {
			t.Errorf("unexpected connection header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Sforce-Limit-Info", "api-usage=3/15000")
		_, _ = io.WriteString(w, `{"totalSize":0,"done":true,"records":[]}`)
	})

	req := NewSalesforceProxyRequest().
		WithMethod(MethodGet).
		WithPath("/services/data/v60.0/query").
		WithQuery(map[string]any{"q": "SELECT Id FROM Account"})
	response, err := client.ProxySalesforceRequest(context.Background(), ProxySalesforceRequestInput{
		ConnectionID: "conn_1",
		Request:      req,
	})
	if err != nil {
		t.Fatalf("proxy request: %v", err)
	}
	if _, ok := body["data"]; ok {
		t.Fatalf("expected unset data to be absent, got %#v", body)
	}
	if body["method"] != "GET" {
		t.Fatalf("unexpected method %#v", body["method"])
	}
	if response.LimitInfo() != "api-usage=3/15000" {
		t.Fatalf("unexpected limit info %q", response.LimitInfo())
	}
}

func TestNewClient_APIErrorAndDecodeErrorAreDistinct(t *testing.T) {
	status := http.StatusNotFound
	payload := `{"message":"connection not found"}`
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, payload)
	})

	_, err := client.GetConnectionCredentials(context.Background(), GetConnectionCredentialsRequest{ConnectionID: "conn_1"})
	var apiErr *AppnigmaAPIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected AppnigmaAPIError, got %T %v", err, err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "connection not found" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if errors.Is(err, ErrDecode) {
		t.Fatalf("api error must not match ErrDecode")
	}

	status = http.StatusOK
	payload = `{"accessToken":"tok_abc"}`
	_, err = client.GetConnectionCredentials(context.Background(), GetConnectionCredentialsRequest{ConnectionID: "conn_1"})
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %T %v", err, err)
	}
	if errors.As(err, &apiErr) {
		t.Fatalf("decode error must not be an api error")
	}
}

func TestNewClient_InvalidMethodFailsBeforeNetwork(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	req := NewSalesforceProxyRequest().WithMethod(HTTPMethod("get"))
	_, err := client.ProxySalesforceRequest(context.Background(), ProxySalesforceRequestInput{
		ConnectionID: "conn_1",
		Request:      req,
	})
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected decode error for lowercase method, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no network call, got %d", calls)
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	t.Setenv("APPNIGMA_API_KEY", "")
	if _, err := NewClient(Config{BaseURL: "https://api.example.test"}); err == nil {
		t.Fatalf("expected missing api key error")
	}
}

func TestVersion(t *testing.T) {
	if Version != "0.1.2" {
		t.Fatalf("unexpected version %q", Version)
	}
	if VersionInfo().Version != Version {
		t.Fatalf("expected version info to report %q", Version)
	}
}
