package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestOptionalTracksPresence(t *testing.T) {
	unset := None[string]()
	if unset.IsSet() {
		t.Fatalf("expected None to be unset")
	}
	if value, ok := unset.Get(); ok || value != "" {
		t.Fatalf("expected zero value and false, got %q %v", value, ok)
	}
	if unset.OrElse("fallback") != "fallback" {
		t.Fatalf("expected fallback for unset optional")
	}

	empty := Some("")
	if !empty.IsSet() {
		t.Fatalf("expected Some(\"\") to be set")
	}
	if empty.OrElse("fallback") != "" {
		t.Fatalf("expected set empty value to win over fallback")
	}
}

func TestParseHTTPMethodIsCaseSensitive(t *testing.T) {
	for _, method := range []string{"GET", "POST", "PUT", "PATCH", "DELETE"} {
		parsed, err := ParseHTTPMethod(method)
		if err != nil {
			t.Fatalf("expected %s to parse: %v", method, err)
		}
		if parsed.String() != method {
			t.Fatalf("expected %s, got %s", method, parsed)
		}
	}
	for _, method := range []string{"get", "Post", "HEAD", "OPTIONS", "", " GET"} {
		if _, err := ParseHTTPMethod(method); !errors.Is(err, ErrInvalidMethod) {
			t.Fatalf("expected ErrInvalidMethod for %q, got %v", method, err)
		}
	}
	if len(HTTPMethods()) != 5 {
		t.Fatalf("expected five methods, got %d", len(HTTPMethods()))
	}
}

func TestConnectionCredentialsExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	creds := validCredentials()
	creds.ExpiresAt = "2025-01-01T00:05:00Z"

	if creds.ExpiredAt(now, time.Minute) {
		t.Fatalf("expected credentials to be fresh with one minute skew")
	}
	if !creds.ExpiredAt(now, 10*time.Minute) {
		t.Fatalf("expected credentials inside skew window to count as expired")
	}

	creds.ExpiresAt = "2025-01-01T00:05:00.123456Z"
	if _, err := creds.ExpiresAtTime(); err != nil {
		t.Fatalf("expected fractional seconds to parse: %v", err)
	}

	creds.ExpiresAt = "tomorrow"
	if !creds.ExpiredAt(now, 0) {
		t.Fatalf("expected unparseable expiry to count as expired")
	}
}

func TestConnectionCredentialsNeverPrintToken(t *testing.T) {
	creds := validCredentials()
	if strings.Contains(creds.String(), creds.AccessToken) {
		t.Fatalf("expected access token to be redacted from String()")
	}
	if got := creds.AuthorizationHeader(); got != "Bearer tok_abc" {
		t.Fatalf("unexpected authorization header %q", got)
	}
}

func TestSalesforceProxyRequestBuildersReturnCopies(t *testing.T) {
	query := map[string]any{"q": "SELECT Id FROM Account"}
	base := NewSalesforceProxyRequest()
	withQuery := base.WithMethod(MethodGet).WithQuery(query)

	if base.Method.IsSet() || base.Query.IsSet() {
		t.Fatalf("expected builders not to mutate the receiver")
	}
	query["q"] = "mutated"
	stored, _ := withQuery.Query.Get()
	if stored["q"] != "SELECT Id FROM Account" {
		t.Fatalf("expected query to be cloned, got %#v", stored["q"])
	}
}

func validCredentials() ConnectionCredentials {
	return ConnectionCredentials{
		AccessToken: "tok_abc",
		InstanceURL: "https://org.example.com",
		Environment: "production",
		Region:      "us-east",
		TokenType:   "Bearer",
		ExpiresAt:   "2025-01-01T00:00:00Z",
	}
}
