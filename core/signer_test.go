package core

import (
	"context"
	"testing"
)

func TestAPIKeySigner_SetsBearerHeader(t *testing.T) {
	req := &TransportRequest{}
	if err := (APIKeySigner{APIKey: " ak_1 "}).Sign(context.Background(), req); err != nil {
		t.Fatalf("sign: %v", err)
	}
	if req.Headers["Authorization"] != "Bearer ak_1" {
		t.Fatalf("unexpected authorization header %q", req.Headers["Authorization"])
	}
}

func TestAPIKeySigner_RequiresKeyAndRequest(t *testing.T) {
	if err := (APIKeySigner{}).Sign(context.Background(), &TransportRequest{}); err == nil {
		t.Fatalf("expected missing key to fail")
	}
	if err := (APIKeySigner{APIKey: "ak"}).Sign(context.Background(), nil); err == nil {
		t.Fatalf("expected nil request to fail")
	}
}

func TestClient_CustomSignerFailureIsAPIError(t *testing.T) {
	transport := &stubTransport{}
	client := newStubClient(t, transport, WithSigner(SignerFunc(func(context.Context, *TransportRequest) error {
		return context.Canceled
	})))
	_, err := client.GetConnectionCredentials(context.Background(), GetConnectionCredentialsRequest{ConnectionID: "conn_1"})
	if err == nil {
		t.Fatalf("expected signing failure")
	}
	if len(transport.calls()) != 0 {
		t.Fatalf("expected no transport call after signing failure")
	}
}
