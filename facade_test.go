package integrations

import (
	"context"
	"testing"

	integrationscommand "github.com/appnigma/go-integrations-client/command"
	integrationsquery "github.com/appnigma/go-integrations-client/query"
)

type stubFacadeService struct {
	lastProxy          ProxySalesforceRequestInput
	lastInvalidated    string
	lastCredentialsReq GetConnectionCredentialsRequest
}

func (s *stubFacadeService) ProxySalesforceRequest(_ context.Context, input ProxySalesforceRequestInput) (ProxyResponse, error) {
	s.lastProxy = input
	return ProxyResponse{StatusCode: 200}, nil
}

func (s *stubFacadeService) InvalidateConnectionCredentials(_ context.Context, connectionID string) error {
	s.lastInvalidated = connectionID
	return nil
}

func (s *stubFacadeService) GetConnectionCredentials(_ context.Context, req GetConnectionCredentialsRequest) (ConnectionCredentials, error) {
	s.lastCredentialsReq = req
	return ConnectionCredentials{AccessToken: "tok_abc"}, nil
}

func TestNewFacade_WiresCommandsAndQueries(t *testing.T) {
	facade, err := NewFacade(&stubFacadeService{})
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	commands := facade.Commands()
	if commands.ProxySalesforceRequest == nil || commands.InvalidateCredentials == nil {
		t.Fatalf("expected command handlers to be wired")
	}
	if facade.Queries().GetConnectionCredentials == nil {
		t.Fatalf("expected query handlers to be wired")
	}
}

func TestFacade_CommandAndQueryDelegation(t *testing.T) {
	svc := &stubFacadeService{}
	facade, err := NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	if err := facade.Commands().InvalidateCredentials.Execute(context.Background(), integrationscommand.InvalidateCredentialsMessage{
		ConnectionID: "conn_1",
	}); err != nil {
		t.Fatalf("execute invalidate command: %v", err)
	}
	if svc.lastInvalidated != "conn_1" {
		t.Fatalf("unexpected invalidate delegation %q", svc.lastInvalidated)
	}

	req := NewSalesforceProxyRequest().WithMethod(MethodGet).WithPath("/services/data/v60.0/limits")
	if err := facade.Commands().ProxySalesforceRequest.Execute(context.Background(), integrationscommand.ProxySalesforceRequestMessage{
		Input: ProxySalesforceRequestInput{ConnectionID: "conn_1", Request: req},
	}); err != nil {
		t.Fatalf("execute proxy command: %v", err)
	}
	if svc.lastProxy.ConnectionID != "conn_1" {
		t.Fatalf("unexpected proxy delegation payload")
	}

	credentials, err := facade.Queries().GetConnectionCredentials.Query(context.Background(), integrationsquery.GetConnectionCredentialsMessage{
		Request: GetConnectionCredentialsRequest{ConnectionID: "conn_1", IntegrationID: "int_1"},
	})
	if err != nil {
		t.Fatalf("query credentials: %v", err)
	}
	if credentials.AccessToken != "tok_abc" || svc.lastCredentialsReq.IntegrationID != "int_1" {
		t.Fatalf("unexpected credentials query result %#v", credentials)
	}
}

func TestNewFacade_RequiresService(t *testing.T) {
	if _, err := NewFacade(nil); err == nil {
		t.Fatalf("expected nil service to be rejected")
	}
}
