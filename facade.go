package integrations

import (
	"fmt"

	integrationscommand "github.com/appnigma/go-integrations-client/command"
	integrationsquery "github.com/appnigma/go-integrations-client/query"
)

// ClientService is the surface the command and query handlers delegate to.
// *AppnigmaClient satisfies it.
type ClientService interface {
	integrationscommand.MutatingService
	integrationsquery.CredentialsReader
}

type Commands struct {
	ProxySalesforceRequest *integrationscommand.ProxySalesforceRequestCommand
	InvalidateCredentials  *integrationscommand.InvalidateCredentialsCommand
}

type Queries struct {
	GetConnectionCredentials *integrationsquery.GetConnectionCredentialsQuery
}

type Facade struct {
	service  ClientService
	commands Commands
	queries  Queries
}

func NewFacade(service ClientService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("integrations: client service is required")
	}
	return &Facade{
		service: service,
		commands: Commands{
			ProxySalesforceRequest: integrationscommand.NewProxySalesforceRequestCommand(service),
			InvalidateCredentials:  integrationscommand.NewInvalidateCredentialsCommand(service),
		},
		queries: Queries{
			GetConnectionCredentials: integrationsquery.NewGetConnectionCredentialsQuery(service),
		},
	}, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() ClientService {
	if f == nil {
		return nil
	}
	return f.service
}

var _ ClientService = (*AppnigmaClient)(nil)
