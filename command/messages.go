package command

import (
	"strings"

	"github.com/appnigma/go-integrations-client/core"
)

const (
	TypeProxySalesforceRequest = "appnigma.command.proxy.salesforce"
	TypeInvalidateCredentials  = "appnigma.command.credentials.invalidate"
)

type ProxySalesforceRequestMessage struct {
	Input core.ProxySalesforceRequestInput
}

func (ProxySalesforceRequestMessage) Type() string { return TypeProxySalesforceRequest }

// Validate rejects a missing connection id and methods outside the closed
// set. Method failures keep their *core.DecodeError form.
func (m ProxySalesforceRequestMessage) Validate() error {
	if strings.TrimSpace(m.Input.ConnectionID) == "" {
		return commandValidationError("connection_id", "connection id is required")
	}
	return m.Input.Request.Validate()
}

type InvalidateCredentialsMessage struct {
	ConnectionID string
}

func (InvalidateCredentialsMessage) Type() string { return TypeInvalidateCredentials }

func (m InvalidateCredentialsMessage) Validate() error {
	if strings.TrimSpace(m.ConnectionID) == "" {
		return commandValidationError("connection_id", "connection id is required")
	}
	return nil
}
