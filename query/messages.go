package query

import (
	"strings"

	"github.com/appnigma/go-integrations-client/core"
)

const TypeGetConnectionCredentials = "appnigma.query.credentials.get"

type GetConnectionCredentialsMessage struct {
	Request core.GetConnectionCredentialsRequest
}

func (GetConnectionCredentialsMessage) Type() string { return TypeGetConnectionCredentials }

func (m GetConnectionCredentialsMessage) Validate() error {
	if strings.TrimSpace(m.Request.ConnectionID) == "" {
		return queryValidationError("connection_id", "connection id is required")
	}
	return nil
}
