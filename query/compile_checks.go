package query

import (
	"github.com/appnigma/go-integrations-client/core"
	gocmd "github.com/goliatone/go-command"
)

var (
	_ gocmd.Querier[GetConnectionCredentialsMessage, core.ConnectionCredentials] = (*GetConnectionCredentialsQuery)(nil)

	_ CredentialsReader = (*core.Client)(nil)
)
