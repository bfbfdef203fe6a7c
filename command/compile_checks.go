package command

import (
	"github.com/appnigma/go-integrations-client/core"
	gocmd "github.com/goliatone/go-command"
)

var (
	_ gocmd.Commander[ProxySalesforceRequestMessage] = (*ProxySalesforceRequestCommand)(nil)
	_ gocmd.Commander[InvalidateCredentialsMessage]  = (*InvalidateCredentialsCommand)(nil)

	_ MutatingService = (*core.Client)(nil)
)
