package command

import (
	"context"

	"github.com/appnigma/go-integrations-client/core"
	gocmd "github.com/goliatone/go-command"
)

type MutatingService interface {
	ProxySalesforceRequest(ctx context.Context, input core.ProxySalesforceRequestInput) (core.ProxyResponse, error)
	InvalidateConnectionCredentials(ctx context.Context, connectionID string) error
}

// ProxySalesforceRequestCommand forwards a proxy call and stores the
// core.ProxyResponse in the context result collector, when present.
type ProxySalesforceRequestCommand struct {
	service MutatingService
}

func NewProxySalesforceRequestCommand(service MutatingService) *ProxySalesforceRequestCommand {
	return &ProxySalesforceRequestCommand{service: service}
}

func (c *ProxySalesforceRequestCommand) Execute(ctx context.Context, msg ProxySalesforceRequestMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: proxy service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	out, err := c.service.ProxySalesforceRequest(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type InvalidateCredentialsCommand struct {
	service MutatingService
}

func NewInvalidateCredentialsCommand(service MutatingService) *InvalidateCredentialsCommand {
	return &InvalidateCredentialsCommand{service: service}
}

func (c *InvalidateCredentialsCommand) Execute(ctx context.Context, msg InvalidateCredentialsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: credentials service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	return c.service.InvalidateConnectionCredentials(ctx, msg.ConnectionID)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
