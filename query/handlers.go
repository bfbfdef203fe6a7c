package query

import (
	"context"

	"github.com/appnigma/go-integrations-client/core"
)

type CredentialsReader interface {
	GetConnectionCredentials(ctx context.Context, req core.GetConnectionCredentialsRequest) (core.ConnectionCredentials, error)
}

type GetConnectionCredentialsQuery struct {
	reader CredentialsReader
}

func NewGetConnectionCredentialsQuery(reader CredentialsReader) *GetConnectionCredentialsQuery {
	return &GetConnectionCredentialsQuery{reader: reader}
}

func (q *GetConnectionCredentialsQuery) Query(
	ctx context.Context,
	msg GetConnectionCredentialsMessage,
) (core.ConnectionCredentials, error) {
	if q == nil || q.reader == nil {
		return core.ConnectionCredentials{}, queryDependencyError("query: credentials reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.ConnectionCredentials{}, err
	}
	return q.reader.GetConnectionCredentials(ctx, msg.Request)
}
