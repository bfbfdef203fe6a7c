package sqlstore

import "github.com/appnigma/go-integrations-client/core"

var (
	_ core.CredentialCache = (*CredentialStore)(nil)
	_ core.CredentialCache = (*CachedCredentialStore)(nil)
)
