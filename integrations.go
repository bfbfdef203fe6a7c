package integrations

import (
	"github.com/appnigma/go-integrations-client/core"
	"github.com/appnigma/go-integrations-client/transport"
	"github.com/appnigma/go-integrations-client/version"
)

// Version is the SDK release.
const Version = version.Version

type (
	AppnigmaClient   = core.Client
	AppnigmaAPIError = core.APIError

	Config                          = core.Config
	Option                          = core.Option
	ConnectionCredentials           = core.ConnectionCredentials
	SalesforceProxyRequest          = core.SalesforceProxyRequest
	HTTPMethod                      = core.HTTPMethod
	DecodeError                     = core.DecodeError
	GetConnectionCredentialsRequest = core.GetConnectionCredentialsRequest
	ProxySalesforceRequestInput     = core.ProxySalesforceRequestInput
	ProxyResponse                   = core.ProxyResponse
	CredentialCache                 = core.CredentialCache
	TransportAdapter                = core.TransportAdapter
	Signer                          = core.Signer
	MetricsRecorder                 = core.MetricsRecorder
)

const (
	MethodGet    = core.MethodGet
	MethodPost   = core.MethodPost
	MethodPut    = core.MethodPut
	MethodPatch  = core.MethodPatch
	MethodDelete = core.MethodDelete
)

var (
	ErrDecode               = core.ErrDecode
	ErrInvalidMethod        = core.ErrInvalidMethod
	ErrInvalidRequest       = core.ErrInvalidRequest
	ErrCredentialsNotCached = core.ErrCredentialsNotCached
)

var (
	WithLogger           = core.WithLogger
	WithLoggerProvider   = core.WithLoggerProvider
	WithMetricsRecorder  = core.WithMetricsRecorder
	WithErrorMapper      = core.WithErrorMapper
	WithConfigProvider   = core.WithConfigProvider
	WithOptionsResolver  = core.WithOptionsResolver
	WithTransport        = core.WithTransport
	WithTransportFactory = core.WithTransportFactory
	WithHTTPClient       = core.WithHTTPClient
	WithSigner           = core.WithSigner
	WithCredentialCache  = core.WithCredentialCache
	WithClock            = core.WithClock
	WithExplicitConfig   = core.WithExplicitConfig

	DecodeConnectionCredentials  = core.DecodeConnectionCredentials
	DecodeSalesforceProxyRequest = core.DecodeSalesforceProxyRequest
	NewSalesforceProxyRequest    = core.NewSalesforceProxyRequest
	NewMemoryCredentialCache     = core.NewMemoryCredentialCache
	ParseHTTPMethod              = core.ParseHTTPMethod
	MapError                     = core.MapError
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// NewClient builds a client that talks to the integrations API over the
// REST transport. Options may replace the transport or its HTTP client.
func NewClient(cfg Config, opts ...Option) (*AppnigmaClient, error) {
	all := make([]Option, 0, len(opts)+1)
	all = append(all, core.WithTransportFactory(transport.Factory))
	all = append(all, opts...)
	return core.NewClient(cfg, all...)
}

// VersionInfo reports build metadata for the SDK.
func VersionInfo() version.Info {
	return version.Get()
}
