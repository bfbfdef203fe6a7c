package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/appnigma/go-integrations-client/version"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderAccept        = "Accept"
	HeaderContentType   = "Content-Type"
	HeaderUserAgent     = "User-Agent"
	HeaderConnectionID  = "X-Connection-Id"
	HeaderIntegrationID = "X-Integration-Id"
	HeaderLimitInfo     = "Sforce-Limit-Info"

	contentTypeJSON = "application/json"

	credentialsPathFormat = "/api/v1/connections/%s/credentials"
	salesforceProxyPath   = "/api/v1/proxy/salesforce"
)

// Client talks to the Appnigma integrations API. It is safe for concurrent
// use.
type Client struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	transport       TransportAdapter
	signer          Signer
	credentialCache CredentialCache
	now             func() time.Time
}

type GetConnectionCredentialsRequest struct {
	ConnectionID  string
	IntegrationID string
}

type ProxySalesforceRequestInput struct {
	ConnectionID  string
	IntegrationID string
	Request       SalesforceProxyRequest
}

// ProxyResponse is the integrations API response to a proxied call. Body
// holds the downstream payload untouched.
type ProxyResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       json.RawMessage
}

// Decode unmarshals Body into out. An empty body leaves out untouched.
func (r ProxyResponse) Decode(out any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("core: decode proxy response body: %w", err)
	}
	return nil
}

// Header returns a response header by case-insensitive name.
func (r ProxyResponse) Header(name string) string {
	return headerValue(r.Headers, name)
}

// LimitInfo returns the forwarded Sforce-Limit-Info header, if any.
func (r ProxyResponse) LimitInfo() string {
	return r.Header(HeaderLimitInfo)
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	builder := defaultClientBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("appnigma", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = MapError
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.now == nil {
		builder.now = func() time.Time { return time.Now().UTC() }
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err = applyExplicitConfig(finalConfig, builder.runtimeConfig, builder.explicitKeys)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	if strings.TrimSpace(finalConfig.UserAgent) == "" {
		finalConfig.UserAgent = version.UserAgent()
	}

	transport := builder.transport
	if transport == nil {
		if builder.transportFactory == nil {
			return nil, mapBuildError(builder.errorMapper, fmt.Errorf("core: transport is not configured"))
		}
		transport, err = builder.transportFactory(finalConfig, builder.httpClient)
		if err != nil {
			return nil, mapBuildError(builder.errorMapper, err)
		}
	}
	if builder.signer == nil {
		builder.signer = APIKeySigner{APIKey: finalConfig.APIKey}
	}

	return &Client{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorMapper:     builder.errorMapper,
		transport:       transport,
		signer:          builder.signer,
		credentialCache: builder.credentialCache,
		now:             builder.now,
	}, nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (c *Client) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.config
}

func (c *Client) Logger() Logger {
	if c == nil {
		return glog.Nop()
	}
	return c.logger
}

// MapError converts err with the configured ErrorMapper.
func (c *Client) MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	mapper := MapError
	if c != nil && c.errorMapper != nil {
		mapper = c.errorMapper
	}
	return mapper(err)
}

// GetConnectionCredentials returns the active credentials for a connection.
// When a CredentialCache is configured, unexpired cached values are served
// without a network call.
func (c *Client) GetConnectionCredentials(ctx context.Context, req GetConnectionCredentialsRequest) (credentials ConnectionCredentials, err error) {
	if c == nil {
		return ConnectionCredentials{}, fmt.Errorf("core: client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := c.now()
	connectionID := strings.TrimSpace(req.ConnectionID)
	integrationID := strings.TrimSpace(req.IntegrationID)
	fields := map[string]any{
		"connection_id": connectionID,
	}
	if integrationID != "" {
		fields["integration_id"] = integrationID
	}
	defer func() {
		c.observeOperation(ctx, startedAt, OperationGetConnectionCredentials, err, fields)
	}()

	if connectionID == "" {
		return ConnectionCredentials{}, requestValidationError("connection_id", "connection id is required")
	}

	if c.credentialCache != nil {
		cached, cacheErr := c.credentialCache.Get(ctx, connectionID)
		switch {
		case cacheErr == nil && !cached.ExpiredAt(c.now(), c.config.CredentialExpirySkew):
			fields["cache"] = "hit"
			return cached, nil
		case cacheErr != nil && !errors.Is(cacheErr, ErrCredentialsNotCached):
			c.logDebug(ctx, "credential cache read failed", map[string]any{
				"connection_id": connectionID,
				"error":         cacheErr.Error(),
			})
		}
		fields["cache"] = "miss"
	}

	headers := map[string]string{}
	if integrationID != "" {
		headers[HeaderIntegrationID] = integrationID
	}
	response, err := c.do(ctx, TransportRequest{
		Method:  http.MethodGet,
		URL:     c.config.normalizedBaseURL() + fmt.Sprintf(credentialsPathFormat, url.PathEscape(connectionID)),
		Headers: headers,
	})
	if response.StatusCode > 0 {
		fields["status_code"] = response.StatusCode
	}
	if err != nil {
		return ConnectionCredentials{}, err
	}

	credentials, err = DecodeConnectionCredentials(response.Body)
	if err != nil {
		return ConnectionCredentials{}, err
	}

	if c.credentialCache != nil {
		if putErr := c.credentialCache.Put(ctx, connectionID, credentials); putErr != nil {
			c.logDebug(ctx, "credential cache write failed", map[string]any{
				"connection_id": connectionID,
				"error":         putErr.Error(),
			})
		}
	}
	return credentials, nil
}

// InvalidateConnectionCredentials drops a cached credential entry. It is a
// no-op when no cache is configured.
func (c *Client) InvalidateConnectionCredentials(ctx context.Context, connectionID string) (err error) {
	if c == nil {
		return fmt.Errorf("core: client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := c.now()
	connectionID = strings.TrimSpace(connectionID)
	fields := map[string]any{"connection_id": connectionID}
	defer func() {
		c.observeOperation(ctx, startedAt, OperationInvalidateCredentials, err, fields)
	}()

	if connectionID == "" {
		return requestValidationError("connection_id", "connection id is required")
	}
	if c.credentialCache == nil {
		return nil
	}
	return c.credentialCache.Invalidate(ctx, connectionID)
}

// ProxySalesforceRequest forwards a Salesforce API call through the
// integrations API using the connection's stored credentials. The request is
// validated before any network activity.
func (c *Client) ProxySalesforceRequest(ctx context.Context, input ProxySalesforceRequestInput) (result ProxyResponse, err error) {
	if c == nil {
		return ProxyResponse{}, fmt.Errorf("core: client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := c.now()
	connectionID := strings.TrimSpace(input.ConnectionID)
	integrationID := strings.TrimSpace(input.IntegrationID)
	fields := map[string]any{
		"connection_id": connectionID,
	}
	if integrationID != "" {
		fields["integration_id"] = integrationID
	}
	if method, ok := input.Request.Method.Get(); ok {
		fields["method"] = string(method)
	}
	if path, ok := input.Request.Path.Get(); ok {
		fields["path"] = path
	}
	defer func() {
		c.observeOperation(ctx, startedAt, OperationProxySalesforceRequest, err, fields)
	}()

	if connectionID == "" {
		return ProxyResponse{}, requestValidationError("connection_id", "connection id is required")
	}
	body, err := input.Request.MarshalJSON()
	if err != nil {
		return ProxyResponse{}, err
	}

	headers := map[string]string{
		HeaderContentType:  contentTypeJSON,
		HeaderConnectionID: connectionID,
	}
	if integrationID != "" {
		headers[HeaderIntegrationID] = integrationID
	}
	response, err := c.do(ctx, TransportRequest{
		Method:  http.MethodPost,
		URL:     c.config.normalizedBaseURL() + salesforceProxyPath,
		Headers: headers,
		Body:    body,
	})
	if response.StatusCode > 0 {
		fields["status_code"] = response.StatusCode
	}
	if err != nil {
		return ProxyResponse{}, err
	}

	return ProxyResponse{
		StatusCode: response.StatusCode,
		Headers:    copyStringMap(response.Headers),
		Body:       json.RawMessage(append([]byte(nil), response.Body...)),
	}, nil
}

// do sends exactly one request. Non-2xx responses and transport failures
// come back as *APIError; the response is returned alongside so callers can
// record the status.
func (c *Client) do(ctx context.Context, req TransportRequest) (TransportResponse, error) {
	if req.Headers == nil {
		req.Headers = map[string]string{}
	}
	req.Headers[HeaderAccept] = contentTypeJSON
	req.Headers[HeaderUserAgent] = c.config.UserAgent
	if req.Timeout <= 0 {
		req.Timeout = c.config.Timeout
	}
	if req.MaxResponseBodyBytes <= 0 {
		req.MaxResponseBodyBytes = c.config.MaxResponseBodyBytes
	}
	if c.signer != nil {
		if err := c.signer.Sign(ctx, &req); err != nil {
			return TransportResponse{}, newTransportAPIError("request signing failed", err)
		}
	}

	c.logDebug(ctx, "appnigma request", map[string]any{
		"method":  req.Method,
		"url":     req.URL,
		"headers": RedactHeaders(req.Headers),
	})

	response, err := c.transport.Do(ctx, req)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return response, apiErr
		}
		return response, newTransportAPIError("request failed", err)
	}

	c.logDebug(ctx, "appnigma response", map[string]any{
		"status_code": response.StatusCode,
		"bytes":       len(response.Body),
	})

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return response, NewAPIError(response.StatusCode, response.Body)
	}
	return response, nil
}

func headerValue(headers map[string]string, name string) string {
	if len(headers) == 0 {
		return ""
	}
	if value, ok := headers[name]; ok {
		return value
	}
	canonical := http.CanonicalHeaderKey(name)
	for key, value := range headers {
		if http.CanonicalHeaderKey(key) == canonical {
			return value
		}
	}
	return ""
}

func copyStringMap(input map[string]string) map[string]string {
	if len(input) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
