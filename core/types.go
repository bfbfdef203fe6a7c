package core

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Optional tracks whether a value was explicitly provided. The zero value is
// "not set", which is distinct from a set zero value.
type Optional[T any] struct {
	value T
	set   bool
}

func Some[T any](value T) Optional[T] {
	return Optional[T]{value: value, set: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

func (o Optional[T]) IsSet() bool {
	return o.set
}

func (o Optional[T]) OrElse(fallback T) T {
	if !o.set {
		return fallback
	}
	return o.value
}

type HTTPMethod string

const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodPatch  HTTPMethod = "PATCH"
	MethodDelete HTTPMethod = "DELETE"
)

// HTTPMethods lists the closed set of methods accepted by the proxy.
func HTTPMethods() []HTTPMethod {
	return []HTTPMethod{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete}
}

// ParseHTTPMethod is case-sensitive: "get" is rejected.
func ParseHTTPMethod(raw string) (HTTPMethod, error) {
	method := HTTPMethod(raw)
	if !method.Valid() {
		return "", fmt.Errorf("%w: unsupported method %q", ErrInvalidMethod, raw)
	}
	return method, nil
}

func (m HTTPMethod) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
		return true
	default:
		return false
	}
}

func (m HTTPMethod) String() string {
	return string(m)
}

// ConnectionCredentials is the session issued by the integrations API for a
// connection. Values are returned by copy and never modified by the client.
type ConnectionCredentials struct {
	AccessToken string `json:"accessToken"`
	InstanceURL string `json:"instanceUrl"`
	Environment string `json:"environment"`
	Region      string `json:"region"`
	TokenType   string `json:"tokenType"`
	ExpiresAt   string `json:"expiresAt"`
}

// ExpiresAtTime parses ExpiresAt as an RFC 3339 timestamp.
func (c ConnectionCredentials) ExpiresAtTime() (time.Time, error) {
	raw := strings.TrimSpace(c.ExpiresAt)
	if raw == "" {
		return time.Time{}, fmt.Errorf("core: expiresAt is empty")
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999999"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("core: expiresAt %q is not an RFC 3339 timestamp", raw)
}

// ExpiredAt reports whether the token is expired at now, treating tokens
// within skew of expiry as expired. Unparseable timestamps count as expired.
func (c ConnectionCredentials) ExpiredAt(now time.Time, skew time.Duration) bool {
	expiresAt, err := c.ExpiresAtTime()
	if err != nil {
		return true
	}
	if skew < 0 {
		skew = 0
	}
	return !expiresAt.After(now.UTC().Add(skew))
}

// AuthorizationHeader renders the value for an Authorization header against
// InstanceURL.
func (c ConnectionCredentials) AuthorizationHeader() string {
	tokenType := strings.TrimSpace(c.TokenType)
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return tokenType + " " + strings.TrimSpace(c.AccessToken)
}

func (c ConnectionCredentials) String() string {
	return fmt.Sprintf(
		"ConnectionCredentials{instanceUrl=%s environment=%s region=%s tokenType=%s expiresAt=%s accessToken=%s}",
		c.InstanceURL, c.Environment, c.Region, c.TokenType, c.ExpiresAt, RedactedValue,
	)
}

func (c ConnectionCredentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("instance_url", c.InstanceURL),
		slog.String("environment", c.Environment),
		slog.String("region", c.Region),
		slog.String("token_type", c.TokenType),
		slog.String("expires_at", c.ExpiresAt),
		slog.String("access_token", RedactedValue),
	)
}

// SalesforceProxyRequest describes a downstream Salesforce API call to be
// forwarded by the integrations API. Every field is optional; unset fields
// are omitted on the wire.
type SalesforceProxyRequest struct {
	Method Optional[HTTPMethod]
	Path   Optional[string]
	Query  Optional[map[string]any]
	Data   Optional[any]
}

func NewSalesforceProxyRequest() SalesforceProxyRequest {
	return SalesforceProxyRequest{}
}

func (r SalesforceProxyRequest) WithMethod(method HTTPMethod) SalesforceProxyRequest {
	r.Method = Some(method)
	return r
}

func (r SalesforceProxyRequest) WithPath(path string) SalesforceProxyRequest {
	r.Path = Some(path)
	return r
}

func (r SalesforceProxyRequest) WithQuery(query map[string]any) SalesforceProxyRequest {
	r.Query = Some(cloneQuery(query))
	return r
}

func (r SalesforceProxyRequest) WithData(data any) SalesforceProxyRequest {
	r.Data = Some(data)
	return r
}

func cloneQuery(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
