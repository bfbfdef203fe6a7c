package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	TypeConnectionCredentials  = "ConnectionCredentials"
	TypeSalesforceProxyRequest = "SalesforceProxyRequest"
)

var credentialFields = []string{
	"accessToken",
	"instanceUrl",
	"environment",
	"region",
	"tokenType",
	"expiresAt",
}

var proxyRequestFields = map[string]struct{}{
	"method": {},
	"path":   {},
	"query":  {},
	"data":   {},
}

// DecodeConnectionCredentials validates and decodes a credentials payload.
// All six fields must be present as non-empty strings; unknown fields are
// ignored.
func DecodeConnectionCredentials(payload []byte) (ConnectionCredentials, error) {
	fields, err := decodeObject(TypeConnectionCredentials, payload)
	if err != nil {
		return ConnectionCredentials{}, err
	}

	values := make(map[string]string, len(credentialFields))
	for _, name := range credentialFields {
		raw, ok := fields[name]
		if !ok {
			return ConnectionCredentials{}, newDecodeError(TypeConnectionCredentials, name, "missing required field", nil)
		}
		value, err := decodeString(TypeConnectionCredentials, name, raw)
		if err != nil {
			return ConnectionCredentials{}, err
		}
		if strings.TrimSpace(value) == "" {
			return ConnectionCredentials{}, newDecodeError(TypeConnectionCredentials, name, "must not be empty", nil)
		}
		values[name] = value
	}

	return ConnectionCredentials{
		AccessToken: values["accessToken"],
		InstanceURL: values["instanceUrl"],
		Environment: values["environment"],
		Region:      values["region"],
		TokenType:   values["tokenType"],
		ExpiresAt:   values["expiresAt"],
	}, nil
}

// Validate applies the decoder's shape rules to an in-process value.
func (c ConnectionCredentials) Validate() error {
	values := map[string]string{
		"accessToken": c.AccessToken,
		"instanceUrl": c.InstanceURL,
		"environment": c.Environment,
		"region":      c.Region,
		"tokenType":   c.TokenType,
		"expiresAt":   c.ExpiresAt,
	}
	for _, name := range credentialFields {
		if strings.TrimSpace(values[name]) == "" {
			return newDecodeError(TypeConnectionCredentials, name, "must not be empty", nil)
		}
	}
	return nil
}

func (c *ConnectionCredentials) UnmarshalJSON(payload []byte) error {
	decoded, err := DecodeConnectionCredentials(payload)
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}

// DecodeSalesforceProxyRequest validates and decodes a proxy request. Any
// subset of fields is accepted; explicit nulls for query and data are kept
// as set values.
func DecodeSalesforceProxyRequest(payload []byte) (SalesforceProxyRequest, error) {
	fields, err := decodeObject(TypeSalesforceProxyRequest, payload)
	if err != nil {
		return SalesforceProxyRequest{}, err
	}

	unknown := make([]string, 0)
	for name := range fields {
		if _, ok := proxyRequestFields[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return SalesforceProxyRequest{}, newDecodeError(TypeSalesforceProxyRequest, unknown[0], "unknown field", nil)
	}

	req := SalesforceProxyRequest{}
	if raw, ok := fields["method"]; ok {
		value, err := decodeString(TypeSalesforceProxyRequest, "method", raw)
		if err != nil {
			return SalesforceProxyRequest{}, err
		}
		method, err := ParseHTTPMethod(value)
		if err != nil {
			return SalesforceProxyRequest{}, newDecodeError(TypeSalesforceProxyRequest, "method", "must be one of GET, POST, PUT, PATCH, DELETE", err)
		}
		req.Method = Some(method)
	}
	if raw, ok := fields["path"]; ok {
		value, err := decodeString(TypeSalesforceProxyRequest, "path", raw)
		if err != nil {
			return SalesforceProxyRequest{}, err
		}
		req.Path = Some(value)
	}
	if raw, ok := fields["query"]; ok {
		if isJSONNull(raw) {
			req.Query = Some[map[string]any](nil)
		} else {
			if firstByte(raw) != '{' {
				return SalesforceProxyRequest{}, newDecodeError(TypeSalesforceProxyRequest, "query", "expected object or null", nil)
			}
			query := map[string]any{}
			if err := decodeValue(raw, &query); err != nil {
				return SalesforceProxyRequest{}, newDecodeError(TypeSalesforceProxyRequest, "query", "invalid object", err)
			}
			req.Query = Some(query)
		}
	}
	if raw, ok := fields["data"]; ok {
		var data any
		if err := decodeValue(raw, &data); err != nil {
			return SalesforceProxyRequest{}, newDecodeError(TypeSalesforceProxyRequest, "data", "invalid JSON value", err)
		}
		req.Data = Some(data)
	}
	return req, nil
}

// Validate enforces the closed method set before a request is serialized.
func (r SalesforceProxyRequest) Validate() error {
	if method, ok := r.Method.Get(); ok && !method.Valid() {
		return newDecodeError(
			TypeSalesforceProxyRequest,
			"method",
			"must be one of GET, POST, PUT, PATCH, DELETE",
			fmt.Errorf("%w: unsupported method %q", ErrInvalidMethod, string(method)),
		)
	}
	return nil
}

type wireProxyRequest struct {
	Method json.RawMessage `json:"method,omitempty"`
	Path   json.RawMessage `json:"path,omitempty"`
	Query  json.RawMessage `json:"query,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

func (r SalesforceProxyRequest) MarshalJSON() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	wire := wireProxyRequest{}
	var err error
	if method, ok := r.Method.Get(); ok {
		if wire.Method, err = json.Marshal(string(method)); err != nil {
			return nil, err
		}
	}
	if path, ok := r.Path.Get(); ok {
		if wire.Path, err = json.Marshal(path); err != nil {
			return nil, err
		}
	}
	if query, ok := r.Query.Get(); ok {
		if wire.Query, err = json.Marshal(query); err != nil {
			return nil, newDecodeError(TypeSalesforceProxyRequest, "query", "not JSON encodable", err)
		}
	}
	if data, ok := r.Data.Get(); ok {
		if wire.Data, err = json.Marshal(data); err != nil {
			return nil, newDecodeError(TypeSalesforceProxyRequest, "data", "not JSON encodable", err)
		}
	}
	return json.Marshal(wire)
}

func (r *SalesforceProxyRequest) UnmarshalJSON(payload []byte) error {
	decoded, err := DecodeSalesforceProxyRequest(payload)
	if err != nil {
		return err
	}
	*r = decoded
	return nil
}

func decodeObject(typeName string, payload []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, newDecodeError(typeName, "", "empty payload", nil)
	}
	if trimmed[0] != '{' {
		return nil, newDecodeError(typeName, "", "expected JSON object", nil)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, newDecodeError(typeName, "", "invalid JSON", err)
	}
	return fields, nil
}

func decodeString(typeName string, field string, raw json.RawMessage) (string, error) {
	if firstByte(raw) != '"' {
		return "", newDecodeError(typeName, field, "expected string", nil)
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", newDecodeError(typeName, field, "expected string", err)
	}
	return value, nil
}

func decodeValue(raw json.RawMessage, target any) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	return decoder.Decode(target)
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
