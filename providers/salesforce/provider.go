package salesforce

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/appnigma/go-integrations-client/core"
)

const (
	ProviderID        = "salesforce"
	DefaultAPIVersion = "v60.0"
)

// Requests builds SalesforceProxyRequest values for the Salesforce REST API.
// Paths are relative to the connection's instance URL; the proxy resolves
// them.
type Requests struct {
	APIVersion string
}

func New(apiVersion string) Requests {
	return Requests{APIVersion: apiVersion}
}

func (r Requests) version() string {
	version := strings.TrimSpace(r.APIVersion)
	if version == "" {
		return DefaultAPIVersion
	}
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return version
}

// DataPath joins escaped segments under /services/data/<version>.
func (r Requests) DataPath(segments ...string) string {
	var b strings.Builder
	b.WriteString("/services/data/")
	b.WriteString(r.version())
	for _, segment := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(segment))
	}
	return b.String()
}

func (r Requests) SObjectPath(sobject string) (string, error) {
	if err := validateName("sobject", sobject); err != nil {
		return "", err
	}
	return r.DataPath("sobjects", strings.TrimSpace(sobject)), nil
}

func (r Requests) SObjectRecordPath(sobject string, id string) (string, error) {
	if err := validateName("sobject", sobject); err != nil {
		return "", err
	}
	if err := validateName("record id", id); err != nil {
		return "", err
	}
	return r.DataPath("sobjects", strings.TrimSpace(sobject), strings.TrimSpace(id)), nil
}

func (r Requests) QueryPath() string {
	return r.DataPath("query")
}

func (r Requests) QueryAllPath() string {
	return r.DataPath("queryAll")
}

func (r Requests) LimitsPath() string {
	return r.DataPath("limits")
}

// Query runs a SOQL query. Follow QueryResult.NextRecordsURL with QueryMore.
func (r Requests) Query(soql string) (core.SalesforceProxyRequest, error) {
	return r.query(r.QueryPath(), soql)
}

// QueryAll includes deleted and archived records.
func (r Requests) QueryAll(soql string) (core.SalesforceProxyRequest, error) {
	return r.query(r.QueryAllPath(), soql)
}

func (r Requests) query(path string, soql string) (core.SalesforceProxyRequest, error) {
	soql = strings.TrimSpace(soql)
	if soql == "" {
		return core.SalesforceProxyRequest{}, fmt.Errorf("providers/salesforce: soql is required")
	}
	return core.NewSalesforceProxyRequest().
		WithMethod(core.MethodGet).
		WithPath(path).
		WithQuery(map[string]any{"q": soql}), nil
}

// QueryMore fetches the next page using the nextRecordsUrl of a previous
// query result.
func (r Requests) QueryMore(nextRecordsURL string) (core.SalesforceProxyRequest, error) {
	next := strings.TrimSpace(nextRecordsURL)
	if !strings.HasPrefix(next, "/services/data/") {
		return core.SalesforceProxyRequest{}, fmt.Errorf("providers/salesforce: invalid next records url %q", nextRecordsURL)
	}
	return core.NewSalesforceProxyRequest().
		WithMethod(core.MethodGet).
		WithPath(next), nil
}

// GetRecord reads one record. With no fields Salesforce returns all
// accessible fields.
func (r Requests) GetRecord(sobject string, id string, fields ...string) (core.SalesforceProxyRequest, error) {
	path, err := r.SObjectRecordPath(sobject, id)
	if err != nil {
		return core.SalesforceProxyRequest{}, err
	}
	req := core.NewSalesforceProxyRequest().
		WithMethod(core.MethodGet).
		WithPath(path)
	if selected := compactFields(fields); len(selected) > 0 {
		req = req.WithQuery(map[string]any{"fields": strings.Join(selected, ",")})
	}
	return req, nil
}

func (r Requests) CreateRecord(sobject string, fields map[string]any) (core.SalesforceProxyRequest, error) {
	path, err := r.SObjectPath(sobject)
	if err != nil {
		return core.SalesforceProxyRequest{}, err
	}
	if len(fields) == 0 {
		return core.SalesforceProxyRequest{}, fmt.Errorf("providers/salesforce: record fields are required")
	}
	return core.NewSalesforceProxyRequest().
		WithMethod(core.MethodPost).
		WithPath(path).
		WithData(cloneMetadata(fields)), nil
}

func (r Requests) UpdateRecord(sobject string, id string, fields map[string]any) (core.SalesforceProxyRequest, error) {
	path, err := r.SObjectRecordPath(sobject, id)
	if err != nil {
		return core.SalesforceProxyRequest{}, err
	}
	if len(fields) == 0 {
		return core.SalesforceProxyRequest{}, fmt.Errorf("providers/salesforce: record fields are required")
	}
	return core.NewSalesforceProxyRequest().
		WithMethod(core.MethodPatch).
		WithPath(path).
		WithData(cloneMetadata(fields)), nil
}

func (r Requests) DeleteRecord(sobject string, id string) (core.SalesforceProxyRequest, error) {
	path, err := r.SObjectRecordPath(sobject, id)
	if err != nil {
		return core.SalesforceProxyRequest{}, err
	}
	return core.NewSalesforceProxyRequest().
		WithMethod(core.MethodDelete).
		WithPath(path), nil
}

// Describe returns sobject metadata; an empty name describes the org's
// global sobject list.
func (r Requests) Describe(sobject string) (core.SalesforceProxyRequest, error) {
	path := r.DataPath("sobjects")
	if strings.TrimSpace(sobject) != "" {
		if err := validateName("sobject", sobject); err != nil {
			return core.SalesforceProxyRequest{}, err
		}
		path = r.DataPath("sobjects", strings.TrimSpace(sobject), "describe")
	}
	return core.NewSalesforceProxyRequest().
		WithMethod(core.MethodGet).
		WithPath(path), nil
}

func (r Requests) Limits() core.SalesforceProxyRequest {
	return core.NewSalesforceProxyRequest().
		WithMethod(core.MethodGet).
		WithPath(r.LimitsPath())
}

func validateName(kind string, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("providers/salesforce: %s is required", kind)
	}
	if strings.ContainsAny(trimmed, "/?#") {
		return fmt.Errorf("providers/salesforce: invalid %s %q", kind, value)
	}
	return nil
}

func compactFields(fields []string) []string {
	out := make([]string, 0, len(fields))
	seen := map[string]struct{}{}
	for _, field := range fields {
		trimmed := strings.TrimSpace(field)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func cloneMetadata(input map[string]any) map[string]any {
	if len(input) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
