package salesforce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/appnigma/go-integrations-client/core"
	"github.com/tidwall/gjson"
)

type QueryResult[T any] struct {
	TotalSize      int    `json:"totalSize"`
	Done           bool   `json:"done"`
	NextRecordsURL string `json:"nextRecordsUrl,omitempty"`
	Records        []T    `json:"records"`
}

func DecodeQueryResult[T any](response core.ProxyResponse) (QueryResult[T], error) {
	var result QueryResult[T]
	if err := response.Decode(&result); err != nil {
		return QueryResult[T]{}, err
	}
	return result, nil
}

type SaveResult struct {
	ID      string  `json:"id"`
	Success bool    `json:"success"`
	Errors  []Error `json:"errors"`
}

// Error is one entry of a Salesforce REST error array.
type Error struct {
	Message   string   `json:"message"`
	ErrorCode string   `json:"errorCode"`
	Fields    []string `json:"fields,omitempty"`
}

func (e Error) Error() string {
	if e.ErrorCode == "" {
		return e.Message
	}
	return e.ErrorCode + ": " + e.Message
}

// ErrorsFromAPIError extracts Salesforce error entries from a proxy
// failure. It returns nil when err is not an API error or carries none.
func ErrorsFromAPIError(err error) []Error {
	var apiErr *core.APIError
	if !errors.As(err, &apiErr) || apiErr.ResponseBody == nil {
		return nil
	}
	body, marshalErr := json.Marshal(apiErr.ResponseBody)
	if marshalErr != nil {
		return nil
	}
	return ParseErrors(body)
}

// ParseErrors reads [{"message","errorCode","fields"}], either at the top
// level or under an "errors" key.
func ParseErrors(body []byte) []Error {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return nil
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		parsed = parsed.Get("errors")
	}
	if !parsed.IsArray() {
		return nil
	}
	var out []Error
	parsed.ForEach(func(_, item gjson.Result) bool {
		message := item.Get("message").String()
		code := item.Get("errorCode").String()
		if message == "" && code == "" {
			return true
		}
		entry := Error{Message: message, ErrorCode: code}
		for _, field := range item.Get("fields").Array() {
			entry.Fields = append(entry.Fields, field.String())
		}
		out = append(out, entry)
		return true
	})
	return out
}

// LimitInfo is the parsed Sforce-Limit-Info header, e.g. "api-usage=25/15000".
type LimitInfo struct {
	Used int
	Max  int
}

func (l LimitInfo) Remaining() int {
	if l.Max <= l.Used {
		return 0
	}
	return l.Max - l.Used
}

func ParseLimitInfo(header string) (LimitInfo, bool) {
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || strings.TrimSpace(key) != "api-usage" {
			continue
		}
		usedRaw, maxRaw, ok := strings.Cut(strings.TrimSpace(value), "/")
		if !ok {
			return LimitInfo{}, false
		}
		used, err := strconv.Atoi(strings.TrimSpace(usedRaw))
		if err != nil {
			return LimitInfo{}, false
		}
		limit, err := strconv.Atoi(strings.TrimSpace(maxRaw))
		if err != nil {
			return LimitInfo{}, false
		}
		return LimitInfo{Used: used, Max: limit}, true
	}
	return LimitInfo{}, false
}

// Proxy is the subset of the client used to page through query results.
type Proxy interface {
	ProxySalesforceRequest(ctx context.Context, input core.ProxySalesforceRequestInput) (core.ProxyResponse, error)
}

// QueryAllPages runs soql and follows nextRecordsUrl until the result set is
// done. Every page is sent with target's connection and integration ids;
// target.Request is replaced. maxPages <= 0 means no limit.
func QueryAllPages[T any](
	ctx context.Context,
	proxy Proxy,
	requests Requests,
	target core.ProxySalesforceRequestInput,
	soql string,
	maxPages int,
) ([]T, error) {
	if proxy == nil {
		return nil, fmt.Errorf("providers/salesforce: proxy is required")
	}
	req, err := requests.Query(soql)
	if err != nil {
		return nil, err
	}

	var records []T
	for page := 1; ; page++ {
		input := target
		input.Request = req
		response, err := proxy.ProxySalesforceRequest(ctx, input)
		if err != nil {
			return records, err
		}
		result, err := DecodeQueryResult[T](response)
		if err != nil {
			return records, err
		}
		records = append(records, result.Records...)
		if result.Done || result.NextRecordsURL == "" {
			return records, nil
		}
		if maxPages > 0 && page >= maxPages {
			return records, fmt.Errorf("providers/salesforce: query exceeded %d pages", maxPages)
		}
		req, err = requests.QueryMore(result.NextRecordsURL)
		if err != nil {
			return records, err
		}
	}
}
