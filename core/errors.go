package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/tidwall/gjson"
)

const (
	ErrorCodeDecode          = "APPNIGMA_DECODE_ERROR"
	ErrorCodeBadInput        = "APPNIGMA_BAD_INPUT"
	ErrorCodeAPIBadRequest   = "APPNIGMA_API_BAD_REQUEST"
	ErrorCodeAPIUnauthorized = "APPNIGMA_API_UNAUTHORIZED"
	ErrorCodeAPIForbidden    = "APPNIGMA_API_FORBIDDEN"
	ErrorCodeAPINotFound     = "APPNIGMA_API_NOT_FOUND"
	ErrorCodeAPIConflict     = "APPNIGMA_API_CONFLICT"
	ErrorCodeAPIRateLimited  = "APPNIGMA_API_RATE_LIMITED"
	ErrorCodeAPIUnavailable  = "APPNIGMA_API_UNAVAILABLE"
	ErrorCodeInternal        = "APPNIGMA_INTERNAL_ERROR"
)

var (
	ErrDecode               = errors.New("core: decode failed")
	ErrInvalidMethod        = errors.New("core: invalid http method")
	ErrInvalidRequest       = errors.New("core: invalid request")
	ErrCredentialsNotCached = errors.New("core: credentials not cached")
)

// DecodeError reports a value that does not match the declared shape of a
// data contract type. It never carries a partially decoded value.
type DecodeError struct {
	Type   string
	Field  string
	Reason string
	Err    error
}

func newDecodeError(typeName string, field string, reason string, cause error) *DecodeError {
	return &DecodeError{
		Type:   typeName,
		Field:  field,
		Reason: reason,
		Err:    cause,
	}
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("appnigma: decode ")
	b.WriteString(e.Type)
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %q", e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func (e *DecodeError) ToServiceError() *goerrors.Error {
	field := e.Field
	if field == "" {
		field = e.Type
	}
	return goerrors.NewValidation(e.Error(), goerrors.FieldError{
		Field:   field,
		Message: e.Reason,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorCodeDecode).
		WithMetadata(map[string]any{"type": e.Type})
}

// APIError is any failure surfaced while talking to the integrations API:
// a non-success status, or a transport failure (StatusCode == 0).
type APIError struct {
	StatusCode   int
	Message      string
	ResponseBody any
	Err          error
}

// NewAPIError builds an APIError from a non-success response, extracting a
// human-readable message from common error body shapes.
func NewAPIError(statusCode int, body []byte) *APIError {
	return &APIError{
		StatusCode:   statusCode,
		Message:      extractErrorMessage(statusCode, body),
		ResponseBody: parseResponseBody(body),
	}
}

func newTransportAPIError(message string, cause error) *APIError {
	return &APIError{
		Message: message,
		Err:     cause,
	}
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	message := strings.TrimSpace(e.Message)
	if e.StatusCode > 0 {
		return fmt.Sprintf("appnigma: API request failed with status %d: %s", e.StatusCode, message)
	}
	if e.Err != nil {
		return fmt.Sprintf("appnigma: %s: %v", message, e.Err)
	}
	return "appnigma: " + message
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Temporary reports whether the failure is on the remote side or the
// network, as opposed to a rejected request.
func (e *APIError) Temporary() bool {
	if e == nil {
		return false
	}
	return e.StatusCode == 0 || e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func (e *APIError) ToServiceError() *goerrors.Error {
	category, textCode := apiErrorCategory(e.StatusCode)
	code := e.StatusCode
	if code == 0 {
		code = http.StatusBadGateway
	}
	metadata := map[string]any{"status_code": e.StatusCode}
	if e.ResponseBody != nil {
		metadata["response_body"] = e.ResponseBody
	}
	var out *goerrors.Error
	if e.Err != nil {
		out = goerrors.Wrap(e.Err, category, e.Error())
	} else {
		out = goerrors.New(e.Error(), category)
	}
	return out.
		WithCode(code).
		WithTextCode(textCode).
		WithMetadata(metadata)
}

func apiErrorCategory(status int) (goerrors.Category, string) {
	switch {
	case status == http.StatusUnauthorized:
		return goerrors.CategoryAuth, ErrorCodeAPIUnauthorized
	case status == http.StatusForbidden:
		return goerrors.CategoryAuthz, ErrorCodeAPIForbidden
	case status == http.StatusNotFound:
		return goerrors.CategoryNotFound, ErrorCodeAPINotFound
	case status == http.StatusConflict:
		return goerrors.CategoryConflict, ErrorCodeAPIConflict
	case status == http.StatusTooManyRequests:
		return goerrors.CategoryRateLimit, ErrorCodeAPIRateLimited
	case status >= 400 && status < 500:
		return goerrors.CategoryBadInput, ErrorCodeAPIBadRequest
	default:
		return goerrors.CategoryExternal, ErrorCodeAPIUnavailable
	}
}

var errorMessagePaths = []string{
	"message",
	"error.message",
	"error",
	"error_description",
	"detail",
	"0.message",
	"errors.0.message",
}

func extractErrorMessage(statusCode int, body []byte) string {
	if len(body) > 0 && gjson.ValidBytes(body) {
		for _, path := range errorMessagePaths {
			result := gjson.GetBytes(body, path)
			if result.Type != gjson.String {
				continue
			}
			if message := strings.TrimSpace(result.String()); message != "" {
				return message
			}
		}
	}
	if text := http.StatusText(statusCode); text != "" {
		return text
	}
	return fmt.Sprintf("unexpected status %d", statusCode)
}

func parseResponseBody(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	var parsed any
	if err := json.Unmarshal(body, &parsed); err == nil {
		return parsed
	}
	return string(body)
}

// requestValidationError wraps ErrInvalidRequest so callers can match it
// with errors.Is.
func requestValidationError(field string, message string) error {
	out := goerrors.Wrap(ErrInvalidRequest, goerrors.CategoryValidation, "appnigma: validation failed").
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorCodeBadInput)
	out.ValidationErrors = goerrors.ValidationErrors{{Field: field, Message: message}}
	return out
}

// MapError converts any client error into a go-errors envelope carrying a
// stable text code and HTTP status. It is the default ErrorMapper.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return decodeErr.ToServiceError()
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.ToServiceError()
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureErrorEnvelope(richErr)
	}
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrInvalidMethod):
		return ensureErrorEnvelope(goerrors.New(err.Error(), goerrors.CategoryBadInput).WithTextCode(ErrorCodeBadInput))
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ensureErrorEnvelope(goerrors.Wrap(err, goerrors.CategoryExternal, err.Error()).WithTextCode(ErrorCodeAPIUnavailable))
	}

	return ensureErrorEnvelope(goerrors.MapToError(err, goerrors.DefaultErrorMappers()))
}

func ensureErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = errorHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ErrorCodeBadInput
	case goerrors.CategoryNotFound:
		return ErrorCodeAPINotFound
	case goerrors.CategoryAuth:
		return ErrorCodeAPIUnauthorized
	case goerrors.CategoryAuthz:
		return ErrorCodeAPIForbidden
	case goerrors.CategoryConflict:
		return ErrorCodeAPIConflict
	case goerrors.CategoryRateLimit:
		return ErrorCodeAPIRateLimited
	case goerrors.CategoryExternal:
		return ErrorCodeAPIUnavailable
	default:
		return ErrorCodeInternal
	}
}

func errorHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
