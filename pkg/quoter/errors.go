package quoter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// UnknownErrorMessage is used for envelope entries that carry no key, title or detail.
const UnknownErrorMessage = "Unknown error"

// ErrorDetail is a single entry of the Quoter error envelope.
type ErrorDetail struct {
	Key    string `json:"key,omitempty"    yaml:"key,omitempty"`
	Title  string `json:"title,omitempty"  yaml:"title,omitempty"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Message returns the most specific text the entry carries.
func (d ErrorDetail) Message() string {
	switch {
	case d.Detail != "":
		return d.Detail
	case d.Title != "":
		return d.Title
	case d.Key != "":
		return d.Key
	default:
		return UnknownErrorMessage
	}
}

// ErrorEnvelope is the error body returned by the Quoter API.
type ErrorEnvelope struct {
	Errors []ErrorDetail `json:"errors"`
}

// ParseErrorEnvelope decodes an error body. The boolean is false when the
// body is not JSON or has no errors array.
func ParseErrorEnvelope(data []byte) (*ErrorEnvelope, bool) {
	var raw struct {
		Errors *[]ErrorDetail `json:"errors"`
	}

	err := json.Unmarshal(data, &raw)
	if err != nil || raw.Errors == nil {
		return nil, false
	}

	return &ErrorEnvelope{Errors: *raw.Errors}, true
}

// Message joins the entries of the envelope with "; ".
func (e *ErrorEnvelope) Message() string {
	messages := make([]string, 0, len(e.Errors))
	for _, detail := range e.Errors {
		messages = append(messages, detail.Message())
	}

	return strings.Join(messages, "; ")
}

// APIError is returned when a request to the Quoter API fails after retries
// and error envelope translation.
type APIError struct {
	Message  string        `json:"message"             yaml:"message"`
	HTTPCode int           `json:"http_code,omitempty" yaml:"http_code,omitempty"`
	Errors   []ErrorDetail `json:"errors,omitempty"    yaml:"errors,omitempty"`

	// Err is the underlying failure when the error did not come from an envelope.
	Err error `json:"-" yaml:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.HTTPCode != 0 {
		return fmt.Sprintf("%s (http code: %d)", e.Message, e.HTTPCode)
	}

	return e.Message
}

// Unwrap returns the underlying failure, if any.
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIErrorFromEnvelope builds an APIError from a decoded envelope.
func NewAPIErrorFromEnvelope(envelope *ErrorEnvelope, httpCode int) *APIError {
	return &APIError{
		Message:  envelope.Message(),
		HTTPCode: httpCode,
		Errors:   envelope.Errors,
	}
}

// AuthError is returned when no access token can be obtained.
type AuthError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

// Unwrap returns the underlying failure, if any.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// ValidationError reports a missing or malformed caller-supplied parameter.
// It is surfaced directly and never retried.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewRequiredError returns a ValidationError for a missing required parameter.
func NewRequiredError(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "is required"}
}

// Static errors for err113 compliance.
var (
	ErrConfigRequired       = errors.New("config is required")
	ErrClientIDRequired     = errors.New("client ID is required")
	ErrClientSecretRequired = errors.New("client secret is required")
	ErrUnknownResource      = errors.New("unknown resource")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrNoMoreItems          = errors.New("no more items")
)

// IsNotFound checks if the error is a 404 from the API.
func IsNotFound(err error) bool {
	return hasHTTPCode(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is a 401 from the API.
func IsUnauthorized(err error) bool {
	return hasHTTPCode(err, http.StatusUnauthorized)
}

// IsRateLimited checks if the error is a 429 that outlived the retry budget.
func IsRateLimited(err error) bool {
	return hasHTTPCode(err, http.StatusTooManyRequests)
}

// IsAuthError checks if the error is an AuthError.
func IsAuthError(err error) bool {
	authErr := &AuthError{}

	return errors.As(err, &authErr)
}

// IsValidationError checks if the error is a ValidationError.
func IsValidationError(err error) bool {
	validationErr := &ValidationError{}

	return errors.As(err, &validationErr)
}

func hasHTTPCode(err error, code int) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.HTTPCode == code
	}

	return false
}
