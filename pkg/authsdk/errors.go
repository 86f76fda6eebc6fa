package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

// APIError is the failure envelope. The server writes it with WriteError;
// the client returns it from every call that gets a non-2xx response.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	Code    string             `json:"error"`
	Message string             `json:"message"`
	Errors  []httpx.FieldError `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (HTTP %d)", e.Code, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on the error code, so errors.Is(err, authsdk.ErrRevoked) works
// for any message.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WriteError writes this error as a response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Code, e.Message, e.Errors...)
}

// WithMessage returns a copy with a different message.
func (e *APIError) WithMessage(msg string) *APIError {
	c := *e
	c.Message = msg
	return &c
}

// WithFields returns a copy carrying field errors.
func (e *APIError) WithFields(fields []httpx.FieldError) *APIError {
	c := *e
	c.Errors = fields
	return &c
}

// ============================================================================
// Predefined errors
// ============================================================================

var (
	ErrValidation = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       httpx.CodeValidation,
		Message:    "validation failed",
	}

	ErrUnauthorized = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       httpx.CodeUnauthorized,
		Message:    "authentication required",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       httpx.CodeInvalidCredentials,
		Message:    "invalid email or password",
	}

	ErrRevoked = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       httpx.CodeRevoked,
		Message:    "refresh token is revoked or expired",
	}

	ErrForbidden = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       httpx.CodeForbidden,
		Message:    "admin role required",
	}

	ErrNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Code:       httpx.CodeNotFound,
		Message:    "resource not found",
	}

	ErrConflict = &APIError{
		StatusCode: http.StatusConflict,
		Code:       httpx.CodeConflict,
		Message:    "email already registered",
	}

	ErrRateLimited = &APIError{
		StatusCode: http.StatusTooManyRequests,
		Code:       httpx.CodeRateLimited,
		Message:    "too many requests",
	}

	ErrServer = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       httpx.CodeServerError,
		Message:    "an internal error occurred",
	}
)

// parseErrorResponse builds an APIError from a failure body. Bodies that are
// not an envelope still yield an error carrying the status.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = http.StatusText(resp.StatusCode)
		apiErr.Message = string(body)
	}
	return apiErr
}
