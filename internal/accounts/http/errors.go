package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/authsdk"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// writeServiceError maps a service error kind to its response. Only
// unexpected failures are logged, once, with the request logger.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *authsdk.APIError

	switch {
	case errors.Is(err, service.ErrValidation):
		apiErr = authsdk.ErrValidation.WithMessage(validationMessage(err))
	case errors.Is(err, service.ErrInvalidCredentials):
		apiErr = authsdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrRevoked):
		apiErr = authsdk.ErrRevoked
	case errors.Is(err, service.ErrForbidden):
		apiErr = authsdk.ErrForbidden
	case errors.Is(err, service.ErrNotFound):
		apiErr = authsdk.ErrNotFound.WithMessage("user not found")
	case errors.Is(err, service.ErrConflict):
		apiErr = authsdk.ErrConflict
	case errors.Is(err, service.ErrBootstrapDisabled):
		apiErr = authsdk.ErrNotFound.WithMessage("bootstrap endpoint is not enabled")
	case errors.Is(err, service.ErrBootstrapUnauthorized):
		apiErr = authsdk.ErrUnauthorized.WithMessage("invalid bootstrap token")
	case errors.Is(err, service.ErrBootstrapAlready):
		apiErr = authsdk.ErrConflict.WithMessage("system has already been bootstrapped")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		apiErr = authsdk.ErrServer
		if id := slogx.RequestID(r.Context()); id != "" {
			apiErr = apiErr.WithMessage(apiErr.Message + " (request " + id + ")")
		}
	}

	apiErr.WriteError(w)
}

// validationMessage strips the kind prefix from a wrapped validation error.
func validationMessage(err error) string {
	msg := err.Error()
	if _, rest, ok := strings.Cut(msg, service.ErrValidation.Error()+": "); ok {
		return rest
	}
	return msg
}
