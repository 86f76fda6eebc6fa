package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/pkg/authsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

const maxBodyBytes = 1 << 20

type validatable interface {
	Validate() []httpx.FieldError
}

// decodeRequest reads a JSON body into dst and runs its validation tags.
// On failure the error response has been written and false is returned.
func decodeRequest[T validatable](w http.ResponseWriter, r *http.Request, dst *T) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		authsdk.ErrValidation.WithMessage("request body must be valid JSON").WriteError(w)
		return false
	}

	if errs := (*dst).Validate(); errs != nil {
		authsdk.ErrValidation.WithMessage("validation failed for some fields").WithFields(errs).WriteError(w)
		return false
	}
	return true
}

func toProfile(p domain.Profile) authsdk.Profile {
	return authsdk.Profile{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Role:      string(p.Role),
		CreatedAt: p.CreatedAt,
	}
}

func toPage(p domain.UserPage) authsdk.UserPage {
	users := make([]authsdk.Profile, 0, len(p.Users))
	for _, u := range p.Users {
		users = append(users, toProfile(u))
	}
	return authsdk.UserPage{
		Page:        p.Page,
		Limit:       p.Limit,
		Users:       users,
		TotalUsers:  p.TotalUsers,
		TotalPages:  p.TotalPages,
		CurrentPage: p.CurrentPage,
	}
}

func toTokenPair(p domain.TokenPair) authsdk.TokenPair {
	return authsdk.TokenPair{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		ExpiresIn:    int(p.ExpiresIn.Seconds()),
	}
}

func writeSourced(w http.ResponseWriter, message string, data any, src domain.Source) {
	httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
		Success: true,
		Message: message,
		Data:    data,
		Source:  string(src),
	})
}
