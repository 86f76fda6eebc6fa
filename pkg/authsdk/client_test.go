package authsdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	errs := RegisterRequest{Email: "nope", Password: "short"}.Validate()
	require.ElementsMatch(t, []httpx.FieldError{
		{Field: "name", Message: "required"},
		{Field: "email", Message: "must be a valid email address"},
		{Field: "password", Message: "too short (min 8)"},
	}, errs)

	require.Nil(t, RegisterRequest{Name: "A", Email: "a@example.com", Password: "long-enough"}.Validate())
	require.Nil(t, UpdateProfileRequest{}.Validate())

	bad := "x"
	require.Len(t, UpdateProfileRequest{Email: &bad}.Validate(), 1)
}

func TestAPIErrorRoundTrip(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	ErrConflict.WithFields([]httpx.FieldError{{Field: "email", Message: "taken"}}).WriteError(rec)
	require.Equal(t, http.StatusConflict, rec.Code)

	err := parseErrorResponse(rec.Result(), rec.Body.Bytes())
	require.ErrorIs(t, err, ErrConflict)
	require.NotErrorIs(t, err, ErrNotFound)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "taken", apiErr.Errors[0].Message)
}

func TestParseErrorResponseNonEnvelope(t *testing.T) {
	t.Parallel()

	resp := &http.Response{StatusCode: http.StatusBadGateway}
	err := parseErrorResponse(resp, []byte("upstream down"))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, "upstream down", apiErr.Message)
}

func TestSessionRefreshesExpiredToken(t *testing.T) {
	var refreshes atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteOK(w, http.StatusOK, "", TokenPair{AccessToken: "a1", RefreshToken: "r1", ExpiresIn: 0})
	})
	mux.HandleFunc("POST /api/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		var req RefreshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "r1", req.RefreshToken)
		refreshes.Add(1)
		httpx.WriteOK(w, http.StatusOK, "", TokenPair{AccessToken: "a2", RefreshToken: "r2", ExpiresIn: 3600})
	})
	mux.HandleFunc("GET /api/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer a2" {
			ErrUnauthorized.WriteError(w)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, Response[Profile]{Success: true, Data: Profile{ID: "1"}, Source: "cache"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	s, err := NewClient(srv.URL).Authenticate(ctx, "a@example.com", "pw")
	require.NoError(t, err)

	me, source, err := s.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "1", me.ID)
	require.Equal(t, "cache", source)
	require.Equal(t, "r2", s.RefreshToken())

	_, _, err = s.Me(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, refreshes.Load())
}

func TestListPath(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/api/users/admin", listPath(0, 0))
	require.Equal(t, "/api/users/admin?limit=10&page=2", listPath(2, 10))
}
