package authsdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Session holds a token pair and refreshes the access token shortly before
// it expires. Session methods are safe for concurrent use.
type Session struct {
	client *Client

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

// NewSessionFromTokens creates a session from tokens obtained elsewhere.
func (c *Client) NewSessionFromTokens(pair TokenPair) *Session {
	return newSession(c, pair)
}

func newSession(client *Client, pair TokenPair) *Session {
	s := &Session{client: client}
	s.store(pair)
	return s
}

// store must be called with mu held for writing, or before the session is
// shared.
func (s *Session) store(pair TokenPair) {
	s.accessToken = pair.AccessToken
	s.refreshToken = pair.RefreshToken

	// Refresh 30 seconds before actual expiry
	s.expiresAt = time.Now().Add(time.Duration(pair.ExpiresIn)*time.Second - 30*time.Second)
}

// getValidToken returns a valid access token, automatically refreshing if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock (another goroutine may have refreshed)
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}
	if s.refreshToken == "" {
		return "", errors.New("access token expired and no refresh token available")
	}

	pair, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	s.store(pair)
	return s.accessToken, nil
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Logout revokes the session's refresh token.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	token := s.refreshToken
	s.refreshToken = ""
	s.mu.Unlock()

	if token == "" {
		return errors.New("no refresh token to revoke")
	}
	return s.client.Logout(ctx, token)
}

// Identity returns what the access token asserts.
func (s *Session) Identity(ctx context.Context) (Identity, error) {
	out, err := sessionCall[Identity](ctx, s, http.MethodGet, "/api/auth/profile", nil, http.StatusOK)
	return out.Data, err
}

// Me returns the caller's profile and whether it came from the cache or the
// database.
func (s *Session) Me(ctx context.Context) (Profile, string, error) {
	out, err := sessionCall[Profile](ctx, s, http.MethodGet, "/api/users/me", nil, http.StatusOK)
	return out.Data, out.Source, err
}

func (s *Session) UpdateMe(ctx context.Context, req UpdateProfileRequest) (Profile, error) {
	out, err := sessionCall[Profile](ctx, s, http.MethodPut, "/api/users/me", req, http.StatusOK)
	return out.Data, err
}

func (s *Session) DeleteMe(ctx context.Context) error {
	_, err := sessionCall[struct{}](ctx, s, http.MethodDelete, "/api/users/me", nil, http.StatusOK)
	return err
}

// ListUsers returns one page of users. Requires the admin role. Zero page or
// limit lets the server pick its defaults.
func (s *Session) ListUsers(ctx context.Context, page, limit int) (UserPage, string, error) {
	out, err := sessionCall[UserPage](ctx, s, http.MethodGet, listPath(page, limit), nil, http.StatusOK)
	return out.Data, out.Source, err
}

func (s *Session) GetUser(ctx context.Context, id string) (Profile, error) {
	out, err := sessionCall[Profile](ctx, s, http.MethodGet, "/api/users/admin/users/"+url.PathEscape(id), nil, http.StatusOK)
	return out.Data, err
}

func (s *Session) DeleteUser(ctx context.Context, id string) error {
	_, err := sessionCall[struct{}](ctx, s, http.MethodDelete, "/api/users/admin/users/"+url.PathEscape(id), nil, http.StatusOK)
	return err
}

func sessionCall[T any](ctx context.Context, s *Session, method, path string, body any, expectedStatus int) (Response[T], error) {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return Response[T]{}, err
	}
	return call[T](ctx, s.client, method, path, body, token, expectedStatus)
}
