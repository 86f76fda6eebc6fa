package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the accounts service. Unauthenticated operations live on
// Client; Login returns a Session for the rest.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client with a 10 second request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates a user account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (Profile, error) {
	out, err := call[Profile](ctx, c, http.MethodPost, "/api/auth/register", req, "", http.StatusCreated)
	return out.Data, err
}

// Login authenticates with email and password and returns the token pair.
func (c *Client) Login(ctx context.Context, email, password string) (TokenPair, error) {
	out, err := call[TokenPair](ctx, c, http.MethodPost, "/api/auth/login",
		LoginRequest{Email: email, Password: password}, "", http.StatusOK)
	return out.Data, err
}

// Authenticate logs in and wraps the tokens in a Session.
func (c *Client) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	pair, err := c.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return newSession(c, pair), nil
}

// Refresh exchanges a refresh token for a new pair. The old token stops
// working.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	out, err := call[TokenPair](ctx, c, http.MethodPost, "/api/auth/refresh-token",
		RefreshRequest{RefreshToken: refreshToken}, "", http.StatusOK)
	return out.Data, err
}

// Logout revokes a refresh token. Revoking twice is not an error.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	_, err := call[struct{}](ctx, c, http.MethodPost, "/api/auth/logout",
		RefreshRequest{RefreshToken: refreshToken}, "", http.StatusOK)
	return err
}

// Bootstrap creates the first admin account.
func (c *Client) Bootstrap(ctx context.Context, token string, req BootstrapRequest) (Profile, error) {
	var out Response[Profile]
	resp, err := c.do(ctx, http.MethodPost, "/api/bootstrap", req, "", map[string]string{
		"X-Bootstrap-Token": token,
	})
	if err != nil {
		return Profile{}, err
	}
	err = decodeJSON(resp, &out, http.StatusCreated)
	return out.Data, err
}

// Liveness reports whether the process is up.
func (c *Client) Liveness(ctx context.Context) (HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// Readiness reports whether the database and cache are reachable.
func (c *Client) Readiness(ctx context.Context) (HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *Client) health(ctx context.Context, path string) (HealthResponse, error) {
	var out HealthResponse
	resp, err := c.do(ctx, http.MethodGet, path, nil, "", nil)
	if err != nil {
		return out, err
	}
	err = decodeJSON(resp, &out, http.StatusOK)
	return out, err
}

func listPath(page, limit int) string {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	if len(q) == 0 {
		return "/api/users/admin"
	}
	return "/api/users/admin?" + q.Encode()
}
