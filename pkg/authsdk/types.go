package authsdk

import "time"

// Response is the success envelope every endpoint returns.
type Response[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`

	// Source is "cache" or "database" on reads that go through the cache.
	Source string `json:"source,omitempty"`
}

// ============================================================================
// Requests
// ============================================================================

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the body of POST /api/auth/refresh-token and
// POST /api/auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// UpdateProfileRequest is the body of PUT /api/users/me. Omitted fields are
// left unchanged.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"  validate:"omitempty,max=100"`
	Email *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
}

// BootstrapRequest is the body of POST /api/bootstrap.
type BootstrapRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// ============================================================================
// Responses
// ============================================================================

// Profile is the public view of a user.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int `json:"expiresIn"`
}

// Identity is what GET /api/auth/profile reports about the bearer token.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// UserPage is one page of GET /api/users/admin.
type UserPage struct {
	Page        int       `json:"page"`
	Limit       int       `json:"limit"`
	Users       []Profile `json:"users"`
	TotalUsers  int       `json:"totalUsers"`
	TotalPages  int       `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}
