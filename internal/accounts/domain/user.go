package domain

import "time"

// Role is the enumerated authority level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Profile returns the public projection of the user. The password hash never
// leaves the service through any read path.
func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// Profile is what every read path returns and what the cache stores.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileUpdate carries a partial self-update. Nil fields are left alone.
type ProfileUpdate struct {
	Name  *string
	Email *string
}

// UserPage is one page of the admin user listing.
type UserPage struct {
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	Users      []Profile `json:"users"`
	TotalUsers int       `json:"totalUsers"`
	TotalPages int       `json:"totalPages"`

	// CurrentPage mirrors Page for older clients.
	CurrentPage int `json:"currentPage"`
}

// Source tells a caller whether a read was served from the cache.
type Source string

const (
	SourceCache    Source = "cache"
	SourceDatabase Source = "database"
)
