package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories are exposed as methods so a Tx-scoped
// Store hands out repositories bound to the same transaction, and nested
// transactions are refused.
type Store interface {
	Users() Users
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction: rolled back if fn returns an
	// error, committed otherwise. The connection is released either way.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying pool.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches the normalised (lower case) email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the caller via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateProfile sets only the non-nil fields and returns the stored row.
	// Returns ErrNotFound for an unknown id and ErrAlreadyExists when the new
	// email belongs to someone else.
	UpdateProfile(ctx context.Context, id string, upd domain.ProfileUpdate) (domain.User, error)

	// DeleteUser removes the user. Returns ErrNotFound if no row was deleted.
	DeleteUser(ctx context.Context, id string) error

	CountUsers(ctx context.Context) (int, error)

	// ListUsers returns users ordered by creation time then id.
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Sessions interface {
	// CreateSession stores a new refresh session keyed by token fingerprint.
	CreateSession(ctx context.Context, s domain.Session) error

	// FindSession matches on both the owner and the fingerprint.
	FindSession(ctx context.Context, userID, tokenHash string) (domain.Session, error)

	// ConsumeSession deletes the owner's session with this fingerprint if it
	// has not expired at now. ErrNotFound means no live session matched, so
	// of two concurrent callers at most one succeeds.
	ConsumeSession(ctx context.Context, userID, tokenHash string, now time.Time) error

	// DeleteSession removes one session. Deleting a missing session is not an error.
	DeleteSession(ctx context.Context, tokenHash string) error

	// DeleteUserSessions removes every session of a user.
	DeleteUserSessions(ctx context.Context, userID string) error

	// DeleteExpiredSessions removes sessions past their expiry and reports
	// how many went.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
