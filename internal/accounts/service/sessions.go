package service

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
)

// SessionStore keeps refresh sessions. Raw tokens never reach the database;
// records are keyed by the token fingerprint.
type SessionStore struct {
	Repo store.Sessions
	Now  func() time.Time
}

// NewSessionStore binds a SessionStore to a repository. Pass tx.Sessions()
// to take part in a transaction.
func NewSessionStore(repo store.Sessions) *SessionStore {
	return &SessionStore{Repo: repo, Now: time.Now}
}

// Save persists a new session for token. Several sessions per user may exist.
func (s *SessionStore) Save(ctx context.Context, userID, token string, ttl time.Duration) error {
	now := s.Now().UTC()
	err := s.Repo.CreateSession(ctx, domain.Session{
		TokenHash: cryptox.FingerprintToken(token),
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	if err != nil {
		return infra("save session", err)
	}
	return nil
}

// Find returns the active session matching both user and token. A missing or
// expired record is ErrRevoked.
func (s *SessionStore) Find(ctx context.Context, userID, token string) (domain.Session, error) {
	sess, err := s.Repo.FindSession(ctx, userID, cryptox.FingerprintToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, ErrRevoked
	}
	if err != nil {
		return domain.Session{}, infra("find session", err)
	}
	if sess.Expired(s.Now()) {
		return domain.Session{}, ErrRevoked
	}
	return sess, nil
}

// Consume deletes the active session matching both user and token. A
// missing, expired or already consumed record is ErrRevoked.
func (s *SessionStore) Consume(ctx context.Context, userID, token string) error {
	err := s.Repo.ConsumeSession(ctx, userID, cryptox.FingerprintToken(token), s.Now().UTC())
	if errors.Is(err, store.ErrNotFound) {
		return ErrRevoked
	}
	if err != nil {
		return infra("consume session", err)
	}
	return nil
}

// Revoke deletes the session for token. Revoking twice is fine.
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	if err := s.Repo.DeleteSession(ctx, cryptox.FingerprintToken(token)); err != nil {
		return infra("revoke session", err)
	}
	return nil
}

func (s *SessionStore) RevokeAllForUser(ctx context.Context, userID string) error {
	if err := s.Repo.DeleteUserSessions(ctx, userID); err != nil {
		return infra("revoke user sessions", err)
	}
	return nil
}

// PurgeExpired deletes every expired session and reports how many went.
func (s *SessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.Repo.DeleteExpiredSessions(ctx, s.Now())
	if err != nil {
		return 0, infra("purge sessions", err)
	}
	return n, nil
}
