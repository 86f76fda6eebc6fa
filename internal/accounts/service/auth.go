package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/cache"
	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/idx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// AuthService implements registration and the credential lifecycle.
type AuthService struct {
	Store       store.Store
	Credentials *CredentialIssuer
	Hasher      *cryptox.PasswordHasher
	Cache       *cache.ReadThrough

	dummyMu   sync.Mutex
	dummyHash string
}

// Register creates a user with the user role. The password is hashed before
// the transaction opens; the email check and the insert share one
// transaction so concurrent registrations of one email persist one row.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (domain.Profile, error) {
	in, err := newRegistration(name, email, password)
	if err != nil {
		return domain.Profile{}, err
	}

	hash, err := hashPassword(s.Hasher, in.Password)
	if err != nil {
		return domain.Profile{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		return createUser(ctx, tx, user)
	}); err != nil {
		return domain.Profile{}, txErr("register", err)
	}

	s.Cache.Invalidate(ctx, nil, cache.ListingNamespace)

	slogx.FromContext(ctx).Info("user registered", slog.String("user_id", user.ID))
	return user.Profile(), nil
}

// Login verifies the password and starts a refresh session. Unknown emails
// and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		// Same hashing cost as a real account.
		dummy, err := s.dummy()
		if err != nil {
			return domain.TokenPair{}, err
		}
		_ = s.Hasher.Verify(password, dummy)
		return domain.TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.TokenPair{}, infra("login", err)
	}

	if err := s.Hasher.Verify(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, infra("verify password", err)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if err := NewSessionStore(s.Store.Sessions()).Save(ctx, user.ID, pair.RefreshToken, s.Credentials.RefreshTTL); err != nil {
		return domain.TokenPair{}, err
	}

	slogx.FromContext(ctx).Info("user logged in", slog.String("user_id", user.ID))
	return pair, nil
}

// Refresh exchanges a refresh token for a new pair. The presented session
// is consumed and the new one saved in the same transaction; the consume is
// a conditional delete, so of concurrent or replayed uses of one token only
// the first succeeds and the rest fail with ErrRevoked.
//
// Deleting an account cascades to its sessions, so a deleted user's token
// fails with ErrRevoked. ErrNotFound surfaces only if the account goes
// between the consume and the user load.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	id, err := s.Credentials.VerifyRefresh(refreshToken)
	if err != nil {
		return domain.TokenPair{}, err
	}

	var pair domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		sessions := NewSessionStore(tx.Sessions())
		if err := sessions.Consume(ctx, id.ID, refreshToken); err != nil {
			return err
		}

		user, err := tx.Users().GetUserByID(ctx, id.ID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return infra("load user", err)
		}

		pair, err = s.issuePair(user)
		if err != nil {
			return err
		}
		return sessions.Save(ctx, user.ID, pair.RefreshToken, s.Credentials.RefreshTTL)
	})
	if err != nil {
		return domain.TokenPair{}, txErr("refresh", err)
	}
	return pair, nil
}

// Logout revokes the refresh token. Unknown or already revoked tokens are
// not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return invalid("refresh token is required")
	}
	return NewSessionStore(s.Store.Sessions()).Revoke(ctx, refreshToken)
}

// Identify verifies an access token. It backs the bearer authentication of
// the HTTP layer.
func (s *AuthService) Identify(_ context.Context, accessToken string) (domain.Identity, error) {
	return s.Credentials.VerifyAccess(accessToken)
}

func (s *AuthService) issuePair(u domain.User) (domain.TokenPair, error) {
	access, err := s.Credentials.IssueAccess(u)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.Credentials.IssueRefresh(u)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    s.Credentials.AccessTTL,
	}, nil
}

// dummy returns a hash to verify against when the email is unknown. A
// failed hash is retried on the next call.
func (s *AuthService) dummy() (string, error) {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()

	if s.dummyHash == "" {
		h, err := s.Hasher.Hash(idx.New().String())
		if err != nil {
			return "", infra("dummy hash", err)
		}
		s.dummyHash = h
	}
	return s.dummyHash, nil
}

// createUser inserts u unless its email is taken.
func createUser(ctx context.Context, tx store.Tx, u domain.User) error {
	_, err := tx.Users().GetUserByEmail(ctx, u.Email)
	switch {
	case err == nil:
		return ErrConflict
	case !errors.Is(err, store.ErrNotFound):
		return infra("lookup email", err)
	}

	if err := tx.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrConflict
		}
		return infra("create user", err)
	}
	return nil
}
