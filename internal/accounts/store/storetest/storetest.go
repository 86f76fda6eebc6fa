// Package storetest holds the behavioural contract every store driver must
// satisfy. Driver packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Factory returns a freshly migrated, empty store.
type Factory func(t *testing.T) store.Store

// Run executes the contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("update profile", func(t *testing.T) { testUpdateProfile(t, newStore(t)) })
	t.Run("listing", func(t *testing.T) { testListing(t, newStore(t)) })
	t.Run("sessions", func(t *testing.T) { testSessions(t, newStore(t)) })
	t.Run("consume session", func(t *testing.T) { testConsumeSession(t, newStore(t)) })
	t.Run("transactions", func(t *testing.T) { testTransactions(t, newStore(t)) })
}

// NewUser builds a user with a fresh id and the given email.
func NewUser(name, email string, role domain.Role) domain.User {
	return domain.User{
		ID:           idx.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=64,t=1,p=1$c2FsdA$aGFzaA",
		Role:         role,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	empty, err := s.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	u := NewUser("Alice", "alice@example.com", domain.RoleUser)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u, got)

	got, err = s.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	dup := NewUser("Other", "alice@example.com", domain.RoleUser)
	err = s.Users().CreateUser(ctx, dup)
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = s.Users().GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Users().GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Users().DeleteUser(ctx, u.ID))
	require.ErrorIs(t, s.Users().DeleteUser(ctx, u.ID), store.ErrNotFound)
}

func testUpdateProfile(t *testing.T, s store.Store) {
	ctx := context.Background()

	a := NewUser("Alice", "alice@example.com", domain.RoleUser)
	b := NewUser("Bob", "bob@example.com", domain.RoleUser)
	require.NoError(t, s.Users().CreateUser(ctx, a))
	require.NoError(t, s.Users().CreateUser(ctx, b))

	name := "Alicia"
	got, err := s.Users().UpdateProfile(ctx, a.ID, domain.ProfileUpdate{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Alicia", got.Name)
	require.Equal(t, "alice@example.com", got.Email, "unsupplied fields are kept")

	email := "alicia@example.com"
	got, err = s.Users().UpdateProfile(ctx, a.ID, domain.ProfileUpdate{Email: &email})
	require.NoError(t, err)
	require.Equal(t, "Alicia", got.Name)
	require.Equal(t, "alicia@example.com", got.Email)

	taken := "bob@example.com"
	_, err = s.Users().UpdateProfile(ctx, a.ID, domain.ProfileUpdate{Email: &taken})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = s.Users().UpdateProfile(ctx, "missing", domain.ProfileUpdate{Name: &name})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testListing(t *testing.T, s store.Store) {
	ctx := context.Background()

	var ids []string
	for i := range 5 {
		u := NewUser(fmt.Sprintf("User %d", i), fmt.Sprintf("u%d@example.com", i), domain.RoleUser)
		u.CreatedAt = u.CreatedAt.Add(time.Duration(i) * time.Second)
		require.NoError(t, s.Users().CreateUser(ctx, u))
		ids = append(ids, u.ID)
	}

	n, err := s.Users().CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	page, err := s.Users().ListUsers(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, ids[0], page[0].ID)
	require.Equal(t, ids[1], page[1].ID)

	page, err = s.Users().ListUsers(ctx, 2, 4)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, ids[4], page[0].ID)

	page, err = s.Users().ListUsers(ctx, 2, 10)
	require.NoError(t, err)
	require.Empty(t, page)
}

func testSessions(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	u := NewUser("Alice", "alice@example.com", domain.RoleUser)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	live := domain.Session{TokenHash: "live", UserID: u.ID, ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	old := domain.Session{TokenHash: "old", UserID: u.ID, ExpiresAt: now.Add(-time.Hour), CreatedAt: now}
	require.NoError(t, s.Sessions().CreateSession(ctx, live))
	require.NoError(t, s.Sessions().CreateSession(ctx, old))

	got, err := s.Sessions().FindSession(ctx, u.ID, "live")
	require.NoError(t, err)
	require.Equal(t, live, got)

	_, err = s.Sessions().FindSession(ctx, "someone-else", "live")
	require.ErrorIs(t, err, store.ErrNotFound)

	n, err := s.Sessions().DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.NoError(t, s.Sessions().DeleteSession(ctx, "live"))
	require.NoError(t, s.Sessions().DeleteSession(ctx, "live"), "deleting twice is fine")

	_, err = s.Sessions().FindSession(ctx, u.ID, "live")
	require.ErrorIs(t, err, store.ErrNotFound)

	// Sessions of a deleted user go with it.
	require.NoError(t, s.Sessions().CreateSession(ctx, domain.Session{
		TokenHash: "again", UserID: u.ID, ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	}))
	require.NoError(t, s.Users().DeleteUser(ctx, u.ID))
	_, err = s.Sessions().FindSession(ctx, u.ID, "again")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testConsumeSession(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	u := NewUser("Alice", "alice@example.com", domain.RoleUser)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	sessions := s.Sessions()
	require.NoError(t, sessions.CreateSession(ctx, domain.Session{
		TokenHash: "live", UserID: u.ID, ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	}))
	require.NoError(t, sessions.CreateSession(ctx, domain.Session{
		TokenHash: "old", UserID: u.ID, ExpiresAt: now.Add(-time.Hour), CreatedAt: now,
	}))

	require.ErrorIs(t, sessions.ConsumeSession(ctx, "someone-else", "live", now), store.ErrNotFound)
	require.ErrorIs(t, sessions.ConsumeSession(ctx, u.ID, "old", now), store.ErrNotFound)
	require.ErrorIs(t, sessions.ConsumeSession(ctx, u.ID, "missing", now), store.ErrNotFound)

	require.NoError(t, sessions.ConsumeSession(ctx, u.ID, "live", now))
	require.ErrorIs(t, sessions.ConsumeSession(ctx, u.ID, "live", now), store.ErrNotFound, "consumed once")

	// Concurrent consumers of one session: exactly one wins.
	require.NoError(t, sessions.CreateSession(ctx, domain.Session{
		TokenHash: "raced", UserID: u.ID, ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	}))

	const n = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithTx(ctx, func(tx store.Tx) error {
				return tx.Sessions().ConsumeSession(ctx, u.ID, "raced", now)
			})
			if errors.Is(err, store.ErrNotFound) {
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			mu.Lock()
			wins++
			mu.Unlock()
		}()
	}
	wg.Wait()
	require.Equal(t, 1, wins)
}

func testTransactions(t *testing.T, s store.Store) {
	ctx := context.Background()
	boom := errors.New("boom")

	u := NewUser("Alice", "alice@example.com", domain.RoleUser)
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound, "rolled back")

	err = s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return tx.Sessions().CreateSession(ctx, domain.Session{
			TokenHash: "t", UserID: u.ID, ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now(),
		})
	})
	require.NoError(t, err)

	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)

	// Deleting sessions and the user together.
	err = s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Sessions().DeleteUserSessions(ctx, u.ID); err != nil {
			return err
		}
		return tx.Users().DeleteUser(ctx, u.ID)
	})
	require.NoError(t, err)

	_, err = s.Sessions().FindSession(ctx, u.ID, "t")
	require.ErrorIs(t, err, store.ErrNotFound)

	err = s.WithTx(ctx, func(tx store.Tx) error {
		return tx.WithTx(ctx, func(store.Tx) error { return nil })
	})
	require.Error(t, err, "nested transactions are refused")
}
