package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/cache"
	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
)

const DefaultProfileTTL = 300 * time.Second

// ProfileService serves a user's own account.
type ProfileService struct {
	Store store.Store
	Cache *cache.ReadThrough
	TTL   time.Duration
}

// GetSelf reads through the cache. Source tells whether the cache answered.
// The key carries the user's cache version, so a load that started before a
// write can only fill a key no later read will ask for.
func (s *ProfileService) GetSelf(ctx context.Context, userID string) (domain.Profile, domain.Source, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}

	ver, ok := s.Cache.Version(ctx, cache.UserNamespace(userID))
	if !ok {
		p, err := loadProfile(ctx, s.Store, userID)
		if err != nil {
			return domain.Profile{}, "", err
		}
		return p, domain.SourceDatabase, nil
	}

	p, hit, err := cache.Fetch(ctx, s.Cache, cache.UserKey(ver, userID), ttl, func(ctx context.Context) (domain.Profile, error) {
		return loadProfile(ctx, s.Store, userID)
	})
	if err != nil {
		return domain.Profile{}, "", err
	}
	if hit {
		return p, domain.SourceCache, nil
	}
	return p, domain.SourceDatabase, nil
}

// UpdateSelf applies the supplied fields only, then moves the user's cached
// profile and every cached listing page to a new version.
func (s *ProfileService) UpdateSelf(ctx context.Context, userID string, upd domain.ProfileUpdate) (domain.Profile, error) {
	if upd.Name == nil && upd.Email == nil {
		return domain.Profile{}, invalid("name or email is required")
	}

	var clean domain.ProfileUpdate
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return domain.Profile{}, invalid("name must not be blank")
		}
		if validate.Var(name, "max=100") != nil {
			return domain.Profile{}, invalid("name must be at most 100 characters")
		}
		clean.Name = &name
	}
	if upd.Email != nil {
		email := normalizeEmail(*upd.Email)
		if err := validateEmail(email); err != nil {
			return domain.Profile{}, err
		}
		clean.Email = &email
	}

	u, err := s.Store.Users().UpdateProfile(ctx, userID, clean)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Profile{}, ErrNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return domain.Profile{}, ErrConflict
	case err != nil:
		return domain.Profile{}, infra("update profile", err)
	}

	s.Cache.Invalidate(ctx, nil, cache.UserNamespace(userID), cache.ListingNamespace)
	return u.Profile(), nil
}

// DeleteSelf removes the account and all of its sessions.
func (s *ProfileService) DeleteSelf(ctx context.Context, userID string) error {
	return deleteAccount(ctx, s.Store, s.Cache, userID)
}

func loadProfile(ctx context.Context, st store.Store, userID string) (domain.Profile, error) {
	u, err := st.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Profile{}, ErrNotFound
	}
	if err != nil {
		return domain.Profile{}, infra("load user", err)
	}
	return u.Profile(), nil
}

// deleteAccount revokes the sessions and deletes the user in one
// transaction, then invalidates the cache.
func deleteAccount(ctx context.Context, st store.Store, rt *cache.ReadThrough, userID string) error {
	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := NewSessionStore(tx.Sessions()).RevokeAllForUser(ctx, userID); err != nil {
			return err
		}
		err := tx.Users().DeleteUser(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return infra("delete user", err)
		}
		return nil
	})
	if err != nil {
		return txErr("delete account", err)
	}

	rt.Invalidate(ctx, nil, cache.UserNamespace(userID), cache.ListingNamespace)
	return nil
}
