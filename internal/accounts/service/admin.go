package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/cache"
	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/idx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

const (
	DefaultPage       = 1
	DefaultLimit      = 10
	MaxLimit          = 100
	DefaultListingTTL = 60 * time.Second
)

// AdminService manages other users. Every operation takes the acting user's
// id and requires that user to hold the admin role.
type AdminService struct {
	Store      store.Store
	Cache      *cache.ReadThrough
	ListingTTL time.Duration
}

// NormalizePaging applies the listing defaults: values below 1 become
// 1 and 10, limit is capped at MaxLimit, and page is capped so the row
// offset fits in an int.
func NormalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page > math.MaxInt/limit {
		page = math.MaxInt / limit
	}
	return page, limit
}

// ListUsers returns one page of users ordered by creation. Pages are cached
// under the current listing version; when the version cannot be read the
// cache is bypassed.
func (s *AdminService) ListUsers(ctx context.Context, actorID string, page, limit int) (domain.UserPage, domain.Source, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return domain.UserPage{}, "", err
	}
	page, limit = NormalizePaging(page, limit)

	load := func(ctx context.Context) (domain.UserPage, error) {
		return s.loadPage(ctx, page, limit)
	}

	ver, ok := s.Cache.Version(ctx, cache.ListingNamespace)
	if !ok {
		p, err := load(ctx)
		return p, domain.SourceDatabase, err
	}

	ttl := s.ListingTTL
	if ttl <= 0 {
		ttl = DefaultListingTTL
	}
	p, hit, err := cache.Fetch(ctx, s.Cache, cache.ListingKey(ver, page, limit), ttl, load)
	if err != nil {
		return domain.UserPage{}, "", err
	}
	if hit {
		return p, domain.SourceCache, nil
	}
	return p, domain.SourceDatabase, nil
}

// GetUser always reads the database.
func (s *AdminService) GetUser(ctx context.Context, actorID, id string) (domain.Profile, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return domain.Profile{}, err
	}
	if _, err := idx.Parse(id); err != nil {
		return domain.Profile{}, ErrNotFound
	}
	return loadProfile(ctx, s.Store, id)
}

// DeleteUser removes an account the same way DeleteSelf does. Admins may
// delete themselves.
func (s *AdminService) DeleteUser(ctx context.Context, actorID, id string) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	if _, err := idx.Parse(id); err != nil {
		return ErrNotFound
	}
	if err := deleteAccount(ctx, s.Store, s.Cache, id); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("user deleted by admin",
		slog.String("admin_id", actorID),
		slog.String("user_id", id),
	)
	return nil
}

func (s *AdminService) requireAdmin(ctx context.Context, actorID string) error {
	actor, err := s.Store.Users().GetUserByID(ctx, actorID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrForbidden
	}
	if err != nil {
		return infra("load actor", err)
	}
	if actor.Role != domain.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

func (s *AdminService) loadPage(ctx context.Context, page, limit int) (domain.UserPage, error) {
	total, err := s.Store.Users().CountUsers(ctx)
	if err != nil {
		return domain.UserPage{}, infra("count users", err)
	}

	var users []domain.User
	if offset := (page - 1) * limit; offset < total {
		users, err = s.Store.Users().ListUsers(ctx, limit, offset)
		if err != nil {
			return domain.UserPage{}, infra("list users", err)
		}
	}

	profiles := make([]domain.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}

	return domain.UserPage{
		Page:        page,
		Limit:       limit,
		Users:       profiles,
		TotalUsers:  total,
		TotalPages:  (total + limit - 1) / limit,
		CurrentPage: page,
	}, nil
}
