package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/cache"
	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/idx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

type BootstrapService struct {
	Store  store.Store
	Hasher *cryptox.PasswordHasher
	Cache  *cache.ReadThrough
	Token  string // Pre-configured bootstrap token, empty disables bootstrap
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, infra("check users", err)
	}
	return !empty, nil
}

// Bootstrap creates the first admin. It only succeeds while no user exists
// and the supplied token matches the configured one.
func (s *BootstrapService) Bootstrap(ctx context.Context, token, name, email, password string) (domain.Profile, error) {
	l := slogx.FromContext(ctx)

	if s.Token == "" {
		return domain.Profile{}, ErrBootstrapDisabled
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return domain.Profile{}, ErrBootstrapUnauthorized
	}

	in, err := newRegistration(name, email, password)
	if err != nil {
		return domain.Profile{}, err
	}
	hash, err := hashPassword(s.Hasher, in.Password)
	if err != nil {
		return domain.Profile{}, err
	}

	admin := domain.User{
		ID:           idx.New().String(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return infra("check users", err)
		}
		if !empty {
			return ErrBootstrapAlready
		}
		return createUser(ctx, tx, admin)
	})
	if err != nil {
		if errors.Is(err, ErrBootstrapAlready) {
			l.Warn("attempted bootstrap on already-bootstrapped system")
		}
		return domain.Profile{}, txErr("bootstrap", err)
	}

	s.Cache.Invalidate(ctx, nil, cache.ListingNamespace)

	l.Info("successfully bootstrapped system", slog.String("admin_user_id", admin.ID))
	return admin.Profile(), nil
}
