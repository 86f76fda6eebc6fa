package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/accounts/internal/accounts/cache"
	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var (
	testAccessSecret  = []byte(strings.Repeat("a", 32))
	testRefreshSecret = []byte(strings.Repeat("r", 32))
)

type env struct {
	store   store.Store
	redis   *miniredis.Miniredis
	auth    *AuthService
	profile *ProfileService
	admin   *AdminService
	boot    *BootstrapService
	creds   *CredentialIssuer
}

func newEnv(t *testing.T) *env {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.FileDSN(filepath.Join(t.TempDir(), "accounts.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	rt := cache.NewReadThrough(cache.NewRedis(client))

	creds, err := NewCredentialIssuer(testAccessSecret, testRefreshSecret, 0, 0)
	require.NoError(t, err)

	hasher := &cryptox.PasswordHasher{Algorithm: cryptox.Argon2id, Memory: 64, Iterations: 1, Parallelism: 1}

	return &env{
		store:   st,
		redis:   mr,
		creds:   creds,
		auth:    &AuthService{Store: st, Credentials: creds, Hasher: hasher, Cache: rt},
		profile: &ProfileService{Store: st, Cache: rt},
		admin:   &AdminService{Store: st, Cache: rt},
		boot:    &BootstrapService{Store: st, Hasher: hasher, Cache: rt, Token: "boot-token"},
	}
}

func (e *env) register(t *testing.T, name, email string) domain.Profile {
	t.Helper()
	p, err := e.auth.Register(context.Background(), name, email, "s3cret-password")
	require.NoError(t, err)
	return p
}

func (e *env) bootstrapAdmin(t *testing.T) domain.Profile {
	t.Helper()
	p, err := e.boot.Bootstrap(context.Background(), "boot-token", "Root", "root@example.com", "root-password")
	require.NoError(t, err)
	return p
}

// userKey is the cache key a profile read of id would use right now.
func (e *env) userKey(t *testing.T, id string) string {
	t.Helper()
	ver, err := e.profile.Cache.Cache.Version(context.Background(), cache.UserNamespace(id))
	require.NoError(t, err)
	return cache.UserKey(ver, id)
}
