//go:build e2e

package accounts_test

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/accounts/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestProfileCache runs the service against a real redis and checks that
// reads are served from the cache and writes are visible immediately.
func TestProfileCache(t *testing.T) {
	nw, addr := setupRedis(t)
	client := setupAccountsContainer(t, containerOptions{
		network: nw,
		env:     map[string]string{"REDIS_ADDR": addr},
	})
	ctx := context.Background()

	health, err := client.Readiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", health.Checks["cache"])

	admin := bootstrapAdmin(t, client)
	_, session := registerAndLogin(t, client, "Erin", "erin@example.com")

	_, source, err := session.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "database", source)

	_, source, err = session.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "cache", source)

	email := "erin.new@example.com"
	_, err = session.UpdateMe(ctx, authsdk.UpdateProfileRequest{Email: &email})
	require.NoError(t, err)

	me, _, err := session.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, email, me.Email, "an update must never be followed by a stale read")

	_, source, err = admin.ListUsers(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, "database", source)

	page, source, err := admin.ListUsers(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, "cache", source)
	require.Equal(t, 2, page.TotalUsers)

	registerAndLogin(t, client, "Frank", "frank@example.com")

	page, _, err = admin.ListUsers(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 3, page.TotalUsers, "registration must invalidate the listing")
}
