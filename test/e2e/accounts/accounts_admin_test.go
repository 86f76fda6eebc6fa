//go:build e2e

package accounts_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/aussiebroadwan/accounts/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestBootstrap(t *testing.T) {
	client := setupAccountsContainer(t, containerOptions{})
	ctx := context.Background()

	req := authsdk.BootstrapRequest{Name: adminName, Email: adminEmail, Password: adminPassword}

	_, err := client.Bootstrap(ctx, "wrong-token", req)
	require.ErrorIs(t, err, authsdk.ErrUnauthorized)

	bootstrapAdmin(t, client)

	_, err = client.Bootstrap(ctx, bootstrapToken, req)
	require.ErrorIs(t, err, authsdk.ErrConflict, "bootstrap only runs once")
}

func TestBootstrapDisabled(t *testing.T) {
	client := setupAccountsContainer(t, containerOptions{
		env: map[string]string{"BOOTSTRAP_TOKEN": ""},
	})

	_, err := client.Bootstrap(context.Background(), bootstrapToken, authsdk.BootstrapRequest{
		Name: adminName, Email: adminEmail, Password: adminPassword,
	})
	require.ErrorIs(t, err, authsdk.ErrNotFound)
}

func TestAdminManagesUsers(t *testing.T) {
	client := setupAccountsContainer(t, containerOptions{})
	ctx := context.Background()

	admin := bootstrapAdmin(t, client)

	var last authsdk.Profile
	for i := range 12 {
		last, _ = registerAndLogin(t, client, fmt.Sprintf("User %d", i), fmt.Sprintf("user%d@example.com", i))
	}

	page, _, err := admin.ListUsers(ctx, 1, 5)
	require.NoError(t, err)
	require.Equal(t, 13, page.TotalUsers)
	require.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Users, 5)

	page, _, err = admin.ListUsers(ctx, 3, 5)
	require.NoError(t, err)
	require.Len(t, page.Users, 3)

	got, err := admin.GetUser(ctx, last.ID)
	require.NoError(t, err)
	require.Equal(t, last.Email, got.Email)

	require.NoError(t, admin.DeleteUser(ctx, last.ID))

	_, err = admin.GetUser(ctx, last.ID)
	require.ErrorIs(t, err, authsdk.ErrNotFound)

	page, _, err = admin.ListUsers(ctx, 1, 5)
	require.NoError(t, err)
	require.Equal(t, 12, page.TotalUsers, "listing must reflect the deletion")
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	client := setupAccountsContainer(t, containerOptions{})
	ctx := context.Background()

	_, session := registerAndLogin(t, client, "Dave", "dave@example.com")

	_, _, err := session.ListUsers(ctx, 1, 10)
	require.ErrorIs(t, err, authsdk.ErrForbidden)
}
