//go:build e2e

package accounts_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aussiebroadwan/accounts/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestUserLifecycle walks a user through register, login, profile edits,
// token rotation, logout and self-deletion.
func TestUserLifecycle(t *testing.T) {
	client := setupAccountsContainer(t, containerOptions{})
	ctx := context.Background()

	profile, session := registerAndLogin(t, client, "Alice", "Alice@Example.com")
	require.Equal(t, "alice@example.com", profile.Email, "email should be normalized")
	require.Equal(t, "user", profile.Role)

	t.Run("identity", func(t *testing.T) {
		id, err := session.Identity(ctx)
		require.NoError(t, err)
		require.Equal(t, profile.ID, id.ID)
		require.Equal(t, "alice@example.com", id.Email)
	})

	t.Run("update profile", func(t *testing.T) {
		name := "Alice Liddell"
		updated, err := session.UpdateMe(ctx, authsdk.UpdateProfileRequest{Name: &name})
		require.NoError(t, err)
		require.Equal(t, name, updated.Name)

		me, _, err := session.Me(ctx)
		require.NoError(t, err)
		require.Equal(t, name, me.Name)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := client.Register(ctx, authsdk.RegisterRequest{
			Name:     "Impostor",
			Email:    "ALICE@example.com",
			Password: userPassword,
		})
		require.ErrorIs(t, err, authsdk.ErrConflict)
	})

	t.Run("refresh rotates", func(t *testing.T) {
		old := session.RefreshToken()

		pair, err := client.Refresh(ctx, old)
		require.NoError(t, err)
		assertTokenPair(t, pair)
		require.NotEqual(t, old, pair.RefreshToken)

		_, err = client.Refresh(ctx, old)
		require.ErrorIs(t, err, authsdk.ErrRevoked, "a rotated token must not be reusable")

		session = client.NewSessionFromTokens(pair)
	})

	t.Run("logout revokes", func(t *testing.T) {
		refresh := session.RefreshToken()
		require.NoError(t, session.Logout(ctx))

		_, err := client.Refresh(ctx, refresh)
		require.ErrorIs(t, err, authsdk.ErrRevoked)
	})

	t.Run("delete self", func(t *testing.T) {
		s, err := client.Authenticate(ctx, "alice@example.com", userPassword)
		require.NoError(t, err)
		require.NoError(t, s.DeleteMe(ctx))

		_, err = client.Login(ctx, "alice@example.com", userPassword)
		require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)
	})
}

func TestLoginFailures(t *testing.T) {
	client := setupAccountsContainer(t, containerOptions{})
	ctx := context.Background()

	registerAndLogin(t, client, "Bob", "bob@example.com")

	_, wrongPassword := client.Login(ctx, "bob@example.com", "not-the-password")
	_, unknownEmail := client.Login(ctx, "nobody@example.com", "not-the-password")

	var a, b *authsdk.APIError
	require.True(t, errors.As(wrongPassword, &a))
	require.True(t, errors.As(unknownEmail, &b))
	require.Equal(t, a.StatusCode, b.StatusCode)
	require.Equal(t, a.Code, b.Code)
	require.Equal(t, a.Message, b.Message, "failures must not reveal whether the email exists")
}

func TestRegisterValidation(t *testing.T) {
	client := setupAccountsContainer(t, containerOptions{})
	ctx := context.Background()

	_, err := client.Register(ctx, authsdk.RegisterRequest{
		Name:     "Carol",
		Email:    "not-an-email",
		Password: "short",
	})
	require.ErrorIs(t, err, authsdk.ErrValidation)

	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.NotEmpty(t, apiErr.Errors)
}
