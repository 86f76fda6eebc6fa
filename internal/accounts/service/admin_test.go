package service

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/stretchr/testify/require"
)

func TestNormalizePaging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 10},
		{-3, -1, 1, 10},
		{2, 5, 2, 5},
		{1, 1000, 1, 100},
		{math.MaxInt, 10, math.MaxInt / 10, 10},
		{math.MaxInt, 1000, math.MaxInt / 100, 100},
		{math.MaxInt / 10, 10, math.MaxInt / 10, 10},
	}
	for _, tt := range tests {
		page, limit := NormalizePaging(tt.page, tt.limit)
		require.Equal(t, tt.wantPage, page)
		require.Equal(t, tt.wantLimit, limit)
	}
}

func TestAdminRequiresAdminRole(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "A", "a@example.com")
	ctx := context.Background()

	_, _, err := e.admin.ListUsers(ctx, u.ID, 1, 10)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = e.admin.GetUser(ctx, u.ID, u.ID)
	require.ErrorIs(t, err, ErrForbidden)
	require.ErrorIs(t, e.admin.DeleteUser(ctx, u.ID, u.ID), ErrForbidden)
	_, _, err = e.admin.ListUsers(ctx, "ghost", 1, 10)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestListUsers(t *testing.T) {
	e := newEnv(t)
	admin := e.bootstrapAdmin(t)
	ctx := context.Background()

	page, src, err := e.admin.ListUsers(ctx, admin.ID, 1, 10)
	require.NoError(t, err)
	require.Equal(t, domain.SourceDatabase, src)
	require.Equal(t, 1, page.TotalUsers)
	require.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Users, 1)

	_, src, err = e.admin.ListUsers(ctx, admin.ID, 1, 10)
	require.NoError(t, err)
	require.Equal(t, domain.SourceCache, src)

	// A registration makes older pages unreachable.
	for i := range 11 {
		e.register(t, "U", fmt.Sprintf("u%d@example.com", i))
	}
	page, src, err = e.admin.ListUsers(ctx, admin.ID, 2, 10)
	require.NoError(t, err)
	require.Equal(t, domain.SourceDatabase, src)
	require.Equal(t, 12, page.TotalUsers)
	require.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Users, 2)
	require.Equal(t, 2, page.CurrentPage)

	page, _, err = e.admin.ListUsers(ctx, admin.ID, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, page.Page)
	require.Equal(t, 10, page.Limit)
	require.Equal(t, admin.ID, page.Users[0].ID)
}

func TestListUsersPastTheEnd(t *testing.T) {
	e := newEnv(t)
	admin := e.bootstrapAdmin(t)
	ctx := context.Background()

	for _, page := range []int{2, math.MaxInt / 10, math.MaxInt} {
		got, _, err := e.admin.ListUsers(ctx, admin.ID, page, 10)
		require.NoError(t, err)
		require.Empty(t, got.Users)
		require.NotNil(t, got.Users)
		require.Equal(t, 1, got.TotalUsers)
		require.Equal(t, 1, got.TotalPages)
		require.Positive(t, got.CurrentPage)
	}
}

func TestListUsersBypassesCacheWithoutVersion(t *testing.T) {
	e := newEnv(t)
	admin := e.bootstrapAdmin(t)
	e.redis.Close()

	page, src, err := e.admin.ListUsers(context.Background(), admin.ID, 1, 10)
	require.NoError(t, err)
	require.Equal(t, domain.SourceDatabase, src)
	require.Equal(t, 1, page.TotalUsers)
}

func TestAdminGetAndDelete(t *testing.T) {
	e := newEnv(t)
	admin := e.bootstrapAdmin(t)
	u := e.register(t, "A", "a@example.com")
	ctx := context.Background()

	got, err := e.admin.GetUser(ctx, admin.ID, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)

	_, err = e.admin.GetUser(ctx, admin.ID, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	_, _, err = e.profile.GetSelf(ctx, u.ID)
	require.NoError(t, err)

	require.NoError(t, e.admin.DeleteUser(ctx, admin.ID, u.ID))
	require.False(t, e.redis.Exists(e.userKey(t, u.ID)))
	require.ErrorIs(t, e.admin.DeleteUser(ctx, admin.ID, u.ID), ErrNotFound)

	page, _, err := e.admin.ListUsers(ctx, admin.ID, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalUsers)

	// Admins may delete themselves.
	require.NoError(t, e.admin.DeleteUser(ctx, admin.ID, admin.ID))
}
