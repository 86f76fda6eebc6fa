package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var (
	accessSecret  = []byte("access-secret-access-secret-0123456789")
	refreshSecret = []byte("refresh-secret-refresh-secret-0123456789")
)

func newCodec(t *testing.T, secret []byte, ns jwtx.Namespace) *jwtx.HMAC {
	t.Helper()

	c, err := jwtx.NewHMAC(secret, jwtx.Options{Issuer: "accounts", Namespace: ns})
	require.NoError(t, err)
	return c
}

func TestHMACSignAndVerify(t *testing.T) {
	c := newCodec(t, accessSecret, jwtx.Access)
	require.Equal(t, jwtx.Access, c.Namespace())

	claims := jwtx.NewClaims("accounts", jwtx.Access, alice, time.Now(), time.Minute)
	tok, err := c.Sign(claims)
	require.NoError(t, err)
	require.Len(t, strings.Split(tok, "."), 3)

	got, err := c.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, alice, got.Owner())
	require.Equal(t, claims.ID, got.ID)
}

func TestNewHMAC(t *testing.T) {
	_, err := jwtx.NewHMAC([]byte("short"), jwtx.Options{Namespace: jwtx.Access})
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)

	_, err = jwtx.NewHMAC(accessSecret, jwtx.Options{})
	require.ErrorIs(t, err, jwtx.ErrNoNamespace)
}

func TestHMACSignRejectsForeignNamespace(t *testing.T) {
	c := newCodec(t, accessSecret, jwtx.Access)

	_, err := c.Sign(jwtx.NewClaims("accounts", jwtx.Refresh, alice, time.Now(), time.Minute))
	require.ErrorIs(t, err, jwtx.ErrAudience)
}

func TestHMACVerifyErrors(t *testing.T) {
	access := newCodec(t, accessSecret, jwtx.Access)
	refresh := newCodec(t, refreshSecret, jwtx.Refresh)

	t.Run("expired", func(t *testing.T) {
		past := time.Now().Add(-2 * time.Hour)
		tok, err := access.Sign(jwtx.NewClaims("accounts", jwtx.Access, alice, past, time.Hour))
		require.NoError(t, err)

		_, err = access.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("expired within leeway", func(t *testing.T) {
		lenient, err := jwtx.NewHMAC(accessSecret, jwtx.Options{
			Namespace: jwtx.Access,
			Leeway:    time.Minute,
		})
		require.NoError(t, err)

		past := time.Now().Add(-time.Hour - 10*time.Second)
		tok, err := lenient.Sign(jwtx.NewClaims("accounts", jwtx.Access, alice, past, time.Hour))
		require.NoError(t, err)

		_, err = lenient.Verify(tok)
		require.NoError(t, err)
	})

	t.Run("clock", func(t *testing.T) {
		tok, err := access.Sign(jwtx.NewClaims("accounts", jwtx.Access, alice, time.Now(), time.Hour))
		require.NoError(t, err)

		later, err := jwtx.NewHMAC(accessSecret, jwtx.Options{
			Namespace: jwtx.Access,
			Now:       func() time.Time { return time.Now().Add(2 * time.Hour) },
		})
		require.NoError(t, err)

		_, err = later.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		forged := newCodec(t, refreshSecret, jwtx.Access)
		tok, err := forged.Sign(jwtx.NewClaims("accounts", jwtx.Access, alice, time.Now(), time.Hour))
		require.NoError(t, err)

		_, err = access.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("wrong namespace", func(t *testing.T) {
		// Same secret on both sides, the namespace still has to match.
		other := newCodec(t, accessSecret, jwtx.Refresh)
		tok, err := other.Sign(jwtx.NewClaims("accounts", jwtx.Refresh, alice, time.Now(), time.Hour))
		require.NoError(t, err)

		_, err = access.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrAudience)
	})

	t.Run("refresh token as access", func(t *testing.T) {
		tok, err := refresh.Sign(jwtx.NewClaims("accounts", jwtx.Refresh, alice, time.Now(), time.Hour))
		require.NoError(t, err)

		_, err = access.Verify(tok)
		require.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		tok, err := access.Sign(jwtx.NewClaims("someone-else", jwtx.Access, alice, time.Now(), time.Hour))
		require.NoError(t, err)

		_, err = access.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("missing subject", func(t *testing.T) {
		tok, err := access.Sign(jwtx.NewClaims("accounts", jwtx.Access, jwtx.Owner{}, time.Now(), time.Hour))
		require.NoError(t, err)

		_, err = access.Verify(tok)
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := access.Verify("not-a-jwt")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("alg none", func(t *testing.T) {
		claims := jwtx.NewClaims("accounts", jwtx.Access, alice, time.Now(), time.Hour)
		tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = access.Verify(tok)
		require.Error(t, err)
	})
}
