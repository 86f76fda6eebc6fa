package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
)

// Issuer is the iss claim on every token this service mints.
const Issuer = "accounts"

var ErrSameSecrets = errors.New("access and refresh secrets must differ")

// CredentialIssuer mints and verifies the two token kinds. Each kind has its
// own secret and namespace, so an access token never verifies as a refresh
// token or the other way round.
type CredentialIssuer struct {
	access  jwtx.Codec
	refresh jwtx.Codec

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now is overridable in tests.
	Now func() time.Time
}

// NewCredentialIssuer validates both secrets. Zero TTLs fall back to the
// jwtx defaults.
func NewCredentialIssuer(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) (*CredentialIssuer, error) {
	if string(accessSecret) == string(refreshSecret) {
		return nil, ErrSameSecrets
	}

	access, err := jwtx.NewHMAC(accessSecret, jwtx.Options{Issuer: Issuer, Namespace: jwtx.Access})
	if err != nil {
		return nil, fmt.Errorf("access secret: %w", err)
	}
	refresh, err := jwtx.NewHMAC(refreshSecret, jwtx.Options{Issuer: Issuer, Namespace: jwtx.Refresh})
	if err != nil {
		return nil, fmt.Errorf("refresh secret: %w", err)
	}

	if accessTTL <= 0 {
		accessTTL = jwtx.DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = jwtx.DefaultRefreshTTL
	}

	return &CredentialIssuer{
		access:     access,
		refresh:    refresh,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
		Now:        time.Now,
	}, nil
}

func (c *CredentialIssuer) IssueAccess(u domain.User) (string, error) {
	return c.issue(c.access, u, c.AccessTTL)
}

func (c *CredentialIssuer) IssueRefresh(u domain.User) (string, error) {
	return c.issue(c.refresh, u, c.RefreshTTL)
}

// VerifyAccess returns the identity in an access token, or
// ErrInvalidCredentials on any signature, namespace or expiry failure.
func (c *CredentialIssuer) VerifyAccess(token string) (domain.Identity, error) {
	return verify(c.access, token)
}

func (c *CredentialIssuer) VerifyRefresh(token string) (domain.Identity, error) {
	return verify(c.refresh, token)
}

func (c *CredentialIssuer) issue(codec jwtx.Codec, u domain.User, ttl time.Duration) (string, error) {
	claims := jwtx.NewClaims(Issuer, codec.Namespace(), jwtx.Owner{ID: u.ID, Email: u.Email}, c.Now(), ttl)
	token, err := codec.Sign(claims)
	if err != nil {
		return "", infra("sign "+string(codec.Namespace())+" token", err)
	}
	return token, nil
}

func verify(codec jwtx.Codec, token string) (domain.Identity, error) {
	claims, err := codec.Verify(token)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	owner := claims.Owner()
	return domain.Identity{ID: owner.ID, Email: owner.Email}, nil
}
