// Package jwtx mints and checks the HS256 tokens behind account sessions.
//
// Every token belongs to exactly one Namespace, written to the aud claim.
// A Codec only accepts its own namespace, so a refresh token presented as an
// access token fails verification even if both happen to share a secret.
package jwtx

import (
	"errors"
	"time"
)

// Namespace separates token kinds.
type Namespace string

const (
	Access  Namespace = "access"
	Refresh Namespace = "refresh"
)

// Default lifetimes for the paired credentials.
const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Codec signs and verifies tokens of a single namespace.
type Codec interface {
	Namespace() Namespace
	Sign(Claims) (string, error)
	Verify(token string) (Claims, error)
}

// Options are what a Codec enforces on top of the signature.
type Options struct {
	// Issuer must equal the iss claim. Empty skips the check.
	Issuer string

	Namespace Namespace

	// Leeway tolerates clock skew on exp and nbf.
	Leeway time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrAlgMismatch  = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrWeakSecret   = errors.New("jwtx: secret too short")
	ErrNoNamespace  = errors.New("jwtx: namespace required")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrAudience     = errors.New("jwtx: namespace mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)
