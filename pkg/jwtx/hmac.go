package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the smallest HMAC secret accepted, in bytes.
const MinSecretLength = 32

// HMAC is an HS256 Codec.
type HMAC struct {
	secret []byte
	opts   Options
	parser *jwt.Parser
}

var _ Codec = (*HMAC)(nil)

// NewHMAC copies secret and returns a codec for opts.Namespace.
func NewHMAC(secret []byte, opts Options) (*HMAC, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", ErrWeakSecret, MinSecretLength, len(secret))
	}
	if opts.Namespace == "" {
		return nil, ErrNoNamespace
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(string(opts.Namespace)),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(opts.Leeway),
		jwt.WithTimeFunc(opts.Now),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}

	return &HMAC{
		secret: append([]byte(nil), secret...),
		opts:   opts,
		parser: jwt.NewParser(parserOpts...),
	}, nil
}

func (h *HMAC) Namespace() Namespace { return h.opts.Namespace }

// Sign refuses claims minted for another namespace.
func (h *HMAC) Sign(claims Claims) (string, error) {
	if claims.Namespace() != h.opts.Namespace {
		return "", ErrAudience
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

// Verify checks signature, issuer, namespace and validity window.
func (h *HMAC) Verify(token string) (Claims, error) {
	var claims Claims
	_, err := h.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		return Claims{}, classify(err)
	}

	if claims.Subject == "" || claims.Namespace() == "" {
		return Claims{}, ErrInvalidClaim
	}
	return claims, nil
}

// classify maps golang-jwt errors onto the jwtx sentinels.
func classify(err error) error {
	var kind error
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		kind = ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		kind = ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		kind = ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		kind = ErrAlgMismatch
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		kind = ErrAudience
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		kind = ErrIssuer
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing), errors.Is(err, jwt.ErrTokenInvalidClaims):
		kind = ErrInvalidClaim
	default:
		kind = ErrMalformed
	}
	return fmt.Errorf("%w: %v", kind, err)
}
