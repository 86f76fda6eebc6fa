package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Owner is the account a token speaks for.
type Owner struct {
	ID    string
	Email string
}

// Claims carry the owner's id in sub and their email at issuance.
type Claims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`
}

// NewClaims builds claims valid from issuedAt for ttl. Each call gets a fresh
// jti, so two tokens for one owner minted in the same second still differ.
func NewClaims(issuer string, ns Namespace, owner Owner, issuedAt time.Time, ttl time.Duration) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   owner.ID,
			Audience:  jwt.ClaimStrings{string(ns)},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Email: owner.Email,
	}
}

// Owner returns who the token was issued to.
func (c Claims) Owner() Owner {
	return Owner{ID: c.Subject, Email: c.Email}
}

// Namespace returns the single namespace in aud, or "" when aud is empty or
// holds more than one value.
func (c Claims) Namespace() Namespace {
	if len(c.Audience) != 1 {
		return ""
	}
	return Namespace(c.Audience[0])
}
