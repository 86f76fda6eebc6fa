package domain

import "time"

// TokenPair is what a successful login or refresh returns.
type TokenPair struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	TokenType    string        `json:"tokenType"`
	ExpiresIn    time.Duration `json:"-"`
}

// Identity is the content of a verified access or refresh credential.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
