package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Algorithm names a password hashing scheme.
type Algorithm string

const (
	Argon2id Algorithm = "argon2id"
	Bcrypt   Algorithm = "bcrypt"
)

// Default Argon2id parameters (OWASP minimums).
const (
	DefaultArgon2Memory      = 19 * 1024 // KiB
	DefaultArgon2Iterations  = 2
	DefaultArgon2Parallelism = 1

	keyLength  = 32
	saltLength = 16
)

var (
	ErrPasswordMismatch = errors.New("password does not match")
	ErrUnknownHash      = errors.New("invalid hash format")
	ErrPasswordTooLong  = errors.New("password too long")
)

// PasswordHasher hashes and verifies passwords. Hash always uses Algorithm;
// Verify detects the scheme from the encoded hash so stored hashes keep
// working after the algorithm is switched.
type PasswordHasher struct {
	Algorithm Algorithm

	// Argon2id tuning. Zero values fall back to the defaults.
	Memory      uint32
	Iterations  uint32
	Parallelism uint8

	// BcryptCost zero means bcrypt.DefaultCost.
	BcryptCost int

	// Pepper is appended to every password before hashing. Optional.
	Pepper string
}

// NewPasswordHasher returns an Argon2id hasher with default parameters.
func NewPasswordHasher(pepper string) *PasswordHasher {
	return &PasswordHasher{
		Algorithm:   Argon2id,
		Memory:      DefaultArgon2Memory,
		Iterations:  DefaultArgon2Iterations,
		Parallelism: DefaultArgon2Parallelism,
		Pepper:      pepper,
	}
}

// Hash returns an encoded hash including salt and parameters.
func (h *PasswordHasher) Hash(password string) (string, error) {
	switch h.Algorithm {
	case Bcrypt:
		return h.hashBcrypt(password)
	case Argon2id, "":
		return h.hashArgon2(password)
	default:
		return "", fmt.Errorf("cryptox: unsupported algorithm %q", h.Algorithm)
	}
}

// Verify compares a plaintext password against an encoded hash.
func (h *PasswordHasher) Verify(password, encodedHash string) error {
	switch {
	case strings.HasPrefix(encodedHash, "$argon2id$"):
		return h.verifyArgon2(password, encodedHash)
	case strings.HasPrefix(encodedHash, "$2a$"),
		strings.HasPrefix(encodedHash, "$2b$"),
		strings.HasPrefix(encodedHash, "$2y$"):
		err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password+h.Pepper))
		switch {
		case err == nil:
			return nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return ErrPasswordMismatch
		case errors.Is(err, bcrypt.ErrPasswordTooLong):
			return ErrPasswordMismatch
		default:
			return fmt.Errorf("%w: %v", ErrUnknownHash, err)
		}
	default:
		return ErrUnknownHash
	}
}

func (h *PasswordHasher) hashBcrypt(password string) (string, error) {
	cost := h.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	out, err := bcrypt.GenerateFromPassword([]byte(password+h.Pepper), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (h *PasswordHasher) hashArgon2(password string) (string, error) {
	memory, iterations, parallelism := h.argon2Params()

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password+h.Pepper), salt, iterations, memory, parallelism, keyLength)

	// PHC string format
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

func (h *PasswordHasher) verifyArgon2(password, encodedHash string) error {
	// ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return fmt.Errorf("%w: expected 6 parts", ErrUnknownHash)
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return fmt.Errorf("%w: wrong version", ErrUnknownHash)
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("%w: parameters: %v", ErrUnknownHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("%w: salt: %v", ErrUnknownHash, err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("%w: hash: %v", ErrUnknownHash, err)
	}

	computed := argon2.IDKey(
		[]byte(password+h.Pepper),
		salt,
		iters,
		mem,
		par,
		uint32(len(expected)), // #nosec G115 - bounded by the decoded hash
	)

	if subtle.ConstantTimeCompare(computed, expected) == 1 {
		return nil
	}
	return ErrPasswordMismatch
}

func (h *PasswordHasher) argon2Params() (memory, iterations uint32, parallelism uint8) {
	memory, iterations, parallelism = h.Memory, h.Iterations, h.Parallelism
	if memory == 0 {
		memory = DefaultArgon2Memory
	}
	if iterations == 0 {
		iterations = DefaultArgon2Iterations
	}
	if parallelism == 0 {
		parallelism = DefaultArgon2Parallelism
	}
	return memory, iterations, parallelism
}
