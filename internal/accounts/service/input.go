package service

import (
	"errors"
	"strings"

	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// registration is the normalised input shared by Register and Bootstrap.
type registration struct {
	Name     string `validate:"required,max=100"`
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required"`
}

func newRegistration(name, email, password string) (registration, error) {
	r := registration{
		Name:     strings.TrimSpace(name),
		Email:    normalizeEmail(email),
		Password: password,
	}
	if strings.TrimSpace(password) == "" {
		r.Password = ""
	}

	if err := validate.Struct(r); err != nil {
		return registration{}, describe(err)
	}
	return r, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if err := validate.Var(email, "required,email,max=254"); err != nil {
		return invalid("email is not a valid address")
	}
	return nil
}

// describe turns validator field errors into one ErrValidation.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalid("%v", err)
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return invalid("name, email and password are required")
	case "email":
		return invalid("email is not a valid address")
	case "max":
		return invalid("%s must be at most %s characters", field, fe.Param())
	default:
		return invalid("%s is invalid", field)
	}
}

func hashPassword(h *cryptox.PasswordHasher, password string) (string, error) {
	hash, err := h.Hash(password)
	if errors.Is(err, cryptox.ErrPasswordTooLong) {
		return "", invalid("password is too long")
	}
	if err != nil {
		return "", infra("hash password", err)
	}
	return hash, nil
}

// txErr keeps known kinds from a transaction body and wraps anything else
// (begin or commit failures) as infrastructure.
func txErr(op string, err error) error {
	for _, kind := range []error{
		ErrValidation, ErrConflict, ErrInvalidCredentials, ErrRevoked,
		ErrNotFound, ErrForbidden, ErrInfrastructure, ErrBootstrapAlready,
	} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return infra(op, err)
}
