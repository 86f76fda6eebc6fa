package authsdk

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (r RegisterRequest) Validate() []httpx.FieldError      { return check(r) }
func (r LoginRequest) Validate() []httpx.FieldError         { return check(r) }
func (r RefreshRequest) Validate() []httpx.FieldError       { return check(r) }
func (r UpdateProfileRequest) Validate() []httpx.FieldError { return check(r) }
func (r BootstrapRequest) Validate() []httpx.FieldError     { return check(r) }

// check runs the struct tags and returns one FieldError per failing field,
// or nil when everything passes.
func check(v any) []httpx.FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []httpx.FieldError{{Field: "body", Message: err.Error()}}
	}

	out := make([]httpx.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, httpx.FieldError{Field: fe.Field(), Message: reason(fe)})
	}
	return out
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("too short (min %s)", fe.Param())
	case "max":
		return fmt.Sprintf("too long (max %s)", fe.Param())
	default:
		return "invalid"
	}
}
