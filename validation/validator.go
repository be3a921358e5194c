// Package validation performs client-side form validation so malformed
// submissions never reach the network.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// usernamePattern matches the backend's registration rule: at least 3
// characters of letters, numbers, dots, underscores, percent, plus, hyphen.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+$`)

// Validator wraps the go-playground validator with the IdentityX rules.
type Validator struct {
	validate *validator.Validate
}

// New creates a validator instance with the custom rules registered.
func New() *Validator {
	validate := validator.New()

	// Use JSON field names in validation error maps
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	return &Validator{validate: validate}
}

// Check validates a struct and returns per-field messages keyed by JSON
// field name, or nil when the value is valid.
func (v *Validator) Check(i any) map[string]string {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": "invalid request"}
	}

	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = message(fe)
	}
	return fields
}

// message maps a failed rule to a user-facing string.
func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "username":
		return "username can contain only letters, numbers and . _ % + - characters"
	case "eqfield":
		return "passwords don't match"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
