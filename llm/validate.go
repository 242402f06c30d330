package llm

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance used across the package.
var validate = validator.New()

// providerNamePattern matches registry keys: lowercase letters, digits, and
// hyphens, starting with a letter.
var providerNamePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

func init() {
	if err := RegisterCustomValidation("provider_name", validProviderName); err != nil {
		panic(err)
	}
}

func validProviderName(fl validator.FieldLevel) bool {
	return providerNamePattern.MatchString(fl.Field().String())
}

// Validate checks the given struct against its `validate` tags.
func Validate(s any) error {
	return validate.Struct(s)
}

// RegisterCustomValidation adds a domain-specific validation rule beyond the
// standard ones.
func RegisterCustomValidation(tag string, fn validator.Func) error {
	return validate.RegisterValidation(tag, fn)
}
