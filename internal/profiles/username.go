package profiles

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

var reservedUsernames = map[string]struct{}{
	"admin": {}, "administrator": {}, "api": {}, "app": {}, "auth": {}, "dashboard": {},
	"help": {}, "login": {}, "logout": {}, "me": {}, "null": {}, "profile": {},
	"resumes": {}, "root": {}, "settings": {}, "signup": {}, "support": {},
	"system": {}, "undefined": {}, "www": {},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("username_chars", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("not_reserved", func(fl validator.FieldLevel) bool {
		_, reserved := reservedUsernames[fl.Field().String()]
		return !reserved
	})
	return v
}

// NormalizeUsername lowercases and trims a candidate username.
func NormalizeUsername(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ValidateUsername checks an already normalized username and returns an
// ErrInvalidInput-wrapped error describing the first failing rule.
func ValidateUsername(name string) error {
	err := validate.Var(name, "required,min=3,max=30,username_chars,not_reserved")
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	var reason string
	switch verrs[0].Tag() {
	case "required":
		reason = "username is required"
	case "min", "max":
		reason = "username must be between 3 and 30 characters"
	case "username_chars":
		reason = "username may only contain lowercase letters, numbers and underscores"
	case "not_reserved":
		reason = "username is reserved"
	default:
		reason = "username is invalid"
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}
