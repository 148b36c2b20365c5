package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. It is initialised once at
// package load time. Any custom type registrations must be made during init()
// before the first call to Struct.
var v = validator.New()

// Struct validates the given struct using its validate tags.
// Returns a human-readable error string or nil.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		return humanize(err)
	}
	return nil
}

// Var validates a single value against a tag expression such as "required,numeric".
func Var(field interface{}, tag string) error {
	if err := v.Var(field, tag); err != nil {
		return humanize(err)
	}
	return nil
}

func humanize(err error) error {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	var msgs []string
	for _, fe := range ve {
		if fe.Field() == "" {
			msgs = append(msgs, fmt.Sprintf("value failed '%s'", fe.Tag()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
