// Package validation checks struct tags with go-playground/validator and
// reports failures as *domain.InputError keyed by form field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"customer-addressbook/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// Struct validates s. Field errors are returned as *domain.InputError with
// messages built from labels (form field name to display label).
func Struct(s any, labels map[string]string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	out := domain.NewInputError()
	seen := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		field := fieldName(fe)
		if seen[field] {
			continue
		}
		seen[field] = true
		out.Add(field, Message(fe, label(field, labels)))
	}
	return out
}

// Message renders the storefront text for one failed rule.
func Message(fe validator.FieldError, label string) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is a required value.", label)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%q is a required value.", label)
		}
		return fmt.Sprintf("%q must be at least %s characters.", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%q cannot have more than %s lines.", label, fe.Param())
		}
		return fmt.Sprintf("%q cannot be longer than %s characters.", label, fe.Param())
	case "email":
		return fmt.Sprintf("%q is not a valid email address.", label)
	case "iso3166_1_alpha2":
		return fmt.Sprintf("%q is not a valid country code.", label)
	default:
		return fmt.Sprintf("%q is invalid.", label)
	}
}

// fieldName strips the slice index added for dive errors ("street[1]").
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if i := strings.IndexByte(name, '['); i > 0 {
		name = name[:i]
	}
	return name
}

func label(field string, labels map[string]string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	return field
}
