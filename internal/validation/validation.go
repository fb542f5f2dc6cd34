// Package validation wraps go-playground/validator and turns its field
// errors into domain.ValidationError values with readable messages.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"auth/internal/domain"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Struct validates s using its `validate` tags and reports the first
// violation.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.NewValidationError(fe.Field(), Message(fe.Field(), fe.Tag(), fe.Param()))
	}
	return err
}

// Email checks that s is a syntactically valid address.
func Email(s string) error {
	if err := validate.Var(s, "required,email"); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.NewValidationError("email", Message("email", verrs[0].Tag(), verrs[0].Param()))
		}
		return err
	}
	return nil
}
