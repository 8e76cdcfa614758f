package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sirpyerre/members-portal/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Field names in messages come from the form tag.
func NewValidator() *echoValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface. Only one failure is
// reported: the first missing field if any, otherwise the first broken rule.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}

	first := ve[0]
	for _, fe := range ve {
		if fe.Tag() == "required" {
			first = fe
			break
		}
	}
	return domain.NewValidationError(first.Field(), fieldError(first))
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return fmt.Sprintf("Error: %s must be a valid email.", field)
	case "alphanum":
		return fmt.Sprintf("Error: %s must only contain alpha-numeric characters.", field)
	case "max":
		return fmt.Sprintf("Error: %s must be at most %s characters long.", field, fe.Param())
	default:
		return fmt.Sprintf("Error: %s failed validation (%s).", field, fe.Tag())
	}
}
