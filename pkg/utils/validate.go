package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags on value and returns it unchanged.
func Validate[T any](value T) (T, error) {
	if err := validate.Struct(value); err != nil {
		return value, validationError(value, err)
	}
	return value, nil
}

// ValidateValue checks a single value against a validator tag, for example
// "uuid" or "oneof=LOW MEDIUM HIGH".
func ValidateValue(value any, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		return validationError(value, err)
	}
	return nil
}

// validationError flattens validator.ValidationErrors into one message naming
// each failing field and rule. Other errors pass through untouched.
func validationError(input any, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "invalid %T:", input)
	for _, fe := range verrs {
		fmt.Fprintf(&b, "\n • field '%s' failed rule '%s'", fe.StructField(), fe.Tag())
		if fe.Param() != "" {
			fmt.Fprintf(&b, " (param '%s')", fe.Param())
		}
		fmt.Fprintf(&b, ", got '%v'", fe.Value())
	}
	return errors.New(b.String())
}
