package shared

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground validation and flattens struct violations
// into a ValidationError listing every failed rule.
type Validator struct {
	validate *validator.Validate
}

// NewValidator constructs a Validator.
func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Struct validates the target and returns a ValidationError carrying all
// violations, never just the first.
func (v *Validator) Struct(target any) error {
	err := v.validate.Struct(target)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	violations := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, describeViolation(fe))
	}
	return NewValidationError(violations)
}

func describeViolation(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gt":
		return field + " must be greater than " + fe.Param()
	case "gte":
		return field + " must be at least " + fe.Param()
	case "lte":
		return field + " must be at most " + fe.Param()
	case "min":
		return field + " must have at least " + fe.Param() + " entries"
	case "max":
		return field + " is too long"
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return field + " must be one of " + fe.Param()
	case "len":
		return field + " must have length " + fe.Param()
	case "e164":
		return field + " must be an international phone number"
	case "numeric":
		return field + " must be numeric"
	default:
		return field + " is invalid (" + fe.Tag() + ")"
	}
}
