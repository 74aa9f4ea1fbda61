package validation

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
)

// CodePattern matches hierarchy codes: uppercase letters and digits.
var CodePattern = regexp.MustCompile(`^[A-Z0-9]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("code", func(fl validator.FieldLevel) bool {
		return CodePattern.MatchString(fl.Field().String())
	})
	return v
}

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	return validate
}

// Struct validates v against its `validate` tags. Failures are returned as an
// apperrors validation error whose details map field names to messages.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(err.Error())
	}
	return FromFieldErrors(fieldErrs)
}

// FromFieldErrors converts validator failures into a validation error.
func FromFieldErrors(fieldErrs validator.ValidationErrors) error {
	details := make(map[string]interface{}, len(fieldErrs))
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := FormatFieldError(fe)
		details[fe.Field()] = msg
		messages = append(messages, msg)
	}
	return apperrors.NewValidationError(strings.Join(messages, "; ")).WithDetails(details)
}

// FormatFieldError creates a human-readable validation error message.
func FormatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min", "gte":
		return e.Field() + " must be at least " + e.Param()
	case "max", "lte":
		return e.Field() + " must be at most " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "code":
		return e.Field() + " must contain only uppercase letters and digits"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}

// NormalizeCode trims and upper-cases a hierarchy code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
