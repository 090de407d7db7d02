package regeneration

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError means a request was malformed. It is returned before any
// LLM call is made.
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid request: %s", e.Message)
	}
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// newValidationError converts a validator error for the element at prefix
func newValidationError(prefix string, err error) *ValidationError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{
			Field:   fmt.Sprintf("%s.%s", prefix, fe.Field()),
			Message: describeTag(fe),
			Cause:   err,
		}
	}
	return &ValidationError{Field: prefix, Message: err.Error(), Cause: err}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
