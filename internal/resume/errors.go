package resume

import "fmt"

// ParseError means the input was not a JSON object at all. Everything short
// of that is coerced by Normalize instead.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("resume parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("resume parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
