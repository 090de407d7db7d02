package pipeline

import "fmt"

// RequestError reports an invalid tailoring request
type RequestError struct {
	Field   string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
