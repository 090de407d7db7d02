package schemas

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// FieldError is one schema violation
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every violation of one document
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fmt.Sprintf("%d. %s: %s", i+1, fe.Field, fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// SchemaLoadError means the schema or the document could not be parsed
type SchemaLoadError struct {
	Source  string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	msg := fmt.Sprintf("schema %s: %s", e.Source, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// ValidateJSONString checks the JSON text document against schema source
func ValidateJSONString(schema, document string) error {
	return validate(schema, gojsonschema.NewStringLoader(document))
}

// ValidateValue checks a decoded value (or any JSON-encodable struct)
// against schema source
func ValidateValue(schema string, value any) error {
	return validate(schema, gojsonschema.NewGoLoader(value))
}

func validate(schema string, document gojsonschema.JSONLoader) error {
	s, err := compile(schema)
	if err != nil {
		return err
	}

	result, err := s.Validate(document)
	if err != nil {
		return &SchemaLoadError{Source: "document", Message: "unreadable", Cause: err}
	}
	if result.Valid() {
		return nil
	}

	violations := result.Errors()
	ve := &ValidationError{Errors: make([]FieldError, 0, len(violations))}
	for _, desc := range violations {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}
