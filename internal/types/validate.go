// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate reports field errors under their JSON names
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the request shape. Errors are validator.ValidationErrors.
func (r RegenerationRequest) Validate() error {
	return validate.Struct(r)
}

// Validate checks the enhancement shape. Errors are validator.ValidationErrors.
func (e Enhancement) Validate() error {
	return validate.Struct(e)
}

// Validate checks the job input shape. Errors are validator.ValidationErrors.
func (r JobInput) Validate() error {
	return validate.Struct(r)
}

// Validate checks the suggestion shape. Errors are validator.ValidationErrors.
func (s Suggestion) Validate() error {
	return validate.Struct(s)
}
