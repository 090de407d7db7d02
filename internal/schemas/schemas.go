// Package schemas holds the JSON Schemas that LLM responses must satisfy
// and validates documents against them.
package schemas

import (
	"embed"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed definitions/*.json
var definitionFiles embed.FS

// Embedded schema names
const (
	Regeneration = "regeneration"
	Enrichment   = "enrichment"
	JobTitle     = "job_title"
	JobKeywords  = "job_keywords"
)

// compiled caches parsed schemas by their source text
var compiled sync.Map

// Get returns the source of the embedded schema name
func Get(name string) (string, error) {
	data, err := definitionFiles.ReadFile("definitions/" + name + ".json")
	if err != nil {
		return "", &SchemaLoadError{Source: name, Message: "unknown schema", Cause: err}
	}
	return string(data), nil
}

// MustGet is Get for names known at compile time
func MustGet(name string) string {
	schema, err := Get(name)
	if err != nil {
		panic(err)
	}
	return schema
}

func compile(source string) (*gojsonschema.Schema, error) {
	if s, ok := compiled.Load(source); ok {
		return s.(*gojsonschema.Schema), nil
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		return nil, &SchemaLoadError{Source: abbreviate(source), Message: "invalid schema", Cause: err}
	}
	actual, _ := compiled.LoadOrStore(source, s)
	return actual.(*gojsonschema.Schema), nil
}

func abbreviate(source string) string {
	const limit = 40
	if len(source) <= limit {
		return source
	}
	return source[:limit] + "..."
}
