// Package prompts holds the LLM prompt templates. Each JSON file maps a key
// to a template with {{.Name}} placeholders and is embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// Prompt files shipped with the binary
const (
	RegenerationFile = "regeneration.json"
	EnrichmentFile   = "enrichment.json"
	IngestionFile    = "ingestion.json"
)

var placeholder = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

// loadAll parses every embedded file once
var loadAll = sync.OnceValues(func() (map[string]map[string]string, error) {
	names, err := fs.Glob(promptFiles, "*.json")
	if err != nil {
		return nil, err
	}
	files := make(map[string]map[string]string, len(names))
	for _, name := range names {
		data, err := promptFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", name, err)
		}
		var templates map[string]string
		if err := json.Unmarshal(data, &templates); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", name, err)
		}
		files[name] = templates
	}
	return files, nil
})

func file(filename string) (map[string]string, error) {
	files, err := loadAll()
	if err != nil {
		return nil, err
	}
	templates, ok := files[filename]
	if !ok {
		return nil, fmt.Errorf("unknown prompt file %s", filename)
	}
	return templates, nil
}

// Get returns the raw template stored under key in filename
func Get(filename, key string) (string, error) {
	templates, err := file(filename)
	if err != nil {
		return "", err
	}
	template, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return template, nil
}

// MustGet is Get for prompts that must exist; it panics otherwise.
func MustGet(filename, key string) string {
	template, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return template
}

// Fill substitutes placeholders from data. It fails if any placeholder has
// no value, so a prompt never reaches the LLM with template syntax in it.
func Fill(template string, data map[string]string) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(template, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		value, ok := data[name]
		if !ok {
			if !slices.Contains(missing, name) {
				missing = append(missing, name)
			}
			return m
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt is missing values for %v", missing)
	}
	return out, nil
}

// Render looks up a template and fills it
func Render(filename, key string, data map[string]string) (string, error) {
	template, err := Get(filename, key)
	if err != nil {
		return "", err
	}
	out, err := Fill(template, data)
	if err != nil {
		return "", fmt.Errorf("%s/%s: %w", filename, key, err)
	}
	return out, nil
}

// Keys lists the templates in filename, sorted
func Keys(filename string) ([]string, error) {
	templates, err := file(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(templates))
	for key := range templates {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}
