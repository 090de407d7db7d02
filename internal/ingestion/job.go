package ingestion

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// MinDescriptionLength is the shortest accepted description, in runes
	MinDescriptionLength = 10
	// MaxNameLength caps company and role names
	MaxNameLength = 255
	// MaxTitleLength caps generated résumé titles
	MaxTitleLength = 80
)

// ValidateJobInput trims and checks a submitted job description. Company
// and role are optional and truncated rather than rejected.
func ValidateJobInput(description, company, role string) (types.JobInput, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return types.JobInput{}, &InputError{Field: "job_description", Message: "job description is required"}
	}
	if utf8.RuneCountInString(description) < MinDescriptionLength {
		return types.JobInput{}, &InputError{
			Field:   "job_description",
			Message: fmt.Sprintf("job description must be at least %d characters", MinDescriptionLength),
		}
	}

	input := types.JobInput{
		Description: description,
		CompanyName: truncate(strings.TrimSpace(company), MaxNameLength),
		Role:        truncate(strings.TrimSpace(role), MaxNameLength),
	}
	if err := input.Validate(); err != nil {
		return types.JobInput{}, &InputError{Field: "job_description", Message: err.Error()}
	}
	return input, nil
}

// GenerateTitle names a tailored résumé. A known role or company is used
// directly; otherwise the title is extracted from the description by the LLM.
func GenerateTitle(ctx context.Context, completer llm.Completer, description, company, role string) (string, error) {
	company, role = strings.TrimSpace(company), strings.TrimSpace(role)
	if company != "" || role != "" {
		if role == "" {
			role = "Position"
		}
		if company == "" {
			return truncate(role, MaxTitleLength), nil
		}
		return truncate(role+" @ "+company, MaxTitleLength), nil
	}

	if completer == nil {
		return "", &llm.ConfigError{Message: "no LLM provider configured"}
	}
	user, err := prompts.Render(prompts.IngestionFile, "job-title", map[string]string{"Description": description})
	if err != nil {
		return "", &llm.ConfigError{Message: err.Error()}
	}

	raw, err := completer.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: prompts.MustGet(prompts.IngestionFile, "system"),
		UserPrompt:   user,
		Schema:       schemas.MustGet(schemas.JobTitle),
		Tier:         llm.TierLite,
	})
	if err != nil {
		return "", err
	}

	title, _ := raw["title"].(string)
	title = strings.Trim(strings.TrimSpace(title), `"'`)
	if title == "" {
		return "", &llm.FatalError{Message: "job title response is empty"}
	}
	return truncate(title, MaxTitleLength), nil
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
