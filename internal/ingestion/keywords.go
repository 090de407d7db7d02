package ingestion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// MaxKeywordsPerList caps each extracted keyword list
	MaxKeywordsPerList = 20
	// MaxSuggestions caps the suggestions built from one job
	MaxSuggestions = 10
)

// KeywordsHash identifies the job content a keyword extraction belongs to
func KeywordsHash(content string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(content)))
	return hex.EncodeToString(sum[:])
}

// ExtractKeywords asks the LLM what the job description requires. It makes
// one schema-validated call and does not retry.
func ExtractKeywords(ctx context.Context, completer llm.Completer, description string) (*types.JobKeywords, error) {
	if completer == nil {
		return nil, &llm.ConfigError{Message: "no LLM provider configured"}
	}
	system, err := prompts.Get(prompts.IngestionFile, "keywords-system")
	if err != nil {
		return nil, &llm.ConfigError{Message: err.Error()}
	}
	user, err := prompts.Render(prompts.IngestionFile, "keywords", map[string]string{"Description": description})
	if err != nil {
		return nil, &llm.ConfigError{Message: err.Error()}
	}

	raw, err := completer.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: system,
		UserPrompt:   user,
		Schema:       schemas.MustGet(schemas.JobKeywords),
		Tier:         llm.TierStandard,
	})
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, &llm.FatalError{Message: "job keywords response has unexpected shape", Cause: err}
	}
	var kw types.JobKeywords
	if err := json.Unmarshal(data, &kw); err != nil {
		return nil, &llm.FatalError{Message: "job keywords response has unexpected shape", Cause: err}
	}

	kw.RequiredSkills = cleanTerms(kw.RequiredSkills, nil)
	kw.PreferredSkills = cleanTerms(kw.PreferredSkills, kw.RequiredSkills)
	kw.KeyResponsibilities = cleanTerms(kw.KeyResponsibilities, nil)
	kw.ExperienceLevel = strings.TrimSpace(kw.ExperienceLevel)
	kw.Domain = strings.TrimSpace(kw.Domain)
	return &kw, nil
}

// cleanTerms trims, drops blanks and case-insensitive duplicates (including
// anything already in exclude) and caps the list
func cleanTerms(terms, exclude []string) []string {
	seen := make(map[string]struct{}, len(terms)+len(exclude))
	for _, t := range exclude {
		seen[strings.ToLower(t)] = struct{}{}
	}
	out := []string{}
	for _, t := range terms {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if _, dup := seen[key]; t == "" || dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
		if len(out) == MaxKeywordsPerList {
			break
		}
	}
	return out
}

// Suggestions turns job keywords into numbered hints for the candidate.
// Required skills the résumé already shows are to be emphasized; missing
// ones are only to be added if the candidate really has them.
func Suggestions(kw *types.JobKeywords, doc types.ResumeDocument) []types.Suggestion {
	if kw == nil {
		return []types.Suggestion{}
	}

	text := resumeText(doc)
	var hints []string
	for _, skill := range kw.RequiredSkills {
		if mentions(text, skill) {
			hints = append(hints, fmt.Sprintf("Emphasize your %s experience; the role requires it", skill))
		} else {
			hints = append(hints, fmt.Sprintf("Add %s experience if you have it; the role requires it", skill))
		}
	}
	for _, skill := range kw.PreferredSkills {
		if !mentions(text, skill) {
			hints = append(hints, fmt.Sprintf("Mention %s if you have used it; the role prefers it", skill))
		}
	}
	if kw.ExperienceLevel != "" {
		hints = append(hints, fmt.Sprintf("Frame achievements with the scope expected at %s level", kw.ExperienceLevel))
	}
	for _, r := range kw.KeyResponsibilities {
		hints = append(hints, "Show results related to: "+r)
	}

	if len(hints) > MaxSuggestions {
		hints = hints[:MaxSuggestions]
	}
	out := make([]types.Suggestion, len(hints))
	for i, h := range hints {
		out[i] = types.Suggestion{Suggestion: h, LineNumber: i + 1}
	}
	return out
}

// KeywordsText lists the keywords for a regeneration instruction, one
// labelled line per non-empty group
func KeywordsText(kw *types.JobKeywords) string {
	if kw == nil {
		return ""
	}
	var sb strings.Builder
	line := func(label string, values []string) {
		if len(values) > 0 {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", label, strings.Join(values, ", ")))
		}
	}
	line("Required skills", kw.RequiredSkills)
	line("Preferred skills", kw.PreferredSkills)
	if kw.ExperienceLevel != "" {
		line("Experience level", []string{kw.ExperienceLevel})
	}
	line("Key responsibilities", kw.KeyResponsibilities)
	return sb.String()
}

func resumeText(doc types.ResumeDocument) string {
	var sb strings.Builder
	for _, s := range doc.Skills {
		sb.WriteString(s + "\n")
	}
	sb.WriteString(doc.Summary + "\n")
	for _, items := range [][]types.Item{doc.WorkExperience, doc.Projects} {
		for _, it := range items {
			sb.WriteString(it.Title + "\n")
			for _, d := range it.Descriptions {
				sb.WriteString(d + "\n")
			}
		}
	}
	return strings.ToLower(sb.String())
}

// mentions reports whether term appears in text as a whole word. text must
// already be lower case.
func mentions(text, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}
	for offset := 0; ; {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			return false
		}
		start, end := offset+i, offset+i+len(term)
		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if !isWordRune(before) && !isWordRune(after) {
			return true
		}
		offset = start + 1
	}
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
