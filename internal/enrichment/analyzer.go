// Package enrichment finds weak résumé items and the questions that would
// let them be rewritten with concrete detail.
package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
	"go.uber.org/zap"
)

// DefaultMaxQuestions caps the questions asked in one analysis
const DefaultMaxQuestions = 6

// Analyzer asks the LLM which items are weak. It makes exactly one call per
// analysis and never retries.
type Analyzer struct {
	completer    llm.Completer
	logger       *zap.Logger
	maxQuestions int
}

// NewAnalyzer creates an Analyzer. maxQuestions <= 0 uses DefaultMaxQuestions.
func NewAnalyzer(completer llm.Completer, maxQuestions int, logger *zap.Logger) *Analyzer {
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxQuestions
	}
	return &Analyzer{completer: completer, logger: logging.OrNop(logger), maxQuestions: maxQuestions}
}

// Analyze returns the weak items of resume and questions about them. Entries
// that reference an (id, type) pair not present in resume are dropped.
func (a *Analyzer) Analyze(ctx context.Context, resume *types.NormalizedResume) (*types.EnrichmentResult, error) {
	empty := &types.EnrichmentResult{ItemsToEnrich: []types.ItemToEnrich{}, Questions: []types.EnrichmentQuestion{}}
	if resume == nil {
		return empty, nil
	}

	known := knownItems(resume.ResumeDocument)
	if len(known) == 0 {
		return empty, nil
	}
	if a.completer == nil {
		return nil, &llm.ConfigError{Message: "no LLM provider configured"}
	}

	system, err := prompts.Get(prompts.EnrichmentFile, "system")
	if err != nil {
		return nil, &llm.ConfigError{Message: err.Error()}
	}
	user, err := prompts.Render(prompts.EnrichmentFile, "analyze", map[string]string{
		"MaxQuestions": strconv.Itoa(a.maxQuestions),
		"Items":        describeItems(resume.ResumeDocument),
	})
	if err != nil {
		return nil, &llm.ConfigError{Message: err.Error()}
	}

	raw, err := a.completer.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: system,
		UserPrompt:   user,
		Schema:       schemas.MustGet(schemas.Enrichment),
		Tier:         llm.TierStandard,
	})
	if err != nil {
		return nil, err
	}

	var parsed types.EnrichmentResult
	if err := decode(raw, &parsed); err != nil {
		return nil, &llm.FatalError{Message: "enrichment response has unexpected shape", Cause: err}
	}

	return a.reconcile(parsed, known), nil
}

// reconcile keeps entries that reference known items, one per key
func (a *Analyzer) reconcile(parsed types.EnrichmentResult, known map[types.ItemKey]struct{}) *types.EnrichmentResult {
	out := &types.EnrichmentResult{
		ItemsToEnrich: []types.ItemToEnrich{},
		Questions:     []types.EnrichmentQuestion{},
		Summary:       strings.TrimSpace(parsed.Summary),
	}

	seenItems := make(map[types.ItemKey]struct{})
	for _, item := range parsed.ItemsToEnrich {
		item.ItemID = strings.TrimSpace(item.ItemID)
		key := types.ItemKey{ItemID: item.ItemID, ItemType: item.ItemType}
		if _, ok := known[key]; !ok {
			a.logger.Warn("dropping weak item with unknown id",
				zap.String(logging.FieldItemID, item.ItemID),
				zap.String(logging.FieldItemType, string(item.ItemType)),
			)
			continue
		}
		if _, dup := seenItems[key]; dup {
			continue
		}
		seenItems[key] = struct{}{}
		out.ItemsToEnrich = append(out.ItemsToEnrich, item)
	}

	seenQuestions := make(map[string]struct{})
	for _, q := range parsed.Questions {
		q.ItemID = strings.TrimSpace(q.ItemID)
		q.Question = strings.TrimSpace(q.Question)
		if _, ok := known[types.ItemKey{ItemID: q.ItemID, ItemType: q.ItemType}]; !ok || q.Question == "" {
			a.logger.Warn("dropping question about unknown item",
				zap.String("question_id", q.ID),
				zap.String(logging.FieldItemID, q.ItemID),
				zap.String(logging.FieldItemType, string(q.ItemType)),
			)
			continue
		}
		for n := len(out.Questions) + 1; q.ID == "" || isSeen(seenQuestions, q.ID); n++ {
			q.ID = fmt.Sprintf("q%d", n)
		}
		seenQuestions[q.ID] = struct{}{}
		out.Questions = append(out.Questions, q)
		if len(out.Questions) == a.maxQuestions {
			break
		}
	}

	return out
}

func isSeen(seen map[string]struct{}, id string) bool {
	_, ok := seen[id]
	return ok
}

// knownItems collects the key of every experience and project item. Ids
// are unique per section only, so the same id may appear under both types.
func knownItems(doc types.ResumeDocument) map[types.ItemKey]struct{} {
	known := make(map[types.ItemKey]struct{})
	add := func(itemType types.ItemType, items []types.Item) {
		for _, it := range items {
			if it.ID != "" {
				known[types.ItemKey{ItemID: it.ID, ItemType: itemType}] = struct{}{}
			}
		}
	}
	add(types.ItemExperience, doc.WorkExperience)
	add(types.ItemProject, doc.Projects)
	return known
}

func describeItems(doc types.ResumeDocument) string {
	var sb strings.Builder
	write := func(itemType types.ItemType, items []types.Item) {
		for _, it := range items {
			if it.ID == "" {
				continue
			}
			sb.WriteString(fmt.Sprintf("[%s] id=%s: %s", itemType, it.ID, it.Title))
			if it.Subtitle != "" {
				sb.WriteString(" @ " + it.Subtitle)
			}
			sb.WriteString("\n")
			for _, d := range it.Descriptions {
				sb.WriteString("  - " + d + "\n")
			}
		}
	}
	write(types.ItemExperience, doc.WorkExperience)
	write(types.ItemProject, doc.Projects)
	return sb.String()
}

func decode(raw map[string]any, target any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}
