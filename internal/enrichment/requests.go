package enrichment

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/types"
)

// RequestsFor turns the weak items of an analysis into regeneration
// requests, in analysis order. Items no longer in doc are skipped.
func RequestsFor(doc types.ResumeDocument, result *types.EnrichmentResult) []types.RegenerationRequest {
	if result == nil {
		return nil
	}

	requests := make([]types.RegenerationRequest, 0, len(result.ItemsToEnrich))
	for _, weak := range result.ItemsToEnrich {
		var items []types.Item
		switch weak.ItemType {
		case types.ItemExperience:
			items = doc.WorkExperience
		case types.ItemProject:
			items = doc.Projects
		default:
			continue
		}

		for _, it := range items {
			if it.ID != weak.ItemID {
				continue
			}
			requests = append(requests, types.RegenerationRequest{
				ItemID:         it.ID,
				ItemType:       weak.ItemType,
				Title:          it.Title,
				Subtitle:       it.Subtitle,
				CurrentContent: append([]string{}, it.Descriptions...),
			})
			break
		}
	}
	return requests
}

// AnswersInstruction folds the candidate's answers into a regeneration
// instruction. Answers are keyed by question id; blank or unknown answers
// are ignored. It returns "" when nothing was answered.
func AnswersInstruction(result *types.EnrichmentResult, answers map[string]string) string {
	if result == nil || len(answers) == 0 {
		return ""
	}

	var lines strings.Builder
	for _, q := range result.Questions {
		answer := strings.TrimSpace(answers[q.ID])
		if answer == "" {
			continue
		}
		lines.WriteString(fmt.Sprintf("- [%s %s] %s %s\n", q.ItemType, q.ItemID, q.Question, answer))
	}
	if lines.Len() == 0 {
		return ""
	}

	instruction, err := prompts.Render(prompts.EnrichmentFile, "answers", map[string]string{"Answers": lines.String()})
	if err != nil {
		return lines.String()
	}
	return instruction
}
