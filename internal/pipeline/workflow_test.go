package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/enrichment"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/regeneration"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedCompleter answers by model tier and records every user prompt
type scriptedCompleter struct {
	mu      sync.Mutex
	prompts map[llm.ModelTier][]string
}

func (c *scriptedCompleter) Complete(_ context.Context, req llm.CompletionRequest) (map[string]any, error) {
	c.mu.Lock()
	if c.prompts == nil {
		c.prompts = map[llm.ModelTier][]string{}
	}
	c.prompts[req.Tier] = append(c.prompts[req.Tier], req.UserPrompt)
	c.mu.Unlock()

	if req.Schema == schemas.MustGet(schemas.JobKeywords) {
		return map[string]any{
			"required_skills":      []any{"Go", "Kafka", "go"},
			"preferred_skills":     []any{"gRPC"},
			"experience_level":     "Staff",
			"key_responsibilities": []any{"Own the payments platform"},
		}, nil
	}

	switch req.Tier {
	case llm.TierLite:
		return map[string]any{"title": `"Staff Engineer @ Payments"`}, nil
	case llm.TierStandard:
		return map[string]any{
			"items_to_enrich": []any{
				map[string]any{"item_id": "exp1", "item_type": "experience", "weakness_reason": "no scale"},
				map[string]any{"item_id": "nope", "item_type": "project", "weakness_reason": "unknown"},
			},
			"questions": []any{
				map[string]any{"question_id": "q1", "item_id": "exp1", "item_type": "experience", "question": "How much traffic?"},
			},
		}, nil
	default:
		return map[string]any{"new_content": []any{"Built services handling 1M requests per day", "ran on-call"}}, nil
	}
}

func (c *scriptedCompleter) calls(tier llm.ModelTier) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.prompts[tier]...)
}

func TestWorkflow_AnalyzeTailorConfirm(t *testing.T) {
	completer := &scriptedCompleter{}
	opts := regeneration.DefaultOptions()
	opts.Retry.InitialBackoff = time.Millisecond
	opts.Retry.MaxBackoff = time.Millisecond

	svc := NewService(
		db.NewMemoryStore(),
		enrichment.NewAnalyzer(completer, 4, nil),
		regeneration.New(completer, opts, nil),
		completer,
		nil,
		Options{OutputLanguage: "English"},
	)
	ctx := context.Background()

	master, _, err := svc.CreateResume(ctx, "Master", []byte(masterJSON))
	require.NoError(t, err)
	job, err := svc.CreateJob(ctx, types.JobInput{Description: "We need a staff engineer for payments infrastructure"})
	require.NoError(t, err)

	proposal, err := svc.Tailor(ctx, TailorRequest{
		ResumeID: master.ID,
		JobID:    &job.ID,
		Analyze:  true,
		Answers:  map[string]string{"q1": "1M requests per day"},
	})
	require.NoError(t, err)

	require.NotNil(t, proposal.Keywords)
	assert.Equal(t, []string{"Go", "Kafka"}, proposal.Keywords.RequiredSkills)
	require.NotEmpty(t, proposal.Suggestions)
	assert.Equal(t, 1, proposal.Suggestions[0].LineNumber)
	assert.Contains(t, proposal.Suggestions[0].Suggestion, "Emphasize your Go")
	assert.Contains(t, proposal.Suggestions[1].Suggestion, "Add Kafka")

	require.Len(t, proposal.Enrichment.ItemsToEnrich, 1, "unknown items are dropped")
	require.Len(t, proposal.Envelope.Results, 1)
	assert.Empty(t, proposal.Envelope.Errors)
	assert.Equal(t, "exp1", proposal.Envelope.Results[0].ItemID)

	regenPrompts := completer.calls(llm.TierAdvanced)
	require.Len(t, regenPrompts, 1)
	assert.Contains(t, regenPrompts[0], "1M requests per day")
	assert.Contains(t, regenPrompts[0], "payments infrastructure")
	assert.Contains(t, regenPrompts[0], "Required skills: Go, Kafka")
	assert.Contains(t, regenPrompts[0], "Own the payments platform")

	assert.Equal(t, "Built services handling 1M requests per day", proposal.Improved.WorkExperience[0].Descriptions[0])
	assert.Equal(t, 1, proposal.Diff.Summary.DescriptionsModified)

	// A second proposal reuses the cached keywords
	_, err = svc.Tailor(ctx, TailorRequest{ResumeID: master.ID, JobID: &job.ID, Requests: []types.RegenerationRequest{
		{ItemID: "exp2", ItemType: types.ItemExperience, CurrentContent: []string{"wrote tests"}},
	}})
	require.NoError(t, err)
	keywordCalls := 0
	for _, p := range completer.calls(llm.TierStandard) {
		if strings.Contains(p, "Extract the keywords") {
			keywordCalls++
		}
	}
	assert.Equal(t, 1, keywordCalls)

	confirmed, err := svc.Confirm(ctx, ConfirmRequest{
		ResumeID:    master.ID,
		JobID:       &job.ID,
		Improved:    proposal.Improved,
		Suggestions: proposal.Suggestions[:1],
	})
	require.NoError(t, err)
	assert.Equal(t, "Staff Engineer @ Payments", confirmed.Resume.Title)
	assert.Len(t, completer.calls(llm.TierLite), 1)

	history, err := svc.History(ctx, master.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, job.ID, *history[0].JobID)
	assert.Equal(t, proposal.Suggestions[:1], history[0].Suggestions)
	for _, change := range history[0].Changes {
		assert.True(t, strings.HasPrefix(change.Field, types.FieldDescriptions), change.Field)
	}
}
