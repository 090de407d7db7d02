// Package regeneration rewrites résumé items through the LLM layer, one
// independent call per item, and splices accepted rewrites back into a
// résumé document.
package regeneration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/resume-tailor/internal/diff"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	defaultMaxInFlight = 4
	defaultItemTimeout = 90 * time.Second
	defaultLanguage    = "English"
	operationName      = "regenerate"
)

// Options configures an Orchestrator
type Options struct {
	// MaxInFlight bounds concurrent LLM calls
	MaxInFlight int
	// ItemTimeout bounds one item including its retries; zero disables it
	ItemTimeout time.Duration
	Retry       RetryConfig
	Tier        llm.ModelTier
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{
		MaxInFlight: defaultMaxInFlight,
		ItemTimeout: defaultItemTimeout,
		Retry:       DefaultRetryConfig(),
		Tier:        llm.TierAdvanced,
	}
}

// Orchestrator fans regeneration requests out to the LLM layer and collects
// one outcome per unique (item id, item type) key.
type Orchestrator struct {
	completer llm.Completer
	opts      Options
	logger    *zap.Logger
}

// New creates an Orchestrator. A zero MaxInFlight or Tier, or an invalid
// Retry, falls back to the defaults.
func New(completer llm.Completer, opts Options, logger *zap.Logger) *Orchestrator {
	defaults := DefaultOptions()
	if opts.MaxInFlight < 1 {
		opts.MaxInFlight = defaults.MaxInFlight
	}
	if opts.Retry.Validate() != nil {
		opts.Retry = defaults.Retry
	}
	if opts.Tier == "" {
		opts.Tier = defaults.Tier
	}
	return &Orchestrator{completer: completer, opts: opts, logger: logging.OrNop(logger)}
}

// slot holds the outcome of one unique key; each slot has a single writer
type slot struct {
	result  *types.RegenerationResult
	failure *types.RegenerationError
}

// Regenerate rewrites every requested item. Duplicate keys share one LLM
// call, and the envelope holds exactly one entry per unique key, ordered by
// first occurrence in requests.
//
// Per-item failures, including cancellation, are reported in the envelope's
// Errors. The returned error is a *ValidationError for malformed requests
// or an *llm.ConfigError when no provider is usable.
func (o *Orchestrator) Regenerate(ctx context.Context, requests []types.RegenerationRequest, instruction, outputLanguage string) (*types.RegenerationEnvelope, error) {
	unique, err := dedupe(requests)
	if err != nil {
		return nil, err
	}

	envelope := &types.RegenerationEnvelope{
		Results: []types.RegenerationResult{},
		Errors:  []types.RegenerationError{},
	}
	if len(unique) == 0 {
		return envelope, nil
	}
	if o.completer == nil {
		return nil, &llm.ConfigError{Message: "no LLM provider configured"}
	}
	if strings.TrimSpace(outputLanguage) == "" {
		outputLanguage = defaultLanguage
	}

	observability.RecordRegenerationBatch(len(unique))
	o.logger.Info("regenerating items",
		zap.Int("requested", len(requests)),
		zap.Int("unique", len(unique)),
		zap.Int("max_in_flight", o.opts.MaxInFlight),
	)

	slots := make([]slot, len(unique))
	sem := semaphore.NewWeighted(int64(o.opts.MaxInFlight))
	g, gctx := errgroup.WithContext(ctx)

	for i, req := range unique {
		if err := sem.Acquire(gctx, 1); err != nil {
			// Batch cancelled; undispatched keys are filled in below
			break
		}
		g.Go(func() error {
			defer sem.Release(1)

			result, err := o.regenerateOne(gctx, req, instruction, outputLanguage)
			if err != nil {
				if llm.IsConfig(err) {
					return err
				}
				slots[i].failure = o.failure(req, err)
				return nil
			}
			slots[i].result = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		o.logger.Error("regeneration aborted", zap.Error(err))
		return nil, err
	}

	for i, req := range unique {
		switch {
		case slots[i].result != nil:
			envelope.Results = append(envelope.Results, *slots[i].result)
			observability.RecordRegenerationItem(string(req.ItemType), observability.OutcomeSuccess)
		case slots[i].failure != nil:
			envelope.Errors = append(envelope.Errors, *slots[i].failure)
			observability.RecordRegenerationItem(string(req.ItemType), observability.OutcomeFailure)
		default:
			envelope.Errors = append(envelope.Errors, *o.failure(req, context.Canceled))
			observability.RecordRegenerationItem(string(req.ItemType), observability.OutcomeCancelled)
		}
	}

	o.logger.Info("regeneration finished",
		zap.Int("succeeded", len(envelope.Results)),
		zap.Int("failed", len(envelope.Errors)),
	)
	return envelope, nil
}

// dedupe validates requests and keeps the first request per key, in order
func dedupe(requests []types.RegenerationRequest) ([]types.RegenerationRequest, error) {
	seen := make(map[types.ItemKey]struct{}, len(requests))
	unique := make([]types.RegenerationRequest, 0, len(requests))

	for i, req := range requests {
		prefix := fmt.Sprintf("items[%d]", i)
		req.ItemID = strings.TrimSpace(req.ItemID)
		if err := req.Validate(); err != nil {
			return nil, newValidationError(prefix, err)
		}

		if _, dup := seen[req.Key()]; dup {
			continue
		}
		seen[req.Key()] = struct{}{}
		unique = append(unique, req)
	}
	return unique, nil
}

func (o *Orchestrator) regenerateOne(ctx context.Context, req types.RegenerationRequest, instruction, language string) (*types.RegenerationResult, error) {
	if o.opts.ItemTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.ItemTimeout)
		defer cancel()
	}

	log := o.logger.With(
		zap.String(logging.FieldItemID, req.ItemID),
		zap.String(logging.FieldItemType, string(req.ItemType)),
	)

	completion, err := buildCompletion(req, instruction, language, o.opts.Tier)
	if err != nil {
		return nil, err
	}

	var response map[string]any
	attempts, err := retry(ctx, o.opts.Retry, func(ctx context.Context, attempt int) error {
		start := time.Now()
		out, err := o.completer.Complete(ctx, completion)
		observability.RecordLLMAttempt(operationName, outcomeOf(err), time.Since(start))
		if err != nil {
			log.Debug("llm attempt failed", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		response = out
		return nil
	})
	if err != nil {
		log.Warn("item regeneration failed", zap.Int("attempts", attempts), zap.Error(err))
		return nil, err
	}

	newContent, changeSummary, err := parseResponse(response)
	if err != nil {
		log.Warn("unusable llm response", zap.Error(err))
		return nil, err
	}
	if changeSummary == "" {
		changeSummary = summarizeChange(req.CurrentContent, newContent)
	}

	return &types.RegenerationResult{
		ItemID:          req.ItemID,
		ItemType:        req.ItemType,
		OriginalContent: append([]string{}, req.CurrentContent...),
		NewContent:      newContent,
		DiffSummary:     changeSummary,
	}, nil
}

func buildCompletion(req types.RegenerationRequest, instruction, language string, tier llm.ModelTier) (llm.CompletionRequest, error) {
	system, err := prompts.Render(prompts.RegenerationFile, "system", map[string]string{"Language": language})
	if err != nil {
		return llm.CompletionRequest{}, &llm.ConfigError{Message: err.Error()}
	}

	var content strings.Builder
	for _, line := range req.CurrentContent {
		content.WriteString("- ")
		content.WriteString(line)
		content.WriteString("\n")
	}

	user, err := prompts.Render(prompts.RegenerationFile, "item", map[string]string{
		"ItemType":    string(req.ItemType),
		"Title":       req.Title,
		"Subtitle":    req.Subtitle,
		"Content":     content.String(),
		"Instruction": strings.TrimSpace(instruction),
	})
	if err != nil {
		return llm.CompletionRequest{}, &llm.ConfigError{Message: err.Error()}
	}

	return llm.CompletionRequest{
		SystemPrompt: system,
		UserPrompt:   user,
		Schema:       schemas.MustGet(schemas.Regeneration),
		Tier:         tier,
	}, nil
}

// parseResponse extracts new_content and change_summary. Completers are
// expected to validate the schema, but the shape is re-checked here.
func parseResponse(response map[string]any) ([]string, string, error) {
	raw, ok := response["new_content"].([]any)
	if !ok {
		return nil, "", &llm.FatalError{Message: "response has no new_content list"}
	}

	lines := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, "", &llm.FatalError{Message: fmt.Sprintf("new_content entry is %T, not a string", v)}
		}
		if s = strings.TrimSpace(s); s != "" {
			lines = append(lines, s)
		}
	}
	if len(lines) == 0 {
		return nil, "", &llm.FatalError{Message: "response new_content is empty"}
	}

	summary, _ := response["change_summary"].(string)
	return lines, strings.TrimSpace(summary), nil
}

// summarizeChange describes the line-level change when the model gave no summary
func summarizeChange(before, after []string) string {
	wrap := func(lines []string) *types.NormalizedResume {
		return &types.NormalizedResume{ResumeDocument: types.ResumeDocument{
			Projects: []types.Item{{ID: "item", Descriptions: lines}},
		}}
	}
	s := diff.Summarize(diff.Compute(wrap(before), wrap(after)))
	if s.TotalChanges == 0 {
		return "No changes"
	}
	return fmt.Sprintf("%d lines rewritten, %d added, %d removed", s.DescriptionsModified, s.DescriptionsAdded, s.DescriptionsRemoved)
}

func (o *Orchestrator) failure(req types.RegenerationRequest, err error) *types.RegenerationError {
	label := strings.TrimSpace(req.Title)
	if label == "" {
		label = req.ItemID
	}

	var message string
	switch {
	case errors.Is(err, context.Canceled):
		message = fmt.Sprintf("Regeneration of %s was cancelled", label)
	case errors.Is(err, context.DeadlineExceeded):
		message = fmt.Sprintf("Regeneration of %s timed out", label)
	case llm.IsTransient(err):
		message = fmt.Sprintf("Failed to regenerate %s after %d attempts: the LLM provider is temporarily unavailable", label, o.opts.Retry.MaxAttempts)
	default:
		message = fmt.Sprintf("Failed to regenerate %s: the LLM returned an unusable response", label)
	}

	return &types.RegenerationError{
		ItemID:   req.ItemID,
		ItemType: req.ItemType,
		Title:    req.Title,
		Message:  message,
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeSuccess
	case llm.IsConfig(err):
		return observability.OutcomeConfig
	case llm.IsTransient(err):
		return observability.OutcomeTransient
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return observability.OutcomeCancelled
	default:
		return observability.OutcomeFatal
	}
}
