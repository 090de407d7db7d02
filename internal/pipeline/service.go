// Package pipeline ties the diff, enrichment and regeneration steps into
// the tailoring workflow used by the CLI and the HTTP API.
package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonathan/resume-tailor/internal/diff"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/regeneration"
	"github.com/jonathan/resume-tailor/internal/risk"
	"github.com/jonathan/resume-tailor/internal/types"
	"go.uber.org/zap"
)

// Store persists résumés, jobs and accepted improvements
type Store interface {
	CreateResume(ctx context.Context, r *types.StoredResume) error
	GetResume(ctx context.Context, id uuid.UUID) (*types.StoredResume, error)
	CreateJob(ctx context.Context, j *types.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error)
	SaveJobKeywords(ctx context.Context, id uuid.UUID, keywords *types.JobKeywords, hash string) error
	SaveTailored(ctx context.Context, tailored *types.StoredResume, imp *types.Improvement) error
	ListImprovements(ctx context.Context, originalID uuid.UUID) ([]types.Improvement, error)
}

// Analyzer finds weak items in a résumé
type Analyzer interface {
	Analyze(ctx context.Context, resume *types.NormalizedResume) (*types.EnrichmentResult, error)
}

// Regenerator rewrites résumé items
type Regenerator interface {
	Regenerate(ctx context.Context, requests []types.RegenerationRequest, instruction, outputLanguage string) (*types.RegenerationEnvelope, error)
}

// ProgressEvent reports a finished tailoring step
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when a tailoring step completes
type ProgressCallback func(event ProgressEvent)

// Step names reported through ProgressCallback
const (
	StepLoad       = "load"
	StepKeywords   = "keywords"
	StepAnalyze    = "analyze"
	StepRegenerate = "regenerate"
	StepApply      = "apply"
	StepDiff       = "diff"
	StepConfirm    = "confirm"
)

// Options configures a Service
type Options struct {
	// OutputLanguage is used when a request names none
	OutputLanguage string
	OnProgress     ProgressCallback
}

// Service runs the tailoring workflow
type Service struct {
	store       Store
	analyzer    Analyzer
	regenerator Regenerator
	completer   llm.Completer
	differ      *diff.Engine
	logger      *zap.Logger
	opts        Options
}

// NewService creates a Service. completer is used for job keywords and
// résumé titles and may be nil; both steps are then skipped.
func NewService(store Store, analyzer Analyzer, regenerator Regenerator, completer llm.Completer, logger *zap.Logger, opts Options) *Service {
	logger = logging.OrNop(logger)
	return &Service{
		store:       store,
		analyzer:    analyzer,
		regenerator: regenerator,
		completer:   completer,
		differ:      diff.NewEngine(logger, diff.Options{}),
		logger:      logger,
		opts:        opts,
	}
}

// DiffReport is a classified diff with its summary
type DiffReport struct {
	Entries []types.DiffEntry `json:"entries"`
	Summary types.DiffSummary `json:"summary"`
}

// ComputeDiff compares two résumés and classifies every change
func (s *Service) ComputeDiff(original, improved *types.NormalizedResume) DiffReport {
	entries := risk.Annotate(s.differ.Compute(original, improved))
	if entries == nil {
		entries = []types.DiffEntry{}
	}
	for _, e := range entries {
		observability.RecordDiffEntry(string(e.Risk))
	}
	return DiffReport{Entries: entries, Summary: diff.Summarize(entries)}
}

// AnalyzeWeaknesses returns the weak items of resume and questions about them
func (s *Service) AnalyzeWeaknesses(ctx context.Context, resume *types.NormalizedResume) (*types.EnrichmentResult, error) {
	if s.analyzer == nil {
		return nil, &llm.ConfigError{Message: "no LLM provider configured"}
	}
	return s.analyzer.Analyze(ctx, resume)
}

// RegenerateItems rewrites the requested items
func (s *Service) RegenerateItems(ctx context.Context, requests []types.RegenerationRequest, instruction, language string) (*types.RegenerationEnvelope, error) {
	if s.regenerator == nil {
		return nil, &llm.ConfigError{Message: "no LLM provider configured"}
	}
	if language == "" {
		language = s.opts.OutputLanguage
	}
	return s.regenerator.Regenerate(ctx, requests, instruction, language)
}

// ApplyRegeneratedItems splices accepted results into a copy of doc
func (s *Service) ApplyRegeneratedItems(doc types.ResumeDocument, accepted []types.RegenerationResult) (types.ResumeDocument, []types.RegenerationResult) {
	out, skipped := regeneration.Apply(doc, accepted)
	for _, r := range skipped {
		s.logger.Warn("regenerated item not found in resume",
			zap.String(logging.FieldItemID, r.ItemID),
			zap.String(logging.FieldItemType, string(r.ItemType)),
		)
	}
	return out, skipped
}

// emit reports a step to the service callback and to the request's own callback
func (s *Service) emit(perRequest ProgressCallback, step, message string, content any) {
	s.logger.Debug("tailoring step finished", zap.String("step", step), zap.String("message", message))
	event := ProgressEvent{Step: step, Message: message, Content: content}
	if s.opts.OnProgress != nil {
		s.opts.OnProgress(event)
	}
	if perRequest != nil {
		perRequest(event)
	}
}
