package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/resume-tailor/internal/enrichment"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/regeneration"
	"github.com/jonathan/resume-tailor/internal/resume"
	"github.com/jonathan/resume-tailor/internal/types"
	"go.uber.org/zap"
)

// fallbackTitle names a tailored résumé when no title can be derived
const fallbackTitle = "Tailored Resume"

// CreateResume normalizes raw résumé JSON and stores it as a master résumé
func (s *Service) CreateResume(ctx context.Context, title string, raw []byte) (*types.StoredResume, []types.NormalizationNote, error) {
	normalized, err := resume.Parse(raw)
	if err != nil {
		return nil, nil, err
	}

	stored := &types.StoredResume{
		Title:    strings.TrimSpace(title),
		IsMaster: true,
		Document: normalized.ResumeDocument,
	}
	if err := s.store.CreateResume(ctx, stored); err != nil {
		return nil, nil, err
	}
	s.logger.Info("stored master resume",
		zap.String("resume_id", stored.ID.String()),
		zap.Int("notes", len(normalized.Notes)),
	)
	return stored, normalized.Notes, nil
}

// CreateJob validates, cleans and stores a job description
func (s *Service) CreateJob(ctx context.Context, input types.JobInput) (*types.Job, error) {
	valid, err := ingestion.ValidateJobInput(input.Description, input.CompanyName, input.Role)
	if err != nil {
		return nil, err
	}
	if input.ResumeID != nil {
		if _, err := s.store.GetResume(ctx, *input.ResumeID); err != nil {
			return nil, err
		}
	}

	job := &types.Job{
		Content:     ingestion.CleanDescription(valid.Description),
		CompanyName: valid.CompanyName,
		Role:        valid.Role,
		ResumeID:    input.ResumeID,
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// GetJob returns a stored job description
func (s *Service) GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	return s.store.GetJob(ctx, id)
}

// JobKeywords returns what job asks of a candidate. The extraction is cached
// on the job and redone only when the job content no longer matches it.
func (s *Service) JobKeywords(ctx context.Context, job *types.Job) (*types.JobKeywords, error) {
	hash := ingestion.KeywordsHash(job.Content)
	if job.Keywords != nil && job.KeywordsHash == hash {
		return job.Keywords, nil
	}
	if s.completer == nil {
		return nil, &llm.ConfigError{Message: "no LLM provider configured"}
	}

	keywords, err := ingestion.ExtractKeywords(ctx, s.completer, job.Content)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveJobKeywords(ctx, job.ID, keywords, hash); err != nil {
		s.logger.Warn("failed to cache job keywords", zap.String("job_id", job.ID.String()), zap.Error(err))
	}
	job.Keywords, job.KeywordsHash = keywords, hash
	return keywords, nil
}

// JobInsights returns the keywords of a stored job and the suggestions they
// imply for the résumé the job was created for. Without a linked résumé
// every required skill is suggested as missing.
func (s *Service) JobInsights(ctx context.Context, id uuid.UUID) (*types.JobKeywords, []types.Suggestion, error) {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	keywords, err := s.JobKeywords(ctx, job)
	if err != nil {
		return nil, nil, err
	}

	var doc types.ResumeDocument
	if job.ResumeID != nil {
		stored, err := s.store.GetResume(ctx, *job.ResumeID)
		if err != nil {
			return nil, nil, err
		}
		doc = resume.NormalizeDocument(stored.Document).ResumeDocument
	}
	return keywords, ingestion.Suggestions(keywords, doc), nil
}

// TailorRequest selects the résumé, the target job and the items to rewrite
type TailorRequest struct {
	ResumeID uuid.UUID  `json:"resume_id"`
	JobID    *uuid.UUID `json:"job_id,omitempty"`
	// Requests limits regeneration to these items; empty means every
	// item found weak by analysis, or every item when Analyze is false
	Requests    []types.RegenerationRequest `json:"requests,omitempty"`
	Analyze     bool                        `json:"analyze,omitempty"`
	Answers     map[string]string           `json:"answers,omitempty"`
	Instruction string                      `json:"instruction,omitempty"`
	Language    string                      `json:"language,omitempty"`
	// OnProgress receives this request's step events
	OnProgress ProgressCallback `json:"-"`
}

// TailorResult is a proposed tailored résumé awaiting confirmation.
// Keywords and Suggestions are set when the request names a job.
type TailorResult struct {
	ResumeID    uuid.UUID                   `json:"resume_id"`
	JobID       *uuid.UUID                  `json:"job_id,omitempty"`
	Original    types.ResumeDocument        `json:"original"`
	Improved    types.ResumeDocument        `json:"improved"`
	Diff        DiffReport                  `json:"diff"`
	Envelope    *types.RegenerationEnvelope `json:"regeneration"`
	Enrichment  *types.EnrichmentResult     `json:"enrichment,omitempty"`
	Skipped     []types.RegenerationResult  `json:"skipped,omitempty"`
	Keywords    *types.JobKeywords          `json:"job_keywords,omitempty"`
	Suggestions []types.Suggestion          `json:"improvements,omitempty"`
}

// Tailor proposes a tailored version of a stored résumé. Nothing is
// persisted; the caller reviews the diff and calls Confirm.
func (s *Service) Tailor(ctx context.Context, req TailorRequest) (*TailorResult, error) {
	if req.ResumeID == uuid.Nil {
		return nil, &RequestError{Field: "resume_id", Message: "is required"}
	}

	stored, err := s.store.GetResume(ctx, req.ResumeID)
	if err != nil {
		return nil, err
	}
	var job *types.Job
	if req.JobID != nil {
		if job, err = s.store.GetJob(ctx, *req.JobID); err != nil {
			return nil, err
		}
	}
	original := resume.NormalizeDocument(stored.Document)
	s.emit(req.OnProgress, StepLoad, fmt.Sprintf("loaded resume %s", stored.ID), nil)

	result := &TailorResult{ResumeID: stored.ID, JobID: req.JobID, Original: original.ResumeDocument}

	if job != nil {
		keywords, err := s.JobKeywords(ctx, job)
		switch {
		case err == nil:
			result.Keywords = keywords
			result.Suggestions = ingestion.Suggestions(keywords, original.ResumeDocument)
			s.emit(req.OnProgress, StepKeywords,
				fmt.Sprintf("extracted %d required skills, %d suggestions", len(keywords.RequiredSkills), len(result.Suggestions)), keywords)
		case llm.IsConfig(err):
			s.logger.Debug("skipping job keywords", zap.Error(err))
		default:
			return nil, err
		}
	}

	requests := req.Requests
	if len(requests) == 0 && req.Analyze {
		analysis, err := s.AnalyzeWeaknesses(ctx, original)
		if err != nil {
			return nil, err
		}
		result.Enrichment = analysis
		requests = enrichment.RequestsFor(original.ResumeDocument, analysis)
		s.emit(req.OnProgress, StepAnalyze, fmt.Sprintf("found %d weak items", len(requests)), analysis)
	} else if len(requests) == 0 {
		requests = allItems(original.ResumeDocument)
	}

	instruction := s.instruction(req, job, result.Keywords, result.Enrichment)
	envelope, err := s.RegenerateItems(ctx, requests, instruction, req.Language)
	if err != nil {
		return nil, err
	}
	result.Envelope = envelope
	s.emit(req.OnProgress, StepRegenerate,
		fmt.Sprintf("regenerated %d items, %d failed", len(envelope.Results), len(envelope.Errors)), envelope)

	improved, skipped := s.ApplyRegeneratedItems(original.ResumeDocument, envelope.Results)
	result.Improved, result.Skipped = improved, skipped
	s.emit(req.OnProgress, StepApply, fmt.Sprintf("applied %d items", len(envelope.Results)-len(skipped)), nil)

	result.Diff = s.ComputeDiff(original, resume.NormalizeDocument(improved))
	s.emit(req.OnProgress, StepDiff, fmt.Sprintf("%d changes, %d high risk",
		result.Diff.Summary.TotalChanges, result.Diff.Summary.HighRiskChanges), result.Diff)

	return result, nil
}

// instruction combines the job, its keywords, the caller's instruction and
// any answers
func (s *Service) instruction(req TailorRequest, job *types.Job, keywords *types.JobKeywords, analysis *types.EnrichmentResult) string {
	var parts []string
	if job != nil {
		if text, err := prompts.Render(prompts.RegenerationFile, "job", map[string]string{"Job": job.Content}); err == nil {
			parts = append(parts, text)
		}
	}
	if list := ingestion.KeywordsText(keywords); list != "" {
		if text, err := prompts.Render(prompts.RegenerationFile, "keywords", map[string]string{"Keywords": list}); err == nil {
			parts = append(parts, text)
		}
	}
	if custom := strings.TrimSpace(req.Instruction); custom != "" {
		parts = append(parts, custom)
	}
	if answers := enrichment.AnswersInstruction(analysis, req.Answers); answers != "" {
		parts = append(parts, answers)
	}
	if len(parts) == 0 {
		if text, err := prompts.Get(prompts.RegenerationFile, "default"); err == nil {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// allItems builds a request for every experience and project item with content
func allItems(doc types.ResumeDocument) []types.RegenerationRequest {
	var requests []types.RegenerationRequest
	add := func(itemType types.ItemType, items []types.Item) {
		for _, it := range items {
			if it.ID == "" || len(it.Descriptions) == 0 {
				continue
			}
			requests = append(requests, types.RegenerationRequest{
				ItemID:         it.ID,
				ItemType:       itemType,
				Title:          it.Title,
				Subtitle:       it.Subtitle,
				CurrentContent: append([]string{}, it.Descriptions...),
			})
		}
	}
	add(types.ItemExperience, doc.WorkExperience)
	add(types.ItemProject, doc.Projects)
	return requests
}

// ConfirmRequest accepts a reviewed tailored résumé. Suggestions are the
// hints the candidate acted on.
type ConfirmRequest struct {
	ResumeID     uuid.UUID            `json:"resume_id"`
	JobID        *uuid.UUID           `json:"job_id,omitempty"`
	Improved     types.ResumeDocument `json:"improved_data"`
	Enhancements []types.Enhancement  `json:"enhancements,omitempty"`
	Suggestions  []types.Suggestion   `json:"improvements,omitempty"`
	Title        string               `json:"title,omitempty"`
}

// ConfirmResult is the persisted tailored résumé and its change record
type ConfirmResult struct {
	Resume      *types.StoredResume `json:"resume"`
	Improvement *types.Improvement  `json:"improvement"`
	Skipped     []types.Enhancement `json:"skipped_enhancements,omitempty"`
}

// Confirm stores the accepted résumé as a child of the original and records
// the classified changes between them.
func (s *Service) Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	if req.ResumeID == uuid.Nil {
		return nil, &RequestError{Field: "resume_id", Message: "is required"}
	}
	for i, e := range req.Enhancements {
		if err := e.Validate(); err != nil {
			return nil, &RequestError{Field: fmt.Sprintf("enhancements[%d]", i), Message: err.Error()}
		}
	}
	for i, sg := range req.Suggestions {
		if err := sg.Validate(); err != nil {
			return nil, &RequestError{Field: fmt.Sprintf("improvements[%d]", i), Message: err.Error()}
		}
	}

	original, err := s.store.GetResume(ctx, req.ResumeID)
	if err != nil {
		return nil, err
	}
	var job *types.Job
	if req.JobID != nil {
		if job, err = s.store.GetJob(ctx, *req.JobID); err != nil {
			return nil, err
		}
	}

	accepted := resume.NormalizeDocument(req.Improved).ResumeDocument
	final, skipped := regeneration.ApplyEnhancements(accepted, req.Enhancements)
	for _, e := range skipped {
		s.logger.Warn("enhancement target not found",
			zap.String(logging.FieldItemID, e.ItemID),
			zap.String(logging.FieldItemType, string(e.ItemType)),
		)
	}

	report := s.ComputeDiff(resume.NormalizeDocument(original.Document), resume.NormalizeDocument(final))

	tailored := &types.StoredResume{
		Title:    s.title(ctx, req.Title, job),
		ParentID: &original.ID,
		Document: final,
	}
	imp := &types.Improvement{
		OriginalResumeID: original.ID,
		JobID:            req.JobID,
		Changes:          report.Entries,
		Suggestions:      req.Suggestions,
	}
	if err := s.store.SaveTailored(ctx, tailored, imp); err != nil {
		return nil, err
	}
	s.emit(nil, StepConfirm, fmt.Sprintf("stored tailored resume %s", tailored.ID), nil)

	return &ConfirmResult{Resume: tailored, Improvement: imp, Skipped: skipped}, nil
}

func (s *Service) title(ctx context.Context, requested string, job *types.Job) string {
	if t := strings.TrimSpace(requested); t != "" {
		return t
	}
	if job == nil {
		return fallbackTitle
	}
	title, err := ingestion.GenerateTitle(ctx, s.completer, job.Content, job.CompanyName, job.Role)
	if err != nil {
		s.logger.Warn("title generation failed", zap.Error(err))
		return fallbackTitle
	}
	return title
}

// History lists the improvements made from a résumé
func (s *Service) History(ctx context.Context, resumeID uuid.UUID) ([]types.Improvement, error) {
	if _, err := s.store.GetResume(ctx, resumeID); err != nil {
		return nil, err
	}
	return s.store.ListImprovements(ctx, resumeID)
}

// GetResume returns a stored résumé
func (s *Service) GetResume(ctx context.Context, id uuid.UUID) (*types.StoredResume, error) {
	return s.store.GetResume(ctx, id)
}
