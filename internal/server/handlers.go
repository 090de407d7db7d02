package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/resume"
	"github.com/jonathan/resume-tailor/internal/types"
)

type diffRequest struct {
	Original map[string]any `json:"original" validate:"required"`
	Improved map[string]any `json:"improved" validate:"required"`
}

type diffResponse struct {
	pipeline.DiffReport
	Notes []types.NormalizationNote `json:"notes,omitempty"`
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	var req diffRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	original, improved := resume.Normalize(req.Original), resume.Normalize(req.Improved)
	resp := diffResponse{DiffReport: s.service.ComputeDiff(original, improved)}
	resp.Notes = append(resp.Notes, prefixNotes("original", original.Notes)...)
	resp.Notes = append(resp.Notes, prefixNotes("improved", improved.Notes)...)
	s.jsonResponse(w, http.StatusOK, resp)
}

func prefixNotes(prefix string, notes []types.NormalizationNote) []types.NormalizationNote {
	out := make([]types.NormalizationNote, len(notes))
	for i, n := range notes {
		out[i] = types.NormalizationNote{Path: prefix + "." + n.Path, Message: n.Message}
	}
	return out
}

type analyzeRequest struct {
	ResumeID *uuid.UUID     `json:"resume_id" validate:"required_without=Resume"`
	Resume   map[string]any `json:"resume" validate:"required_without=ResumeID"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	var target *types.NormalizedResume
	if req.ResumeID != nil {
		stored, err := s.service.GetResume(r.Context(), *req.ResumeID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		target = resume.NormalizeDocument(stored.Document)
	} else {
		target = resume.Normalize(req.Resume)
	}

	result, err := s.service.AnalyzeWeaknesses(r.Context(), target)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

type regenerateRequest struct {
	Items          []types.RegenerationRequest `json:"items"`
	Instruction    string                      `json:"instruction"`
	OutputLanguage string                      `json:"output_language"`
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	var req regenerateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	envelope, err := s.service.RegenerateItems(r.Context(), req.Items, req.Instruction, req.OutputLanguage)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, envelope)
}

type applyRequest struct {
	Resume  types.ResumeDocument       `json:"resume"`
	Results []types.RegenerationResult `json:"results"`
}

type applyResponse struct {
	Resume  types.ResumeDocument       `json:"resume"`
	Skipped []types.RegenerationResult `json:"skipped,omitempty"`
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	doc, skipped := s.service.ApplyRegeneratedItems(req.Resume, req.Results)
	s.jsonResponse(w, http.StatusOK, applyResponse{Resume: doc, Skipped: skipped})
}

type createResumeRequest struct {
	Title  string         `json:"title" validate:"max=255"`
	Resume map[string]any `json:"resume" validate:"required"`
}

type createResumeResponse struct {
	Resume *types.StoredResume       `json:"resume"`
	Notes  []types.NormalizationNote `json:"notes,omitempty"`
}

func (s *Server) handleCreateResume(w http.ResponseWriter, r *http.Request) {
	var req createResumeRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	raw, err := json.Marshal(req.Resume)
	if err != nil {
		s.fail(w, r, &ErrValidation{Field: "resume", Message: err.Error()})
		return
	}
	stored, notes, err := s.service.CreateResume(r.Context(), req.Title, raw)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, createResumeResponse{Resume: stored, Notes: notes})
}

func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	stored, err := s.service.GetResume(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, stored)
}

func (s *Server) handleListImprovements(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	improvements, err := s.service.History(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"improvements": improvements})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req types.JobInput
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	job, err := s.service.CreateJob(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, job)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	job, err := s.service.GetJob(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

type keywordsResponse struct {
	Keywords    *types.JobKeywords `json:"job_keywords"`
	Suggestions []types.Suggestion `json:"improvements"`
}

func (s *Server) handleJobKeywords(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	keywords, suggestions, err := s.service.JobInsights(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, keywordsResponse{Keywords: keywords, Suggestions: suggestions})
}

func (s *Server) handleTailor(w http.ResponseWriter, r *http.Request) {
	var req pipeline.TailorRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.service.Tailor(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleTailorStream runs Tailor and streams each finished step as a
// "progress" event, then the result as "complete".
func (s *Server) handleTailorStream(w http.ResponseWriter, r *http.Request) {
	var req pipeline.TailorRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	sse, err := newEventStream(w, streamRetryMillis)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	req.OnProgress = func(event pipeline.ProgressEvent) {
		event.Content = nil
		_ = sse.WriteEvent("progress", event)
	}
	result, err := s.service.Tailor(r.Context(), req)
	if err != nil {
		status := HTTPStatus(err)
		message := err.Error()
		if status == http.StatusInternalServerError {
			message = "internal server error"
		}
		sse.WriteError(status, message)
		return
	}
	_ = sse.WriteEvent("complete", result)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req pipeline.ConfirmRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.service.Confirm(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, result)
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: name, Message: "must be a UUID"}
	}
	return id, nil
}
