package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/regeneration"
	"github.com/jonathan/resume-tailor/internal/resume"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRegenerator struct{}

func (stubRegenerator) Regenerate(_ context.Context, requests []types.RegenerationRequest, _, _ string) (*types.RegenerationEnvelope, error) {
	env := &types.RegenerationEnvelope{Results: []types.RegenerationResult{}, Errors: []types.RegenerationError{}}
	for _, r := range requests {
		content := append([]string{}, r.CurrentContent...)
		if len(content) > 0 {
			content[0] += " at scale"
		}
		env.Results = append(env.Results, types.RegenerationResult{
			ItemID: r.ItemID, ItemType: r.ItemType, OriginalContent: r.CurrentContent, NewContent: content,
		})
	}
	return env, nil
}

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(context.Context, *types.NormalizedResume) (*types.EnrichmentResult, error) {
	return &types.EnrichmentResult{
		ItemsToEnrich: []types.ItemToEnrich{{ItemID: "exp1", ItemType: types.ItemExperience, WeaknessReason: "no metrics"}},
		Questions:     []types.EnrichmentQuestion{{ID: "q1", ItemID: "exp1", ItemType: types.ItemExperience, Question: "How many requests per second?"}},
	}, nil
}

const testResume = `{
  "personalInfo": {"name": "Ada"},
  "skills": ["Go"],
  "workExperience": [{"id": "exp1", "title": "Engineer", "company": "Acme", "description": ["built APIs"]}]
}`

func newTestServer(t *testing.T, withLLM bool) *Server {
	t.Helper()
	var svc *pipeline.Service
	if withLLM {
		svc = pipeline.NewService(db.NewMemoryStore(), stubAnalyzer{}, stubRegenerator{}, nil, nil, pipeline.Options{})
	} else {
		svc = pipeline.NewService(db.NewMemoryStore(), nil, nil, nil, nil, pipeline.Options{})
	}
	return New(Config{Addr: ":0", AllowedOrigins: []string{"http://localhost:3000"}}, svc, nil)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func createResume(t *testing.T, h http.Handler) uuid.UUID {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/resumes", `{"title": "Master", "resume": `+testResume+`}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Resume types.StoredResume `json:"resume"`
	}
	decodeBody(t, rec, &resp)
	return resp.Resume.ID
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(t, false).Handler()

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	rec = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRequestIDIsEchoed(t *testing.T) {
	h := newTestServer(t, false).Handler()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, false).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/diff", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/diff", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestDiffEndpoint(t *testing.T) {
	h := newTestServer(t, false).Handler()

	body := `{
	  "original": {"skills": ["Go"], "workExperience": [{"id": "e1", "title": "Dev", "description": ["a"]}]},
	  "improved": {"skills": ["Go", "Rust"], "workExperience": [{"id": "e1", "title": "Dev", "description": ["a", "b"]}], "summary": 5}
	}`
	rec := do(t, h, http.MethodPost, "/diff", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Entries []types.DiffEntry         `json:"entries"`
		Summary types.DiffSummary         `json:"summary"`
		Notes   []types.NormalizationNote `json:"notes"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, 1, resp.Summary.SkillsAdded)
	assert.Equal(t, 1, resp.Summary.DescriptionsAdded)
	assert.Equal(t, 1, resp.Summary.HighRiskChanges)
	require.NotEmpty(t, resp.Notes)
	assert.True(t, strings.HasPrefix(resp.Notes[0].Path, "improved."))
}

func TestDiffEndpoint_Validation(t *testing.T) {
	h := newTestServer(t, false).Handler()

	rec := do(t, h, http.MethodPost, "/diff", `{"original": {"skills": []}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "improved")

	rec = do(t, h, http.MethodPost, "/diff", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON")
}

func TestRegenerate_NoProvider(t *testing.T) {
	h := newTestServer(t, false).Handler()

	rec := do(t, h, http.MethodPost, "/regenerate", `{"items": [{"item_id": "e1", "item_type": "experience", "current_content": ["x"]}]}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRegenerateAndApply(t *testing.T) {
	h := newTestServer(t, true).Handler()

	rec := do(t, h, http.MethodPost, "/regenerate", `{"items": [{"item_id": "exp1", "item_type": "experience", "current_content": ["built APIs"]}], "instruction": "focus on scale"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var env types.RegenerationEnvelope
	decodeBody(t, rec, &env)
	require.Len(t, env.Results, 1)

	doc := resume.Normalize(map[string]any{
		"workExperience": []any{map[string]any{"id": "exp1", "title": "Engineer", "description": []any{"built APIs"}}},
	}).ResumeDocument
	payload, err := json.Marshal(map[string]any{"resume": doc, "results": append(env.Results, types.RegenerationResult{ItemID: "ghost", ItemType: types.ItemProject})})
	require.NoError(t, err)

	rec = do(t, h, http.MethodPost, "/apply", string(payload))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var applied struct {
		Resume  types.ResumeDocument       `json:"resume"`
		Skipped []types.RegenerationResult `json:"skipped"`
	}
	decodeBody(t, rec, &applied)
	assert.Equal(t, []string{"built APIs at scale"}, applied.Resume.WorkExperience[0].Descriptions)
	require.Len(t, applied.Skipped, 1)
	assert.Equal(t, "ghost", applied.Skipped[0].ItemID)
}

func TestAnalyzeByResumeID(t *testing.T) {
	h := newTestServer(t, true).Handler()
	id := createResume(t, h)

	rec := do(t, h, http.MethodPost, "/enrichment/analyze", fmt.Sprintf(`{"resume_id": %q}`, id))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result types.EnrichmentResult
	decodeBody(t, rec, &result)
	require.Len(t, result.Questions, 1)
	assert.Equal(t, "q1", result.Questions[0].ID)

	rec = do(t, h, http.MethodPost, "/enrichment/analyze", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResumeEndpoints(t *testing.T) {
	h := newTestServer(t, false).Handler()
	id := createResume(t, h)

	rec := do(t, h, http.MethodGet, "/resumes/"+id.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stored types.StoredResume
	decodeBody(t, rec, &stored)
	assert.Equal(t, "Master", stored.Title)
	assert.True(t, stored.IsMaster)

	rec = do(t, h, http.MethodGet, "/resumes/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/resumes/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/resumes/"+id.String()+"/improvements", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"improvements": []}`, rec.Body.String())
}

func TestCreateJob_Validation(t *testing.T) {
	h := newTestServer(t, false).Handler()

	rec := do(t, h, http.MethodPost, "/jobs", `{"company_name": "Acme"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "job_description")

	rec = do(t, h, http.MethodPost, "/jobs", `{"job_description": "short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/jobs", `{"job_description": "Build payment systems in Go"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

type keywordCompleter struct{ calls int }

func (c *keywordCompleter) Complete(context.Context, llm.CompletionRequest) (map[string]any, error) {
	c.calls++
	return map[string]any{
		"required_skills":      []any{"Go", "Kubernetes"},
		"preferred_skills":     []any{},
		"experience_level":     "Senior",
		"key_responsibilities": []any{},
	}, nil
}

func TestGetJobAndKeywords(t *testing.T) {
	completer := &keywordCompleter{}
	svc := pipeline.NewService(db.NewMemoryStore(), stubAnalyzer{}, stubRegenerator{}, completer, nil, pipeline.Options{})
	h := New(Config{Addr: ":0"}, svc, nil).Handler()
	resumeID := createResume(t, h)

	rec := do(t, h, http.MethodPost, "/jobs", fmt.Sprintf(`{"job_description": "Build payment systems in Go", "company_name": "Acme", "resume_id": %q}`, resumeID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created types.Job
	decodeBody(t, rec, &created)

	rec = do(t, h, http.MethodGet, "/jobs/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var job types.Job
	decodeBody(t, rec, &job)
	assert.Equal(t, "Acme", job.CompanyName)
	assert.Equal(t, "Build payment systems in Go", job.Content)
	assert.Nil(t, job.Keywords)

	for i := 0; i < 2; i++ {
		rec = do(t, h, http.MethodGet, "/jobs/"+created.ID.String()+"/keywords", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	assert.Equal(t, 1, completer.calls, "keywords are cached on the job")

	var insights struct {
		Keywords    types.JobKeywords  `json:"job_keywords"`
		Suggestions []types.Suggestion `json:"improvements"`
	}
	decodeBody(t, rec, &insights)
	assert.Equal(t, []string{"Go", "Kubernetes"}, insights.Keywords.RequiredSkills)
	require.Len(t, insights.Suggestions, 3)
	assert.Contains(t, insights.Suggestions[0].Suggestion, "Emphasize your Go")
	assert.Contains(t, insights.Suggestions[1].Suggestion, "Add Kubernetes")
	assert.Equal(t, 2, insights.Suggestions[1].LineNumber)

	rec = do(t, h, http.MethodGet, "/jobs/"+created.ID.String(), "")
	decodeBody(t, rec, &job)
	require.NotNil(t, job.Keywords)
	assert.NotEmpty(t, job.KeywordsHash)

	rec = do(t, h, http.MethodGet, "/jobs/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodGet, "/jobs/nope", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobKeywords_NoProvider(t *testing.T) {
	h := newTestServer(t, false).Handler()
	rec := do(t, h, http.MethodPost, "/jobs", `{"job_description": "Build payment systems in Go"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var job types.Job
	decodeBody(t, rec, &job)

	rec = do(t, h, http.MethodGet, "/jobs/"+job.ID.String()+"/keywords", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTailorAndConfirm(t *testing.T) {
	h := newTestServer(t, true).Handler()
	id := createResume(t, h)

	rec := do(t, h, http.MethodPost, "/tailor", fmt.Sprintf(`{"resume_id": %q}`, id))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var proposal struct {
		Improved types.ResumeDocument `json:"improved"`
	}
	decodeBody(t, rec, &proposal)
	assert.Equal(t, "built APIs at scale", proposal.Improved.WorkExperience[0].Descriptions[0])

	payload, err := json.Marshal(map[string]any{"resume_id": id, "improved_data": proposal.Improved, "title": "Tailored"})
	require.NoError(t, err)
	rec = do(t, h, http.MethodPost, "/tailor/confirm", string(payload))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/resumes/"+id.String()+"/improvements", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		Improvements []types.Improvement `json:"improvements"`
	}
	decodeBody(t, rec, &history)
	assert.Len(t, history.Improvements, 1)
}

func TestTailorStream(t *testing.T) {
	h := newTestServer(t, true).Handler()
	srv := httptest.NewServer(h)
	defer srv.Close()
	id := createResume(t, h)

	resp, err := http.Post(srv.URL+"/tailor/stream", "application/json", strings.NewReader(fmt.Sprintf(`{"resume_id": %q}`, id)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var events []string
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if name, ok := strings.CutPrefix(scanner.Text(), "event: "); ok {
			events = append(events, name)
		}
	}
	require.NoError(t, scanner.Err())
	require.NotEmpty(t, events)
	assert.Equal(t, "progress", events[0])
	assert.Equal(t, "complete", events[len(events)-1])
}

func TestTailorStream_ErrorEvent(t *testing.T) {
	h := newTestServer(t, true).Handler()

	rec := do(t, h, http.MethodPost, "/tailor/stream", fmt.Sprintf(`{"resume_id": %q}`, uuid.NewString()))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "event: error")
	assert.Contains(t, rec.Body.String(), `"status":404`)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ErrValidation{Field: "x"}, http.StatusBadRequest},
		{"regeneration input", &regeneration.ValidationError{Message: "bad"}, http.StatusBadRequest},
		{"job input", &ingestion.InputError{Field: "job_description"}, http.StatusBadRequest},
		{"parse", &resume.ParseError{Message: "bad"}, http.StatusBadRequest},
		{"request", &pipeline.RequestError{Field: "resume_id"}, http.StatusBadRequest},
		{"not found", fmt.Errorf("load: %w", &db.NotFoundError{Kind: "resume"}), http.StatusNotFound},
		{"config", &llm.ConfigError{Message: "no key"}, http.StatusServiceUnavailable},
		{"transient", &llm.TransientError{Message: "503"}, http.StatusBadGateway},
		{"fatal", &llm.FatalError{Message: "bad json"}, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestEventStream_NumbersEvents(t *testing.T) {
	rec := httptest.NewRecorder()
	stream, err := newEventStream(rec, 1500)
	require.NoError(t, err)

	require.NoError(t, stream.WriteEvent("progress", map[string]int{"done": 1}))
	stream.WriteError(http.StatusBadGateway, "provider down")

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "retry: 1500\n\n"+
		"id: 1\nevent: progress\ndata: {\"done\":1}\n\n"+
		"id: 2\nevent: error\ndata: {\"status\":502,\"error\":\"provider down\"}\n\n",
		rec.Body.String())
}
