package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-tailor/internal/types"
)

// MemoryStore keeps records in process memory. It is used when no
// database is configured and in tests.
type MemoryStore struct {
	mu           sync.RWMutex
	resumes      map[uuid.UUID]types.StoredResume
	jobs         map[uuid.UUID]types.Job
	improvements []types.Improvement
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		resumes: make(map[uuid.UUID]types.StoredResume),
		jobs:    make(map[uuid.UUID]types.Job),
	}
}

// CreateResume stores a copy of r, assigning its id and timestamps when unset
func (m *MemoryStore) CreateResume(_ context.Context, r *types.StoredResume) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putResume(r)
	return nil
}

func (m *MemoryStore) putResume(r *types.StoredResume) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := time.Now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now

	stored := *r
	stored.Document = r.Document.Clone()
	m.resumes[r.ID] = stored
}

// GetResume returns a copy of the stored résumé
func (m *MemoryStore) GetResume(_ context.Context, id uuid.UUID) (*types.StoredResume, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.resumes[id]
	if !ok {
		return nil, &NotFoundError{Kind: "resume", ID: id}
	}
	r.Document = r.Document.Clone()
	return &r, nil
}

// CreateJob stores a job description
func (m *MemoryStore) CreateJob(_ context.Context, j *types.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	j.CreatedAt = time.Now().UTC()
	m.jobs[j.ID] = *j
	return nil
}

// GetJob returns a stored job description
func (m *MemoryStore) GetJob(_ context.Context, id uuid.UUID) (*types.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	j, ok := m.jobs[id]
	if !ok {
		return nil, &NotFoundError{Kind: "job", ID: id}
	}
	j.Keywords = cloneKeywords(j.Keywords)
	return &j, nil
}

// SaveJobKeywords caches the keywords extracted from a job's content
func (m *MemoryStore) SaveJobKeywords(_ context.Context, id uuid.UUID, keywords *types.JobKeywords, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[id]
	if !ok {
		return &NotFoundError{Kind: "job", ID: id}
	}
	j.Keywords, j.KeywordsHash = cloneKeywords(keywords), hash
	m.jobs[id] = j
	return nil
}

// SaveTailored stores the tailored résumé and its improvement together
func (m *MemoryStore) SaveTailored(_ context.Context, tailored *types.StoredResume, imp *types.Improvement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.resumes[imp.OriginalResumeID]; !ok {
		return &NotFoundError{Kind: "resume", ID: imp.OriginalResumeID}
	}

	m.putResume(tailored)
	if imp.ID == uuid.Nil {
		imp.ID = uuid.New()
	}
	imp.TailoredResumeID = tailored.ID
	imp.CreatedAt = time.Now().UTC()

	stored := *imp
	stored.Changes = append([]types.DiffEntry{}, imp.Changes...)
	stored.Suggestions = append([]types.Suggestion(nil), imp.Suggestions...)
	m.improvements = append(m.improvements, stored)
	return nil
}

// ListImprovements returns the improvements made from an original résumé, newest first
func (m *MemoryStore) ListImprovements(_ context.Context, originalID uuid.UUID) ([]types.Improvement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []types.Improvement{}
	for i := len(m.improvements) - 1; i >= 0; i-- {
		if imp := m.improvements[i]; imp.OriginalResumeID == originalID {
			imp.Changes = append([]types.DiffEntry{}, imp.Changes...)
			imp.Suggestions = append([]types.Suggestion(nil), imp.Suggestions...)
			out = append(out, imp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func cloneKeywords(kw *types.JobKeywords) *types.JobKeywords {
	if kw == nil {
		return nil
	}
	out := *kw
	out.RequiredSkills = append([]string(nil), kw.RequiredSkills...)
	out.PreferredSkills = append([]string(nil), kw.PreferredSkills...)
	out.KeyResponsibilities = append([]string(nil), kw.KeyResponsibilities...)
	return &out
}
