package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	store := NewStore(conn)
	store.now = func() time.Time { return fixedNow }
	return store, mock
}

func sampleDocument() types.ResumeDocument {
	return types.ResumeDocument{
		PersonalInfo: map[string]string{"name": "Ada"},
		Skills:       []string{"Go"},
		WorkExperience: []types.Item{
			{ID: "exp1", Title: "Engineer", Descriptions: []string{"Built things"}},
		},
	}
}

func TestStore_CreateResume(t *testing.T) {
	store, mock := newMockStore(t)
	r := &types.StoredResume{Title: "Master", IsMaster: true, Document: sampleDocument()}

	mock.ExpectExec("INSERT INTO resumes").
		WithArgs(sqlmock.AnyArg(), "Master", true, nil, sqlmock.AnyArg(), fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.CreateResume(context.Background(), r))
	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, fixedNow, r.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetResume(t *testing.T) {
	store, mock := newMockStore(t)
	id, parent := uuid.New(), uuid.New()
	doc, err := json.Marshal(sampleDocument())
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM resumes WHERE id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "is_master", "parent_id", "document", "created_at", "updated_at"}).
			AddRow(id.String(), nil, false, parent.String(), doc, fixedNow, fixedNow))

	r, err := store.GetResume(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, r.ID)
	assert.Empty(t, r.Title)
	require.NotNil(t, r.ParentID)
	assert.Equal(t, parent, *r.ParentID)
	assert.Equal(t, sampleDocument(), r.Document)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetResume_NotFound(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM resumes").WithArgs(id).WillReturnError(sql.ErrNoRows)

	_, err := store.GetResume(context.Background(), id)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "resume not found")
}

func TestStore_Jobs(t *testing.T) {
	store, mock := newMockStore(t)
	job := &types.Job{Content: "We are hiring", Role: "Engineer"}

	mock.ExpectExec("INSERT INTO jobs").
		WithArgs(sqlmock.AnyArg(), "We are hiring", nil, "Engineer", nil, fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, store.CreateJob(context.Background(), job))

	mock.ExpectQuery("SELECT (.+) FROM jobs WHERE id").
		WithArgs(job.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "content", "company_name", "role", "resume_id", "job_keywords", "job_keywords_hash", "created_at"}).
			AddRow(job.ID.String(), "We are hiring", "Acme", "Engineer", nil, nil, nil, fixedNow))

	got, err := store.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.CompanyName)
	assert.Nil(t, got.ResumeID)
	assert.Nil(t, got.Keywords)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_JobKeywords(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()
	keywords := &types.JobKeywords{RequiredSkills: []string{"Go"}, ExperienceLevel: "Senior"}
	data, err := json.Marshal(keywords)
	require.NoError(t, err)

	mock.ExpectExec("UPDATE jobs SET job_keywords").
		WithArgs(id, string(data), "abc123").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.SaveJobKeywords(context.Background(), id, keywords, "abc123"))

	mock.ExpectQuery("SELECT (.+) FROM jobs WHERE id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "content", "company_name", "role", "resume_id", "job_keywords", "job_keywords_hash", "created_at"}).
			AddRow(id.String(), "We are hiring", nil, nil, nil, data, "abc123", fixedNow))
	got, err := store.GetJob(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, keywords, got.Keywords)
	assert.Equal(t, "abc123", got.KeywordsHash)

	mock.ExpectExec("UPDATE jobs SET job_keywords").WillReturnResult(sqlmock.NewResult(0, 0))
	err = store.SaveJobKeywords(context.Background(), uuid.New(), keywords, "x")
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveTailored(t *testing.T) {
	store, mock := newMockStore(t)
	original := uuid.New()
	tailored := &types.StoredResume{ParentID: &original, Document: sampleDocument()}
	imp := &types.Improvement{
		OriginalResumeID: original,
		Suggestions:      []types.Suggestion{{Suggestion: "Add Kubernetes experience", LineNumber: 1}},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO resumes").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO improvements").
		WithArgs(sqlmock.AnyArg(), original, sqlmock.AnyArg(), nil, "[]",
			`[{"suggestion":"Add Kubernetes experience","lineNumber":1}]`, fixedNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, store.SaveTailored(context.Background(), tailored, imp))
	assert.Equal(t, tailored.ID, imp.TailoredResumeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveTailored_RollsBack(t *testing.T) {
	store, mock := newMockStore(t)
	original := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO resumes").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO improvements").WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	err := store.SaveTailored(context.Background(),
		&types.StoredResume{Document: sampleDocument()},
		&types.Improvement{OriginalResumeID: original})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create improvement")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListImprovements(t *testing.T) {
	store, mock := newMockStore(t)
	original, tailored, job := uuid.New(), uuid.New(), uuid.New()
	changes, err := json.Marshal([]types.DiffEntry{{Section: types.SectionSkills, ChangeType: types.ChangeAdded, After: "Go"}})
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM improvements WHERE original_resume_id").
		WithArgs(original).
		WillReturnRows(sqlmock.NewRows([]string{"id", "original_resume_id", "tailored_resume_id", "job_id", "changes", "suggestions", "created_at"}).
			AddRow(uuid.New().String(), original.String(), tailored.String(), job.String(), changes,
				[]byte(`[{"suggestion":"Highlight ML projects","lineNumber":2}]`), fixedNow))

	list, err := store.ListImprovements(context.Background(), original)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, tailored, list[0].TailoredResumeID)
	require.NotNil(t, list[0].JobID)
	assert.Equal(t, job, *list[0].JobID)
	require.Len(t, list[0].Changes, 1)
	assert.Equal(t, "Go", list[0].Changes[0].After)
	assert.Equal(t, []types.Suggestion{{Suggestion: "Highlight ML projects", LineNumber: 2}}, list[0].Suggestions)
	assert.NoError(t, mock.ExpectationsWereMet())
}
