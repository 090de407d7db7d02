package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Store reads and writes résumé records through database/sql
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore creates a Store over an open database handle
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// execer is satisfied by *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// -----------------------------------------------------------------------------
// Résumés
// -----------------------------------------------------------------------------

// CreateResume inserts r, assigning its id and timestamps when unset
func (s *Store) CreateResume(ctx context.Context, r *types.StoredResume) error {
	return s.insertResume(ctx, s.db, r)
}

func (s *Store) insertResume(ctx context.Context, ex execer, r *types.StoredResume) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := s.now()
	r.CreatedAt, r.UpdatedAt = now, now

	doc, err := json.Marshal(r.Document)
	if err != nil {
		return fmt.Errorf("failed to marshal resume document: %w", err)
	}

	_, err = ex.ExecContext(ctx,
		`INSERT INTO resumes (id, title, is_master, parent_id, document, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, nullString(r.Title), r.IsMaster, nullUUID(r.ParentID), string(doc), r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create resume: %w", err)
	}
	return nil
}

// GetResume retrieves a résumé by id
func (s *Store) GetResume(ctx context.Context, id uuid.UUID) (*types.StoredResume, error) {
	var (
		r      types.StoredResume
		title  sql.NullString
		parent uuid.NullUUID
		doc    []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, is_master, parent_id, document, created_at, updated_at
		 FROM resumes WHERE id = $1`,
		id,
	).Scan(&r.ID, &title, &r.IsMaster, &parent, &doc, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Kind: "resume", ID: id}
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}

	r.Title = title.String
	if parent.Valid {
		r.ParentID = &parent.UUID
	}
	if err := json.Unmarshal(doc, &r.Document); err != nil {
		return nil, fmt.Errorf("failed to decode resume %s: %w", id, err)
	}
	return &r, nil
}

// -----------------------------------------------------------------------------
// Jobs
// -----------------------------------------------------------------------------

// CreateJob inserts a job description
func (s *Store) CreateJob(ctx context.Context, j *types.Job) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	j.CreatedAt = s.now()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, content, company_name, role, resume_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		j.ID, j.Content, nullString(j.CompanyName), nullString(j.Role), nullUUID(j.ResumeID), j.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job description by id
func (s *Store) GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	var (
		j                   types.Job
		company, role, hash sql.NullString
		resume              uuid.NullUUID
		keywords            []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, content, company_name, role, resume_id, job_keywords, job_keywords_hash, created_at
		 FROM jobs WHERE id = $1`,
		id,
	).Scan(&j.ID, &j.Content, &company, &role, &resume, &keywords, &hash, &j.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Kind: "job", ID: id}
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	j.CompanyName, j.Role, j.KeywordsHash = company.String, role.String, hash.String
	if resume.Valid {
		j.ResumeID = &resume.UUID
	}
	if len(keywords) > 0 {
		j.Keywords = &types.JobKeywords{}
		if err := json.Unmarshal(keywords, j.Keywords); err != nil {
			return nil, fmt.Errorf("failed to decode keywords of job %s: %w", id, err)
		}
	}
	return &j, nil
}

// SaveJobKeywords caches the keywords extracted from the job's content
func (s *Store) SaveJobKeywords(ctx context.Context, id uuid.UUID, keywords *types.JobKeywords, hash string) error {
	data, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal job keywords: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET job_keywords = $2, job_keywords_hash = $3 WHERE id = $1`,
		id, string(data), hash,
	)
	if err != nil {
		return fmt.Errorf("failed to save job keywords: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &NotFoundError{Kind: "job", ID: id}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Improvements
// -----------------------------------------------------------------------------

// SaveTailored stores a tailored résumé and the improvement that produced it
// in one transaction. imp.TailoredResumeID is set to the new résumé id.
func (s *Store) SaveTailored(ctx context.Context, tailored *types.StoredResume, imp *types.Improvement) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.insertResume(ctx, tx, tailored); err != nil {
		return err
	}

	if imp.ID == uuid.Nil {
		imp.ID = uuid.New()
	}
	imp.TailoredResumeID = tailored.ID
	imp.CreatedAt = s.now()
	changes, err := json.Marshal(nonNil(imp.Changes))
	if err != nil {
		return fmt.Errorf("failed to marshal improvements: %w", err)
	}
	suggestions, err := json.Marshal(nonNil(imp.Suggestions))
	if err != nil {
		return fmt.Errorf("failed to marshal suggestions: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO improvements (id, original_resume_id, tailored_resume_id, job_id, changes, suggestions, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		imp.ID, imp.OriginalResumeID, imp.TailoredResumeID, nullUUID(imp.JobID), string(changes), string(suggestions), imp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create improvement: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tailored resume: %w", err)
	}
	return nil
}

// ListImprovements returns the improvements made from an original résumé, newest first
func (s *Store) ListImprovements(ctx context.Context, originalID uuid.UUID) ([]types.Improvement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, original_resume_id, tailored_resume_id, job_id, changes, suggestions, created_at
		 FROM improvements WHERE original_resume_id = $1 ORDER BY created_at DESC`,
		originalID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list improvements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	improvements := []types.Improvement{}
	for rows.Next() {
		var (
			imp                  types.Improvement
			job                  uuid.NullUUID
			changes, suggestions []byte
		)
		if err := rows.Scan(&imp.ID, &imp.OriginalResumeID, &imp.TailoredResumeID, &job, &changes, &suggestions, &imp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan improvement: %w", err)
		}
		if job.Valid {
			imp.JobID = &job.UUID
		}
		if err := json.Unmarshal(changes, &imp.Changes); err != nil {
			return nil, fmt.Errorf("failed to decode improvement %s: %w", imp.ID, err)
		}
		if len(suggestions) > 0 {
			if err := json.Unmarshal(suggestions, &imp.Suggestions); err != nil {
				return nil, fmt.Errorf("failed to decode suggestions of improvement %s: %w", imp.ID, err)
			}
		}
		improvements = append(improvements, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list improvements: %w", err)
	}
	return improvements, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

// nonNil keeps empty lists encoded as [] rather than null
func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
