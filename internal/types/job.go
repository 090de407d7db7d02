// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// Job is a stored job description used as the tailoring target. Keywords
// caches the extraction for Content; KeywordsHash identifies the content it
// was extracted from.
type Job struct {
	ID           uuid.UUID    `json:"job_id"`
	Content      string       `json:"content"`
	CompanyName  string       `json:"company_name,omitempty"`
	Role         string       `json:"role,omitempty"`
	ResumeID     *uuid.UUID   `json:"resume_id,omitempty"`
	Keywords     *JobKeywords `json:"job_keywords,omitempty"`
	KeywordsHash string       `json:"job_keywords_hash,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// JobKeywords is what a job description asks of a candidate
type JobKeywords struct {
	RequiredSkills      []string `json:"required_skills"`
	PreferredSkills     []string `json:"preferred_skills"`
	ExperienceLevel     string   `json:"experience_level,omitempty"`
	YearsExperience     int      `json:"years_experience,omitempty"`
	Domain              string   `json:"domain,omitempty"`
	KeyResponsibilities []string `json:"key_responsibilities"`
}

// Suggestion is one improvement hint shown to the candidate, numbered from 1
type Suggestion struct {
	Suggestion string `json:"suggestion" validate:"required"`
	LineNumber int    `json:"lineNumber" validate:"gte=0"`
}

// StoredResume is a persisted résumé document with its lineage
type StoredResume struct {
	ID        uuid.UUID      `json:"resume_id"`
	Title     string         `json:"title,omitempty"`
	IsMaster  bool           `json:"is_master"`
	ParentID  *uuid.UUID     `json:"parent_id,omitempty"`
	Document  ResumeDocument `json:"processed_data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Improvement links an original résumé to its tailored child
type Improvement struct {
	ID               uuid.UUID    `json:"request_id"`
	OriginalResumeID uuid.UUID    `json:"original_resume_id"`
	TailoredResumeID uuid.UUID    `json:"tailored_resume_id"`
	JobID            *uuid.UUID   `json:"job_id,omitempty"`
	Changes          []DiffEntry  `json:"improvements"`
	Suggestions      []Suggestion `json:"suggestions,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

// JobInput is a job description submitted for tailoring
type JobInput struct {
	Description string     `json:"job_description" validate:"required"`
	CompanyName string     `json:"company_name,omitempty" validate:"omitempty,max=255"`
	Role        string     `json:"role,omitempty" validate:"omitempty,max=255"`
	ResumeID    *uuid.UUID `json:"resume_id,omitempty"`
}
