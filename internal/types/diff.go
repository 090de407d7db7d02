// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Section identifies a résumé section in a diff entry
type Section string

// Section constants, declared in document order
const (
	SectionPersonalInfo   Section = "personalInfo"
	SectionSummary        Section = "summary"
	SectionSkills         Section = "skills"
	SectionCertifications Section = "certifications"
	SectionLanguages      Section = "languages"
	SectionWorkExperience Section = "workExperience"
	SectionProjects       Section = "projects"
)

// SectionOrder is the document order used to sort diff output
var SectionOrder = []Section{
	SectionPersonalInfo,
	SectionSummary,
	SectionSkills,
	SectionCertifications,
	SectionLanguages,
	SectionWorkExperience,
	SectionProjects,
}

// ChangeType describes what happened to a value between two versions
type ChangeType string

// ChangeType constants
const (
	ChangeAdded     ChangeType = "added"
	ChangeRemoved   ChangeType = "removed"
	ChangeModified  ChangeType = "modified"
	ChangeUnchanged ChangeType = "unchanged"
)

// Risk is the review tier assigned to a diff entry
type Risk string

// Risk constants
const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Rank orders risk tiers so the higher one can be chosen on ties
func (r Risk) Rank() int {
	switch r {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

// Field names used by structured item diffs
const (
	FieldCurrent      = "current"
	FieldDateEnd      = "dateEnd"
	FieldDateStart    = "dateStart"
	FieldDescriptions = "descriptions"
	FieldSubtitle     = "subtitle"
	FieldTitle        = "title"
)

// DiffEntry is one atomic detected change between two résumé versions.
// Before/After hold a string, a bool, or an Item for whole-item changes.
type DiffEntry struct {
	Section    Section    `json:"section"`
	ItemID     string     `json:"itemId,omitempty"`
	ChangeType ChangeType `json:"changeType"`
	Field      string     `json:"field,omitempty"`
	Before     any        `json:"before,omitempty"`
	After      any        `json:"after,omitempty"`
	Risk       Risk       `json:"risk,omitempty"`
}

// DiffSummary aggregates counts over a diff
type DiffSummary struct {
	TotalChanges         int `json:"totalChanges"`
	SkillsAdded          int `json:"skillsAdded"`
	SkillsRemoved        int `json:"skillsRemoved"`
	CertificationsAdded  int `json:"certificationsAdded"`
	DescriptionsModified int `json:"descriptionsModified"`
	DescriptionsAdded    int `json:"descriptionsAdded"`
	DescriptionsRemoved  int `json:"descriptionsRemoved"`
	HighRiskChanges      int `json:"highRiskChanges"`
	MediumRiskChanges    int `json:"mediumRiskChanges"`
	LowRiskChanges       int `json:"lowRiskChanges"`
}
