// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ResumeDocument is the canonical résumé tree. Callers own it; the pipeline only
// reads it and produces copies.
type ResumeDocument struct {
	PersonalInfo   map[string]string `json:"personalInfo,omitempty"`
	Summary        string            `json:"summary,omitempty"`
	Skills         []string          `json:"skills,omitempty"`
	Certifications []string          `json:"certifications,omitempty"`
	Languages      []string          `json:"languages,omitempty"`
	WorkExperience []Item            `json:"workExperience,omitempty"`
	Projects       []Item            `json:"projects,omitempty"`
}

// Item is a structured résumé entry (work experience or project)
type Item struct {
	ID           string   `json:"id,omitempty"`
	Title        string   `json:"title,omitempty"`
	Subtitle     string   `json:"subtitle,omitempty"`
	Current      bool     `json:"current,omitempty"`
	DateStart    string   `json:"dateStart,omitempty"`
	DateEnd      string   `json:"dateEnd,omitempty"`
	Descriptions []string `json:"descriptions,omitempty"`
}

// NormalizationNote records a non-fatal coercion applied to malformed input
type NormalizationNote struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// NormalizedResume is a ResumeDocument in canonical shape plus the notes
// describing how it was coerced from the raw input.
type NormalizedResume struct {
	ResumeDocument
	Notes []NormalizationNote `json:"notes,omitempty"`
}

// Clone returns a deep copy of the document
func (d ResumeDocument) Clone() ResumeDocument {
	out := ResumeDocument{
		Summary:        d.Summary,
		Skills:         cloneStrings(d.Skills),
		Certifications: cloneStrings(d.Certifications),
		Languages:      cloneStrings(d.Languages),
		WorkExperience: cloneItems(d.WorkExperience),
		Projects:       cloneItems(d.Projects),
	}
	if d.PersonalInfo != nil {
		out.PersonalInfo = make(map[string]string, len(d.PersonalInfo))
		for k, v := range d.PersonalInfo {
			out.PersonalInfo[k] = v
		}
	}
	return out
}

// Clone returns a deep copy of the item
func (it Item) Clone() Item {
	it.Descriptions = cloneStrings(it.Descriptions)
	return it
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneItems(in []Item) []Item {
	if in == nil {
		return nil
	}
	out := make([]Item, len(in))
	for i, it := range in {
		out[i] = it.Clone()
	}
	return out
}
