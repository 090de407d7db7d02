package diff

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

// IsDescriptionField reports whether field addresses a description line
func IsDescriptionField(field string) bool {
	return strings.HasPrefix(field, types.FieldDescriptions+"[")
}

// Summarize counts the changes in entries. Unchanged entries are ignored.
func Summarize(entries []types.DiffEntry) types.DiffSummary {
	var s types.DiffSummary
	for _, e := range entries {
		if e.ChangeType == types.ChangeUnchanged {
			continue
		}
		s.TotalChanges++

		switch e.Risk {
		case types.RiskHigh:
			s.HighRiskChanges++
		case types.RiskMedium:
			s.MediumRiskChanges++
		case types.RiskLow:
			s.LowRiskChanges++
		}

		switch {
		case e.Section == types.SectionSkills && e.ChangeType == types.ChangeAdded:
			s.SkillsAdded++
		case e.Section == types.SectionSkills && e.ChangeType == types.ChangeRemoved:
			s.SkillsRemoved++
		case e.Section == types.SectionCertifications && e.ChangeType == types.ChangeAdded:
			s.CertificationsAdded++
		case IsDescriptionField(e.Field):
			switch e.ChangeType {
			case types.ChangeModified:
				s.DescriptionsModified++
			case types.ChangeAdded:
				s.DescriptionsAdded++
			case types.ChangeRemoved:
				s.DescriptionsRemoved++
			}
		}
	}
	return s
}
