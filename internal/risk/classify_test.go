package risk

import (
	"testing"

	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		entry types.DiffEntry
		want  types.Risk
	}{
		{"added skill", types.DiffEntry{Section: types.SectionSkills, ChangeType: types.ChangeAdded, After: "Kubernetes"}, types.RiskHigh},
		{"added certification", types.DiffEntry{Section: types.SectionCertifications, ChangeType: types.ChangeAdded}, types.RiskHigh},
		{"added language", types.DiffEntry{Section: types.SectionLanguages, ChangeType: types.ChangeAdded}, types.RiskHigh},
		{"removed skill", types.DiffEntry{Section: types.SectionSkills, ChangeType: types.ChangeRemoved}, types.RiskMedium},
		{"modified description", types.DiffEntry{Section: types.SectionWorkExperience, ChangeType: types.ChangeModified, Field: "descriptions[0]"}, types.RiskLow},
		{"added description", types.DiffEntry{Section: types.SectionProjects, ChangeType: types.ChangeAdded, Field: "descriptions[3]"}, types.RiskMedium},
		{"removed description", types.DiffEntry{Section: types.SectionWorkExperience, ChangeType: types.ChangeRemoved, Field: "descriptions[1]"}, types.RiskMedium},
		{"modified title", types.DiffEntry{Section: types.SectionWorkExperience, ChangeType: types.ChangeModified, Field: "title"}, types.RiskHigh},
		{"added end date", types.DiffEntry{Section: types.SectionWorkExperience, ChangeType: types.ChangeAdded, Field: "dateEnd"}, types.RiskHigh},
		{"modified start date", types.DiffEntry{Section: types.SectionProjects, ChangeType: types.ChangeModified, Field: "dateStart"}, types.RiskHigh},
		{"flipped current", types.DiffEntry{Section: types.SectionWorkExperience, ChangeType: types.ChangeModified, Field: "current"}, types.RiskHigh},
		{"removed subtitle", types.DiffEntry{Section: types.SectionWorkExperience, ChangeType: types.ChangeRemoved, Field: "subtitle"}, types.RiskMedium},
		{"new item", types.DiffEntry{Section: types.SectionWorkExperience, ChangeType: types.ChangeAdded}, types.RiskHigh},
		{"removed item", types.DiffEntry{Section: types.SectionProjects, ChangeType: types.ChangeRemoved}, types.RiskMedium},
		{"modified summary", types.DiffEntry{Section: types.SectionSummary, ChangeType: types.ChangeModified}, types.RiskLow},
		{"added summary", types.DiffEntry{Section: types.SectionSummary, ChangeType: types.ChangeAdded}, types.RiskMedium},
		{"headline title", types.DiffEntry{Section: types.SectionPersonalInfo, ChangeType: types.ChangeModified, Field: "title"}, types.RiskHigh},
		{"email changed", types.DiffEntry{Section: types.SectionPersonalInfo, ChangeType: types.ChangeModified, Field: "email"}, types.RiskMedium},
		{"unchanged", types.DiffEntry{Section: types.SectionSkills, ChangeType: types.ChangeUnchanged}, types.RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.entry))
		})
	}
}

func TestClassify_TieGoesToHigherTier(t *testing.T) {
	// personalInfo title matches both the factual and the contact rule
	e := types.DiffEntry{Section: types.SectionPersonalInfo, ChangeType: types.ChangeModified, Field: "title"}
	assert.Equal(t, []string{"factual field", "contact details"}, Matching(e))
	assert.Equal(t, types.RiskHigh, Classify(e))
}

func TestClassify_Pure(t *testing.T) {
	e := types.DiffEntry{Section: types.SectionWorkExperience, ChangeType: types.ChangeModified, Field: "descriptions[0]", Before: "a", After: "b"}
	first := Classify(e)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Classify(e))
	}
}

func TestAnnotate(t *testing.T) {
	entries := []types.DiffEntry{
		{Section: types.SectionSkills, ChangeType: types.ChangeAdded, After: "Kubernetes"},
		{Section: types.SectionWorkExperience, ItemID: "exp1", ChangeType: types.ChangeModified, Field: "descriptions[0]"},
	}

	out := Annotate(entries)

	assert.Equal(t, types.RiskHigh, out[0].Risk)
	assert.Equal(t, types.RiskLow, out[1].Risk)
	assert.Equal(t, types.Risk(""), entries[0].Risk, "input must not be mutated")
	assert.Nil(t, Annotate(nil))
}
