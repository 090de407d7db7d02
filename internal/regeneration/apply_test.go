package regeneration

import (
	"testing"

	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseDoc() types.ResumeDocument {
	return types.ResumeDocument{
		Summary: "Backend engineer.",
		Skills:  []string{"Go"},
		WorkExperience: []types.Item{
			{ID: "e1", Title: "Senior Engineer", Descriptions: []string{"Led team"}},
			{ID: "e2", Title: "Engineer", Descriptions: []string{"Built APIs"}},
		},
		Projects: []types.Item{
			{ID: "p1", Title: "CLI", Descriptions: []string{"Wrote it"}},
		},
	}
}

func TestApply(t *testing.T) {
	doc := baseDoc()

	out, skipped := Apply(doc, []types.RegenerationResult{
		{ItemID: "e2", ItemType: types.ItemExperience, NewContent: []string{"Built 12 REST APIs", " "}},
		{ItemID: "p1", ItemType: types.ItemProject, NewContent: []string{"Wrote a Go CLI"}},
		{ItemID: "summary", ItemType: types.ItemSummary, NewContent: []string{"Platform engineer.", "Go and Kubernetes."}},
		{ItemID: "skills", ItemType: types.ItemSkillBlock, NewContent: []string{"Go", "go", "Kubernetes"}},
		{ItemID: "missing", ItemType: types.ItemExperience, NewContent: []string{"x"}},
	})

	require.Len(t, skipped, 1)
	assert.Equal(t, "missing", skipped[0].ItemID)

	assert.Equal(t, []string{"Led team"}, out.WorkExperience[0].Descriptions)
	assert.Equal(t, []string{"Built 12 REST APIs"}, out.WorkExperience[1].Descriptions)
	assert.Equal(t, "Engineer", out.WorkExperience[1].Title)
	assert.Equal(t, []string{"Wrote a Go CLI"}, out.Projects[0].Descriptions)
	assert.Equal(t, "Platform engineer. Go and Kubernetes.", out.Summary)
	assert.Equal(t, []string{"Go", "Kubernetes"}, out.Skills)

	// The input is untouched
	assert.Equal(t, baseDoc(), doc)
}

func TestApply_TypeMustMatchSection(t *testing.T) {
	out, skipped := Apply(baseDoc(), []types.RegenerationResult{
		{ItemID: "p1", ItemType: types.ItemExperience, NewContent: []string{"x"}},
		{ItemID: "e1", ItemType: types.ItemExperience, NewContent: nil},
	})

	assert.Len(t, skipped, 2)
	assert.Equal(t, baseDoc(), out)
}

func TestApplyEnhancements(t *testing.T) {
	doc := baseDoc()

	out, skipped := ApplyEnhancements(doc, []types.Enhancement{
		{ItemID: "e1", ItemType: types.ItemExperience, AdditionalBullets: []string{"Hired 3 engineers", "Led team", "", "Hired 3 engineers"}},
		{ItemID: "p1", ItemType: types.ItemProject, AdditionalBullets: []string{"Released v1.0"}},
		{ItemID: "e9", ItemType: types.ItemExperience, AdditionalBullets: []string{"x"}},
		{ItemID: "e1", ItemType: types.ItemSummary, AdditionalBullets: []string{"x"}},
	})

	require.Len(t, skipped, 2)
	assert.Equal(t, "e9", skipped[0].ItemID)
	assert.Equal(t, []string{"Led team", "Hired 3 engineers"}, out.WorkExperience[0].Descriptions)
	assert.Equal(t, []string{"Wrote it", "Released v1.0"}, out.Projects[0].Descriptions)
	assert.Equal(t, baseDoc(), doc)
}
