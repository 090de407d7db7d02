package regeneration

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

// Apply splices accepted results into a copy of doc by item id. Document
// order and untargeted fields are preserved; doc itself is not modified.
// Results whose target cannot be found are returned as skipped.
func Apply(doc types.ResumeDocument, accepted []types.RegenerationResult) (types.ResumeDocument, []types.RegenerationResult) {
	out := doc.Clone()
	var skipped []types.RegenerationResult

	for _, r := range accepted {
		content := cleanLines(r.NewContent)
		applied := false

		switch r.ItemType {
		case types.ItemExperience:
			applied = replaceDescriptions(out.WorkExperience, r.ItemID, content)
		case types.ItemProject:
			applied = replaceDescriptions(out.Projects, r.ItemID, content)
		case types.ItemSummary:
			if len(content) > 0 {
				out.Summary = strings.Join(content, " ")
				applied = true
			}
		case types.ItemSkillBlock:
			if len(content) > 0 {
				out.Skills = dedupeFold(content)
				applied = true
			}
		}

		if !applied {
			skipped = append(skipped, r)
		}
	}
	return out, skipped
}

// ApplyEnhancements appends additional bullets to a copy of doc. Bullets
// already present on the item are not repeated. Enhancements whose item
// cannot be found are returned as skipped.
func ApplyEnhancements(doc types.ResumeDocument, enhancements []types.Enhancement) (types.ResumeDocument, []types.Enhancement) {
	out := doc.Clone()
	var skipped []types.Enhancement

	for _, e := range enhancements {
		var items []types.Item
		switch e.ItemType {
		case types.ItemExperience:
			items = out.WorkExperience
		case types.ItemProject:
			items = out.Projects
		}

		idx := findItem(items, e.ItemID)
		if idx < 0 {
			skipped = append(skipped, e)
			continue
		}

		item := &items[idx]
		existing := make(map[string]struct{}, len(item.Descriptions))
		for _, d := range item.Descriptions {
			existing[strings.TrimSpace(d)] = struct{}{}
		}
		for _, b := range cleanLines(e.AdditionalBullets) {
			if _, dup := existing[b]; dup {
				continue
			}
			existing[b] = struct{}{}
			item.Descriptions = append(item.Descriptions, b)
		}
	}
	return out, skipped
}

func replaceDescriptions(items []types.Item, id string, content []string) bool {
	idx := findItem(items, id)
	if idx < 0 || len(content) == 0 {
		return false
	}
	items[idx].Descriptions = content
	return true
}

func findItem(items []types.Item, id string) int {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1
	}
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func cleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// dedupeFold drops case-insensitive duplicates, keeping the first spelling
func dedupeFold(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		k := strings.ToLower(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}
