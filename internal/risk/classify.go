// Package risk labels diff entries with a review tier.
package risk

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

// rule assigns a tier to every entry it matches
type rule struct {
	name  string
	risk  types.Risk
	match func(e types.DiffEntry) bool
}

// rules is evaluated in full; the highest matching tier wins
var rules = []rule{
	{
		name: "claimed skill",
		risk: types.RiskHigh,
		match: func(e types.DiffEntry) bool {
			return e.ChangeType == types.ChangeAdded && isClaimSection(e.Section)
		},
	},
	{
		name: "factual field",
		risk: types.RiskHigh,
		match: func(e types.DiffEntry) bool {
			return (e.ChangeType == types.ChangeAdded || e.ChangeType == types.ChangeModified) && isFactualField(e)
		},
	},
	{
		name: "new item",
		risk: types.RiskHigh,
		match: func(e types.DiffEntry) bool {
			return e.ChangeType == types.ChangeAdded && isItemSection(e.Section) && e.Field == ""
		},
	},
	{
		name: "removed content",
		risk: types.RiskMedium,
		match: func(e types.DiffEntry) bool {
			return e.ChangeType == types.ChangeRemoved
		},
	},
	{
		name: "added wording",
		risk: types.RiskMedium,
		match: func(e types.DiffEntry) bool {
			return e.ChangeType == types.ChangeAdded && (isDescription(e.Field) || e.Section == types.SectionSummary)
		},
	},
	{
		name: "contact details",
		risk: types.RiskMedium,
		match: func(e types.DiffEntry) bool {
			return e.Section == types.SectionPersonalInfo && e.ChangeType != types.ChangeUnchanged
		},
	},
	{
		name: "reworded",
		risk: types.RiskLow,
		match: func(e types.DiffEntry) bool {
			return e.ChangeType == types.ChangeModified && (isDescription(e.Field) || e.Section == types.SectionSummary)
		},
	},
}

// Classify returns the risk tier of a single entry. Entries matching no rule
// are Low.
func Classify(e types.DiffEntry) types.Risk {
	best := types.RiskLow
	for _, r := range rules {
		if r.risk.Rank() > best.Rank() && r.match(e) {
			best = r.risk
		}
	}
	return best
}

// Annotate returns a copy of entries with Risk set on each
func Annotate(entries []types.DiffEntry) []types.DiffEntry {
	if entries == nil {
		return nil
	}
	out := make([]types.DiffEntry, len(entries))
	for i, e := range entries {
		e.Risk = Classify(e)
		out[i] = e
	}
	return out
}

// Matching returns the names of every rule that matches e, in table order
func Matching(e types.DiffEntry) []string {
	var names []string
	for _, r := range rules {
		if r.match(e) {
			names = append(names, r.name)
		}
	}
	return names
}

func isClaimSection(s types.Section) bool {
	return s == types.SectionSkills || s == types.SectionCertifications || s == types.SectionLanguages
}

func isItemSection(s types.Section) bool {
	return s == types.SectionWorkExperience || s == types.SectionProjects
}

func isDescription(field string) bool {
	return strings.HasPrefix(field, types.FieldDescriptions+"[")
}

func isFactualField(e types.DiffEntry) bool {
	if e.Section == types.SectionPersonalInfo {
		return e.Field == types.FieldTitle
	}
	if !isItemSection(e.Section) {
		return false
	}
	switch e.Field {
	case types.FieldTitle, types.FieldSubtitle, types.FieldDateStart, types.FieldDateEnd, types.FieldCurrent:
		return true
	}
	return false
}
