// Package diff computes field-level differences between an original résumé
// and an improved version of it.
//
// Output order is deterministic: sections in document order, then items in
// the order they appear in the improved résumé (unmatched original items
// last), then fields alphabetically.
package diff

import (
	"sort"
	"strings"

	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/types"
	"go.uber.org/zap"
)

// Options tunes the engine output
type Options struct {
	// IncludeUnchanged emits an Unchanged entry for every leaf present and
	// equal on both sides.
	IncludeUnchanged bool
}

// Engine computes diffs. The zero value is not usable; call NewEngine.
type Engine struct {
	logger *zap.Logger
	opts   Options
}

// NewEngine creates an engine. A nil logger disables logging.
func NewEngine(logger *zap.Logger, opts Options) *Engine {
	return &Engine{logger: logging.OrNop(logger), opts: opts}
}

// Compute diffs two normalized résumés with default options and no logging
func Compute(original, improved *types.NormalizedResume) []types.DiffEntry {
	return NewEngine(nil, Options{}).Compute(original, improved)
}

// Compute returns the ordered change set from original to improved.
// Nil inputs are treated as empty résumés. Risk is left unset.
func (e *Engine) Compute(original, improved *types.NormalizedResume) []types.DiffEntry {
	var orig, impr types.ResumeDocument
	if original != nil {
		orig = original.ResumeDocument
	}
	if improved != nil {
		impr = improved.ResumeDocument
	}

	var out []types.DiffEntry
	out = e.personalInfo(out, orig.PersonalInfo, impr.PersonalInfo)
	out = e.scalar(out, types.SectionSummary, "", "", orig.Summary, impr.Summary)
	out = e.stringSet(out, types.SectionSkills, orig.Skills, impr.Skills)
	out = e.stringSet(out, types.SectionCertifications, orig.Certifications, impr.Certifications)
	out = e.stringSet(out, types.SectionLanguages, orig.Languages, impr.Languages)
	out = e.items(out, types.SectionWorkExperience, orig.WorkExperience, impr.WorkExperience)
	out = e.items(out, types.SectionProjects, orig.Projects, impr.Projects)
	return out
}

func (e *Engine) personalInfo(out []types.DiffEntry, orig, impr map[string]string) []types.DiffEntry {
	keys := make(map[string]struct{}, len(orig)+len(impr))
	for k := range orig {
		keys[k] = struct{}{}
	}
	for k := range impr {
		keys[k] = struct{}{}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	for _, k := range sorted {
		out = e.scalar(out, types.SectionPersonalInfo, "", k, orig[k], impr[k])
	}
	return out
}

// scalar compares two trimmed strings case-sensitively. A value that only
// exists on one side is Added or Removed rather than Modified.
func (e *Engine) scalar(out []types.DiffEntry, section types.Section, itemID, field, before, after string) []types.DiffEntry {
	before = strings.TrimSpace(before)
	after = strings.TrimSpace(after)

	entry := types.DiffEntry{Section: section, ItemID: itemID, Field: field}
	switch {
	case before == after:
		if before == "" || !e.opts.IncludeUnchanged {
			return out
		}
		entry.ChangeType = types.ChangeUnchanged
		entry.Before, entry.After = before, after
	case before == "":
		entry.ChangeType = types.ChangeAdded
		entry.After = after
	case after == "":
		entry.ChangeType = types.ChangeRemoved
		entry.Before = before
	default:
		entry.ChangeType = types.ChangeModified
		entry.Before, entry.After = before, after
	}
	return append(out, entry)
}

// stringSet reconciles two lists as case-insensitive sets. Order changes and
// case-only changes produce nothing.
func (e *Engine) stringSet(out []types.DiffEntry, section types.Section, orig, impr []string) []types.DiffEntry {
	origKeys := make(map[string]struct{}, len(orig))
	for _, s := range orig {
		origKeys[setKey(s)] = struct{}{}
	}
	imprKeys := make(map[string]struct{}, len(impr))
	for _, s := range impr {
		imprKeys[setKey(s)] = struct{}{}
	}

	seen := make(map[string]struct{}, len(impr))
	for _, s := range impr {
		k := setKey(s)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		if _, ok := origKeys[k]; !ok {
			out = append(out, types.DiffEntry{Section: section, ChangeType: types.ChangeAdded, After: strings.TrimSpace(s)})
		} else if e.opts.IncludeUnchanged {
			out = append(out, types.DiffEntry{Section: section, ChangeType: types.ChangeUnchanged, Before: strings.TrimSpace(s), After: strings.TrimSpace(s)})
		}
	}

	seen = make(map[string]struct{}, len(orig))
	for _, s := range orig {
		k := setKey(s)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		if _, ok := imprKeys[k]; !ok {
			out = append(out, types.DiffEntry{Section: section, ChangeType: types.ChangeRemoved, Before: strings.TrimSpace(s)})
		}
	}
	return out
}

func setKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
