package diff

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
	"go.uber.org/zap"
)

// itemKey is the fallback identity of an item without a usable id match
type itemKey struct {
	title    string
	subtitle string
}

func keyOf(it types.Item) itemKey {
	return itemKey{title: normalizeText(it.Title), subtitle: normalizeText(it.Subtitle)}
}

// normalizeText lowercases and collapses whitespace
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// matchItems pairs improved items with original ones: by id first, then by
// (title, subtitle) among what is left. It returns, for each improved index,
// the matched original index or -1, and which originals were matched.
func (e *Engine) matchItems(section types.Section, orig, impr []types.Item) ([]int, []bool) {
	pairs := make([]int, len(impr))
	used := make([]bool, len(orig))
	for i := range pairs {
		pairs[i] = -1
	}

	byID := make(map[string][]int)
	for j, it := range orig {
		if it.ID != "" {
			byID[it.ID] = append(byID[it.ID], j)
		}
	}
	for i, it := range impr {
		if it.ID == "" {
			continue
		}
		queue := byID[it.ID]
		if len(queue) == 0 {
			continue
		}
		pairs[i], used[queue[0]] = queue[0], true
		byID[it.ID] = queue[1:]
	}

	e.logTitleCollisions(section, orig, impr, pairs)

	byKey := make(map[itemKey][]int)
	for j, it := range orig {
		if !used[j] {
			k := keyOf(it)
			byKey[k] = append(byKey[k], j)
		}
	}
	for i, it := range impr {
		if pairs[i] >= 0 {
			continue
		}
		k := keyOf(it)
		queue := byKey[k]
		if len(queue) == 0 {
			continue
		}
		pairs[i], used[queue[0]] = queue[0], true
		byKey[k] = queue[1:]
	}

	return pairs, used
}

// logTitleCollisions warns when an id-matched improved item carries the
// title and subtitle of a different original item. The id match is kept.
func (e *Engine) logTitleCollisions(section types.Section, orig, impr []types.Item, pairs []int) {
	for i, j := range pairs {
		if j < 0 {
			continue
		}
		k := keyOf(impr[i])
		if k == (itemKey{}) || k == keyOf(orig[j]) {
			continue
		}
		for other, it := range orig {
			if other != j && keyOf(it) == k {
				e.logger.Warn("item matched by id also matches another item by title",
					zap.String("section", string(section)),
					zap.String("item_id", impr[i].ID),
					zap.String("title", impr[i].Title),
					zap.String("other_item_id", it.ID),
				)
				break
			}
		}
	}
}

func (e *Engine) items(out []types.DiffEntry, section types.Section, orig, impr []types.Item) []types.DiffEntry {
	pairs, used := e.matchItems(section, orig, impr)

	for i, it := range impr {
		j := pairs[i]
		if j < 0 {
			out = append(out, types.DiffEntry{
				Section:    section,
				ItemID:     it.ID,
				ChangeType: types.ChangeAdded,
				After:      it.Clone(),
			})
			continue
		}
		out = e.itemFields(out, section, orig[j], it)
	}

	for j, it := range orig {
		if used[j] {
			continue
		}
		out = append(out, types.DiffEntry{
			Section:    section,
			ItemID:     it.ID,
			ChangeType: types.ChangeRemoved,
			Before:     it.Clone(),
		})
	}
	return out
}

// itemFields diffs a matched pair field by field, fields in alphabetical order
func (e *Engine) itemFields(out []types.DiffEntry, section types.Section, orig, impr types.Item) []types.DiffEntry {
	id := impr.ID
	if id == "" {
		id = orig.ID
	}

	switch {
	case orig.Current != impr.Current:
		out = append(out, types.DiffEntry{Section: section, ItemID: id, ChangeType: types.ChangeModified, Field: types.FieldCurrent, Before: orig.Current, After: impr.Current})
	case e.opts.IncludeUnchanged:
		out = append(out, types.DiffEntry{Section: section, ItemID: id, ChangeType: types.ChangeUnchanged, Field: types.FieldCurrent, Before: orig.Current, After: impr.Current})
	}

	out = e.scalar(out, section, id, types.FieldDateEnd, orig.DateEnd, impr.DateEnd)
	out = e.scalar(out, section, id, types.FieldDateStart, orig.DateStart, impr.DateStart)
	out = e.descriptions(out, section, id, orig.Descriptions, impr.Descriptions)
	out = e.scalar(out, section, id, types.FieldSubtitle, orig.Subtitle, impr.Subtitle)
	out = e.scalar(out, section, id, types.FieldTitle, orig.Title, impr.Title)
	return out
}

// descriptions compares bullet lists as multisets of exact strings. Lines
// common to both sides are consumed one instance at a time, so a duplicate
// that disappears is reported. Leftover lines are paired positionally as
// Modified; the remainder is Added or Removed. A pure reorder reports nothing.
//
// Entries follow the improved index; removals follow, by original index.
func (e *Engine) descriptions(out []types.DiffEntry, section types.Section, id string, orig, impr []string) []types.DiffEntry {
	imprByLine := make(map[string][]int, len(impr))
	for i, line := range impr {
		imprByLine[line] = append(imprByLine[line], i)
	}

	// counterpart[i] is the original index matched to improved line i
	counterpart := make([]int, len(impr))
	for i := range counterpart {
		counterpart[i] = -1
	}
	origUsed := make([]bool, len(orig))
	for j, line := range orig {
		queue := imprByLine[line]
		if len(queue) == 0 {
			continue
		}
		counterpart[queue[0]] = j
		origUsed[j] = true
		imprByLine[line] = queue[1:]
	}

	var leftoverOrig []int
	for j := range orig {
		if !origUsed[j] {
			leftoverOrig = append(leftoverOrig, j)
		}
	}

	next := 0
	for i, line := range impr {
		field := fmt.Sprintf("%s[%d]", types.FieldDescriptions, i)
		switch {
		case counterpart[i] >= 0:
			if e.opts.IncludeUnchanged {
				out = append(out, types.DiffEntry{Section: section, ItemID: id, ChangeType: types.ChangeUnchanged, Field: field, Before: line, After: line})
			}
		case next < len(leftoverOrig):
			out = append(out, types.DiffEntry{Section: section, ItemID: id, ChangeType: types.ChangeModified, Field: field, Before: orig[leftoverOrig[next]], After: line})
			next++
		default:
			out = append(out, types.DiffEntry{Section: section, ItemID: id, ChangeType: types.ChangeAdded, Field: field, After: line})
		}
	}

	for _, j := range leftoverOrig[next:] {
		out = append(out, types.DiffEntry{
			Section:    section,
			ItemID:     id,
			ChangeType: types.ChangeRemoved,
			Field:      fmt.Sprintf("%s[%d]", types.FieldDescriptions, j),
			Before:     orig[j],
		})
	}
	return out
}
