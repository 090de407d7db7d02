// Package resume canonicalizes heterogeneous résumé JSON into the shape the
// diff engine and regeneration orchestrator work on.
//
// Normalization never fails: malformed values are coerced to the closest
// valid shape or dropped, and every coercion is recorded as a note.
package resume

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

// Section aliases, tried in order when the canonical key is absent.
// Paths with a dot address a nested object.
var sectionAliases = map[types.Section][]string{
	types.SectionSkills:         {"skills", "additional.technicalSkills"},
	types.SectionCertifications: {"certifications", "additional.certificationsTraining"},
	types.SectionLanguages:      {"languages", "additional.languages"},
	types.SectionWorkExperience: {"workExperience"},
	types.SectionProjects:       {"projects", "personalProjects"},
}

// Item field aliases
var (
	titleKeys       = []string{"title", "name"}
	subtitleKeys    = []string{"subtitle", "company", "role"}
	descriptionKeys = []string{"descriptions", "description"}
)

// Parse decodes raw résumé JSON and normalizes it. Only invalid JSON, or JSON
// that is not an object, is an error.
func Parse(data []byte) (*types.NormalizedResume, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Message: "invalid JSON", Cause: err}
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, &ParseError{Message: fmt.Sprintf("expected a JSON object, got %s", kindOf(raw))}
	}
	return Normalize(obj), nil
}

// Normalize coerces a decoded résumé object into canonical shape.
func Normalize(raw map[string]any) *types.NormalizedResume {
	n := &normalizer{}
	out := &types.NormalizedResume{}

	out.PersonalInfo = n.personalInfo(raw["personalInfo"])
	out.Summary = n.summary(raw["summary"])

	for _, section := range []types.Section{types.SectionSkills, types.SectionCertifications, types.SectionLanguages} {
		path, value, found := lookupSection(raw, section)
		if !found {
			continue
		}
		list := n.stringList(path, value)
		switch section {
		case types.SectionSkills:
			out.Skills = list
		case types.SectionCertifications:
			out.Certifications = list
		case types.SectionLanguages:
			out.Languages = list
		}
	}

	if path, value, found := lookupSection(raw, types.SectionWorkExperience); found {
		out.WorkExperience = n.items(path, value)
	}
	if path, value, found := lookupSection(raw, types.SectionProjects); found {
		out.Projects = n.items(path, value)
	}

	out.Notes = n.notes
	return out
}

// NormalizeDocument canonicalizes an already typed document: strings are
// trimmed and blank list entries dropped. The input is not modified.
func NormalizeDocument(doc types.ResumeDocument) *types.NormalizedResume {
	n := &normalizer{}
	out := &types.NormalizedResume{ResumeDocument: doc.Clone()}

	if out.PersonalInfo != nil {
		for k, v := range out.PersonalInfo {
			out.PersonalInfo[k] = strings.TrimSpace(v)
		}
	}
	out.Summary = strings.TrimSpace(out.Summary)
	out.Skills = n.trimList(string(types.SectionSkills), out.Skills)
	out.Certifications = n.trimList(string(types.SectionCertifications), out.Certifications)
	out.Languages = n.trimList(string(types.SectionLanguages), out.Languages)
	out.WorkExperience = n.trimItems(string(types.SectionWorkExperience), out.WorkExperience)
	out.Projects = n.trimItems(string(types.SectionProjects), out.Projects)

	out.Notes = n.notes
	return out
}

type normalizer struct {
	notes []types.NormalizationNote
}

func (n *normalizer) note(path, format string, args ...any) {
	n.notes = append(n.notes, types.NormalizationNote{Path: path, Message: fmt.Sprintf(format, args...)})
}

func lookupSection(raw map[string]any, section types.Section) (string, any, bool) {
	for _, path := range sectionAliases[section] {
		if value, ok := lookupPath(raw, path); ok {
			return path, value, true
		}
	}
	return "", nil, false
}

func lookupPath(raw map[string]any, path string) (any, bool) {
	parent, key, nested := strings.Cut(path, ".")
	if !nested {
		v, ok := raw[path]
		return v, ok && v != nil
	}
	obj, ok := raw[parent].(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := obj[key]
	return v, ok && v != nil
}

func (n *normalizer) personalInfo(value any) map[string]string {
	if value == nil {
		return nil
	}
	obj, ok := value.(map[string]any)
	if !ok {
		n.note("personalInfo", "expected object, got %s; dropped", kindOf(value))
		return nil
	}

	info := make(map[string]string, len(obj))
	for key, v := range obj {
		if v == nil {
			continue
		}
		s, ok := scalarString(v)
		if !ok {
			n.note("personalInfo."+key, "expected scalar, got %s; dropped", kindOf(v))
			continue
		}
		info[key] = s
	}
	return info
}

func (n *normalizer) summary(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []any:
		parts := n.stringList("summary", v)
		n.note("summary", "expected string, got list; joined %d lines", len(parts))
		return strings.Join(parts, " ")
	default:
		if s, ok := scalarString(v); ok {
			n.note("summary", "expected string, got %s; converted", kindOf(v))
			return s
		}
		n.note("summary", "expected string, got %s; dropped", kindOf(v))
		return ""
	}
}

// stringList coerces value into a list of non-blank trimmed strings
func (n *normalizer) stringList(path string, value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		n.note(path, "expected list, got string; wrapped")
		return []string{s}
	case []any:
		out := make([]string, 0, len(v))
		for i, el := range v {
			elPath := fmt.Sprintf("%s[%d]", path, i)
			s, ok := el.(string)
			if !ok {
				n.note(elPath, "expected string, got %s; dropped", kindOf(el))
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				n.note(elPath, "blank entry dropped")
				continue
			}
			out = append(out, s)
		}
		return out
	default:
		n.note(path, "expected list, got %s; dropped", kindOf(v))
		return nil
	}
}

func (n *normalizer) items(path string, value any) []types.Item {
	var entries []any
	switch v := value.(type) {
	case []any:
		entries = v
	case map[string]any:
		n.note(path, "expected list, got object; wrapped")
		entries = []any{v}
	default:
		n.note(path, "expected list, got %s; dropped", kindOf(v))
		return nil
	}

	out := make([]types.Item, 0, len(entries))
	for i, entry := range entries {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		switch e := entry.(type) {
		case map[string]any:
			item := n.item(itemPath, e)
			if item.ID == "" && item.Title == "" && len(item.Descriptions) == 0 {
				n.note(itemPath, "item has no id, title or descriptions; dropped")
				continue
			}
			out = append(out, item)
		case string:
			title := strings.TrimSpace(e)
			if title == "" {
				n.note(itemPath, "blank entry dropped")
				continue
			}
			n.note(itemPath, "expected object, got string; used as title")
			out = append(out, types.Item{Title: title})
		default:
			n.note(itemPath, "expected object, got %s; dropped", kindOf(entry))
		}
	}
	return out
}

func (n *normalizer) item(path string, obj map[string]any) types.Item {
	var item types.Item

	if v, ok := obj["id"]; ok && v != nil {
		id, ok := scalarString(v)
		if !ok {
			n.note(path+".id", "expected scalar, got %s; dropped", kindOf(v))
		}
		item.ID = id
	}

	item.Title = n.firstString(path, obj, titleKeys)
	item.Subtitle = n.firstString(path, obj, subtitleKeys)
	item.DateStart = n.firstString(path, obj, []string{"dateStart"})
	item.DateEnd = n.firstString(path, obj, []string{"dateEnd"})

	if years := n.firstString(path, obj, []string{"years"}); years != "" {
		start, end := splitYears(years)
		if item.DateStart == "" {
			item.DateStart = start
		}
		if item.DateEnd == "" {
			item.DateEnd = end
		}
	}

	switch v := obj["current"].(type) {
	case nil:
	case bool:
		item.Current = v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			n.note(path+".current", "expected bool, got %q; dropped", v)
		} else {
			item.Current = b
		}
	default:
		n.note(path+".current", "expected bool, got %s; dropped", kindOf(v))
	}
	if !item.Current && isPresent(item.DateEnd) {
		item.Current = true
	}

	for _, key := range descriptionKeys {
		if v, ok := obj[key]; ok && v != nil {
			item.Descriptions = n.stringList(path+"."+key, v)
			break
		}
	}

	return item
}

func (n *normalizer) firstString(path string, obj map[string]any, keys []string) string {
	for _, key := range keys {
		v, ok := obj[key]
		if !ok || v == nil {
			continue
		}
		s, ok := scalarString(v)
		if !ok {
			n.note(path+"."+key, "expected string, got %s; dropped", kindOf(v))
			continue
		}
		if s != "" {
			return s
		}
	}
	return ""
}

func (n *normalizer) trimList(path string, in []string) []string {
	if in == nil {
		return nil
	}
	out := in[:0]
	for i, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			n.note(fmt.Sprintf("%s[%d]", path, i), "blank entry dropped")
			continue
		}
		out = append(out, s)
	}
	return out
}

func (n *normalizer) trimItems(path string, in []types.Item) []types.Item {
	for i := range in {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		it := &in[i]
		it.ID = strings.TrimSpace(it.ID)
		it.Title = strings.TrimSpace(it.Title)
		it.Subtitle = strings.TrimSpace(it.Subtitle)
		it.DateStart = strings.TrimSpace(it.DateStart)
		it.DateEnd = strings.TrimSpace(it.DateEnd)
		it.Descriptions = n.trimList(itemPath+".descriptions", it.Descriptions)
	}
	return in
}

// splitYears turns "2020 - Present" into ("2020", "Present"). An unspaced
// dash only separates a range when it sits between two years, so a single
// date like "2019-03" stays whole.
func splitYears(years string) (string, string) {
	years = strings.TrimSpace(years)
	for _, sep := range []string{" - ", " – ", " — "} {
		if start, end, ok := strings.Cut(years, sep); ok {
			return strings.TrimSpace(start), strings.TrimSpace(end)
		}
	}
	for _, sep := range []string{"-", "–"} {
		if strings.Count(years, sep) != 1 {
			continue
		}
		start, end, _ := strings.Cut(years, sep)
		if endsWithYear(start) && (startsWithYear(end) || endsWithYear(end) || isPresent(end)) {
			return start, end
		}
	}
	return years, ""
}

func endsWithYear(s string) bool {
	return len(s) >= 4 && isYear(s[len(s)-4:]) && (len(s) == 4 || !isDigit(s[len(s)-5]))
}

func startsWithYear(s string) bool {
	return len(s) >= 4 && isYear(s[:4]) && (len(s) == 4 || !isDigit(s[4]))
}

func isYear(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return s[0] == '1' || s[0] == '2'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isPresent(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "present", "current", "now":
		return true
	}
	return false
}

// scalarString formats strings, numbers and bools; ids often arrive as numbers
func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case json.Number:
		return x.String(), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return "", false
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case float64, json.Number, int, int64:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
