// Package observability provides metrics and formatted output for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of entries to display in lists
	maxItemsToShow = 20
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func clip(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// PrintDiff outputs the change counts followed by one line per change
func (p *Printer) PrintDiff(entries []types.DiffEntry, summary types.DiffSummary) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Changes: %d  (high %d, medium %d, low %d)\n",
		summary.TotalChanges, summary.HighRiskChanges, summary.MediumRiskChanges, summary.LowRiskChanges))
	sb.WriteString(fmt.Sprintf("Skills: +%d -%d   Certifications: +%d\n",
		summary.SkillsAdded, summary.SkillsRemoved, summary.CertificationsAdded))
	sb.WriteString(fmt.Sprintf("Descriptions: ~%d +%d -%d\n",
		summary.DescriptionsModified, summary.DescriptionsAdded, summary.DescriptionsRemoved))

	if len(entries) > 0 {
		sb.WriteString("\n")
	}
	count := min(len(entries), maxItemsToShow)
	for _, e := range entries[:count] {
		sb.WriteString(formatEntry(e))
		sb.WriteString("\n")
	}
	if len(entries) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(entries)-maxItemsToShow))
	}

	p.printBox("RESUME DIFF", sb.String())
}

func formatEntry(e types.DiffEntry) string {
	risk := "-"
	if e.Risk != "" {
		risk = strings.ToUpper(string(e.Risk))
	}

	location := string(e.Section)
	if e.ItemID != "" {
		location += "/" + e.ItemID
	}
	if e.Field != "" {
		location += "." + e.Field
	}

	var change string
	switch e.ChangeType {
	case types.ChangeAdded:
		change = fmt.Sprintf("+ %s", formatValue(e.After))
	case types.ChangeRemoved:
		change = fmt.Sprintf("- %s", formatValue(e.Before))
	case types.ChangeModified:
		change = fmt.Sprintf("~ %s -> %s", formatValue(e.Before), formatValue(e.After))
	default:
		change = fmt.Sprintf("= %s", formatValue(e.After))
	}

	return fmt.Sprintf("[%-6s] %s %s", risk, location, change)
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return fmt.Sprintf("%q", x)
	case types.Item:
		if x.Subtitle != "" {
			return fmt.Sprintf("%s @ %s", x.Title, x.Subtitle)
		}
		return x.Title
	default:
		return fmt.Sprint(x)
	}
}

// PrintEnvelope outputs the results and failures of a regeneration batch
func (p *Printer) PrintEnvelope(env *types.RegenerationEnvelope) {
	if env == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Succeeded: %d   Failed: %d\n", len(env.Results), len(env.Errors)))

	for _, r := range env.Results {
		sb.WriteString(fmt.Sprintf("\n✓ %s (%s)\n", r.ItemID, r.ItemType))
		if r.DiffSummary != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", r.DiffSummary))
		}
		for _, line := range r.NewContent {
			sb.WriteString(fmt.Sprintf("  • %s\n", line))
		}
	}
	for _, e := range env.Errors {
		sb.WriteString(fmt.Sprintf("\n✗ %s (%s): %s\n", e.ItemID, e.ItemType, e.Message))
	}

	p.printBox("REGENERATED ITEMS", sb.String())
}

// PrintEnrichment outputs the weak items and the questions asked about them
func (p *Printer) PrintEnrichment(result *types.EnrichmentResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	if result.Summary != "" {
		sb.WriteString(result.Summary)
		sb.WriteString("\n\n")
	}

	sb.WriteString(fmt.Sprintf("Items to enrich (%d):\n", len(result.ItemsToEnrich)))
	for _, item := range result.ItemsToEnrich {
		sb.WriteString(fmt.Sprintf("  • %s (%s): %s\n", item.ItemID, item.ItemType, item.WeaknessReason))
	}

	if len(result.Questions) > 0 {
		sb.WriteString(fmt.Sprintf("\nQuestions (%d):\n", len(result.Questions)))
		for _, q := range result.Questions {
			sb.WriteString(fmt.Sprintf("  %s [%s %s] %s\n", q.ID, q.ItemType, q.ItemID, q.Question))
		}
	}

	p.printBox("ENRICHMENT ANALYSIS", sb.String())
}

// PrintKeywords outputs what the job asks for and the numbered suggestions
func (p *Printer) PrintKeywords(kw *types.JobKeywords, suggestions []types.Suggestion) {
	if kw == nil {
		return
	}

	var sb strings.Builder
	if len(kw.RequiredSkills) > 0 {
		sb.WriteString("Required:  " + strings.Join(kw.RequiredSkills, ", ") + "\n")
	}
	if len(kw.PreferredSkills) > 0 {
		sb.WriteString("Preferred: " + strings.Join(kw.PreferredSkills, ", ") + "\n")
	}
	if kw.ExperienceLevel != "" {
		sb.WriteString("Level:     " + kw.ExperienceLevel + "\n")
	}
	if len(suggestions) > 0 {
		sb.WriteString("\n")
		for _, s := range suggestions {
			sb.WriteString(fmt.Sprintf("%2d. %s\n", s.LineNumber, s.Suggestion))
		}
	}

	p.printBox("JOB KEYWORDS", sb.String())
}
