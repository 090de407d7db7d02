// Package ingestion validates and cleans job descriptions submitted for tailoring.
package ingestion

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	runOfSpaces     = regexp.MustCompile(`\s+`)
	excessiveBlanks = regexp.MustCompile(`\n\n\n+`)
	looksLikeHTML   = regexp.MustCompile(`(?i)<\s*(p|div|br|li|ul|ol|h[1-6]|span|strong|em|b|i|a|body|html)\b`)
)

// blockTags end a line when a description is flattened to text
const blockTags = "p, div, li, h1, h2, h3, h4, h5, h6, tr, ul, ol"

// CleanDescription returns the plain text of a job description. HTML input
// is flattened to text first. Headings and bullets survive as lines.
func CleanDescription(text string) string {
	if looksLikeHTML.MatchString(text) {
		if flattened, err := htmlToText(text); err == nil {
			text = flattened
		}
	}
	return CleanText(text)
}

func htmlToText(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("- ")
	})
	doc.Find(blockTags).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return doc.Text(), nil
}

// CleanText normalizes whitespace while keeping line structure
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, cleanLine(line))
	}

	result := excessiveBlanks.ReplaceAllString(strings.Join(cleaned, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return ""
	}

	// Markdown headings lose their indentation
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	indent := len(line) - len(trimmed)
	if isBulletLine(trimmed) {
		return strings.Repeat(" ", indent) + normalizeBullet(trimmed)
	}
	return strings.Repeat(" ", indent) + runOfSpaces.ReplaceAllString(trimmed, " ")
}

func isBulletLine(trimmed string) bool {
	for _, marker := range []string{"- ", "* ", "• ", "· "} {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return false
}

// normalizeBullet rewrites unicode bullets to "- " and collapses inner spacing
func normalizeBullet(trimmed string) string {
	for _, marker := range []string{"• ", "· "} {
		if strings.HasPrefix(trimmed, marker) {
			trimmed = "- " + strings.TrimPrefix(trimmed, marker)
		}
	}
	marker, rest := trimmed[:2], strings.TrimSpace(trimmed[2:])
	return marker + runOfSpaces.ReplaceAllString(rest, " ")
}
