package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText_PreserveMarkdownHeadings(t *testing.T) {
	result := CleanText("  # Title\n## Subtitle\nContent here")

	assert.Equal(t, "# Title\n## Subtitle\nContent here", result)
}

func TestCleanText_Bullets(t *testing.T) {
	result := CleanText("- Item   1\n* Item 2\n• Item 3\n  · Nested")

	assert.Equal(t, "- Item 1\n* Item 2\n- Item 3\n  - Nested", result)
}

func TestCleanText_NormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "Line with multiple spaces", CleanText("Line    with \t multiple    spaces   "))
}

func TestCleanText_RemoveExcessiveBlankLines(t *testing.T) {
	assert.Equal(t, "Line 1\n\nLine 2", CleanText("Line 1\n\n\n\n\nLine 2"))
}

func TestCleanText_NormalizeLineEndings(t *testing.T) {
	assert.Equal(t, "Line 1\nLine 2\nLine 3\nLine 4", CleanText("Line 1\r\nLine 2\rLine 3\nLine 4"))
}

func TestCleanText_Empty(t *testing.T) {
	assert.Empty(t, CleanText(""))
	assert.Empty(t, CleanText("   \n  \n  "))
}

func TestCleanText_SpecialCharacters(t *testing.T) {
	input := "Test with émojis 🚀 and spéciàl chàracters"
	assert.Equal(t, input, CleanText(input))
}

func TestCleanDescription_PlainTextPassesThrough(t *testing.T) {
	input := "Senior Go engineer.\n\n- Build services\n- Own on-call"
	assert.Equal(t, input, CleanDescription(input))
}

func TestCleanDescription_HTML(t *testing.T) {
	input := `<html><head><style>p { color: red; }</style></head><body>
<h2>About the role</h2>
<p>We are hiring a <strong>Senior Go Engineer</strong>.<br>Remote friendly.</p>
<ul><li>Design APIs</li><li>Mentor   engineers</li></ul>
<script>track();</script>
</body></html>`

	result := CleanDescription(input)

	assert.Contains(t, result, "About the role")
	assert.Contains(t, result, "We are hiring a Senior Go Engineer.")
	assert.Contains(t, result, "Remote friendly.")
	assert.Contains(t, result, "- Design APIs")
	assert.Contains(t, result, "- Mentor engineers")
	assert.NotContains(t, result, "<")
	assert.NotContains(t, result, "track()")
	assert.NotContains(t, result, "color: red")
}

func TestCleanDescription_AngleBracketsInText(t *testing.T) {
	input := "Latency < 10ms and throughput > 1k rps"
	assert.Equal(t, input, CleanDescription(input))
}
