package fetcher

import "strings"

// minContentLength is the minimum trimmed length for a valid document.
const minContentLength = 50

// markdownIndicators are structural hints that content is markdown.
var markdownIndicators = []string{
	"# ", "## ", "### ", "```", "- ", "* ", "1. ", "[", "**", "> ",
}

// IsHTMLDocument reports whether the content is an HTML page rather than
// a text document. Doc endpoints serve HTML error pages with status 200,
// so this is checked before accepting a response body.
func IsHTMLDocument(content string) bool {
	head := strings.ToLower(strings.TrimSpace(content))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

// ValidMarkdown reports whether the content looks like a real markdown
// document: long enough and carrying at least three markdown indicator
// hits within the first fifty lines.
func ValidMarkdown(content string) bool {
	if len(strings.TrimSpace(content)) < minContentLength {
		return false
	}

	lines := strings.Split(content, "\n")
	if len(lines) > 50 {
		lines = lines[:50]
	}

	hits := 0
	for _, line := range lines {
		for _, indicator := range markdownIndicators {
			if strings.Contains(line, indicator) {
				hits++
			}
		}
	}

	return hits >= 3
}
