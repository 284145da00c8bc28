package sync

import "strings"

// ExtractTitleDescription pulls a title and short description out of a
// markdown document. The title is the first level-one heading; the
// description is the first non-blank line that follows it, stopping at a
// rule or the next heading. Blockquote markers are stripped.
func ExtractTitleDescription(content string) (title, description string) {
	lines := strings.Split(content, "\n")

	titleIdx := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			title = strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
			titleIdx = i
			break
		}
	}
	if titleIdx < 0 {
		return "", ""
	}

	for i := titleIdx + 1; i < len(lines) && i <= titleIdx+4; i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "---") ||
			strings.HasPrefix(line, "# ") ||
			strings.HasPrefix(line, "## ") {
			break
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "> "))
		description = line
		break
	}

	return title, description
}
