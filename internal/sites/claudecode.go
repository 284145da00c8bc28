package sites

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/quantmind-br/docsync-go/internal/domain"
)

const claudeCodeBase = "https://code.claude.com"

// claudeCodeLinkPattern matches absolute claude-code doc links in markdown.
var claudeCodeLinkPattern = regexp.MustCompile(`\[([^\]]+)\]\((https://code\.claude\.com/docs/[^)]+)\)`)

// claudeCodeCategories maps doc filenames to index sections. Order here
// is the section order in the index; unmapped files land in Other.
var claudeCodeCategories = []struct {
	name  string
	files []string
}{
	{"Getting Started", []string{"overview", "quickstart", "setup", "features-overview"}},
	{"Core Features", []string{"memory", "hooks", "hooks-guide", "mcp", "settings", "cli-reference", "common-workflows"}},
	{"IDE Integration", []string{"vs-code", "jetbrains", "desktop", "chrome", "devcontainer"}},
	{"CI/CD", []string{"github-actions", "gitlab-ci-cd", "headless"}},
	{"Cloud Providers", []string{"amazon-bedrock", "google-vertex-ai", "microsoft-foundry"}},
	{"Enterprise", []string{"iam", "monitoring-usage", "analytics", "costs"}},
	{"Security & Privacy", []string{"security", "data-usage", "sandboxing", "permissions"}},
	{"Advanced", []string{"subagents", "multi-claude", "checkpointing", "best-practices"}},
	{"Extensions", []string{"plugins", "discover-plugins", "sdk"}},
	{"Other", []string{"troubleshooting", "claude-code-on-the-web"}},
}

// ClaudeCode returns the policy for the claude-code documentation
// mirror: a flat file layout, links rewritten to bare filenames, and an
// index grouped by a fixed topic mapping.
func ClaudeCode() domain.Policy {
	return domain.Policy{
		Name:          "claude-code",
		SitemapURL:    claudeCodeBase + "/docs/sitemap.xml",
		OutputDir:     "claude-code",
		RequiredFiles: []string{"overview.md"},
		FilterEntries: claudeCodeFilter,
		URLToRelPath:  claudeCodeRelPath,
		PostprocessContent: func(content, destPath string) string {
			return claudeCodeRewriteLinks(content)
		},
		GenerateIndex: claudeCodeIndex,
	}
}

// claudeCodeFilter keeps English doc pages.
func claudeCodeFilter(entries []domain.SitemapEntry) []domain.SitemapEntry {
	var kept []domain.SitemapEntry
	for _, e := range entries {
		if strings.Contains(e.URL, "/docs/en/") {
			kept = append(kept, e)
		}
	}
	return kept
}

// claudeCodeRelPath maps a page URL to a flat filename.
func claudeCodeRelPath(rawURL string) (string, error) {
	name := lastSegment(rawURL)
	if name == "" {
		return "", fmt.Errorf("%w: no document name in %s", domain.ErrInvalidURL, rawURL)
	}
	if !strings.HasSuffix(name, ".md") {
		name += ".md"
	}
	return name, nil
}

// claudeCodeRewriteLinks rewrites absolute doc links to bare local
// filenames; the layout is flat so no directories are involved.
func claudeCodeRewriteLinks(content string) string {
	return claudeCodeLinkPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := claudeCodeLinkPattern.FindStringSubmatch(match)
		text, target := groups[1], groups[2]

		name := lastSegment(target)
		if !strings.HasSuffix(name, ".md") {
			name += ".md"
		}
		return fmt.Sprintf("[%s](%s)", text, name)
	})
}

// claudeCodeIndex groups documents by the fixed filename mapping.
func claudeCodeIndex(docs []domain.DocInfo) string {
	var b strings.Builder
	b.WriteString("# Claude Code Documentation\n")
	b.WriteString("\n")
	b.WriteString("> Mirror of the Claude Code CLI documentation, covering hooks, MCP, plugins, IDE integrations and the full reference.\n")
	b.WriteString("\n")
	b.WriteString("This is a mirror of the [Claude Code documentation](https://code.claude.com/docs).\n")
	b.WriteString("\n")
	b.WriteString("**Source**: [sitemap.xml](https://code.claude.com/docs/sitemap.xml)\n")
	b.WriteString("\n")
	b.WriteString("---\n")
	b.WriteString("\n")

	fileCategory := make(map[string]string)
	var order []string
	for _, c := range claudeCodeCategories {
		order = append(order, c.name)
		for _, f := range c.files {
			fileCategory[f] = c.name
		}
	}

	categories := make(map[string][]indexEntry)
	for _, d := range docs {
		name := lastSegment(d.URL)
		category, ok := fileCategory[name]
		if !ok {
			category = "Other"
		}
		categories[category] = append(categories[category], indexEntry{
			title:       entryTitle(d, name),
			relPath:     d.LocalPath,
			description: d.Description,
		})
	}

	renderCategories(&b, categories, order)

	return strings.TrimRight(b.String(), "\n") + "\n"
}
