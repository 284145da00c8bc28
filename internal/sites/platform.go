package sites

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/quantmind-br/docsync-go/internal/domain"
)

const platformBase = "https://platform.claude.com"

// platformLinkPattern matches absolute platform doc links in markdown.
var platformLinkPattern = regexp.MustCompile(`\[([^\]]+)\]\((https://platform\.claude\.com/docs/[^)]+)\)`)

// Platform returns the policy for the platform documentation mirror:
// nested paths under the English docs tree, links rewritten relative to
// each file, and an index grouped by top-level section.
func Platform() domain.Policy {
	return domain.Policy{
		Name:           "platform",
		SitemapURL:     platformBase + "/sitemap.xml",
		OutputDir:      "platform",
		CleanEmptyDirs: true,
		FilterEntries:  platformFilter,
		URLToRelPath:   platformRelPath,
		PostprocessContent: func(content, destPath string) string {
			return platformRewriteLinks(content, destPath)
		},
		GenerateIndex: platformIndex,
	}
}

// platformFilter keeps English doc pages, excluding the docs root.
func platformFilter(entries []domain.SitemapEntry) []domain.SitemapEntry {
	var kept []domain.SitemapEntry
	for _, e := range entries {
		if strings.Contains(e.URL, "/docs/en/") && e.URL != platformBase+"/docs/en" {
			kept = append(kept, e)
		}
	}
	return kept
}

// platformRelPath maps a page URL to its nested path in the mirror:
// everything after /docs/en/, with a markdown extension.
func platformRelPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrInvalidURL, rawURL, err)
	}
	p := strings.Replace(u.Path, "/docs/en/", "", 1)
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return "", fmt.Errorf("%w: no document path in %s", domain.ErrInvalidURL, rawURL)
	}
	if !strings.HasSuffix(p, ".md") {
		p += ".md"
	}
	return p, nil
}

// platformRewriteLinks rewrites absolute platform doc links to paths
// relative to the file being written.
func platformRewriteLinks(content, destPath string) string {
	return platformLinkPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := platformLinkPattern.FindStringSubmatch(match)
		text, target := groups[1], groups[2]

		targetRel, err := platformRelPath(target)
		if err != nil {
			return match
		}
		rel, err := relativeTo(destPath, targetRel)
		if err != nil {
			return match
		}
		return fmt.Sprintf("[%s](%s)", text, rel)
	})
}

// relativeTo computes the slash-separated path from the directory of
// from to to, both relative to the mirror root.
func relativeTo(from, to string) (string, error) {
	fromDir := path.Dir(from)
	if fromDir == "." {
		return to, nil
	}

	fromParts := strings.Split(fromDir, "/")
	toParts := strings.Split(to, "/")

	common := 0
	for common < len(fromParts) && common < len(toParts)-1 && fromParts[common] == toParts[common] {
		common++
	}

	var parts []string
	for i := common; i < len(fromParts); i++ {
		parts = append(parts, "..")
	}
	parts = append(parts, toParts[common:]...)
	return path.Join(parts...), nil
}

// platformIndex groups documents by the first path segment after
// /docs/en/, in a fixed section order.
func platformIndex(docs []domain.DocInfo) string {
	var b strings.Builder
	b.WriteString("# Claude Platform Documentation\n")
	b.WriteString("\n")
	b.WriteString("> Mirror of the Anthropic Claude Platform API/SDK documentation, covering the Messages API, Agent SDK, tool use and the full reference.\n")
	b.WriteString("\n")
	b.WriteString("This is a mirror of the [Claude Platform documentation](https://platform.claude.com/docs).\n")
	b.WriteString("\n")
	b.WriteString("**Source**: [sitemap.xml](https://platform.claude.com/sitemap.xml)\n")
	b.WriteString("\n")
	b.WriteString("---\n")
	b.WriteString("\n")

	categories := make(map[string][]indexEntry)
	for _, d := range docs {
		docPath := strings.Replace(d.URL, platformBase+"/docs/en/", "", 1)
		parts := strings.Split(docPath, "/")

		category := "Getting Started"
		if len(parts) >= 2 {
			category = titleCase(parts[0])
		}

		categories[category] = append(categories[category], indexEntry{
			title:       entryTitle(d, parts[len(parts)-1]),
			relPath:     d.LocalPath,
			description: d.Description,
		})
	}

	renderCategories(&b, categories, []string{
		"Getting Started", "About Claude", "Build With Claude",
		"Agents And Tools", "Agent Sdk", "Test And Evaluate",
		"Api", "Resources", "Release Notes",
	})

	return strings.TrimRight(b.String(), "\n") + "\n"
}
