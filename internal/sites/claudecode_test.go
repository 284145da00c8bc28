package sites

import (
	"strings"
	"testing"

	"github.com/quantmind-br/docsync-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaudeCodeFilter(t *testing.T) {
	entries := []domain.SitemapEntry{
		{URL: "https://code.claude.com/docs/en/overview"},
		{URL: "https://code.claude.com/docs/ja/overview"},
		{URL: "https://code.claude.com/changelog"},
	}

	kept := claudeCodeFilter(entries)
	require.Len(t, kept, 1)
	assert.Equal(t, "https://code.claude.com/docs/en/overview", kept[0].URL)
}

func TestClaudeCodeRelPath(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://code.claude.com/docs/en/overview", "overview.md"},
		{"https://code.claude.com/docs/en/hooks-guide", "hooks-guide.md"},
		{"https://code.claude.com/docs/en/sub/nested/page", "page.md"},
	}

	for _, tt := range tests {
		got, err := claudeCodeRelPath(tt.url)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := claudeCodeRelPath("")
	assert.ErrorIs(t, err, domain.ErrInvalidURL)
}

func TestClaudeCodeRewriteLinks(t *testing.T) {
	content := "Read [Hooks](https://code.claude.com/docs/en/hooks) first.\n" +
		"Also [MCP](https://code.claude.com/docs/en/mcp).\n" +
		"Keep [external](https://example.com/x) and [platform](https://platform.claude.com/docs/en/intro).\n"

	out := claudeCodeRewriteLinks(content)

	assert.Contains(t, out, "[Hooks](hooks.md)")
	assert.Contains(t, out, "[MCP](mcp.md)")
	assert.Contains(t, out, "[external](https://example.com/x)")
	assert.Contains(t, out, "[platform](https://platform.claude.com/docs/en/intro)")
}

func TestClaudeCodeIndex(t *testing.T) {
	docs := []domain.DocInfo{
		{
			URL:         "https://code.claude.com/docs/en/overview",
			Title:       "Overview",
			Description: "What Claude Code is.",
			LocalPath:   "overview.md",
		},
		{
			URL:       "https://code.claude.com/docs/en/hooks",
			Title:     "Hooks",
			LocalPath: "hooks.md",
		},
		{
			URL:       "https://code.claude.com/docs/en/some-new-page",
			LocalPath: "some-new-page.md",
		},
	}

	index := claudeCodeIndex(docs)

	assert.Contains(t, index, "# Claude Code Documentation")
	assert.Contains(t, index, "## Getting Started")
	assert.Contains(t, index, "- [Overview](overview.md) - What Claude Code is.")
	assert.Contains(t, index, "## Core Features")
	assert.Contains(t, index, "- [Hooks](hooks.md)")
	// Unmapped files land in Other with a title-cased fallback.
	assert.Contains(t, index, "## Other")
	assert.Contains(t, index, "- [Some New Page](some-new-page.md)")
	assert.Less(t, strings.Index(index, "## Getting Started"), strings.Index(index, "## Core Features"))
	assert.Less(t, strings.Index(index, "## Core Features"), strings.Index(index, "## Other"))
}

func TestClaudeCodePolicyValidates(t *testing.T) {
	p := ClaudeCode()
	assert.NoError(t, p.Validate())
	assert.Equal(t, []string{"overview.md"}, p.RequiredFiles)
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"platform", "claude-code"}, Names())

	p, ok := Lookup("platform")
	require.True(t, ok)
	assert.Equal(t, "platform", p.Name)

	_, ok = Lookup("nope")
	assert.False(t, ok)
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Getting Started", titleCase("getting-started"))
	assert.Equal(t, "Api", titleCase("api"))
	assert.Equal(t, "Tool Use", titleCase("tool use"))
}
