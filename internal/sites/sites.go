// Package sites holds the per-site mirror policies: which sitemap to
// read, how URLs map to local files, how links are rewritten and how the
// index is generated.
package sites

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quantmind-br/docsync-go/internal/domain"
)

// titleCase capitalizes each hyphen- or space-separated word.
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// indexEntry is one line in a generated index.
type indexEntry struct {
	title       string
	relPath     string
	description string
}

// renderCategories appends category sections to the index, fixed-order
// categories first, the rest alphabetical.
func renderCategories(b *strings.Builder, categories map[string][]indexEntry, order []string) {
	rank := make(map[string]int, len(order))
	for i, c := range order {
		rank[c] = i
	}

	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, iKnown := rank[names[i]]
		rj, jKnown := rank[names[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown:
			return true
		case jKnown:
			return false
		default:
			return names[i] < names[j]
		}
	})

	for _, name := range names {
		entries := categories[name]
		if len(entries) == 0 {
			continue
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].title < entries[j].title
		})

		fmt.Fprintf(b, "## %s\n\n", name)
		for _, e := range entries {
			if e.description != "" {
				fmt.Fprintf(b, "- [%s](%s) - %s\n", e.title, e.relPath, e.description)
			} else {
				fmt.Fprintf(b, "- [%s](%s)\n", e.title, e.relPath)
			}
		}
		b.WriteString("\n")
	}
}

// entryTitle falls back to a title-cased filename when a document had no
// extractable title.
func entryTitle(d domain.DocInfo, fallback string) string {
	if d.Title != "" {
		return d.Title
	}
	return titleCase(fallback)
}

// lastSegment returns the final path segment of a URL.
func lastSegment(url string) string {
	trimmed := strings.TrimSuffix(url, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return trimmed
	}
	return trimmed[idx+1:]
}
