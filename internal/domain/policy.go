package domain

import (
	"errors"
	"fmt"
)

// Policy describes how one documentation site is mirrored. The function
// fields customize URL selection, path mapping, content rewriting and
// index generation per site; everything else is shared machinery.
type Policy struct {
	// Name identifies the site in the registry and in log output.
	Name string

	// SitemapURL is the root sitemap to resolve.
	SitemapURL string

	// OutputDir is the live mirror directory. Relative paths are
	// resolved against the configured output root.
	OutputDir string

	// IndexFile is the index filename inside the mirror. Defaults to
	// "index.md" when empty.
	IndexFile string

	// ManifestFile is the manifest filename inside the mirror.
	// Defaults to ".manifest.json" when empty.
	ManifestFile string

	// RequiredFiles must exist in the snapshot before commit.
	RequiredFiles []string

	// CleanEmptyDirs removes empty directories from the snapshot
	// before index generation.
	CleanEmptyDirs bool

	// FilterEntries selects which sitemap entries belong to this site.
	FilterEntries func(entries []SitemapEntry) []SitemapEntry

	// URLToRelPath maps a page URL to its path relative to the mirror
	// root.
	URLToRelPath func(url string) (string, error)

	// PostprocessContent rewrites fetched content before it is written.
	// destPath is the file's path relative to the snapshot root.
	PostprocessContent func(content, destPath string) string

	// GenerateIndex renders the index file from the synced documents.
	GenerateIndex func(docs []DocInfo) string
}

// Validate checks that the policy has everything a sync run needs.
func (p *Policy) Validate() error {
	if p.Name == "" {
		return errors.New("policy name is required")
	}
	if p.SitemapURL == "" {
		return fmt.Errorf("policy %s: sitemap URL is required", p.Name)
	}
	if p.OutputDir == "" {
		return fmt.Errorf("policy %s: output directory is required", p.Name)
	}
	if p.URLToRelPath == nil {
		return fmt.Errorf("policy %s: URL mapping is required", p.Name)
	}
	if p.GenerateIndex == nil {
		return fmt.Errorf("policy %s: index generator is required", p.Name)
	}
	return nil
}
