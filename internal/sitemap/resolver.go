package sitemap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"github.com/klauspost/compress/gzip"
	"github.com/quantmind-br/docsync-go/internal/domain"
	"github.com/quantmind-br/docsync-go/internal/utils"
)

// Getter fetches raw sitemap bytes.
type Getter interface {
	Get(ctx context.Context, url string) (*domain.Response, error)
}

// Resolver fetches sitemaps and expands sitemap indexes into a flat,
// ordered list of page entries.
type Resolver struct {
	fetcher Getter
	logger  *utils.Logger
}

// NewResolver creates a sitemap resolver.
func NewResolver(fetcher Getter, logger *utils.Logger) *Resolver {
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &Resolver{
		fetcher: fetcher,
		logger:  logger.WithComponent("sitemap"),
	}
}

// Resolve fetches the sitemap at url, recursively expanding indexes.
// Entries are returned in discovery order with duplicate URLs removed,
// first occurrence winning.
func (r *Resolver) Resolve(ctx context.Context, url string) ([]domain.SitemapEntry, error) {
	seen := make(map[string]bool)
	entries, err := r.resolve(ctx, url, seen)
	if err != nil {
		return nil, err
	}

	byURL := make(map[string]bool, len(entries))
	unique := make([]domain.SitemapEntry, 0, len(entries))
	for _, e := range entries {
		if byURL[e.URL] {
			continue
		}
		byURL[e.URL] = true
		unique = append(unique, e)
	}

	r.logger.Debug().
		Str("url", url).
		Int("entries", len(unique)).
		Msg("sitemap resolved")

	return unique, nil
}

// resolve handles one sitemap document. seen guards against index cycles.
func (r *Resolver) resolve(ctx context.Context, url string, seen map[string]bool) ([]domain.SitemapEntry, error) {
	if seen[url] {
		return nil, nil
	}
	seen[url] = true

	resp, err := r.fetcher.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap %s: %w", url, err)
	}

	data, err := maybeGunzip(url, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decompress sitemap %s: %w", url, err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParseFailed, url, err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: %s: no root element", ErrParseFailed, url)
	}

	// Tags are compared by local name so any namespace prefix works.
	switch root.Tag {
	case "sitemapindex":
		return r.resolveIndex(ctx, url, root, seen)
	case "urlset":
		return parseURLSet(root), nil
	default:
		return nil, fmt.Errorf("%w: %s: <%s>", ErrUnsupportedRoot, url, root.Tag)
	}
}

// resolveIndex expands a <sitemapindex> into its child sitemaps.
func (r *Resolver) resolveIndex(ctx context.Context, url string, root *etree.Element, seen map[string]bool) ([]domain.SitemapEntry, error) {
	var children []string
	for _, el := range root.ChildElements() {
		if el.Tag != "sitemap" {
			continue
		}
		for _, loc := range el.ChildElements() {
			if loc.Tag == "loc" {
				if child := strings.TrimSpace(loc.Text()); child != "" {
					children = append(children, child)
				}
				break
			}
		}
	}

	if len(children) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyIndex, url)
	}

	var entries []domain.SitemapEntry
	for _, child := range children {
		childEntries, err := r.resolve(ctx, child, seen)
		if err != nil {
			return nil, err
		}
		entries = append(entries, childEntries...)
	}
	return entries, nil
}

// parseURLSet extracts entries from a <urlset>.
func parseURLSet(root *etree.Element) []domain.SitemapEntry {
	var entries []domain.SitemapEntry
	for _, el := range root.ChildElements() {
		if el.Tag != "url" {
			continue
		}

		var entry domain.SitemapEntry
		for _, child := range el.ChildElements() {
			switch child.Tag {
			case "loc":
				entry.URL = strings.TrimSpace(child.Text())
			case "lastmod":
				entry.LastMod = strings.TrimSpace(child.Text())
			}
		}
		if entry.URL != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}

// maybeGunzip decompresses gzip payloads, detected by URL suffix or the
// gzip magic bytes.
func maybeGunzip(url string, data []byte) ([]byte, error) {
	gzipped := strings.HasSuffix(url, ".gz") ||
		(len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b)
	if !gzipped {
		return data, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
