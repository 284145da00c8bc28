package domain

import "net/http"

// SitemapEntry is a single URL discovered from a sitemap. LastMod is the
// site-supplied change token and is treated as an opaque string, never
// parsed as a timestamp.
type SitemapEntry struct {
	URL     string
	LastMod string
}

// DocInfo describes one successfully mirrored document. The orchestrator
// collects these for index generation.
type DocInfo struct {
	URL         string
	Title       string
	Description string
	LocalPath   string // relative to the snapshot root
}

// Response represents an HTTP response from the fetcher.
type Response struct {
	StatusCode  int
	Body        []byte
	Headers     http.Header
	ContentType string
	URL         string
	FromCache   bool
}
