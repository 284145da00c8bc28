package sitemap

import "errors"

// Sentinel errors
var (
	// ErrEmptyIndex indicates a sitemap index with no child sitemaps
	ErrEmptyIndex = errors.New("sitemap index has no child sitemaps")

	// ErrUnsupportedRoot indicates an unrecognized sitemap root element
	ErrUnsupportedRoot = errors.New("unsupported sitemap root element")

	// ErrParseFailed indicates the sitemap XML could not be parsed
	ErrParseFailed = errors.New("sitemap parse failed")
)
