package fetcher

// DefaultUserAgent identifies the mirror to the documentation servers.
const DefaultUserAgent = "Mozilla/5.0 (compatible; DocsDownloader/3.0)"

// AcceptMarkdown is the Accept header used for document fetches.
const AcceptMarkdown = "text/plain, text/markdown, */*"

// buildHeaders returns the request headers for a fetch.
func buildHeaders(userAgent, accept string) map[string]string {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if accept == "" {
		accept = "*/*"
	}
	return map[string]string{
		"User-Agent":    userAgent,
		"Accept":        accept,
		"Cache-Control": "no-cache",
	}
}
