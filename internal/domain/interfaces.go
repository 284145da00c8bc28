package domain

import (
	"context"
	"time"
)

// Fetcher defines the interface for HTTP fetching.
type Fetcher interface {
	// Get fetches raw bytes from a URL, retrying transient failures.
	Get(ctx context.Context, url string) (*Response, error)
	// FetchDocument fetches a text document from a URL. It returns
	// ErrNotFound for HTTP 404 and for content that fails validation,
	// and a hard error after exhausting retries.
	FetchDocument(ctx context.Context, url string) (string, error)
	// Close releases resources.
	Close() error
}

//go:generate mockgen -source=interfaces.go -destination=mocks/interfaces_mock.go -package=mocks

// Cache defines the interface for response caching.
type Cache interface {
	// Get retrieves a value from cache.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value in cache with TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Has checks if a key exists in cache.
	Has(ctx context.Context, key string) bool
	// Delete removes a key from cache.
	Delete(ctx context.Context, key string) error
	// Close releases cache resources.
	Close() error
}
