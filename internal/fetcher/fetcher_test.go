package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quantmind-br/docsync-go/internal/domain"
	"github.com/quantmind-br/docsync-go/internal/domain/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// TestDefaultClientOptions tests default client options
func TestDefaultClientOptions(t *testing.T) {
	opts := DefaultClientOptions()

	assert.Equal(t, 30*time.Second, opts.Timeout)
	assert.Equal(t, 3, opts.MaxRetries)
	assert.Equal(t, 2*time.Second, opts.RetryDelay)
	assert.True(t, opts.EnableCache)
	assert.Equal(t, 24*time.Hour, opts.CacheTTL)
	assert.Equal(t, DefaultUserAgent, opts.UserAgent)
}

// TestNewClient tests creating a new client
func TestNewClient(t *testing.T) {
	tests := []struct {
		name  string
		opts  ClientOptions
		check func(t *testing.T, c *Client)
	}{
		{
			name: "with default options",
			opts: DefaultClientOptions(),
			check: func(t *testing.T, c *Client) {
				assert.NotNil(t, c.tlsClient)
				assert.NotNil(t, c.retrier)
			},
		},
		{
			name: "with zero values applies defaults",
			opts: ClientOptions{},
			check: func(t *testing.T, c *Client) {
				assert.Equal(t, 3, c.maxAttempts)
				assert.Equal(t, 2*time.Second, c.baseDelay)
				assert.Equal(t, 30*time.Second, c.maxDelay)
			},
		},
		{
			name: "with custom user agent",
			opts: ClientOptions{UserAgent: "TestAgent/1.0"},
			check: func(t *testing.T, c *Client) {
				assert.Equal(t, "TestAgent/1.0", c.userAgent)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.opts)
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, client)
			}
			client.Close()
		})
	}
}

// TestClient_Get tests fetching raw content
func TestClient_Get(t *testing.T) {
	t.Run("successful fetch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("test content"))
		}))
		defer server.Close()

		client, err := NewClient(ClientOptions{EnableCache: false})
		require.NoError(t, err)
		defer client.Close()

		ctx := context.Background()
		resp, err := client.Get(ctx, server.URL)
		assert.NoError(t, err)
		assert.NotNil(t, resp)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, []byte("test content"), resp.Body)
		assert.False(t, resp.FromCache)
	})

	t.Run("not found error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client, err := NewClient(ClientOptions{EnableCache: false})
		require.NoError(t, err)
		defer client.Close()

		ctx := context.Background()
		resp, err := client.Get(ctx, server.URL)
		assert.Error(t, err)
		assert.Nil(t, resp)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("eventually"))
		}))
		defer server.Close()

		client, err := NewClient(ClientOptions{
			EnableCache: false,
			MaxRetries:  3,
			RetryDelay:  10 * time.Millisecond,
			MaxDelay:    50 * time.Millisecond,
		})
		require.NoError(t, err)
		defer client.Close()

		resp, err := client.Get(context.Background(), server.URL)
		assert.NoError(t, err)
		assert.Equal(t, []byte("eventually"), resp.Body)
		assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(3))
	})

	t.Run("cached response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("test content"))
		}))
		defer server.Close()

		cache := &mockCache{data: []byte("cached content")}

		client, err := NewClient(ClientOptions{
			EnableCache: true,
			Cache:       cache,
		})
		require.NoError(t, err)
		defer client.Close()

		ctx := context.Background()
		resp, err := client.Get(ctx, server.URL)
		assert.NoError(t, err)
		assert.NotNil(t, resp)
		assert.Equal(t, []byte("cached content"), resp.Body)
		assert.True(t, resp.FromCache)
	})

	t.Run("cache save failure does not fail the fetch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("fresh content"))
		}))
		defer server.Close()

		ctrl := gomock.NewController(t)
		cache := mocks.NewMockCache(ctrl)
		cache.EXPECT().Get(gomock.Any(), server.URL).Return(nil, domain.ErrCacheMiss)
		cache.EXPECT().Set(gomock.Any(), server.URL, []byte("fresh content"), time.Hour).Return(assert.AnError)

		client, err := NewClient(ClientOptions{
			EnableCache: true,
			CacheTTL:    time.Hour,
			Cache:       cache,
		})
		require.NoError(t, err)
		defer client.Close()

		resp, err := client.Get(context.Background(), server.URL)
		assert.NoError(t, err)
		assert.Equal(t, []byte("fresh content"), resp.Body)
		assert.False(t, resp.FromCache)
	})
}

const validDoc = `# Getting Started

Some introductory text that is definitely long enough to pass validation.

## Install

- step one
- step two

` + "```bash\nmake install\n```\n"

// TestClient_FetchDocument tests document fetching semantics
func TestClient_FetchDocument(t *testing.T) {
	newTestClient := func(t *testing.T) *Client {
		client, err := NewClient(ClientOptions{
			EnableCache: false,
			MaxRetries:  3,
			RetryDelay:  10 * time.Millisecond,
			MaxDelay:    50 * time.Millisecond,
		})
		require.NoError(t, err)
		t.Cleanup(func() { client.Close() })
		return client
	}

	t.Run("valid document", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(validDoc))
		}))
		defer server.Close()

		content, err := newTestClient(t).FetchDocument(context.Background(), server.URL)
		assert.NoError(t, err)
		assert.Equal(t, validDoc, content)
	})

	t.Run("404 maps to not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := newTestClient(t).FetchDocument(context.Background(), server.URL)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("html page maps to not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<!DOCTYPE html><html><body>soft 404</body></html>"))
		}))
		defer server.Close()

		_, err := newTestClient(t).FetchDocument(context.Background(), server.URL)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("thin content maps to not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("nope"))
		}))
		defer server.Close()

		_, err := newTestClient(t).FetchDocument(context.Background(), server.URL)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("429 waits Retry-After then succeeds", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(validDoc))
		}))
		defer server.Close()

		start := time.Now()
		content, err := newTestClient(t).FetchDocument(context.Background(), server.URL)
		assert.NoError(t, err)
		assert.Equal(t, validDoc, content)
		assert.GreaterOrEqual(t, time.Since(start), time.Second)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("persistent 429 exhausts attempts", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		_, err := newTestClient(t).FetchDocument(context.Background(), server.URL)
		assert.ErrorIs(t, err, domain.ErrRateLimited)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("server errors exhaust attempts", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := newTestClient(t).FetchDocument(context.Background(), server.URL)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("context cancellation aborts wait", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "30")
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		_, err := newTestClient(t).FetchDocument(ctx, server.URL)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

// TestShouldRetryStatus tests status code retry logic
func TestShouldRetryStatus(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		expected   bool
	}{
		{"429 Too Many Requests", 429, true},
		{"502 Bad Gateway", 502, true},
		{"503 Service Unavailable", 503, true},
		{"504 Gateway Timeout", 504, true},
		{"520 Cloudflare", 520, true},
		{"530 Cloudflare", 530, true},
		{"400 Bad Request", 400, false},
		{"404 Not Found", 404, false},
		{"500 Internal Server Error", 500, false},
		{"200 OK", 200, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ShouldRetryStatus(tt.statusCode)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestParseRetryAfter tests parsing retry-after header
func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected time.Duration
	}{
		{"seconds value", "120", 120 * time.Second},
		{"empty string", "", 0},
		{"zero value", "0", 0},
		{"garbage", "soon", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseRetryAfter(tt.header)
			assert.Equal(t, tt.expected, result)
		})
	}

	t.Run("http date", func(t *testing.T) {
		when := time.Now().Add(90 * time.Second).UTC().Format(http.TimeFormat)
		result := ParseRetryAfter(when)
		assert.Greater(t, result, 80*time.Second)
		assert.LessOrEqual(t, result, 90*time.Second)
	})
}

// TestRetrier_Retry tests retry logic
func TestRetrier_Retry(t *testing.T) {
	t.Run("succeeds on first attempt", func(t *testing.T) {
		r := NewRetrier(DefaultRetrierOptions())
		ctx := context.Background()

		attempts := 0
		err := r.Retry(ctx, func() error {
			attempts++
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("retries on retryable error", func(t *testing.T) {
		r := NewRetrier(RetrierOptions{
			MaxRetries:      3,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
		})
		ctx := context.Background()

		attempts := 0
		err := r.Retry(ctx, func() error {
			attempts++
			if attempts < 2 {
				return &domain.RetryableError{
					Err: domain.NewFetchError("", 503, http.ErrHandlerTimeout),
				}
			}
			return nil
		})

		assert.NoError(t, err)
		assert.GreaterOrEqual(t, attempts, 2)
	})

	t.Run("permanent error stops immediately", func(t *testing.T) {
		r := NewRetrier(DefaultRetrierOptions())
		ctx := context.Background()

		attempts := 0
		err := r.Retry(ctx, func() error {
			attempts++
			return domain.NewFetchError("", 404, http.ErrMissingFile)
		})

		assert.Error(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("fails after max retries", func(t *testing.T) {
		r := NewRetrier(RetrierOptions{
			MaxRetries:      2,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2.0,
		})
		ctx := context.Background()

		err := r.Retry(ctx, func() error {
			return &domain.RetryableError{
				Err: domain.NewFetchError("", 503, http.ErrHandlerTimeout),
			}
		})

		assert.Error(t, err)
	})
}

// TestIsHTMLDocument tests HTML detection
func TestIsHTMLDocument(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected bool
	}{
		{"doctype", "<!DOCTYPE html><html></html>", true},
		{"doctype lowercase", "<!doctype html>", true},
		{"html tag", "<html lang=\"en\">", true},
		{"leading whitespace", "\n\n  <HTML>", true},
		{"markdown heading", "# Title", false},
		{"html mentioned mid-document", "# About <html> tags", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsHTMLDocument(tt.content))
		})
	}
}

// TestValidMarkdown tests markdown validation
func TestValidMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected bool
	}{
		{"valid document", validDoc, true},
		{"too short", "# Hi", false},
		{"no markdown structure", "just a plain paragraph of text with no markdown structure at all in it whatsoever", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidMarkdown(tt.content))
		})
	}
}

// Mock implementations for testing

type mockCache struct {
	data []byte
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.data != nil {
		return m.data, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.data = value
	return nil
}

func (m *mockCache) Has(ctx context.Context, key string) bool {
	return m.data != nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.data = nil
	return nil
}

func (m *mockCache) Close() error {
	return nil
}
