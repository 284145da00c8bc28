package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/quantmind-br/docsync-go/internal/domain"
	"github.com/quantmind-br/docsync-go/internal/utils"
)

// defaultRetryAfter is used for HTTP 429 responses without a Retry-After
// header. Rate limit waits do not consume retry attempts.
const defaultRetryAfter = 60 * time.Second

// Client is an HTTP client using tls-client
type Client struct {
	tlsClient    tls_client.HttpClient
	userAgent    string
	retrier      *Retrier
	cache        domain.Cache
	cacheEnabled bool
	cacheTTL     time.Duration
	maxAttempts  int
	baseDelay    time.Duration
	maxDelay     time.Duration
	logger       *utils.Logger
}

// ClientOptions contains options for creating a Client
type ClientOptions struct {
	Timeout     time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
	MaxDelay    time.Duration
	EnableCache bool
	CacheTTL    time.Duration
	Cache       domain.Cache
	UserAgent   string
	ProxyURL    string
	Logger      *utils.Logger
}

// DefaultClientOptions returns default client options
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout:     30 * time.Second,
		MaxRetries:  3,
		RetryDelay:  2 * time.Second,
		MaxDelay:    30 * time.Second,
		EnableCache: true,
		CacheTTL:    24 * time.Hour,
		UserAgent:   DefaultUserAgent,
	}
}

// NewClient creates a new HTTP client
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewDefaultLogger()
	}

	tlsOpts := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(int(opts.Timeout.Seconds())),
		tls_client.WithClientProfile(profiles.Chrome_131),
		tls_client.WithRandomTLSExtensionOrder(),
		tls_client.WithNotFollowRedirects(),
	}

	if opts.ProxyURL != "" {
		tlsOpts = append(tlsOpts, tls_client.WithProxyUrl(opts.ProxyURL))
	}

	tlsClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), tlsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tls client: %w", err)
	}

	retrier := NewRetrier(RetrierOptions{
		MaxRetries:      opts.MaxRetries,
		InitialInterval: opts.RetryDelay,
		MaxInterval:     opts.MaxDelay,
		Multiplier:      2.0,
	})

	return &Client{
		tlsClient:    tlsClient,
		userAgent:    opts.UserAgent,
		retrier:      retrier,
		cache:        opts.Cache,
		cacheEnabled: opts.EnableCache,
		cacheTTL:     opts.CacheTTL,
		maxAttempts:  opts.MaxRetries,
		baseDelay:    opts.RetryDelay,
		maxDelay:     opts.MaxDelay,
		logger:       opts.Logger.WithComponent("fetcher"),
	}, nil
}

// Get fetches raw content from a URL, retrying transient failures with
// exponential backoff. Responses are cached when a cache is configured.
func (c *Client) Get(ctx context.Context, url string) (*domain.Response, error) {
	if c.cacheEnabled && c.cache != nil {
		cached, err := c.getFromCache(ctx, url)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	var resp *domain.Response
	err := c.retrier.Retry(ctx, func() error {
		var err error
		resp, err = c.doRequest(ctx, url, buildHeaders(c.userAgent, ""))
		return err
	})

	if err != nil {
		return nil, err
	}

	if c.cacheEnabled && c.cache != nil && resp != nil {
		_ = c.saveToCache(ctx, url, resp)
	}

	return resp, nil
}

// FetchDocument fetches a text document from a URL. HTTP 404 and content
// that fails validation map to domain.ErrNotFound. HTTP 429 consumes an
// attempt but waits out the Retry-After interval instead of growing the
// backoff; other failures use jittered exponential backoff until the
// attempts are exhausted.
func (c *Client) FetchDocument(ctx context.Context, url string) (string, error) {
	headers := buildHeaders(c.userAgent, AcceptMarkdown)

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; {
		resp, err := c.request(ctx, url, headers)
		if err != nil {
			lastErr = err
			attempt++
			if attempt >= c.maxAttempts {
				break
			}
			if err := c.sleepBackoff(ctx, attempt); err != nil {
				return "", err
			}
			continue
		}

		switch {
		case resp.StatusCode == 404:
			return "", domain.ErrNotFound

		case resp.StatusCode == 429:
			lastErr = domain.NewFetchError(url, resp.StatusCode, domain.ErrRateLimited)
			attempt++
			if attempt >= c.maxAttempts {
				break
			}
			wait := ParseRetryAfter(resp.Headers.Get("Retry-After"))
			if wait <= 0 {
				wait = defaultRetryAfter
			}
			c.logger.Warn().
				Str("url", url).
				Dur("wait", wait).
				Msg("rate limited")
			if err := sleepCtx(ctx, wait); err != nil {
				return "", err
			}
			continue

		case resp.StatusCode >= 400:
			lastErr = domain.NewFetchError(url, resp.StatusCode, fmt.Errorf("HTTP %d", resp.StatusCode))
			attempt++
			if attempt >= c.maxAttempts {
				break
			}
			if err := c.sleepBackoff(ctx, attempt); err != nil {
				return "", err
			}
			continue

		default:
			content := string(resp.Body)
			if IsHTMLDocument(content) || !ValidMarkdown(content) {
				return "", domain.ErrNotFound
			}
			return content, nil
		}

		break
	}

	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return "", fmt.Errorf("fetch %s after %d attempts: %w", url, c.maxAttempts, lastErr)
}

// doRequest performs one request and converts error statuses to errors.
func (c *Client) doRequest(ctx context.Context, targetURL string, headers map[string]string) (*domain.Response, error) {
	resp, err := c.request(ctx, targetURL, headers)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		if ShouldRetryStatus(resp.StatusCode) {
			return nil, &domain.RetryableError{
				Err:        domain.NewFetchError(targetURL, resp.StatusCode, fmt.Errorf("HTTP %d", resp.StatusCode)),
				RetryAfter: int(ParseRetryAfter(resp.Headers.Get("Retry-After")).Seconds()),
			}
		}
		return nil, domain.NewFetchError(targetURL, resp.StatusCode, fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	return resp, nil
}

// request performs the HTTP request and returns the response regardless
// of status code. Only transport failures are errors.
func (c *Client) request(ctx context.Context, targetURL string, headers map[string]string) (*domain.Response, error) {
	req, err := fhttp.NewRequest(fhttp.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req = req.WithContext(ctx)

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.tlsClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{
			URL: targetURL,
			Err: fmt.Errorf("request failed: %w", err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	httpHeaders := make(http.Header)
	for k, v := range resp.Header {
		httpHeaders[k] = v
	}

	return &domain.Response{
		StatusCode:  resp.StatusCode,
		Body:        body,
		Headers:     httpHeaders,
		ContentType: resp.Header.Get("Content-Type"),
		URL:         targetURL,
		FromCache:   false,
	}, nil
}

// sleepBackoff waits out the delay for the given attempt number with
// jitter in [0.5, 1.0) of the doubled base delay.
func (c *Client) sleepBackoff(ctx context.Context, attempt int) error {
	delay := c.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= c.maxDelay {
			delay = c.maxDelay
			break
		}
	}
	jittered := time.Duration(float64(delay) * (0.5 + 0.5*rand.Float64()))
	return sleepCtx(ctx, jittered)
}

// sleepCtx sleeps for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Close releases client resources
func (c *Client) Close() error {
	// TLS client doesn't have a Close method, but we keep this for interface compliance
	return nil
}

// getFromCache retrieves a response from cache
func (c *Client) getFromCache(ctx context.Context, url string) (*domain.Response, error) {
	if c.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	data, err := c.cache.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	return &domain.Response{
		StatusCode: 200,
		Body:       data,
		URL:        url,
		FromCache:  true,
	}, nil
}

// saveToCache saves a response to cache
func (c *Client) saveToCache(ctx context.Context, url string, resp *domain.Response) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Set(ctx, url, resp.Body, c.cacheTTL)
}

// Ensure Client implements domain.Fetcher
var _ domain.Fetcher = (*Client)(nil)
