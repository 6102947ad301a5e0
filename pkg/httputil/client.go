package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/apiscout/pkg/cache"
	"github.com/matzehuels/apiscout/pkg/observability"
)

const (
	// DefaultTimeout bounds every request made by a Client.
	DefaultTimeout = 10 * time.Second

	// DefaultRetryDelay is the first backoff delay when Attempts > 1.
	DefaultRetryDelay = time.Second

	maxBodySize = 32 << 20

	responseNamespace = "registry"
)

// Options configures [NewClient]. The zero value is a usable single-try,
// uncached client with [DefaultTimeout].
type Options struct {
	HTTPClient *http.Client      // Injected transport; nil builds one with Timeout
	Timeout    time.Duration     // Ignored when HTTPClient is set
	Headers    map[string]string // Sent with every request
	Cache      cache.Cache       // nil disables response caching
	CacheTTL   time.Duration     // 0 means cached responses never expire
	Attempts   int               // Total tries per request; values below 1 mean 1
	RetryDelay time.Duration     // Defaults to DefaultRetryDelay
}

// Client is the shared HTTP session used for registry and endpoint requests.
// It applies default headers, classifies statuses, and optionally caches
// successful response bodies.
//
// A Client is safe for concurrent use.
type Client struct {
	http       *http.Client
	noRedirect *http.Client
	cache      cache.Cache
	caching    bool
	ttl        time.Duration
	headers    map[string]string
	attempts   int
	delay      time.Duration
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	nr := *hc
	nr.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	c := &Client{
		http:       hc,
		noRedirect: &nr,
		cache:      opts.Cache,
		caching:    opts.Cache != nil,
		ttl:        opts.CacheTTL,
		headers:    opts.Headers,
		attempts:   max(opts.Attempts, 1),
		delay:      opts.RetryDelay,
	}
	if c.cache == nil {
		c.cache = cache.NewNullCache()
	}
	if c.delay <= 0 {
		c.delay = DefaultRetryDelay
	}
	return c
}

// Fetch performs a GET and returns the body of a 2xx response.
// Unless refresh is set, a cached body is returned when available; fresh
// bodies are written back to the cache.
func (c *Client) Fetch(ctx context.Context, url string, refresh bool) ([]byte, error) {
	key := cache.Key(responseNamespace, url)
	if c.caching && !refresh {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			observability.Cache().OnCacheHit(ctx, responseNamespace)
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, responseNamespace)
	}

	var body []byte
	err := Retry(ctx, c.attempts, c.delay, func() error {
		b, err := c.get(ctx, url)
		body = b
		return err
	})
	if err != nil {
		return nil, err
	}

	if c.caching {
		if err := c.cache.Set(ctx, key, body, c.ttl); err == nil {
			observability.Cache().OnCacheSet(ctx, responseNamespace, len(body))
		}
	}
	return body, nil
}

// GetJSON fetches url like [Client.Fetch] and decodes the body into v.
func (c *Client) GetJSON(ctx context.Context, url string, refresh bool, v any) error {
	body, err := c.Fetch(ctx, url, refresh)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// Location performs a GET without following redirects and returns the
// response's Location header ("" if absent). Statuses of 400 and above are
// errors; 2xx and 3xx are accepted. Responses are never cached.
func (c *Client) Location(ctx context.Context, url string) (string, error) {
	var location string
	err := Retry(ctx, c.attempts, c.delay, func() error {
		resp, err := c.do(ctx, c.noRedirect, url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))

		if resp.StatusCode >= 400 {
			return classify(url, resp)
		}
		location = resp.Header.Get("Location")
		return nil
	})
	return location, err
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, c.http, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classify(url, resp)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}

func (c *Client) do(ctx context.Context, hc *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, &RetryableError{Err: fmt.Errorf("%w: %w", ErrNetwork, err)}
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}

// classify turns a rejected response into a StatusError. Rate limiting and
// server errors are marked retryable, keeping any Retry-After hint.
func classify(url string, resp *http.Response) error {
	code := resp.StatusCode
	err := &StatusError{URL: url, StatusCode: code}
	if code == http.StatusTooManyRequests || code >= 500 {
		return &RetryableError{Err: err, After: retryAfter(resp.Header)}
	}
	return err
}
