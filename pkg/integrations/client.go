package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/tkoester/pinset/pkg/cache"
	pinerrors "github.com/tkoester/pinset/pkg/errors"
	"github.com/tkoester/pinset/pkg/observability"
)

// Client provides shared HTTP functionality for all registry API clients.
// It handles caching, retry logic, and common request headers.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	namespace string
	ttl       time.Duration
	headers   map[string]string
}

// NewClient creates a Client backed by the given cache.
// The namespace prefixes all cache keys (e.g. "pypi"); ttl controls how long
// responses stay cached. Pass nil for headers if no default headers are needed.
func NewClient(backend cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return &Client{
		http:      NewHTTPClient(),
		cache:     backend,
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
	}
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	fullKey := cache.Key(c.namespace, key)
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, fullKey); ok {
			observability.Cache().OnCacheHit(ctx, c.namespace)
			return json.Unmarshal(data, v)
		}
		observability.Cache().OnCacheMiss(ctx, c.namespace)
	}
	if err := cache.RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		_ = c.cache.Set(ctx, fullKey, data, c.ttl)
		observability.Cache().OnCacheSet(ctx, c.namespace, len(data))
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// It uses the client's default headers.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	body, err := c.doRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}

// Post performs an HTTP POST with a JSON body and decodes the response into v.
func (c *Client) Post(ctx context.Context, url string, payload, v any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	body, err := c.doRequest(ctx, http.MethodPost, url, data)
	if err != nil {
		return err
	}
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}

func (c *Client) doRequest(ctx context.Context, method, url string, payload []byte) (io.ReadCloser, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	observability.HTTP().OnRequest(ctx, method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, method, req.URL.Host, req.URL.Path, err)
		return nil, cache.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	observability.HTTP().OnResponse(ctx, method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(resp *http.Response) error {
	switch code := resp.StatusCode; {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return cache.Retryable(&pinerrors.RateLimitedError{RetryAfter: retryAfter})
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
