package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taggraph/pkg/cache"
	"github.com/matzehuels/taggraph/pkg/errors"
	"github.com/matzehuels/taggraph/pkg/httputil"
	"github.com/matzehuels/taggraph/pkg/observability"
)

// DefaultTimeout bounds a single HTTP attempt.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 64 << 20

// Config configures a Client.
type Config struct {
	Endpoint string
	// APIKey is sent as the ApiKey header when non-empty.
	APIKey string

	// Timeout per attempt. Zero means DefaultTimeout.
	Timeout time.Duration
	// Retries is the number of extra attempts after a retryable failure.
	Retries    int
	RetryDelay time.Duration

	// Cache stores successful responses. Nil disables caching.
	Cache    cache.Cache
	Keyer    cache.Keyer
	CacheTTL time.Duration
	// Refresh skips cache reads but still writes fresh responses.
	Refresh bool

	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Client posts GraphQL requests to one endpoint.
type Client struct {
	endpoint   string
	host, path string
	apiKey     string
	http       *http.Client
	retries    int
	retryDelay time.Duration
	cache      cache.Cache
	keyer      cache.Keyer
	ttl        time.Duration
	refresh    bool
	logger     *log.Logger
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config) (*Client, error) {
	if err := errors.ValidateEndpoint(cfg.Endpoint); err != nil {
		return nil, err
	}
	u, _ := url.Parse(cfg.Endpoint)

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	c := &Client{
		endpoint:   cfg.Endpoint,
		host:       u.Host,
		path:       u.Path,
		apiKey:     cfg.APIKey,
		http:       hc,
		retries:    max(cfg.Retries, 0),
		retryDelay: cfg.RetryDelay,
		cache:      cfg.Cache,
		keyer:      cfg.Keyer,
		ttl:        cfg.CacheTTL,
		refresh:    cfg.Refresh,
		logger:     cfg.Logger,
	}
	if c.retryDelay <= 0 {
		c.retryDelay = httputil.DefaultRetryDelay
	}
	if c.keyer == nil {
		c.keyer = cache.NewDefaultKeyer()
	}
	if c.ttl <= 0 {
		c.ttl = cache.TTLQuery
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c, nil
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Do executes req and decodes the response data into out.
// out may be nil when the caller only cares about success.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	_, err := c.DoWithCacheInfo(ctx, req, out)
	return err
}

// DoWithCacheInfo is Do that also reports whether the response was served
// from the cache.
func (c *Client) DoWithCacheInfo(ctx context.Context, req Request, out any) (bool, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return false, fmt.Errorf("encode request: %w", err)
	}

	var key string
	if c.cache != nil {
		key = c.keyer.QueryKey(c.endpoint, req.Query, req.Variables)
		if !c.refresh && c.fromCache(ctx, key, out) {
			return true, nil
		}
	}

	var raw []byte
	err = httputil.Retry(ctx, c.retries+1, c.retryDelay, func() error {
		var err error
		raw, err = c.post(ctx, body)
		return err
	})
	if err != nil {
		return false, err
	}

	data, err := decodeEnvelope(raw)
	if err != nil {
		return false, err
	}
	if err := decodeData(data, out); err != nil {
		return false, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
			c.logger.Warn("cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "gql", len(raw))
		}
	}
	return false, nil
}

// fromCache decodes a cached response into out. Unreadable entries count
// as misses.
func (c *Client) fromCache(ctx context.Context, key string, out any) bool {
	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", "error", err)
	}
	if ok {
		data, err := decodeEnvelope(raw)
		if err == nil {
			err = decodeData(data, out)
		}
		if err == nil {
			observability.Cache().OnCacheHit(ctx, "gql")
			c.logger.Debug("graphql cache hit", "key", key)
			return true
		}
		c.logger.Debug("discarding unreadable cache entry", "key", key, "error", err)
	}
	observability.Cache().OnCacheMiss(ctx, "gql")
	return false
}

func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("ApiKey", c.apiKey)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodPost, c.host, c.path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodPost, c.host, c.path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, http.MethodPost, c.host, c.path, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, httputil.Retryable(fmt.Errorf("%w: read body: %v", ErrNetwork, err))
	}
	c.logger.Debug("graphql response", "status", resp.StatusCode, "bytes", len(raw), "elapsed", time.Since(start))

	if err := checkStatus(resp.StatusCode, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// checkStatus maps non-2xx statuses to errors. Servers that reject a query
// with 4xx and a GraphQL errors array surface as *ResponseError.
func checkStatus(code int, raw []byte) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code >= 500, code == http.StatusTooManyRequests:
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	}
	var env envelope
	if json.Unmarshal(raw, &env) == nil && len(env.Errors) > 0 {
		return &ResponseError{Errors: env.Errors}
	}
	return fmt.Errorf("%w: status %d", ErrNetwork, code)
}

// decodeEnvelope validates the envelope and returns the data member.
func decodeEnvelope(raw []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(env.Errors) > 0 {
		return nil, &ResponseError{Errors: env.Errors}
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedResponse)
	}
	return env.Data, nil
}

func decodeData(data json.RawMessage, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode data: %v", ErrMalformedResponse, err)
	}
	return nil
}
