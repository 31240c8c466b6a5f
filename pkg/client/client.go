// Package client implements the resilient API client: bearer injection,
// response caching, retry with backoff and error normalization behind one
// request pipeline.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deividlukks/Fayol-sub007/pkg/cache"
	apierrors "github.com/deividlukks/Fayol-sub007/pkg/errors"
	"github.com/deividlukks/Fayol-sub007/pkg/retry"
	"github.com/deividlukks/Fayol-sub007/pkg/storage"
	"github.com/deividlukks/Fayol-sub007/pkg/transport"
)

// Client is the API client orchestrator. It is safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	storage storage.Adapter
	cache   *cache.Cache
	policy  *retry.Policy
	logger  *zap.Logger

	onSessionExpired func()
	onRetry          func(attempt int, err *apierrors.APIError)
	retryCondition   retry.Condition

	requests  atomic.Uint64
	cacheHits atomic.Uint64
	retries   atomic.Uint64
	failures  atomic.Uint64

	closeOnce sync.Once
	closed    atomic.Bool
}

// Stats holds client counters.
type Stats struct {
	Requests  uint64
	CacheHits uint64
	Retries   uint64
	Failures  uint64
	Cache     cache.Stats
}

// Option configures a Client.
type Option func(*Client)

// WithStorage sets the credential store. Defaults to an in-memory store.
func WithStorage(a storage.Adapter) Option {
	return func(c *Client) { c.storage = a }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient replaces the transport-built *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithResponseCache replaces the response cache.
func WithResponseCache(rc *cache.Cache) Option {
	return func(c *Client) { c.cache = rc }
}

// WithSessionExpired registers the callback fired when a request chain
// ends Unauthorized.
func WithSessionExpired(fn func()) Option {
	return func(c *Client) { c.onSessionExpired = fn }
}

// WithOnRetry registers a hook called before each retry wait.
func WithOnRetry(fn func(attempt int, err *apierrors.APIError)) Option {
	return func(c *Client) { c.onRetry = fn }
}

// WithRetryCondition overrides the retry policy's decision.
func WithRetryCondition(cond retry.Condition) Option {
	return func(c *Client) { c.retryCondition = cond }
}

// New creates a client for cfg.BaseURL.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg = cfg.withDefaults()
	if _, err := transport.JoinURL(cfg.BaseURL, "/"); err != nil {
		return nil, &ConfigError{Field: "BaseURL", Value: cfg.BaseURL, Err: err}
	}

	c := &Client{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		logger, err := newClientLogger(cfg.QuietMode)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		c.logger = logger
	}
	if c.http == nil {
		hc, err := transport.NewHTTPClient(transport.Config{
			Timeout:        cfg.Timeout,
			SOCKS5Addr:     cfg.SOCKS5Addr,
			ProxyLocal:     cfg.ProxyLocal,
			CACertPath:     cfg.CACertPath,
			TrustedDomains: cfg.TrustedHosts,
		})
		if err != nil {
			return nil, &ConfigError{Field: "transport", Err: err}
		}
		c.http = hc
	}
	if c.storage == nil {
		c.storage = storage.NewWebAdapter(storage.NewMemoryStore(), c.logger)
	}
	if c.cache == nil {
		c.cache = cache.New(cache.WithDefaultTTL(cfg.CacheTTL), cache.WithLogger(c.logger))
	}

	var policyOpts []retry.Option
	if c.retryCondition != nil {
		policyOpts = append(policyOpts, retry.WithCondition(c.retryCondition))
	}
	c.policy = retry.New(cfg.Retry, policyOpts...)

	return c, nil
}

// Start runs the cache sweeper until ctx is cancelled or Close is called.
func (c *Client) Start(ctx context.Context) {
	if !c.cfg.CacheEnabled {
		return
	}
	c.cache.StartSweeper(ctx, c.cfg.SweepInterval)
	c.logger.Debug("Cache sweeper started", zap.Duration("interval", c.cfg.SweepInterval))
}

// Close stops background work and releases idle connections.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.cache.Close()
		c.http.CloseIdleConnections()
	})
	return nil
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Storage returns the credential store.
func (c *Client) Storage() storage.Adapter {
	return c.storage
}

// Do runs the request pipeline and decodes a successful JSON body into out
// (which may be nil). Every returned error is an *errors.APIError.
func (c *Client) Do(ctx context.Context, req *Request, out any) error {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	req.Method = strings.ToUpper(req.Method)
	req.Path = normalizePath(req.Path)

	c.requests.Add(1)
	requestID := uuid.NewString()
	logger := c.logger.With(
		zap.String("request_id", requestID),
		zap.String("method", req.Method),
		zap.String("path", req.Path),
	)

	if c.closed.Load() {
		return c.fail(logger, apierrors.NewNetworkError("", ErrClosed), new(bool))
	}

	token, _ := c.storage.GetToken(ctx)

	eligible := c.cacheEligible(req)
	key := cache.Key(req.Path, req.Params)
	if eligible {
		if data, ok := c.cache.Get(key); ok {
			c.cacheHits.Add(1)
			logger.Debug("Cache hit", zap.String("key", key))
			if err := decodeInto(data, out); err != nil {
				// A value we stored ourselves no longer decodes; refetch.
				c.cache.Delete(key)
			} else {
				return nil
			}
		}
	}

	payload, err := encodeBody(req.Body)
	if err != nil {
		return c.fail(logger, apierrors.New(0, "").WithCause(err), new(bool))
	}

	notified := new(bool)
	for attempt := 1; ; attempt++ {
		res, err := c.dispatch(ctx, req, payload, token, requestID)

		var apiErr *apierrors.APIError
		switch {
		case err != nil:
			apiErr = apierrors.Normalize(apierrors.FromTransport(err))
		case res.status >= 200 && res.status < 300:
			return c.succeed(logger, req, key, eligible, res, out)
		default:
			apiErr = apierrors.Normalize(apierrors.Failure{Status: res.status, Header: res.header, Body: res.body})
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return c.fail(logger, apierrors.NewNetworkError("", ctxErr), notified)
		}
		if !c.policy.ShouldRetry(attempt, req.Method, apiErr) {
			return c.fail(logger.With(zap.Int("attempts", attempt)), apiErr, notified)
		}

		delay := c.policy.DelayFor(attempt)
		c.retries.Add(1)
		logger.Warn("Retrying request",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Int("status", apiErr.StatusCode),
			zap.Error(apiErr),
		)
		if c.onRetry != nil {
			c.onRetry(attempt, apiErr)
		}
		if err := retry.Wait(ctx, delay); err != nil {
			return c.fail(logger, apierrors.NewNetworkError("", err), notified)
		}
	}
}

func (c *Client) cacheEligible(req *Request) bool {
	if !c.cfg.CacheEnabled || !req.Cache || req.Method != http.MethodGet {
		return false
	}
	// Callers sending their own Cache-Control manage freshness themselves.
	return req.Header.Get("Cache-Control") == ""
}

func (c *Client) succeed(logger *zap.Logger, req *Request, key string, eligible bool, res *attemptResult, out any) error {
	// The server has applied a mutation once it answers 2xx, so the family
	// is dropped even when the body fails to decode.
	if req.isMutation() {
		if family := cache.Family(req.Path); family != "" {
			n := c.cache.InvalidatePattern("/" + family)
			if n > 0 {
				logger.Debug("Invalidated cached entries", zap.String("family", family), zap.Int("removed", n))
			}
		}
	}

	if err := decodeInto(res.body, out); err != nil {
		e := apierrors.New(res.status, "").WithCause(err)
		e.Details = string(res.body)
		return c.fail(logger, e, new(bool))
	}

	if eligible {
		c.cache.Set(key, res.body, req.CacheTTL)
	}
	logger.Debug("Request succeeded", zap.Int("status", res.status))
	return nil
}

// fail records a terminal failure. notified guards the session-expired
// callback so it fires at most once per request chain.
func (c *Client) fail(logger *zap.Logger, apiErr *apierrors.APIError, notified *bool) error {
	c.failures.Add(1)
	logger.Warn("Request failed",
		zap.String("code", apiErr.Code()),
		zap.Int("status", apiErr.StatusCode),
		zap.Error(apiErr),
	)
	if apiErr.Kind == apierrors.KindUnauthorized && c.onSessionExpired != nil && !*notified {
		*notified = true
		c.onSessionExpired()
	}
	return apiErr
}

func decodeInto(data []byte, out any) error {
	if out == nil || len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Get issues a GET.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, NewRequest(http.MethodGet, path, nil, opts...), out)
}

// Post issues a POST.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, NewRequest(http.MethodPost, path, body, opts...), out)
}

// Put issues a PUT.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, NewRequest(http.MethodPut, path, body, opts...), out)
}

// Patch issues a PATCH.
func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, NewRequest(http.MethodPatch, path, body, opts...), out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, NewRequest(http.MethodDelete, path, nil, opts...), out)
}

// Stats returns a snapshot of the client counters.
func (c *Client) Stats() Stats {
	return Stats{
		Requests:  c.requests.Load(),
		CacheHits: c.cacheHits.Load(),
		Retries:   c.retries.Load(),
		Failures:  c.failures.Load(),
		Cache:     c.cache.Stats(),
	}
}
