package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/apikit/auth"
	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/retry"
)

// Client executes requests against one remote service with consistent auth,
// classification, and retry behavior. Concurrent calls are safe; config and
// auth swaps go through UpdateConfig/UpdateAuth.
type Client struct {
	mu         sync.RWMutex
	config     Config
	httpClient *http.Client

	// healthy reflects the outcome of the last attempt, success or failure.
	healthy atomic.Bool

	log *logger.Logger

	// sleep overrides the backoff wait in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a client from the given configuration.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:     cfg,
		httpClient: newHTTPClient(),
		log:        logger.WithComponent(cfg.Name),
	}
	c.healthy.Store(true)
	return c, nil
}

// newHTTPClient builds the transport. The per-attempt timeout is enforced
// through the request context, not http.Client.Timeout, so per-call
// overrides work.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: http.DefaultTransport.(*http.Transport).Clone(),
	}
}

// Name returns the configured service name.
func (c *Client) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.Name
}

// Config returns a snapshot of the current configuration.
func (c *Client) Config() Config {
	cfg, _, _ := c.snapshot()
	return cfg
}

// UpdateAuth swaps the authentication strategy in place.
func (c *Client) UpdateAuth(s auth.Strategy) {
	if s == nil {
		s = auth.NewNone()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.Auth = s
}

// UpdateConfig replaces the configuration and re-initializes the transport.
func (c *Client) UpdateConfig(cfg Config) error {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.config = cfg
	c.httpClient.CloseIdleConnections()
	c.httpClient = newHTTPClient()
	c.log = logger.WithComponent(cfg.Name)
	return nil
}

// Close releases idle transport connections.
func (c *Client) Close() {
	_, httpClient, _ := c.snapshot()
	httpClient.CloseIdleConnections()
}

// Do executes one logical request: auth injection, execution, failure
// classification, and retries with exponential backoff. Retries apply only
// when no response was received or the status is >=500 or 429 (408 when
// configured); other 4xx responses surface immediately. The wait before
// retry n is exactly RetryDelay * 2^(n-1), without jitter or cap.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	cfg, httpClient, log := c.snapshot()

	// A reader body is drained once up front so every attempt resends the
	// same payload; re-wrapping an exhausted reader would retry with an
	// empty body.
	if r, ok := req.Body.(io.Reader); ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, NewRequestError(cfg.Name, fmt.Errorf("read request body: %w", err))
		}
		req.Body = data
	}

	retries := cfg.Retries
	if req.Retries != nil && *req.Retries >= 0 {
		retries = *req.Retries
	}

	requestID := uuid.NewString()
	operation := req.Method + " " + req.Path

	rcfg := retry.Config{
		Attempts:    retries + 1,
		Delay:       cfg.RetryDelay,
		ShouldRetry: func(err error) bool { return transient(err, cfg.RetryOn408) },
		OnRetry: func(attempt int, err error, delay time.Duration) {
			log.Warn("retrying request", logger.Fields(
				logger.FieldRequestID, requestID,
				logger.FieldOperation, operation,
				logger.FieldAttempt, attempt,
				"delay_ms", delay.Milliseconds(),
				logger.FieldError, err.Error(),
			))
		},
		Wait: c.sleep,
	}

	return retry.Do(ctx, rcfg, func() (*Response, error) {
		return c.attempt(ctx, cfg, httpClient, req)
	})
}

// attempt executes a single attempt and records its outcome in the health
// flag. The flag is written after every attempt, so the final state reflects
// the last attempt.
func (c *Client) attempt(ctx context.Context, cfg Config, httpClient *http.Client, req Request) (*Response, error) {
	timeout := cfg.Timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := c.buildRequest(attemptCtx, cfg, req)
	if err != nil {
		c.healthy.Store(false)
		return nil, err
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		c.healthy.Store(false)
		return nil, NewNetworkError(cfg.Name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.healthy.Store(false)
		return nil, NewNetworkError(cfg.Name, fmt.Errorf("read response body: %w", err))
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
	}

	if classErr := Classify(cfg.Name, resp.StatusCode, body); classErr != nil {
		c.healthy.Store(false)
		return result, classErr
	}

	c.healthy.Store(true)
	return result, nil
}

// buildRequest constructs the transport request: URL resolution, body
// encoding, header merge, and auth injection. Any failure here is a
// request-preparation error and is never retried.
func (c *Client) buildRequest(ctx context.Context, cfg Config, req Request) (*http.Request, error) {
	target := strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.TrimLeft(req.Path, "/")

	query := req.Query

	var body io.Reader
	if req.Body != nil {
		if req.Method == http.MethodGet {
			// GET bodies travel as query parameters.
			extra, err := queryFromBody(req.Body)
			if err != nil {
				return nil, NewRequestError(cfg.Name, err)
			}
			merged := make(map[string]string, len(query)+len(extra))
			for k, v := range query {
				merged[k] = v
			}
			for k, v := range extra {
				merged[k] = v
			}
			query = merged
		} else {
			encoded, err := encodeBody(req.Body)
			if err != nil {
				return nil, NewRequestError(cfg.Name, fmt.Errorf("encode body: %w", err))
			}
			body = encoded
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, NewRequestError(cfg.Name, fmt.Errorf("create request: %w", err))
	}

	if len(query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	for k, v := range cfg.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if err := cfg.Auth.Apply(httpReq); err != nil {
		return nil, NewRequestError(cfg.Name, err)
	}

	return httpReq, nil
}

// transient reports whether a classified failure is worth retrying:
// no response received, server errors, and rate limiting. Preparation
// failures and other client errors are not transient.
func transient(err error, retryOn408 bool) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindNetwork:
		return true
	case KindRequest:
		return false
	}
	if e.Status >= 500 || e.Status == 429 {
		return true
	}
	return retryOn408 && e.Status == 408
}

// encodeBody converts a body value into an io.Reader. []byte and string
// wrap directly; anything else is JSON-encoded. Reader bodies never reach
// here: Do buffers them so retries resend the full payload.
func encodeBody(body any) (io.Reader, error) {
	switch v := body.(type) {
	case []byte:
		return bytes.NewReader(v), nil
	case string:
		return strings.NewReader(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}
}

// queryFromBody flattens a GET body into query parameters.
func queryFromBody(body any) (map[string]string, error) {
	switch v := body.(type) {
	case map[string]string:
		return v, nil
	case url.Values:
		out := make(map[string]string, len(v))
		for k := range v {
			out[k] = v.Get(k)
		}
		return out, nil
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, val := range v {
			out[k] = fmt.Sprint(val)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("GET body must be a string map, got %T", body)
	}
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}

// snapshot returns the config together with the transport and logger it was
// installed with, under one lock acquisition, so an in-flight Do never mixes
// fields from before and after an UpdateConfig.
func (c *Client) snapshot() (Config, *http.Client, *logger.Logger) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config, c.httpClient, c.log
}
