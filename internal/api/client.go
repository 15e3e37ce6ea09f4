// Package api is the HTTP client for the document-management backend.
//
// Every request carries the stored bearer token and a fresh X-Request-ID.
// A 401 from any endpoint clears the token store and fires the
// unauthorized hook before the error is returned.
package api

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
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"dms-go/internal/dms"
)

// DefaultBaseURL is used when the configuration names no server.
const DefaultBaseURL = "http://localhost:8080/api"

// ClientConfig holds the transport settings of a Client.
type ClientConfig struct {
	BaseURL string

	// Timeout bounds the wait for response headers once a request has been
	// written. Zero means no limit. Bodies are bounded by the context.
	Timeout time.Duration

	// RateLimit caps requests per second; zero disables limiting.
	RateLimit float64
	Burst     int

	UserAgent string
}

// Client talks to the backend REST API.
type Client struct {
	baseURL   string
	http      *http.Client
	tokens    dms.TokenStore
	ids       dms.IDGenerator
	logger    dms.Logger
	userAgent string

	mu             sync.RWMutex
	onUnauthorized func()
}

// Option customises a Client.
type Option func(*clientOptions)

type clientOptions struct {
	transport http.RoundTripper
	logger    dms.Logger
	ids       dms.IDGenerator
	metrics   *Metrics
	tracing   bool
	hook      func()
}

// WithTransport replaces the base round-tripper (default: a clone of
// http.DefaultTransport).
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) { o.transport = rt }
}

func WithLogger(l dms.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

func WithIDGenerator(g dms.IDGenerator) Option {
	return func(o *clientOptions) { o.ids = g }
}

// WithMetrics records every request in m.
func WithMetrics(m *Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// WithTracing wraps the transport in an OpenTelemetry client span per request.
func WithTracing() Option {
	return func(o *clientOptions) { o.tracing = true }
}

// WithUnauthorizedHook registers fn to run after a 401 has cleared the token.
func WithUnauthorizedHook(fn func()) Option {
	return func(o *clientOptions) { o.hook = fn }
}

// New creates a Client for the backend at cfg.BaseURL.
func New(cfg ClientConfig, tokens dms.TokenStore, opts ...Option) (*Client, error) {
	if tokens == nil {
		return nil, errors.New("token store is required")
	}

	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", base)
	}

	o := clientOptions{logger: dms.NewNopLogger(), ids: dms.UUIDGenerator{}}
	for _, opt := range opts {
		opt(&o)
	}

	rt := o.transport
	if rt == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.ResponseHeaderTimeout = cfg.Timeout
		rt = t
	}
	if o.metrics != nil {
		rt = o.metrics.RoundTripper(rt)
	}
	if o.tracing {
		rt = otelhttp.NewTransport(rt)
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		rt = &limitedTransport{limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), burst), next: rt}
	}

	return &Client{
		baseURL:        strings.TrimRight(u.String(), "/"),
		http:           &http.Client{Transport: rt},
		tokens:         tokens,
		ids:            o.ids,
		logger:         o.logger,
		userAgent:      cfg.UserAgent,
		onUnauthorized: o.hook,
	}, nil
}

// BaseURL returns the normalised backend URL.
func (c *Client) BaseURL() string { return c.baseURL }

// OnUnauthorized replaces the hook run after a 401.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	accept      string
}

// do sends req and returns the response when its status is 2xx. The caller
// owns the response body.
func (c *Client) do(ctx context.Context, r request) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	reqID := c.ids.New()
	req.Header.Set("X-Request-ID", reqID)
	accept := r.accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	token, err := c.tokens.Load()
	if err != nil {
		return nil, fmt.Errorf("loading token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", r.method, "path", r.path, "request_id", reqID, "error", err)
		return nil, fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	c.logger.Debug("request", "method", r.method, "path", r.path, "status", resp.StatusCode,
		"request_id", reqID, "duration", time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := readAPIError(resp, reqID)
	if resp.StatusCode == http.StatusUnauthorized {
		c.unauthorized()
	}
	return nil, fmt.Errorf("%s %s: %w", r.method, r.path, apiErr)
}

func (c *Client) unauthorized() {
	if err := c.tokens.Clear(); err != nil {
		c.logger.Error("clearing token after 401", "error", err)
	}
	c.mu.RLock()
	hook := c.onUnauthorized
	c.mu.RUnlock()
	if hook != nil {
		hook()
	}
}

// readAPIError builds an APIError, preferring the message or error field
// of a JSON body over the raw text.
func readAPIError(resp *http.Response, reqID string) *dms.APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if id := resp.Header.Get("X-Request-ID"); id != "" {
		reqID = id
	}

	msg := strings.TrimSpace(string(body))
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		switch {
		case payload.Message != "":
			msg = payload.Message
		case payload.Error != "":
			msg = payload.Error
		}
	}
	return &dms.APIError{StatusCode: resp.StatusCode, Message: msg, RequestID: reqID}
}

// call sends a JSON body (when in is non-nil) and decodes a JSON answer
// into out (when out is non-nil).
func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	r := request{method: method, path: path}
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		r.body = bytes.NewReader(data)
		r.contentType = "application/json"
	}

	resp, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

func decode(resp *http.Response, out any) error {
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", resp.Request.URL.Path, err)
	}
	return nil
}

type limitedTransport struct {
	limiter *rate.Limiter
	next    http.RoundTripper
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return t.next.RoundTrip(req)
}
