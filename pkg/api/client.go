// Package api is the single point of contact with the automation backend.
// Every call is normalized to a Result envelope; callers never see a raw
// HTTP error or a non-2xx response leak through as a Go error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/postflow-dev/postflow/pkg/observability"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "https://linkedin-backend-cfx2.onrender.com/api"

	defaultTimeout = 30 * time.Second
)

// Result is the normalized envelope every backend call resolves to.
// Exactly one of Data and Error is meaningful, keyed on Success.
type Result struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
	StatusCode int             `json:"-"`
}

// OK builds a success Result from an already-marshaled payload.
func OK(data json.RawMessage) Result {
	return Result{Success: true, Data: data}
}

// Fail builds a failure Result with a user-facing message.
func Fail(msg string) Result {
	if msg == "" {
		msg = "Request failed"
	}
	return Result{Success: false, Error: msg}
}

// Decode unmarshals the payload of a success Result into v.
func (r Result) Decode(v any) error {
	if !r.Success {
		return fmt.Errorf("cannot decode failed result: %s", r.Error)
	}
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// TokenSource supplies the bearer token attached to outgoing requests.
// An empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed-token TokenSource, mainly for tests.
type StaticToken string

// Token returns the static token value.
func (t StaticToken) Token() string { return string(t) }

// Client wraps an http.Client with bearer auth and envelope normalization.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokens      TokenSource
	postLimiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the request timeout on the underlying http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithTokenSource sets the bearer token source.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithPostRateLimit caps outgoing LinkedIn post calls. LinkedIn throttles
// aggressively; the backend enforces its own limits but a client-side cap
// keeps a misconfigured scheduler from hammering it.
func WithPostRateLimit(perMinute float64, burst int) Option {
	return func(c *Client) {
		c.postLimiter = rate.NewLimiter(rate.Limit(perMinute/60.0), burst)
	}
}

// NewClient creates a backend API client.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetTokenSource replaces the bearer token source.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// Request performs one backend call and normalizes the outcome.
// Headers from extraHeaders are applied before Authorization, so callers
// cannot override the auth header.
func (c *Client) Request(ctx context.Context, method, endpoint string, body any, extraHeaders map[string]string) Result {
	start := time.Now()
	res := c.do(ctx, method, endpoint, body, extraHeaders)
	observability.RecordAPIRequest(method, endpoint, strconv.Itoa(res.StatusCode), time.Since(start))
	return res
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, extraHeaders map[string]string) Result {
	ctx, span := observability.StartSpan(ctx, "api.request",
		attribute.String("http.method", method),
		attribute.String("http.endpoint", endpoint),
	)
	defer span.End()

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return Fail(fmt.Sprintf("failed to encode request: %v", err))
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return Fail(err.Error())
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}
	// Authorization is set last: caller-supplied headers must not be able
	// to replace the session token.
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Fail(err.Error())
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var payload json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		payload = nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		res := Fail(errorMessage(payload))
		res.StatusCode = resp.StatusCode
		return res
	}

	res := OK(payload)
	res.StatusCode = resp.StatusCode
	return res
}

// errorMessage pulls the backend's {"error": "..."} field out of a failure
// body, falling back to the generic message.
func errorMessage(payload json.RawMessage) string {
	var body struct {
		Error string `json:"error"`
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &body); err == nil && body.Error != "" {
			return body.Error
		}
	}
	return "Request failed"
}
