// Package shelter is the remote data client for the shelter REST backend.
package shelter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResponseBytes = 4 << 20

// ErrTransport marks failures that happened before a response was received.
var ErrTransport = errors.New("shelter transport failure")

// AuthMode selects how a request authenticates.
type AuthMode int

const (
	// AuthNone sends no credentials.
	AuthNone AuthMode = iota
	// AuthBearer attaches the token from the configured TokenSource.
	AuthBearer
	// AuthCookie sends and stores cookies through the client's jar.
	AuthCookie
)

// Request describes one call against the backend. Path is relative to the base URL and may
// carry escaped segments.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Auth   AuthMode
}

// Response is a fully read backend response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Request    Request
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the body into dst.
func (r *Response) Decode(dst any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return fmt.Errorf("%w: empty body", ErrUnexpectedShape)
	}
	if err := json.Unmarshal(r.Body, dst); err != nil {
		return fmt.Errorf("%w: %w", ErrUnexpectedShape, err)
	}
	return nil
}

// Err returns an *APIError for non-2xx responses and nil otherwise.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	return &APIError{
		Status:  r.StatusCode,
		Message: ErrorMessage(r.Body, fmt.Sprintf("request failed with status %d", r.StatusCode)),
		Body:    r.Body,
	}
}

// ResponseInterceptor observes every received response.
type ResponseInterceptor interface {
	InterceptResponse(ctx context.Context, req Request, resp *Response)
}

// InterceptorFunc adapts a function to ResponseInterceptor.
type InterceptorFunc func(ctx context.Context, req Request, resp *Response)

func (f InterceptorFunc) InterceptResponse(ctx context.Context, req Request, resp *Response) {
	f(ctx, req, resp)
}

// TokenSource supplies the bearer credential for AuthBearer requests.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// Client issues requests against the shelter backend.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	jar     http.CookieJar
	logger  *slog.Logger

	mu           sync.RWMutex
	tokens       TokenSource
	interceptors []ResponseInterceptor
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client. Its Jar is ignored; cookies go through the
// client's own jar so only AuthCookie requests carry them.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithCookieJar replaces the default in-memory jar.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) {
		if jar != nil {
			c.jar = jar
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTokenSource sets the bearer token source.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// NewClient builds a client for baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("shelter base URL is required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse shelter base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("shelter base URL %q must be absolute", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	c := &Client{
		baseURL: parsed,
		http: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		jar: jar,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c, nil
}

// Use registers an interceptor that sees every received response.
func (c *Client) Use(interceptor ResponseInterceptor) {
	if interceptor == nil {
		return
	}
	c.mu.Lock()
	c.interceptors = append(c.interceptors, interceptor)
	c.mu.Unlock()
}

// SetTokenSource swaps the bearer token source.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Do sends the request. Non-2xx statuses are not errors; use Response.Err. Transport failures
// wrap ErrTransport and skip the interceptors.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c == nil {
		return nil, errors.New("shelter client not configured")
	}
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	req.Method = method
	target := c.resolve(req.Path, req.Query)

	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s: %w", method, req.Path, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, req.Path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	switch req.Auth {
	case AuthBearer:
		if token, ok := c.token(ctx); ok {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	case AuthCookie:
		for _, cookie := range c.jar.Cookies(target) {
			httpReq.AddCookie(cookie)
		}
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.WarnContext(ctx, "shelter request failed",
			slog.String("method", method), slog.String("path", req.Path), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, req.Path, err)
	}
	defer httpResp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s %s: %w", ErrTransport, method, req.Path, err)
	}
	if req.Auth == AuthCookie {
		if cookies := httpResp.Cookies(); len(cookies) > 0 {
			c.jar.SetCookies(target, cookies)
		}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header.Clone(),
		Body:       payload,
		Request:    req,
	}
	c.logger.DebugContext(ctx, "shelter request completed",
		slog.String("method", method), slog.String("path", req.Path), slog.Int("status", resp.StatusCode))

	c.mu.RLock()
	interceptors := append([]ResponseInterceptor(nil), c.interceptors...)
	c.mu.RUnlock()
	for _, interceptor := range interceptors {
		interceptor.InterceptResponse(ctx, req, resp)
	}
	return resp, nil
}

func (c *Client) token(ctx context.Context) (string, bool) {
	c.mu.RLock()
	ts := c.tokens
	c.mu.RUnlock()
	if ts == nil {
		return "", false
	}
	token, ok := ts.Token(ctx)
	if !ok || strings.TrimSpace(token) == "" {
		return "", false
	}
	return token, true
}

func (c *Client) resolve(path string, query url.Values) *url.URL {
	u := *c.baseURL
	joined := strings.TrimRight(u.EscapedPath(), "/") + "/" + strings.TrimLeft(path, "/")
	if unescaped, err := url.PathUnescape(joined); err == nil {
		u.Path, u.RawPath = unescaped, joined
	} else {
		u.Path, u.RawPath = joined, ""
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	} else {
		u.RawQuery = ""
	}
	return &u
}

func encodeBody(body any) (io.Reader, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return bytes.NewReader(v), nil
	case []byte:
		return bytes.NewReader(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}
}
