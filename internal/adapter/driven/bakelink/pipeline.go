// Package bakelink implements the BakeLink backend client: an authenticated
// request pipeline and the resource services built on top of it.
package bakelink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/ericfisherdev/bakelink/internal/domain/model"
	"github.com/ericfisherdev/bakelink/internal/domain/port/driven"
)

// Response is a backend response as received: status, headers and the raw body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// StatusError is returned for every non-2xx response. Response is the
// response exactly as the transport produced it.
type StatusError struct {
	Method   string
	Path     string
	Response *Response
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Response.StatusCode, http.StatusText(e.Response.StatusCode))
}

// IsTransportFailure reports whether err is a failure where no response was
// received (connection refused, DNS, TLS, CORS-style rejections).
func IsTransportFailure(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// RequestOption adjusts a single outbound request.
type RequestOption func(*requestConfig)

type requestConfig struct {
	header   http.Header
	query    url.Values
	skipAuth bool
}

// WithHeader sets a request header, overriding pipeline defaults.
func WithHeader(key, value string) RequestOption {
	return func(c *requestConfig) {
		c.header.Set(key, value)
	}
}

// WithQuery appends query parameters to the request URL.
func WithQuery(values url.Values) RequestOption {
	return func(c *requestConfig) {
		for k, vs := range values {
			for _, v := range vs {
				c.query.Add(k, v)
			}
		}
	}
}

// WithoutAuth sends the request without the bearer header even when a
// session is active. Used by the credential-issuing call.
func WithoutAuth() RequestOption {
	return func(c *requestConfig) {
		c.skipAuth = true
	}
}

// Pipeline performs outbound calls against the backend base URL. It reads
// the current token from its TokenSource on every call and reports failed
// calls through its Notifier without altering the error returned to the caller.
type Pipeline struct {
	httpClient *http.Client
	baseURL    string
	tokens     driven.TokenSource
	notifier   driven.Notifier
	logger     *slog.Logger

	// alertShowing is set while the unreachable-backend notice is up and
	// cleared by the next 2xx response.
	alertShowing atomic.Bool
}

// NewPipeline creates a Pipeline. baseURL must be an absolute http(s) URL and
// may carry a path prefix. A nil notifier discards notifications; a nil logger
// falls back to slog.Default().
func NewPipeline(httpClient *http.Client, baseURL string, tokens driven.TokenSource, notifier driven.Notifier, logger *slog.Logger) (*Pipeline, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be an absolute http or https URL", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if notifier == nil {
		notifier = discardNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(u.String(), "/"),
		tokens:     tokens,
		notifier:   notifier,
		logger:     logger,
	}, nil
}

// BaseURL returns the normalized base URL requests are resolved against.
func (p *Pipeline) BaseURL() string {
	return p.baseURL
}

// Get issues a GET request.
func (p *Pipeline) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return p.do(ctx, http.MethodGet, path, nil, opts)
}

// Post issues a POST request. A nil body is sent as an empty JSON object.
func (p *Pipeline) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return p.do(ctx, http.MethodPost, path, body, opts)
}

// Put issues a PUT request. A nil body is sent as an empty JSON object.
func (p *Pipeline) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return p.do(ctx, http.MethodPut, path, body, opts)
}

// Delete issues a DELETE request. A nil body is sent as an empty JSON object.
func (p *Pipeline) Delete(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return p.do(ctx, http.MethodDelete, path, body, opts)
}

func (p *Pipeline) do(ctx context.Context, method, path string, body any, opts []RequestOption) (*Response, error) {
	cfg := requestConfig{header: make(http.Header), query: make(url.Values)}
	for _, opt := range opts {
		opt(&cfg)
	}

	var (
		reader      io.Reader
		contentType string
	)
	if method != http.MethodGet {
		var err error
		reader, contentType, err = encodeBody(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, p.resolve(path, cfg.query), reader)
	if err != nil {
		return nil, fmt.Errorf("building %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, vs := range cfg.header {
		req.Header[k] = vs
	}
	if !cfg.skipAuth && p.tokens != nil {
		if token := p.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		// A cancelled or expired caller context is not a backend outage.
		if ctx.Err() == nil {
			p.reportUnreachable(ctx, method, path, err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s %s response: %w", method, path, err)
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		p.alertShowing.Store(false)
		return out, nil
	}

	p.reportStatus(ctx, method, path, out)
	return nil, &StatusError{Method: method, Path: path, Response: out}
}

// reportStatus raises the notification for a failed response. It only reads resp.
func (p *Pipeline) reportStatus(ctx context.Context, method, path string, resp *Response) {
	n, ok := Classify(resp.StatusCode, ParseBody(resp.Header.Get("Content-Type"), resp.Body))
	if !ok {
		p.logger.Debug("backend error", "method", method, "path", path, "status", resp.StatusCode)
		return
	}
	p.logger.Debug("backend error notified",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"severity", n.Severity,
	)
	p.notifier.Notify(ctx, n)
}

// reportUnreachable shows the maintenance notice once per outage. The flag is
// armed in the same step that decides to show the notice, so a second failure
// during the same outage is always suppressed.
func (p *Pipeline) reportUnreachable(ctx context.Context, method, path string, err error) {
	if !p.alertShowing.CompareAndSwap(false, true) {
		p.logger.Debug("backend unreachable, notice already showing", "method", method, "path", path, "error", err)
		return
	}
	p.logger.Warn("backend unreachable", "method", method, "path", path, "error", err)
	p.notifier.Notify(ctx, UnreachableNotification())
}

// resolve joins path onto the base URL and appends query.
func (p *Pipeline) resolve(path string, query url.Values) string {
	u := p.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + query.Encode()
	}
	return u
}

// encodeBody forwards raw bodies verbatim and JSON-encodes everything else.
func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return strings.NewReader("{}"), "application/json", nil
	case []byte:
		return bytes.NewReader(b), "application/json", nil
	case io.Reader:
		return b, "", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, model.Notification) {}
