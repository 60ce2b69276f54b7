package bakelink

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
)

// loggingTransport logs each outbound request with method, path, status, and duration.
type loggingTransport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

// RoundTrip delegates to the wrapped transport and logs the outcome.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.logger.Debug("http request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"duration", time.Since(start).Round(time.Microsecond),
			"error", err,
		)
		return nil, err
	}

	t.logger.Debug("http request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"cached", resp.Header.Get(httpcache.XFromCache) != "",
		"duration", time.Since(start).Round(time.Microsecond),
	)
	return resp, nil
}

// NewHTTPClient creates the http.Client used by the pipeline with the following transport stack:
//  1. request logging (sees cache hits as well as network calls)
//  2. httpcache (ETag-based conditional request caching), only when cache is true
//  3. base, or http.DefaultTransport when base is nil
//
// A zero timeout leaves the transport defaults in charge.
func NewHTTPClient(base http.RoundTripper, cache bool, timeout time.Duration, logger *slog.Logger) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}

	transport := base
	if cache {
		cached := httpcache.NewTransport(httpcache.NewMemoryCache())
		cached.Transport = base
		transport = cached
	}

	return &http.Client{
		Transport: &loggingTransport{next: transport, logger: logger},
		Timeout:   timeout,
	}
}
