// Package fetcher downloads playlist content over HTTP with retries,
// exponential backoff, per-host circuit breaking and a shared outbound rate
// limit.
package fetcher

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/alorle/m3u-updater/circuitbreaker"
	"github.com/alorle/m3u-updater/logging"
)

const (
	defaultTimeout = 30 * time.Second

	// previewLimit bounds how much of an HTTP error body is kept for
	// diagnostics.
	previewLimit = 400
)

// defaultHeaders mimic a regular browser; some playlist hosts reject
// requests without them.
var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko)",
	"Accept":          "*/*",
	"Accept-Language": "es-ES,es;q=0.9",
}

// Config holds the tunables for a Fetcher. Zero values get sensible
// defaults in New.
type Config struct {
	Timeout  time.Duration
	Retry    RetryPolicy
	Limiter  *rate.Limiter
	Breakers *circuitbreaker.Registry
	Logger   *logging.Logger
}

// Fetcher performs resilient single-URL downloads.
type Fetcher struct {
	client   *http.Client
	retry    RetryPolicy
	limiter  *rate.Limiter
	breakers *circuitbreaker.Registry
	logger   *logging.Logger
}

// New creates a Fetcher with the given configuration.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.New(logging.INFO, "")
	}
	return &Fetcher{
		client:   &http.Client{Timeout: cfg.Timeout},
		retry:    cfg.Retry,
		limiter:  cfg.Limiter,
		breakers: cfg.Breakers,
		logger:   cfg.Logger,
	}
}

// Fetch downloads rawURL and returns its decoded text. On failure it returns
// a *Error carrying the failure kind, the attempt count and, for HTTP
// errors, a bounded preview of the response body. Attempts on the same URL
// are strictly sequential with exponential backoff between them.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	host := hostOf(rawURL)

	var breaker *circuitbreaker.Breaker
	if f.breakers != nil && host != "" {
		breaker = f.breakers.For(host)
		if err := breaker.Allow(); err != nil {
			return "", &Error{Kind: FailureOther, URL: rawURL, Attempts: 0, Err: err}
		}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", &Error{Kind: FailureOther, URL: rawURL, Err: err}
		}
	}

	f.logger.Debug("fetching", map[string]interface{}{"url": rawURL})

	var text string
	attempts, err := f.retry.Do(ctx, retriable, func() error {
		body, attemptErr := f.attempt(ctx, rawURL)
		if attemptErr != nil {
			f.logger.Debug("attempt failed", map[string]interface{}{
				"url":  rawURL,
				"kind": attemptErr.Kind.String(),
			})
			return attemptErr
		}
		text = body
		return nil
	})

	if err != nil {
		if breaker != nil && tripsBreaker(err) {
			breaker.RecordFailure()
		}
		var fe *Error
		if errors.As(err, &fe) {
			fe.Attempts = attempts
			return "", fe
		}
		return "", &Error{Kind: FailureOther, URL: rawURL, Attempts: attempts, Err: err}
	}

	if breaker != nil {
		breaker.RecordSuccess()
	}
	f.logger.Debug("fetched", map[string]interface{}{
		"url":      rawURL,
		"bytes":    len(text),
		"attempts": attempts,
	})
	return text, nil
}

// attempt performs one HTTP GET and classifies any failure.
func (f *Fetcher) attempt(ctx context.Context, rawURL string) (string, *Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &Error{Kind: FailureOther, URL: rawURL, Err: err}
	}
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &Error{Kind: transportKind(err), URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: transportKind(err), URL: rawURL, Err: err}
	}

	if resp.StatusCode >= 400 {
		kind := FailureHTTPClient
		if resp.StatusCode >= 500 {
			kind = FailureHTTPServer
		}
		return "", &Error{
			Kind:    kind,
			Status:  resp.StatusCode,
			URL:     rawURL,
			Preview: preview(body),
		}
	}

	if len(body) == 0 {
		return "", &Error{Kind: FailureEmptyBody, Status: resp.StatusCode, URL: rawURL}
	}

	return decodeBody(body, resp.Header.Get("Content-Type")), nil
}

// tripsBreaker reports whether a failure should count against the host's
// circuit breaker. Terminal client errors like 404 say nothing about the
// host's health, so they do not trip it.
func tripsBreaker(err error) bool {
	var fe *Error
	if !errors.As(err, &fe) {
		return false
	}
	switch fe.Kind {
	case FailureTransport, FailureHTTPServer, FailureTimeout:
		return true
	default:
		return false
	}
}

func retriable(err error) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Retriable()
	}
	return false
}

// transportKind separates timeouts from other connection-level failures.
func transportKind(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return FailureTimeout
	}
	return FailureTransport
}

// preview returns the first previewLimit bytes of body with newlines
// escaped, for one-line diagnostics.
func preview(body []byte) string {
	if len(body) > previewLimit {
		body = body[:previewLimit]
	}
	s := strings.ReplaceAll(string(body), "\n", `\n`)
	return strings.ReplaceAll(s, "\r", "")
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
