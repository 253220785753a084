package fetcher

import (
	"fmt"
	"net/http"
)

// FailureKind classifies a failed fetch attempt. The retry loop and the
// circuit breaker both dispatch on the kind instead of inspecting raw error
// values.
type FailureKind int

const (
	// FailureTransport is a connection-level error (DNS, refused, reset).
	FailureTransport FailureKind = iota
	// FailureHTTPClient is a 4xx response.
	FailureHTTPClient
	// FailureHTTPServer is a 5xx response.
	FailureHTTPServer
	// FailureTimeout is an attempt that exceeded its deadline.
	FailureTimeout
	// FailureEmptyBody is a 2xx response with a zero-length body.
	FailureEmptyBody
	// FailureOther is anything else; never retried.
	FailureOther
)

func (k FailureKind) String() string {
	switch k {
	case FailureTransport:
		return "transport"
	case FailureHTTPClient:
		return "http-client"
	case FailureHTTPServer:
		return "http-server"
	case FailureTimeout:
		return "timeout"
	case FailureEmptyBody:
		return "empty-body"
	default:
		return "other"
	}
}

// Error is a classified fetch failure. Attempts is filled in once the retry
// loop gives up; Preview holds a bounded excerpt of an HTTP error body.
type Error struct {
	Kind     FailureKind
	Status   int
	URL      string
	Attempts int
	Preview  string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Attempts > 1 {
		msg = fmt.Sprintf("%s after %d attempts", msg, e.Attempts)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Preview != "" {
		msg = fmt.Sprintf("%s -> preview: %s", msg, e.Preview)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retriable reports whether the failure is eligible for backoff-and-retry:
// server errors, too-many-requests, and connection or timeout errors. All
// other client errors, empty bodies and unclassified failures are terminal.
func (e *Error) Retriable() bool {
	switch e.Kind {
	case FailureTransport, FailureHTTPServer, FailureTimeout:
		return true
	case FailureHTTPClient:
		return e.Status == http.StatusTooManyRequests
	default:
		return false
	}
}
