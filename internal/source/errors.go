package source

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
)

// FailureKind partitions source failures by how the caller must react:
// retry the same request, cool down the whole batch, or give up.
type FailureKind int

const (
	// KindTransient covers timeouts and connection resets; the identical
	// request is worth retrying after a short delay.
	KindTransient FailureKind = iota
	// KindRateLimited means the source is pushing back (HTTP 403/429); the
	// entire in-flight batch backs off, not just this request.
	KindRateLimited
	// KindPermanent is a malformed or unexpected response; retrying the
	// same request cannot help.
	KindPermanent
)

func (k FailureKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindRateLimited:
		return "rate-limited"
	default:
		return "permanent"
	}
}

// TransientError wraps a failure that should be retried as-is.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient source error: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// RateLimitedError reports that the source rejected the request for sending
// too much traffic.
type RateLimitedError struct {
	URL        string
	StatusCode int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: HTTP %d from %s", e.StatusCode, e.URL)
}

// PermanentError wraps a failure that retrying cannot fix.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent source error: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Classify maps any error from a Client call onto the retry taxonomy.
// Unknown errors are treated as permanent so a broken response can never
// spin in a retry loop.
func Classify(err error) FailureKind {
	var transient *TransientError
	if errors.As(err, &transient) {
		return KindTransient
	}
	var limited *RateLimitedError
	if errors.As(err, &limited) {
		return KindRateLimited
	}
	var permanent *PermanentError
	if errors.As(err, &permanent) {
		return KindPermanent
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ECONNRESET) {
		return KindTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTransient
	}
	return KindPermanent
}

// CheckStatus converts a non-2xx HTTP response into the right error type.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	switch resp.StatusCode {
	case http.StatusForbidden, http.StatusTooManyRequests:
		return &RateLimitedError{URL: resp.Request.URL.String(), StatusCode: resp.StatusCode}
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return &TransientError{Err: fmt.Errorf("HTTP %d from %s", resp.StatusCode, resp.Request.URL)}
	default:
		return &PermanentError{Err: fmt.Errorf("HTTP %d from %s", resp.StatusCode, resp.Request.URL)}
	}
}
