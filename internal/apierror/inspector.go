package apierror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	uaerrors "github.com/sirseerhq/ua-utils/internal/errors"
)

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("unexpected status %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), body)
}

// Unwrap lets errors.Is match ErrUnauthorized for 401 responses.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return uaerrors.ErrUnauthorized
	}
	return nil
}

// Inspector provides methods for analyzing vendor API errors.
type Inspector interface {
	// IsCanceled returns true if the error stems from a user interrupt.
	IsCanceled(err error) bool

	// IsAuthError returns true if the error represents an authentication or authorization failure.
	IsAuthError(err error) bool

	// IsNotFoundError returns true if the error represents a resource not found error.
	IsNotFoundError(err error) bool

	// IsRateLimitError returns true if the error represents a rate limit error.
	IsRateLimitError(err error) bool

	// IsServerError returns true if the API answered with a 5xx status.
	IsServerError(err error) bool

	// IsDecodeError returns true if the response body could not be decoded as a page.
	IsDecodeError(err error) bool

	// IsNetworkError returns true if the error represents a network connectivity error.
	IsNetworkError(err error) bool

	// IsRetryable returns true for every failure except a user interrupt.
	IsRetryable(err error) bool
}

// APIErrorInspector implements the Inspector interface. It checks the error
// chain first and falls back to string matching for errors produced by the
// transport without a typed cause.
type APIErrorInspector struct{}

// NewInspector creates a new APIErrorInspector.
func NewInspector() Inspector {
	return &APIErrorInspector{}
}

func statusOf(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	return 0, false
}

// IsCanceled checks if the error is a context cancellation.
func (i *APIErrorInspector) IsCanceled(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, uaerrors.ErrCanceled)
}

// IsAuthError checks if the error is an authentication or authorization error.
func (i *APIErrorInspector) IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, uaerrors.ErrUnauthorized) {
		return true
	}
	if code, ok := statusOf(err); ok {
		return code == http.StatusUnauthorized || code == http.StatusForbidden
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "forbidden")
}

// IsNotFoundError checks if the error is a not found error.
func (i *APIErrorInspector) IsNotFoundError(err error) bool {
	if code, ok := statusOf(err); ok {
		return code == http.StatusNotFound
	}
	return false
}

// IsRateLimitError checks if the error is a rate limit error.
func (i *APIErrorInspector) IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := statusOf(err); ok {
		return code == http.StatusTooManyRequests
	}
	return strings.Contains(strings.ToLower(err.Error()), "rate limit")
}

// IsServerError checks if the API answered with a 5xx status.
func (i *APIErrorInspector) IsServerError(err error) bool {
	code, ok := statusOf(err)
	return ok && code >= 500
}

// IsDecodeError checks if the response body was malformed.
func (i *APIErrorInspector) IsDecodeError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, uaerrors.ErrInvalidResponse) {
		return true
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

// IsNetworkError checks if the error is a network connectivity error.
func (i *APIErrorInspector) IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "eof") ||
		strings.Contains(errStr, "tls handshake") ||
		strings.Contains(errStr, "network is unreachable")
}

// IsRetryable reports whether a failed request should be attempted again.
func (i *APIErrorInspector) IsRetryable(err error) bool {
	return err != nil && !i.IsCanceled(err)
}

// Classify returns a short label for the cause, used in log fields.
func Classify(i Inspector, err error) string {
	switch {
	case err == nil:
		return ""
	case i.IsCanceled(err):
		return "canceled"
	case i.IsAuthError(err):
		return "auth"
	case i.IsRateLimitError(err):
		return "rate_limit"
	case i.IsNotFoundError(err):
		return "not_found"
	case i.IsServerError(err):
		return "server"
	case i.IsDecodeError(err):
		return "decode"
	case i.IsNetworkError(err):
		return "network"
	default:
		return "other"
	}
}
