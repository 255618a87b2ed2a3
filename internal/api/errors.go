package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"
)

// Kind classifies a failed request. Every failure maps to exactly one kind.
type Kind string

const (
	// KindNetwork means no response was received.
	KindNetwork Kind = "network"
	// KindCors means a response arrived but cross-origin policy rejected it.
	KindCors Kind = "cors"
	// KindHTTP means the server answered with a non-2xx status.
	KindHTTP Kind = "http"
)

// Reason refines KindNetwork failures.
type Reason string

const (
	ReasonTimeout   Reason = "timeout"
	ReasonOffline   Reason = "offline"
	ReasonTransport Reason = "transport"
)

// ErrDecode marks a 2xx response whose body could not be decoded.
var ErrDecode = errors.New("decode response")

// Error is the classified failure returned by Client operations.
type Error struct {
	Kind       Kind
	Reason     Reason
	Status     int
	StatusText string
	Body       []byte
	Message    string
	Method     string
	Path       string
	Timestamp  time.Time
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("api %s %s returned status %d: %s", e.Method, e.Path, e.Status, e.Message)
	case KindCors:
		return fmt.Sprintf("api %s %s blocked: %s", e.Method, e.Path, e.Message)
	default:
		if e.Err != nil {
			return fmt.Sprintf("api %s %s %s: %s: %v", e.Method, e.Path, e.Reason, e.Message, e.Err)
		}
		return fmt.Sprintf("api %s %s %s: %s", e.Method, e.Path, e.Reason, e.Message)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Retryable reports whether the retry policy allows another attempt: network
// failures and 5xx responses only.
func (e *Error) Retryable() bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case KindNetwork:
		return true
	case KindHTTP:
		return e.Status >= 500
	default:
		return false
	}
}

// ISOTimestamp formats the failure time as ISO-8601.
func (e *Error) ISOTimestamp() string {
	if e == nil {
		return ""
	}
	return e.Timestamp.UTC().Format(time.RFC3339Nano)
}

// AsError extracts a classified error from err's chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsKind reports whether err is a classified error of the given kind.
func IsKind(err error, kind Kind) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Kind == kind
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if apiErr, ok := AsError(err); ok {
		return apiErr.Status
	}
	return 0
}

func classifyTransport(method, path string, err error, now time.Time) *Error {
	out := &Error{
		Kind:      KindNetwork,
		Reason:    ReasonTransport,
		Method:    method,
		Path:      path,
		Timestamp: now,
		Err:       err,
		Message:   "Network error. Please try again.",
	}

	lower := strings.ToLower(err.Error())
	var netErr net.Error
	var opErr *net.OpError
	var dnsErr *net.DNSError

	switch {
	case strings.Contains(lower, "cors") || strings.Contains(lower, "cross-origin"):
		out.Kind = KindCors
		out.Reason = ""
		out.Message = "Request blocked by cross-origin policy"
	case errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()):
		out.Reason = ReasonTimeout
		out.Message = "Request timed out. Please try again."
	case errors.Is(err, syscall.ECONNREFUSED) || errors.As(err, &dnsErr) ||
		(errors.As(err, &opErr) && opErr.Op == "dial"):
		out.Reason = ReasonOffline
		out.Message = "Unable to reach the server. Check your connection."
	}
	return out
}

func corsError(method, path, origin, allowed string, now time.Time) *Error {
	return &Error{
		Kind:      KindCors,
		Method:    method,
		Path:      path,
		Timestamp: now,
		Message:   fmt.Sprintf("origin %q not allowed (Access-Control-Allow-Origin %q)", origin, allowed),
	}
}

func httpError(method, path string, status int, body []byte, now time.Time) *Error {
	return &Error{
		Kind:       KindHTTP,
		Status:     status,
		StatusText: http.StatusText(status),
		Body:       body,
		Method:     method,
		Path:       path,
		Timestamp:  now,
		Message:    httpMessage(status, body),
	}
}

// httpMessage prefers the backend's own error text when the body carries one.
func httpMessage(status int, body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
	}
	text := http.StatusText(status)
	if text == "" {
		text = "Unknown status"
	}
	return fmt.Sprintf("HTTP %d: %s", status, text)
}
