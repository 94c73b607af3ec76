package catalog

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies catalog failures.
type ErrorKind string

const (
	KindInvalidURL   ErrorKind = "invalid_url"
	KindNetwork      ErrorKind = "network"
	KindDecoding     ErrorKind = "decoding"
	KindNotFound     ErrorKind = "not_found"
	KindRateLimited  ErrorKind = "rate_limited"
	KindServer       ErrorKind = "server"
	KindUnauthorized ErrorKind = "unauthorized"
	KindUnknown      ErrorKind = "unknown"
)

// Error is returned by every Client method that fails.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	URL        string
	Err        error
}

func (e *Error) Error() string {
	msg := describeKind(e.Kind, e.StatusCode)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.URL != "" {
		return fmt.Sprintf("catalog %s (%s)", msg, e.URL)
	}
	return "catalog " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether repeating the request may succeed.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindRateLimited, KindServer:
		return true
	}
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

func describeKind(kind ErrorKind, status int) string {
	switch kind {
	case KindInvalidURL:
		return "invalid url"
	case KindNetwork:
		return "network error"
	case KindDecoding:
		return "failed to decode response"
	case KindNotFound:
		return "resource not found"
	case KindRateLimited:
		return "rate limit exceeded"
	case KindServer:
		return fmt.Sprintf("server error (HTTP %d)", status)
	case KindUnauthorized:
		return "unauthorized"
	}
	if status != 0 {
		return fmt.Sprintf("request failed with HTTP %d", status)
	}
	return "unknown error"
}

// errorFromStatus maps a non-2xx status to an Error.
func errorFromStatus(status int, url string) *Error {
	kind := KindUnknown
	switch {
	case status == http.StatusUnauthorized:
		kind = KindUnauthorized
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status >= 500 && status <= 599:
		kind = KindServer
	}
	return &Error{Kind: kind, StatusCode: status, URL: url}
}

// IsNotFound reports whether err is a catalog not-found error.
func IsNotFound(err error) bool {
	var cerr *Error
	return errors.As(err, &cerr) && cerr.Kind == KindNotFound
}

// IsRetryable reports whether err is a retryable catalog error.
func IsRetryable(err error) bool {
	var cerr *Error
	return errors.As(err, &cerr) && cerr.Retryable()
}
