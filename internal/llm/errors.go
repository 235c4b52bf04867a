package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// ErrorKind classifies a failure attributable to the model provider.
type ErrorKind string

const (
	ErrorAuth         ErrorKind = "auth"
	ErrorRateLimit    ErrorKind = "rate_limit"
	ErrorInvalidModel ErrorKind = "invalid_model"
	ErrorBadRequest   ErrorKind = "bad_request"
	ErrorServer       ErrorKind = "server"
	ErrorTransport    ErrorKind = "transport"
)

// ProviderError wraps an error returned by, or on the way to, the model provider.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s API error (%s, status %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s API error (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsProviderError reports whether err carries a *ProviderError.
func IsProviderError(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr)
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrorAuth
	case status == http.StatusTooManyRequests:
		return ErrorRateLimit
	case status == http.StatusNotFound:
		return ErrorInvalidModel
	case status >= 500:
		return ErrorServer
	default:
		return ErrorBadRequest
	}
}

func statusError(provider string, status int, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kindForStatus(status), Status: status, Err: err}
}

// transportError wraps network and deadline failures. Other errors are
// returned untouched so callers treat them as unexpected.
func transportError(provider string, err error) error {
	if err == nil {
		return nil
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Provider: provider, Kind: ErrorTransport, Err: err}
	}
	return err
}
