package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// StatusError is a non-2xx response from a provider.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 300 {
		body = body[:300]
	}
	return fmt.Sprintf("%s: http status %d: %s", e.Provider, e.Status, body)
}

type unavailableError struct {
	cause error
}

func (e *unavailableError) Error() string {
	return ErrServiceUnavailable.Error() + ": " + e.cause.Error()
}

func (e *unavailableError) Unwrap() []error {
	return []error{ErrServiceUnavailable, e.cause}
}

// Classify wraps transient provider failures so they match
// ErrServiceUnavailable while keeping the cause reachable.
func Classify(err error) error {
	if err == nil || errors.Is(err, ErrServiceUnavailable) {
		return err
	}
	if Unavailable(err) {
		return &unavailableError{cause: err}
	}
	return err
}

// Unavailable reports whether err means the provider cannot serve right now.
func Unavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrServiceUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return unavailableStatus(statusErr.Status)
	}
	var coded interface{ HTTPCode() int }
	if errors.As(err, &coded) && unavailableStatus(coded.HTTPCode()) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"timeout",
		"rate limit",
		"resource_exhausted",
		"resource exhausted",
		"overloaded",
		"currently loading",
		"connection reset",
		"connection refused",
		"broken pipe",
		"eof",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func unavailableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusRequestTimeout:
		return true
	default:
		return status >= 500
	}
}
