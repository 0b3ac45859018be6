package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds. Match with errors.Is; the typed errors below wrap one of these.
var (
	ErrInvalidParameter         = errors.New("invalid parameter")
	ErrNotFound                 = errors.New("not found")
	ErrUnauthenticated          = errors.New("unauthenticated")
	ErrRateLimited              = errors.New("rate limited")
	ErrRateLimitExceeded        = errors.New("rate limit exceeded")
	ErrTransport                = errors.New("transport error")
	ErrUnexpectedResponseFormat = errors.New("unexpected response format")
	ErrValidation               = errors.New("response validation failed")
	ErrUnexpectedRemote         = errors.New("unexpected remote error")
	ErrTimeout                  = errors.New("timeout")
)

// ParameterError reports a caller-supplied value that failed validation.
type ParameterError struct {
	Name   string
	Value  any
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Name, e.Value, e.Reason)
}

func (e *ParameterError) Unwrap() error { return ErrInvalidParameter }

// InvalidParameter builds a ParameterError.
func InvalidParameter(name string, value any, reason string) error {
	return &ParameterError{Name: name, Value: value, Reason: reason}
}

// PayloadError carries the raw remote payload that could not be interpreted.
type PayloadError struct {
	Kind    error
	Message string
	Payload []byte
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PayloadError) Unwrap() error { return e.Kind }

// RateLimitError is returned once a query stays rate limited until its deadline.
type RateLimitError struct {
	Query    string
	Attempts int
	Elapsed  time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: %s after %d attempts in %s", ErrRateLimitExceeded, e.Query, e.Attempts, e.Elapsed.Round(time.Millisecond))
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimitExceeded }

// IsRetryable reports whether the whole pipeline may reasonably be retried
// after err. Caller mistakes and bad credentials are not retryable.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimitExceeded) ||
		errors.Is(err, ErrTransport)
}

// ErrorKind names the taxonomy entry for err, or "internal" when none matches.
func ErrorKind(err error) string {
	kinds := []struct {
		target error
		name   string
	}{
		{ErrInvalidParameter, "invalid_parameter"},
		{ErrNotFound, "not_found"},
		{ErrUnauthenticated, "unauthenticated"},
		{ErrRateLimitExceeded, "rate_limit_exceeded"},
		{ErrRateLimited, "rate_limited"},
		{ErrTransport, "transport"},
		{ErrUnexpectedResponseFormat, "unexpected_response_format"},
		{ErrValidation, "validation"},
		{ErrUnexpectedRemote, "unexpected_remote"},
		{ErrTimeout, "timeout"},
	}
	for _, k := range kinds {
		if errors.Is(err, k.target) {
			return k.name
		}
	}
	return "internal"
}
