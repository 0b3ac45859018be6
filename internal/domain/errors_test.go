package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{InvalidParameter("gap", -1, "bad"), "invalid_parameter"},
		{fmt.Errorf("lookup: %w", ErrNotFound), "not_found"},
		{&PayloadError{Kind: ErrUnauthenticated, Message: "bad creds"}, "unauthenticated"},
		{&RateLimitError{Query: "q", Attempts: 3}, "rate_limit_exceeded"},
		{ErrRateLimited, "rate_limited"},
		{fmt.Errorf("get: %w", ErrTransport), "transport"},
		{&PayloadError{Kind: ErrUnexpectedResponseFormat}, "unexpected_response_format"},
		{&PayloadError{Kind: ErrValidation}, "validation"},
		{&PayloadError{Kind: ErrUnexpectedRemote}, "unexpected_remote"},
		{ErrTimeout, "timeout"},
		{context.Canceled, "internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorKind(tt.err), tt.err.Error())
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(fmt.Errorf("fetch: %w", ErrTimeout)))
	assert.True(t, IsRetryable(&RateLimitError{}))
	assert.True(t, IsRetryable(ErrTransport))

	assert.False(t, IsRetryable(InvalidParameter("x", 1, "bad")))
	assert.False(t, IsRetryable(ErrUnauthenticated))
	assert.False(t, IsRetryable(&PayloadError{Kind: ErrValidation}))
}

func TestErrorMessages(t *testing.T) {
	err := InvalidParameter("radius", -3.5, "must be positive")
	assert.Equal(t, "invalid parameter radius=-3.5: must be positive", err.Error())

	perr := &PayloadError{Kind: ErrUnexpectedRemote, Message: "server busy", Payload: []byte(`{}`)}
	assert.Equal(t, "unexpected remote error: server busy", perr.Error())
	assert.True(t, errors.Is(perr, ErrUnexpectedRemote))

	rerr := &RateLimitError{Query: "KJFK", Attempts: 4, Elapsed: 1500 * time.Millisecond}
	assert.Equal(t, "rate limit exceeded: KJFK after 4 attempts in 1.5s", rerr.Error())
}
