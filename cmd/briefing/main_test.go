package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/notam-briefing/internal/domain"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{
		"-gap", "25", "-radius", "15", "-timeout", "90s", "-max-lines", "0",
		"-phase", "Cruise", "-types", "n, r,", "-min-score", "10", "-active", "-json",
		"kjfk", "KLAX",
	}, io.Discard)
	require.NoError(t, err)

	assert.InDelta(t, 25.0, opts.gapNM, 0)
	assert.InDelta(t, 15.0, opts.radiusNM, 0)
	assert.Equal(t, 90*time.Second, opts.timeout)
	assert.Equal(t, 0, opts.maxLines)
	assert.True(t, opts.active)
	assert.True(t, opts.asJSON)
	assert.Equal(t, "kjfk", opts.req.Departure)
	assert.Equal(t, "KLAX", opts.req.Destination)
	assert.Equal(t, domain.PhaseCruise, opts.req.Filter.Phase)
	assert.Equal(t, []string{"N", "R"}, opts.req.Filter.Types)
	assert.Equal(t, 10, opts.req.Filter.MinScore)
}

func TestParseFlags_Defaults(t *testing.T) {
	opts, err := parseFlags([]string{"JFK", "BOS"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, ".env", opts.envFile)
	assert.Equal(t, 3, opts.maxLines)
	assert.Zero(t, opts.gapNM)
	assert.True(t, opts.req.Filter.IsZero())
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no airports", nil, 2},
		{"one airport", []string{"KJFK"}, 2},
		{"three airports", []string{"KJFK", "KBOS", "KLAX"}, 2},
		{"help", []string{"-h"}, 2},
		{"bad phase", []string{"-phase", "orbit", "KJFK", "KBOS"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args, io.Discard)
			require.Error(t, err)
			assert.Equal(t, tt.code, exitCode(err))
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(flag.ErrHelp))
	assert.Equal(t, 3, exitCode(domain.InvalidParameter("departure", "", "is required")))
	assert.Equal(t, 4, exitCode(fmt.Errorf("fetch: %w", domain.ErrTimeout)))
	assert.Equal(t, 1, exitCode(domain.ErrUnauthenticated))
}

func TestRun_MissingCredentials(t *testing.T) {
	t.Setenv("FAA_CLIENT_ID", "")
	t.Setenv("FAA_CLIENT_SECRET", "")

	err := run(context.Background(), []string{"-env", "testdata/does-not-exist.env", "KJFK", "KBOS"}, io.Discard, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FAA_CLIENT_ID is required")
}
