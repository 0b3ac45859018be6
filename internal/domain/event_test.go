package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRequestID = "req-123"

func TestParseRouteRequest(t *testing.T) {
	t.Run("full request", func(t *testing.T) {
		raw := RawEvent{Value: []byte(`{
			"request_id": "req-123",
			"departure": "KJFK",
			"destination": "KLAX",
			"gap_nm": 50,
			"radius_nm": 25,
			"filter": {"phase": "cruise", "types": ["N"], "min_score": 40}
		}`)}

		req, err := ParseRouteRequest(raw)
		require.NoError(t, err)
		assert.Equal(t, testRequestID, req.RequestID)
		assert.Equal(t, "KJFK", req.Departure)
		assert.Equal(t, "KLAX", req.Destination)
		assert.Equal(t, 50.0, req.GapNM)
		assert.Equal(t, 25.0, req.RadiusNM)
		assert.Equal(t, PhaseCruise, req.Filter.Phase)
		assert.Equal(t, []string{"N"}, req.Filter.Types)
		assert.Equal(t, 40, req.Filter.MinScore)
	})

	t.Run("request ID from key", func(t *testing.T) {
		raw := RawEvent{Key: []byte("key-1"), Value: []byte(`{"departure":"JFK","destination":"LAX"}`)}
		req, err := ParseRouteRequest(raw)
		require.NoError(t, err)
		assert.Equal(t, "key-1", req.RequestID)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseRouteRequest(RawEvent{Value: []byte(`not json`)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse route request")
	})
}

func TestRouteRequestValidate(t *testing.T) {
	valid := RouteRequest{Departure: "KJFK", Destination: "KLAX"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name string
		req  RouteRequest
	}{
		{"missing departure", RouteRequest{Destination: "KLAX"}},
		{"blank destination", RouteRequest{Departure: "KJFK", Destination: "  "}},
		{"negative gap", RouteRequest{Departure: "KJFK", Destination: "KLAX", GapNM: -1}},
		{"negative radius", RouteRequest{Departure: "KJFK", Destination: "KLAX", RadiusNM: -1}},
		{"inverted window", RouteRequest{Departure: "KJFK", Destination: "KLAX", Filter: Filter{
			ActiveFrom:  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			ActiveUntil: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParameter))
		})
	}
}

func TestFailedBriefing(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	req := RouteRequest{RequestID: testRequestID}
	b := FailedBriefing(req, fmt.Errorf("fetch: %w", ErrTimeout))

	assert.Equal(t, testRequestID, b.RequestID)
	assert.Equal(t, StatusFailed, b.Status)
	assert.Equal(t, "fetch: timeout", b.Error)
	assert.Equal(t, "timeout", b.ErrorKind)
	assert.True(t, b.Retryable)
	assert.NotNil(t, b.Notams)
	assert.Equal(t, fixed, b.GeneratedAt)
}

func TestSetClock(t *testing.T) {
	t.Run("set custom clock", func(t *testing.T) {
		fixedTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		SetClock(clockwork.NewFakeClockAt(fixedTime))
		t.Cleanup(func() { SetClock(nil) })

		assert.Equal(t, fixedTime, Now())
	})

	t.Run("reset to real clock", func(t *testing.T) {
		SetClock(clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
		SetClock(nil)

		assert.True(t, time.Since(Now()) < time.Second)
	})
}
