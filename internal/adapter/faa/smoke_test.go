//go:build faa

package faa

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/notam-briefing/internal/domain"
)

// These tests hit the real FAA NOTAM API and require FAA_CLIENT_ID and
// FAA_CLIENT_SECRET env vars.
// Run with: go test -tags=faa ./internal/adapter/faa/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	id, secret := os.Getenv("FAA_CLIENT_ID"), os.Getenv("FAA_CLIENT_SECRET")
	if id == "" || secret == "" {
		t.Fatal("FAA_CLIENT_ID and FAA_CLIENT_SECRET must be set to run smoke tests")
	}
	baseURL := os.Getenv("FAA_API_URL")
	if baseURL == "" {
		baseURL = "https://external-api.faa.gov/notamapi/v1/notams"
	}
	return NewClient(Config{
		BaseURL:          baseURL,
		ClientID:         id,
		ClientSecret:     secret,
		PageSize:         MaxPageSize,
		RateLimitTimeout: 60 * time.Second,
		HTTPTimeout:      30 * time.Second,
		MaxBackoff:       30 * time.Second,
	}, testLogger(), testMetrics())
}

func TestSmoke_AirportQuery(t *testing.T) {
	c := smokeClient(t)

	notams, err := c.FetchAll(context.Background(), AirportQuery("KJFK"))
	require.NoError(t, err)

	for _, n := range notams {
		assert.NotEmpty(t, n.ID)
		assert.NotEmpty(t, n.Number)
		assert.False(t, n.EffectiveStart.IsZero())
	}
}

func TestSmoke_LocationQuery(t *testing.T) {
	c := smokeClient(t)

	_, err := c.FetchAll(context.Background(), LocationQuery(domain.Coordinate{Lat: 40.6399, Lon: -73.7787}, 10))
	require.NoError(t, err)
}

func TestSmoke_BadCredentials(t *testing.T) {
	c := smokeClient(t)
	c.clientSecret = "not-a-secret"

	_, err := c.FetchAll(context.Background(), AirportQuery("KJFK"))
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestSmoke_FetchForWaypoints(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedClient(c, 100, time.Minute, clockwork.NewRealClock(), testMetrics())
	f := NewFetcher(cached, 2*time.Minute, 5, testLogger(), testMetrics())

	waypoints, err := domain.GenerateByCount(
		domain.Coordinate{Lat: 40.6399, Lon: -73.7787},
		domain.Coordinate{Lat: 42.3656, Lon: -71.0096},
		2,
	)
	require.NoError(t, err)

	notams, err := f.FetchForWaypoints(context.Background(), waypoints, 30)
	require.NoError(t, err)
	assert.Len(t, domain.Dedupe(notams), len(notams), "fetcher output is deduplicated")
}
