package faa

import (
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/notam-briefing/internal/config"
	"github.com/couchcryptid/notam-briefing/internal/observability"
)

// NewSource assembles the FAA client, the optional result cache and the
// fan-out fetcher from service configuration.
func NewSource(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Fetcher {
	var client QueryFetcher = NewClient(Config{
		BaseURL:           cfg.FAAAPIURL,
		ClientID:          cfg.FAAClientID,
		ClientSecret:      cfg.FAAClientSecret,
		PageSize:          cfg.FAAPageSize,
		RateLimitTimeout:  cfg.FAATimeout,
		HTTPTimeout:       cfg.FAAHTTPTimeout,
		MaxBackoff:        cfg.FAAMaxBackoff,
		RequestsPerSecond: cfg.FAARequestsPerSecond,
	}, logger, metrics)

	if cfg.FAACacheSize > 0 {
		client = NewCachedClient(client, cfg.FAACacheSize, cfg.FAACacheTTL, clockwork.NewRealClock(), metrics)
		logger.Info("faa result cache enabled", "size", cfg.FAACacheSize, "ttl", cfg.FAACacheTTL)
	}

	return NewFetcher(client, cfg.FAATimeout, cfg.FAAConcurrency, logger, metrics)
}
