package faa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/notam-briefing/internal/domain"
	"github.com/couchcryptid/notam-briefing/internal/observability"
)

const tracerName = "github.com/couchcryptid/notam-briefing/internal/adapter/faa"

// maxBodyBytes bounds a single page read. A full 1000-item page is a few MB.
const maxBodyBytes = 64 << 20

// Client defaults for unset Config fields.
const (
	DefaultRateLimitTimeout = 60 * time.Second
	DefaultMaxBackoff       = 30 * time.Second
)

// Config holds FAA NOTAM API client settings.
type Config struct {
	BaseURL           string
	ClientID          string
	ClientSecret      string
	PageSize          int
	RateLimitTimeout  time.Duration // how long one page may stay rate limited
	HTTPTimeout       time.Duration
	MaxBackoff        time.Duration
	RequestsPerSecond float64 // 0 means unlimited
}

// Client fetches NOTAMs for a single query from the FAA NOTAM API, following
// pagination and backing off on HTTP 429.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	pageSize     int
	timeout      time.Duration
	maxBackoff   time.Duration

	httpClient *http.Client
	limiter    *rate.Limiter
	clock      clockwork.Clock
	tracer     trace.Tracer
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an FAA NOTAM API client.
func NewClient(cfg Config, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = MaxPageSize
	}
	if cfg.RateLimitTimeout <= 0 {
		cfg.RateLimitTimeout = DefaultRateLimitTimeout
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = DefaultMaxBackoff
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		pageSize:     cfg.PageSize,
		timeout:      cfg.RateLimitTimeout,
		maxBackoff:   cfg.MaxBackoff,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		limiter: rate.NewLimiter(limit, 1),
		clock:   clockwork.NewRealClock(),
		tracer:  otel.Tracer(tracerName),
		metrics: metrics,
		logger:  logger,
	}
}

// FetchAll returns every NOTAM matching q across all result pages. Zero
// PageNum and PageSize take the client defaults.
func (c *Client) FetchAll(ctx context.Context, q Query) ([]domain.Notam, error) {
	if q.PageNum == 0 {
		q.PageNum = 1
	}
	if q.PageSize == 0 {
		q.PageSize = c.pageSize
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "faa.FetchAll", trace.WithAttributes(
		attribute.String("faa.query.kind", q.Kind.String()),
		attribute.String("faa.query.target", q.String()),
	))
	defer span.End()

	first, err := c.fetchPage(ctx, q)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	notams := first.Notams
	for p := q.PageNum + 1; p <= first.TotalPages; p++ {
		next := q
		next.PageNum = p
		pg, err := c.fetchPage(ctx, next)
		if err != nil {
			recordError(span, err)
			return nil, err
		}
		notams = append(notams, pg.Notams...)
	}

	span.SetAttributes(
		attribute.Int("faa.pages", max(first.TotalPages, 1)),
		attribute.Int("faa.notams", len(notams)),
	)
	return notams, nil
}

// fetchPage requests one page, retrying on HTTP 429 with a squared backoff
// until the rate-limit deadline passes.
func (c *Client) fetchPage(ctx context.Context, q Query) (page, error) {
	start := c.clock.Now()
	attempts := 0

	for c.clock.Since(start) < c.timeout {
		body, err := c.doRequest(ctx, q)
		if err == nil {
			pg, err := decodePage(body)
			c.countRequest(q, err)
			return pg, err
		}
		c.countRequest(q, err)
		if !errors.Is(err, domain.ErrRateLimited) {
			return page{}, err
		}

		attempts++
		c.metrics.FAARetries.Inc()
		elapsed := c.clock.Since(start)
		wait := min(backoff(attempts, c.maxBackoff), c.timeout-elapsed)

		c.logger.Info("rate limited while fetching NOTAMs",
			"query", q.String(),
			"page", q.PageNum,
			"attempts", attempts,
			"elapsed", elapsed.Round(time.Millisecond),
			"wait", wait,
		)
		if err := sleepWithContext(ctx, c.clock, wait); err != nil {
			return page{}, fmt.Errorf("fetch %s: %w", q, err)
		}
	}

	return page{}, &domain.RateLimitError{
		Query:    q.String(),
		Attempts: attempts,
		Elapsed:  c.clock.Since(start),
	}
}

func (c *Client) doRequest(ctx context.Context, q Query) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("fetch %s: %w", q, ctxErr)
		}
		// The limiter refuses a slot that would open after the deadline.
		return nil, fmt.Errorf("%w: fetch %s: next request slot is past the deadline", domain.ErrTimeout, q)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.values().Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("client_id", c.clientID)
	req.Header.Set("client_secret", c.clientSecret)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.FAAAPIDuration.WithLabelValues(q.Kind.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("fetch %s: %w", q, ctxErr)
		}
		return nil, fmt.Errorf("%w: fetch %s: %v", domain.ErrTransport, q, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.Warn("HTTP 429 from FAA API, we may be rate limited", "query", q.String())
		return nil, domain.ErrRateLimited
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("fetch %s: %w", q, ctxErr)
		}
		return nil, fmt.Errorf("%w: read response for %s: %v", domain.ErrTransport, q, err)
	}
	return body, nil
}

func (c *Client) countRequest(q Query, err error) {
	outcome := "success"
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		outcome = "rate_limited"
	case err != nil:
		outcome = "error"
	}
	c.metrics.FAARequests.WithLabelValues(q.Kind.String(), outcome).Inc()
}

// backoff is attempts² seconds, capped at limit.
func backoff(attempts int, limit time.Duration) time.Duration {
	d := time.Duration(attempts) * time.Duration(attempts) * time.Second
	if d > limit || d <= 0 {
		return limit
	}
	return d
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.Chan():
		return nil
	}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, domain.ErrorKind(err))
}
