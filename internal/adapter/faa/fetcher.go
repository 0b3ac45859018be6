package faa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/notam-briefing/internal/domain"
	"github.com/couchcryptid/notam-briefing/internal/observability"
)

// DefaultConcurrency bounds simultaneous per-waypoint queries.
const DefaultConcurrency = 30

// Fetcher implements domain.NotamSource by fanning single-target queries out
// over a bounded worker group under one global deadline.
type Fetcher struct {
	client      QueryFetcher
	timeout     time.Duration
	concurrency int
	tracer      trace.Tracer
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewFetcher creates a Fetcher. A non-positive concurrency uses DefaultConcurrency.
func NewFetcher(client QueryFetcher, timeout time.Duration, concurrency int, logger *slog.Logger, metrics *observability.Metrics) *Fetcher {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Fetcher{
		client:      client,
		timeout:     timeout,
		concurrency: concurrency,
		tracer:      otel.Tracer(tracerName),
		metrics:     metrics,
		logger:      logger,
	}
}

// FetchForWaypoints returns the distinct NOTAMs within radiusNM of any
// waypoint. The first failed waypoint fails the whole call; if the deadline
// passes first the call fails with ErrTimeout. Partial results are never
// returned. Record order follows completion order.
func (f *Fetcher) FetchForWaypoints(ctx context.Context, waypoints []domain.Coordinate, radiusNM float64) ([]domain.Notam, error) {
	if math.IsNaN(radiusNM) || radiusNM <= 0 || radiusNM > MaxRadiusNM {
		return nil, domain.InvalidParameter("radius", radiusNM, fmt.Sprintf("must be in (0, %g]", MaxRadiusNM))
	}
	for _, wp := range waypoints {
		if err := wp.Validate(); err != nil {
			return nil, err
		}
	}
	if len(waypoints) == 0 {
		return []domain.Notam{}, nil
	}

	ctx, span := f.tracer.Start(ctx, "faa.FetchForWaypoints", trace.WithAttributes(
		attribute.Int("faa.waypoints", len(waypoints)),
		attribute.Float64("faa.radius_nm", radiusNM),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	// results stays open until every task has returned, including tasks
	// still running after the caller has been answered.
	results := make(chan []domain.Notam)
	set := domain.NewResultSet(len(waypoints) * 8)
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for batch := range results {
			set.Add(batch...)
		}
	}()

	var completed atomic.Int64
	total := len(waypoints)
	done := make(chan error, 1)
	go func() {
		for i, wp := range waypoints {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				return f.fetchWaypoint(gctx, i, wp, radiusNM, &completed, total, results)
			})
		}
		err := g.Wait()
		close(results)
		<-collected
		done <- err
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		// Tasks that ignore cancellation are abandoned, not awaited.
		select {
		case err = <-done:
		default:
			err = ctx.Err()
		}
	}

	if err != nil {
		err = f.classify(ctx, err, int(completed.Load()), total)
		recordError(span, err)
		return nil, err
	}

	notams := set.Items()
	span.SetAttributes(attribute.Int("faa.notams", len(notams)))
	return notams, nil
}

// fetchWaypoint runs one location query and hands its records to the collector.
func (f *Fetcher) fetchWaypoint(ctx context.Context, i int, wp domain.Coordinate, radiusNM float64, completed *atomic.Int64, total int, results chan<- []domain.Notam) error {
	f.metrics.FAAInflightFetch.Inc()
	defer f.metrics.FAAInflightFetch.Dec()

	f.logger.Debug("fetching NOTAMs for waypoint", "waypoint", i, "lat", wp.Lat, "lon", wp.Lon)
	notams, err := f.client.FetchAll(ctx, LocationQuery(wp, radiusNM))
	if err != nil {
		return fmt.Errorf("waypoint %d (%g, %g): %w", i, wp.Lat, wp.Lon, err)
	}

	n := completed.Add(1)
	f.logger.Debug("fetched NOTAMs for waypoint",
		"waypoint", i,
		"count", len(notams),
		"completed", n,
		"total", total,
		"percent", fmt.Sprintf("%.2f", 100*float64(n)/float64(total)),
	)

	select {
	case results <- notams:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FetchByAirport returns the distinct NOTAMs filed against an ICAO location.
func (f *Fetcher) FetchByAirport(ctx context.Context, code string) ([]domain.Notam, error) {
	q := AirportQuery(code)

	ctx, span := f.tracer.Start(ctx, "faa.FetchByAirport", trace.WithAttributes(
		attribute.String("faa.airport", q.AirportCode),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	type outcome struct {
		notams []domain.Notam
		err    error
	}
	out := make(chan outcome, 1)
	go func() {
		notams, err := f.client.FetchAll(ctx, q)
		out <- outcome{notams, err}
	}()

	var res outcome
	select {
	case res = <-out:
	case <-ctx.Done():
		select {
		case res = <-out:
		default:
			res.err = ctx.Err()
		}
	}

	if res.err != nil {
		err := f.classify(ctx, fmt.Errorf("airport %s: %w", q.AirportCode, res.err), 0, 1)
		recordError(span, err)
		return nil, err
	}
	return domain.Dedupe(res.notams), nil
}

// classify maps an expired global deadline onto ErrTimeout. Any other
// failure is returned as is.
func (f *Fetcher) classify(ctx context.Context, err error, completed, total int) error {
	isCtxErr := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	if isCtxErr && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %d of %d queries completed within %s", domain.ErrTimeout, completed, total, f.timeout)
	}
	return err
}
