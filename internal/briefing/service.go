// Package briefing builds prioritised NOTAM briefings for airport-to-airport
// routes.
package briefing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/notam-briefing/internal/domain"
	"github.com/couchcryptid/notam-briefing/internal/observability"
)

const tracerName = "github.com/couchcryptid/notam-briefing/internal/briefing"

// Default corridor geometry, used when neither the request nor the service
// config sets one.
const (
	DefaultGapNM    = 40.0
	DefaultRadiusNM = 30.0
)

// Config sets the corridor geometry applied to requests that leave it unset.
type Config struct {
	GapNM    float64
	RadiusNM float64
}

// Service turns a RouteRequest into a Briefing.
type Service struct {
	airports domain.AirportLookup
	source   domain.NotamSource
	gapNM    float64
	radiusNM float64
	tracer   trace.Tracer
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewService creates a Service. Zero geometry values fall back to the package defaults.
func NewService(airports domain.AirportLookup, source domain.NotamSource, cfg Config, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if cfg.GapNM <= 0 {
		cfg.GapNM = DefaultGapNM
	}
	if cfg.RadiusNM <= 0 {
		cfg.RadiusNM = DefaultRadiusNM
	}
	return &Service{
		airports: airports,
		source:   source,
		gapNM:    cfg.GapNM,
		radiusNM: cfg.RadiusNM,
		tracer:   otel.Tracer(tracerName),
		logger:   logger,
		metrics:  metrics,
	}
}

// Build resolves both airports, queries the corridor and both endpoints,
// merges and filters the results, and sorts them by priority.
func (s *Service) Build(ctx context.Context, req domain.RouteRequest) (domain.Briefing, error) {
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "briefing.Build", trace.WithAttributes(
		attribute.String("briefing.request_id", req.RequestID),
		attribute.String("briefing.departure", req.Departure),
		attribute.String("briefing.destination", req.Destination),
	))
	defer span.End()

	b, err := s.build(ctx, req)

	s.metrics.BriefingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		kind := domain.ErrorKind(err)
		s.metrics.Briefings.WithLabelValues(domain.StatusFailed, kind).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)
		return domain.Briefing{}, err
	}

	s.metrics.Briefings.WithLabelValues(domain.StatusOK, "").Inc()
	s.metrics.WaypointsPerRoute.Observe(float64(len(b.Waypoints)))
	s.metrics.NotamsPerBriefing.Observe(float64(len(b.Notams)))
	span.SetAttributes(
		attribute.Int("briefing.waypoints", len(b.Waypoints)),
		attribute.Int("briefing.notams", len(b.Notams)),
	)
	s.logger.Info("briefing built",
		"request_id", req.RequestID,
		"departure", b.Departure.Code(),
		"destination", b.Destination.Code(),
		"waypoints", len(b.Waypoints),
		"notams", len(b.Notams),
		"duration", time.Since(start),
	)
	return b, nil
}

func (s *Service) build(ctx context.Context, req domain.RouteRequest) (domain.Briefing, error) {
	if err := req.Validate(); err != nil {
		return domain.Briefing{}, err
	}

	dep, err := s.resolve("departure", req.Departure)
	if err != nil {
		return domain.Briefing{}, err
	}
	dest, err := s.resolve("destination", req.Destination)
	if err != nil {
		return domain.Briefing{}, err
	}

	gap, radius := s.gapNM, s.radiusNM
	if req.GapNM > 0 {
		gap = req.GapNM
	}
	if req.RadiusNM > 0 {
		radius = req.RadiusNM
	}

	waypoints, err := domain.GenerateByGap(dep.Coordinates, dest.Coordinates, gap)
	if err != nil {
		return domain.Briefing{}, fmt.Errorf("generate waypoints: %w", err)
	}

	notams, err := s.collect(ctx, waypoints, radius, dep.Code(), dest.Code())
	if err != nil {
		return domain.Briefing{}, err
	}

	notams = domain.SortByPriority(req.Filter.Apply(notams))

	return domain.Briefing{
		RequestID:   req.RequestID,
		Status:      domain.StatusOK,
		Departure:   dep,
		Destination: dest,
		Waypoints:   waypoints,
		Notams:      notams,
		GeneratedAt: domain.Now().UTC(),
	}, nil
}

// resolve looks up an airport and requires it to be in the contiguous US.
func (s *Service) resolve(role, code string) (domain.Airport, error) {
	a, err := s.airports.Lookup(code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Airport{}, domain.InvalidParameter(role, code, "unknown airport code")
		}
		return domain.Airport{}, fmt.Errorf("%s: %w", role, err)
	}
	if !domain.IsContinentalUS(a) {
		return domain.Airport{}, domain.InvalidParameter(role, code, "must be in the continental United States")
	}
	return a, nil
}

// collect runs the corridor query and both endpoint queries together and
// merges them in a fixed order: corridor, departure, destination.
func (s *Service) collect(ctx context.Context, waypoints []domain.Coordinate, radius float64, depCode, destCode string) ([]domain.Notam, error) {
	var route, atDep, atDest []domain.Notam

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		route, err = s.source.FetchForWaypoints(gctx, waypoints, radius)
		return err
	})
	g.Go(func() error {
		var err error
		atDep, err = s.source.FetchByAirport(gctx, depCode)
		return err
	})
	if destCode != depCode {
		g.Go(func() error {
			var err error
			atDest, err = s.source.FetchByAirport(gctx, destCode)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := domain.NewResultSet(len(route) + len(atDep) + len(atDest))
	set.Add(route...)
	set.Add(atDep...)
	set.Add(atDest...)
	return set.Items(), nil
}
