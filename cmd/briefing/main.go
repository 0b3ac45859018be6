// Command briefing prints the prioritised NOTAMs along the great-circle route
// between two continental US airports.
//
// Usage:
//
//	go run ./cmd/briefing -gap 40 -radius 30 -max-lines 3 KJFK KLAX
//
// FAA credentials come from FAA_CLIENT_ID and FAA_CLIENT_SECRET, read from the
// environment or a .env file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/couchcryptid/notam-briefing/internal/adapter/airports"
	"github.com/couchcryptid/notam-briefing/internal/adapter/faa"
	"github.com/couchcryptid/notam-briefing/internal/briefing"
	"github.com/couchcryptid/notam-briefing/internal/config"
	"github.com/couchcryptid/notam-briefing/internal/domain"
	"github.com/couchcryptid/notam-briefing/internal/observability"
	"github.com/couchcryptid/notam-briefing/internal/render"
)

// options are the parsed command-line settings.
type options struct {
	envFile  string
	gapNM    float64
	radiusNM float64
	timeout  time.Duration
	maxLines int
	asJSON   bool
	active   bool
	req      domain.RouteRequest
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "briefing: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.timeout > 0 {
		cfg.FAATimeout = opts.timeout
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFrom(cfg, "notam-briefing-cli"), logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, logger)

	db, err := airports.Open(cfg.AirportsPath)
	if err != nil {
		return err
	}
	logger.Debug("airport data loaded", "path", cfg.AirportsPath, "airports", db.Len())

	source := faa.NewSource(cfg, logger, metrics)
	svc := briefing.NewService(db, source, briefing.Config{GapNM: cfg.RouteGapNM, RadiusNM: cfg.RouteRadiusNM}, logger, metrics)

	req := opts.req
	req.GapNM = opts.gapNM
	req.RadiusNM = opts.radiusNM
	if opts.active {
		now := domain.ActiveNow()
		req.Filter.ActiveFrom, req.Filter.ActiveUntil = now.ActiveFrom, now.ActiveUntil
	}

	b, err := svc.Build(ctx, req)
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	}
	return render.Printer{MaxLines: opts.maxLines}.PrintBriefing(stdout, b)
}

// parseFlags reads the flags and the two positional airport codes.
func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	var phase, types string

	fs := flag.NewFlagSet("briefing", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: briefing [flags] DEPARTURE DESTINATION")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.envFile, "env", ".env", "dotenv file with FAA credentials")
	fs.Float64Var(&opts.gapNM, "gap", 0, "waypoint spacing in nautical miles (0 uses ROUTE_GAP_NM)")
	fs.Float64Var(&opts.radiusNM, "radius", 0, "query radius per waypoint in nautical miles (0 uses ROUTE_RADIUS_NM)")
	fs.DurationVar(&opts.timeout, "timeout", 0, "deadline for all NOTAM queries (0 uses FAA_TIMEOUT)")
	fs.IntVar(&opts.maxLines, "max-lines", render.DefaultMaxLines, "NOTAM text lines to print, 0 for all")
	fs.BoolVar(&opts.asJSON, "json", false, "print the briefing as JSON")
	fs.BoolVar(&opts.active, "active", false, "only NOTAMs in effect now")
	fs.StringVar(&phase, "phase", "", "flight phase filter: climb, cruise or descent")
	fs.StringVar(&types, "types", "", "comma-separated NOTAM types to keep, e.g. N,R")
	fs.IntVar(&opts.req.Filter.MinScore, "min-score", 0, "drop NOTAMs scoring below this")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return options{}, errUsage
	}

	p, err := domain.ParseFlightPhase(phase)
	if err != nil {
		return options{}, err
	}
	opts.req.Filter.Phase = p
	if types != "" {
		for _, t := range strings.Split(types, ",") {
			if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
				opts.req.Filter.Types = append(opts.req.Filter.Types, t)
			}
		}
	}

	opts.req.Departure = fs.Arg(0)
	opts.req.Destination = fs.Arg(1)
	return opts, nil
}

var errUsage = errors.New("expected DEPARTURE and DESTINATION airport codes")

// exitCode separates usage and input mistakes from remote failures.
func exitCode(err error) int {
	switch {
	case errors.Is(err, flag.ErrHelp), errors.Is(err, errUsage):
		return 2
	case errors.Is(err, domain.ErrInvalidParameter):
		return 3
	case domain.IsRetryable(err):
		return 4
	default:
		return 1
	}
}
