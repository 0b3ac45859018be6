// Command validate performs offline integrity checks on the airport base
// dataset and on a route request fixture file. Each request is run through the
// real briefing service with an offline NOTAM source, so the expected status and
// error kind recorded in the fixture are checked against actual behaviour.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -airports internal/pipeline/testdata/apt_base_sample.csv \
//	  -requests internal/pipeline/testdata/route_requests.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/couchcryptid/notam-briefing/internal/adapter/airports"
	"github.com/couchcryptid/notam-briefing/internal/adapter/faa"
	"github.com/couchcryptid/notam-briefing/internal/briefing"
	"github.com/couchcryptid/notam-briefing/internal/domain"
	"github.com/couchcryptid/notam-briefing/internal/observability"
)

// spacingTolerance absorbs geodesic round-off when checking waypoint gaps.
const spacingTolerance = 1e-6

// fixture is one entry of the route request file.
type fixture struct {
	Request domain.RouteRequest `json:"request"`
	Status  string              `json:"status"`
	Kind    string              `json:"kind,omitempty"`
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// offlineSource answers every query with no NOTAMs after validating it.
type offlineSource struct{}

func (offlineSource) FetchAll(_ context.Context, q faa.Query) ([]domain.Notam, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return nil, nil
}

func main() {
	airportsPath := flag.String("airports", "", "path to an APT_BASE CSV file")
	requestsPath := flag.String("requests", "", "path to a route request fixture JSON file")
	gap := flag.Float64("gap", briefing.DefaultGapNM, "default waypoint spacing in nautical miles")
	radius := flag.Float64("radius", briefing.DefaultRadiusNM, "default query radius in nautical miles")
	flag.Parse()

	if *airportsPath == "" || *requestsPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(os.Stdout, *airportsPath, *requestsPath, briefing.Config{GapNM: *gap, RadiusNM: *radius}))
}

func run(out io.Writer, airportsPath, requestsPath string, cfg briefing.Config) int {
	fmt.Fprintln(out, "=== NOTAM Briefing Data Validation ===")
	fmt.Fprintln(out)

	db, err := airports.Open(airportsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load airports: %v\n", err)
		return 1
	}

	fixtures, err := loadFixtures(requestsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load requests: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateAirports(db.All()),
		validateOutcomes(db, fixtures, cfg),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %d airports, %d route requests\n", db.Len(), len(fixtures))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

func loadFixtures(path string) ([]fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fixtures []fixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(fixtures) == 0 {
		return nil, fmt.Errorf("no route requests in %s", path)
	}
	return fixtures, nil
}

// validateAirports checks that every row is usable for routing.
func validateAirports(all []domain.Airport) *phase {
	p := &phase{name: "Airport dataset integrity"}
	seen := make(map[string]int, 2*len(all))

	for i, a := range all {
		row := i + 2
		if a.Code() == "" {
			p.errorf("row %d: no ARPT_ID or ICAO_ID", row)
			continue
		}
		if a.Name == "" {
			p.errorf("row %d (%s): empty name", row, a.Code())
		}
		if err := a.Coordinates.Validate(); err != nil {
			p.errorf("row %d (%s): %v", row, a.Code(), err)
		} else if a.Coordinates == (domain.Coordinate{}) {
			p.errorf("row %d (%s): missing coordinates", row, a.Code())
		}
		for _, code := range []string{a.IATACode, a.ICAOCode} {
			if code == "" {
				continue
			}
			if first, dup := seen[code]; dup {
				p.errorf("row %d: code %s already used on row %d", row, code, first)
				continue
			}
			seen[code] = row
		}
	}
	return p
}

// validateOutcomes builds every fixture request offline and compares the
// result with the recorded status and error kind. Successful routes also get
// their waypoint geometry checked.
func validateOutcomes(db *airports.Database, fixtures []fixture, cfg briefing.Config) *phase {
	p := &phase{name: "Route request outcomes"}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	source := faa.NewFetcher(offlineSource{}, 5*time.Second, 1, logger, metrics)
	svc := briefing.NewService(db, source, cfg, logger, metrics)

	for _, f := range fixtures {
		id := f.Request.RequestID
		b, err := svc.Build(context.Background(), f.Request)

		status, kind := domain.StatusOK, ""
		if err != nil {
			status, kind = domain.StatusFailed, domain.ErrorKind(err)
		}
		if status != f.Status || kind != f.Kind {
			p.errorf("%s: expected %s/%s, got %s/%s (%v)", id, f.Status, f.Kind, status, kind, err)
			continue
		}
		if err == nil {
			checkGeometry(p, id, b, effectiveGap(f.Request, cfg))
		}
	}
	return p
}

func effectiveGap(req domain.RouteRequest, cfg briefing.Config) float64 {
	if req.GapNM > 0 {
		return req.GapNM
	}
	return cfg.GapNM
}

// checkGeometry verifies the endpoints and that no leg exceeds the gap.
func checkGeometry(p *phase, id string, b domain.Briefing, gap float64) {
	wps := b.Waypoints
	if len(wps) == 0 {
		p.errorf("%s: no waypoints", id)
		return
	}
	if wps[0] != b.Departure.Coordinates {
		p.errorf("%s: first waypoint %v is not the departure %v", id, wps[0], b.Departure.Coordinates)
	}
	if wps[len(wps)-1] != b.Destination.Coordinates {
		p.errorf("%s: last waypoint %v is not the destination %v", id, wps[len(wps)-1], b.Destination.Coordinates)
	}
	for i := 1; i < len(wps); i++ {
		if d := domain.Distance(wps[i-1], wps[i]); d > gap+spacingTolerance || math.IsNaN(d) {
			p.errorf("%s: leg %d is %.3f NM, over the %.1f NM gap", id, i, d, gap)
		}
	}
}
