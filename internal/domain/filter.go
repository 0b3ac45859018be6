package domain

import (
	"strconv"
	"strings"
	"time"
)

// FlightPhase narrows NOTAMs to the altitude band relevant to a phase of flight.
type FlightPhase string

const (
	PhaseAny     FlightPhase = ""
	PhaseClimb   FlightPhase = "climb"
	PhaseCruise  FlightPhase = "cruise"
	PhaseDescent FlightPhase = "descent"
)

// transitionFL separates the climb/descent band from cruise (FL180).
const transitionFL = 180

// ParseFlightPhase validates a phase name. The empty string means any phase.
func ParseFlightPhase(s string) (FlightPhase, error) {
	switch p := FlightPhase(strings.ToLower(strings.TrimSpace(s))); p {
	case PhaseAny, PhaseClimb, PhaseCruise, PhaseDescent:
		return p, nil
	default:
		return PhaseAny, InvalidParameter("phase", s, "must be one of climb, cruise, descent")
	}
}

// Filter holds optional criteria. Zero values disable each criterion.
type Filter struct {
	Phase       FlightPhase `json:"phase,omitempty"`
	Types       []string    `json:"types,omitempty"`
	MinScore    int         `json:"min_score,omitempty"`
	ActiveFrom  time.Time   `json:"active_from,omitzero"`
	ActiveUntil time.Time   `json:"active_until,omitzero"`
}

// IsZero reports whether the filter keeps everything.
func (f Filter) IsZero() bool {
	return f.Phase == PhaseAny && len(f.Types) == 0 && f.MinScore == 0 &&
		f.ActiveFrom.IsZero() && f.ActiveUntil.IsZero()
}

// Validate rejects an unknown phase and an inverted time window.
func (f Filter) Validate() error {
	if _, err := ParseFlightPhase(string(f.Phase)); err != nil {
		return err
	}
	if !f.ActiveFrom.IsZero() && !f.ActiveUntil.IsZero() && f.ActiveUntil.Before(f.ActiveFrom) {
		return InvalidParameter("active_until", f.ActiveUntil.Format(time.RFC3339), "must not precede active_from")
	}
	return nil
}

// Apply returns the records matching every enabled criterion, in input order.
func (f Filter) Apply(notams []Notam) []Notam {
	if f.IsZero() {
		return notams
	}
	out := make([]Notam, 0, len(notams))
	for _, n := range notams {
		if f.match(n) {
			out = append(out, n)
		}
	}
	return out
}

func (f Filter) match(n Notam) bool {
	return inPhase(n, f.Phase) &&
		hasType(n, f.Types) &&
		Score(n) >= f.MinScore &&
		overlaps(n, f.ActiveFrom, f.ActiveUntil)
}

func inPhase(n Notam, phase FlightPhase) bool {
	minFL, hasMin := parseFlightLevel(n.MinimumFL)
	maxFL, hasMax := parseFlightLevel(n.MaximumFL)
	switch phase {
	case PhaseClimb:
		return hasMax && maxFL < transitionFL
	case PhaseCruise:
		return hasMin && minFL >= transitionFL
	case PhaseDescent:
		return hasMin && minFL < transitionFL
	default:
		return true
	}
}

func hasType(n Notam, types []string) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if strings.EqualFold(strings.TrimSpace(t), n.Type) {
			return true
		}
	}
	return false
}

// overlaps treats an indefinite end as open-ended and a zero bound as unbounded.
func overlaps(n Notam, from, until time.Time) bool {
	if !until.IsZero() && n.EffectiveStart.After(until) {
		return false
	}
	if !from.IsZero() && !n.EffectiveEnd.Indefinite() && n.EffectiveEnd.Time.Before(from) {
		return false
	}
	return true
}

func parseFlightLevel(fl string) (int, bool) {
	fl = strings.TrimSpace(fl)
	if fl == "" {
		return 0, false
	}
	v, err := strconv.Atoi(fl)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ActiveNow returns a filter window covering the current instant.
func ActiveNow() Filter {
	now := clock.Now().UTC()
	return Filter{ActiveFrom: now, ActiveUntil: now}
}
