package domain

import (
	"context"
	"strings"
)

// Airport is a reference-dataset entry resolved from an IATA/FAA or ICAO code.
type Airport struct {
	Name        string     `json:"name"`
	CountryCode string     `json:"country_code"`
	RegionName  string     `json:"region_name,omitempty"` // state name in the FAA dataset
	IATACode    string     `json:"iata_code,omitempty"`
	ICAOCode    string     `json:"icao_code,omitempty"`
	Coordinates Coordinate `json:"coordinates"`
	Elevation   float64    `json:"elevation_ft"`
}

// Code returns the ICAO code when known, falling back to the local identifier.
func (a Airport) Code() string {
	if a.ICAOCode != "" {
		return a.ICAOCode
	}
	return a.IATACode
}

// AirportLookup resolves airport codes. Unknown codes yield ErrNotFound.
type AirportLookup interface {
	Lookup(code string) (Airport, error)
}

// nonContinentalRegions are US states and territories outside the lower 48.
var nonContinentalRegions = map[string]struct{}{
	"HAWAII":                     {},
	"ALASKA":                     {},
	"PUERTO RICO":                {},
	"GUAM":                       {},
	"AMERICAN SAMOA":             {},
	"N MARIANA ISLANDS":          {},
	"PUERTO RICO-VIRGIN ISLANDS": {},
	"VIRGIN ISLANDS":             {},
}

// IsContinentalUS reports whether the airport is in the contiguous United States.
func IsContinentalUS(a Airport) bool {
	if !strings.EqualFold(strings.TrimSpace(a.CountryCode), "US") {
		return false
	}
	region := strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(a.RegionName, "_", " ")))
	_, excluded := nonContinentalRegions[region]
	return !excluded
}

// NormalizeAirportCode upper-cases and trims a user-supplied code.
func NormalizeAirportCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NotamSource retrieves NOTAMs for a route or an airport.
type NotamSource interface {
	// FetchForWaypoints returns the distinct NOTAMs within radiusNM of any waypoint.
	FetchForWaypoints(ctx context.Context, waypoints []Coordinate, radiusNM float64) ([]Notam, error)

	// FetchByAirport returns every NOTAM filed against an ICAO location.
	FetchByAirport(ctx context.Context, code string) ([]Notam, error)
}
