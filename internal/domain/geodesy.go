package domain

import (
	"math"

	"github.com/tidwall/geodesic"
)

// MetersPerNauticalMile is the international nautical mile.
const MetersPerNauticalMile = 1852.0

// Coordinate is a WGS-84 latitude/longitude pair in decimal degrees.
// Equality is exact; a route whose endpoints compare equal has no length.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that both components are finite and in range.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || c.Lat < -90 || c.Lat > 90 {
		return InvalidParameter("latitude", c.Lat, "must be a finite value in [-90, 90]")
	}
	if math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) || c.Lon < -180 || c.Lon > 180 {
		return InvalidParameter("longitude", c.Lon, "must be a finite value in [-180, 180]")
	}
	return nil
}

// Distance returns the WGS-84 geodesic distance from a to b in nautical miles.
func Distance(a, b Coordinate) float64 {
	var s12 float64
	geodesic.WGS84.Inverse(a.Lat, a.Lon, b.Lat, b.Lon, &s12, nil, nil)
	return s12 / MetersPerNauticalMile
}

// InitialBearing returns the forward azimuth from a toward b in degrees, [0, 360).
func InitialBearing(a, b Coordinate) float64 {
	var azi1 float64
	geodesic.WGS84.Inverse(a.Lat, a.Lon, b.Lat, b.Lon, nil, &azi1, nil)
	return normalizeBearing(azi1)
}

// Destination projects start along bearing (degrees) for distNM nautical
// miles on the ellipsoid.
func Destination(start Coordinate, bearing, distNM float64) Coordinate {
	var lat, lon float64
	geodesic.WGS84.Direct(start.Lat, start.Lon, bearing, distNM*MetersPerNauticalMile, &lat, &lon, nil)
	return Coordinate{Lat: lat, Lon: lon}
}

// BearingDelta is the smallest absolute angle between two bearings, [0, 180].
func BearingDelta(a, b float64) float64 {
	d := math.Abs(normalizeBearing(a) - normalizeBearing(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

func normalizeBearing(deg float64) float64 {
	b := math.Mod(deg, 360)
	if b < 0 {
		b += 360
	}
	if b >= 360 {
		b = 0
	}
	return b
}
