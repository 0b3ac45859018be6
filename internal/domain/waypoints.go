package domain

import "math"

// GenerateByCount returns n evenly spaced interior points between dep and
// dest on the geodesic, bracketed by the endpoints themselves. The result
// always has n+2 elements unless dep == dest, in which case it is [dep].
func GenerateByCount(dep, dest Coordinate, n int) ([]Coordinate, error) {
	if err := dep.Validate(); err != nil {
		return nil, err
	}
	if err := dest.Validate(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, InvalidParameter("count", n, "must not be negative")
	}

	if dep == dest {
		return []Coordinate{dep}, nil
	}

	total := Distance(dep, dest)
	bearing := InitialBearing(dep, dest)
	step := total / float64(n+1)

	points := make([]Coordinate, 0, n+2)
	points = append(points, dep)
	for i := 1; i <= n; i++ {
		points = append(points, Destination(dep, bearing, step*float64(i)))
	}
	points = append(points, dest)
	return points, nil
}

// GenerateByGap spaces waypoints roughly gapNM nautical miles apart. The
// interior count is floor(distance/gap), so the realised spacing never
// exceeds the requested gap.
func GenerateByGap(dep, dest Coordinate, gapNM float64) ([]Coordinate, error) {
	if math.IsNaN(gapNM) || math.IsInf(gapNM, 0) || gapNM <= 0 {
		return nil, InvalidParameter("gap", gapNM, "must be a finite value greater than 0")
	}
	if err := dep.Validate(); err != nil {
		return nil, err
	}
	if err := dest.Validate(); err != nil {
		return nil, err
	}

	n := int(math.Floor(Distance(dep, dest) / gapNM))
	return GenerateByCount(dep, dest, n)
}
