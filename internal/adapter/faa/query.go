package faa

import (
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/couchcryptid/notam-briefing/internal/domain"
)

// API limits.
const (
	MaxPageSize = 1000
	MaxRadiusNM = 100.0
)

// QueryKind selects how NOTAMs are located.
type QueryKind int

const (
	QueryLocation QueryKind = iota + 1 // point and radius
	QueryAirport                       // ICAO location
)

func (k QueryKind) String() string {
	switch k {
	case QueryLocation:
		return "location"
	case QueryAirport:
		return "airport"
	default:
		return "unknown"
	}
}

// Query is a single-target NOTAM search. PageNum and PageSize are the page
// cursor; zero values take the client defaults.
type Query struct {
	Kind        QueryKind
	Point       domain.Coordinate
	Radius      float64 // nautical miles
	AirportCode string
	PageNum     int
	PageSize    int
}

// LocationQuery searches within radius nautical miles of point.
func LocationQuery(point domain.Coordinate, radius float64) Query {
	return Query{Kind: QueryLocation, Point: point, Radius: radius, PageNum: 1}
}

// AirportQuery searches every NOTAM filed against an ICAO location.
func AirportQuery(code string) Query {
	return Query{Kind: QueryAirport, AirportCode: domain.NormalizeAirportCode(code), PageNum: 1}
}

// Validate checks the query against the API limits.
func (q Query) Validate() error {
	if q.PageNum < 1 {
		return domain.InvalidParameter("pageNum", q.PageNum, "must be at least 1")
	}
	if q.PageSize < 1 || q.PageSize > MaxPageSize {
		return domain.InvalidParameter("pageSize", q.PageSize, fmt.Sprintf("must be in [1, %d]", MaxPageSize))
	}

	switch q.Kind {
	case QueryLocation:
		if err := q.Point.Validate(); err != nil {
			return err
		}
		if math.IsNaN(q.Radius) || q.Radius <= 0 || q.Radius > MaxRadiusNM {
			return domain.InvalidParameter("radius", q.Radius, fmt.Sprintf("must be in (0, %g]", MaxRadiusNM))
		}
	case QueryAirport:
		if q.AirportCode == "" {
			return domain.InvalidParameter("icaoLocation", q.AirportCode, "is required")
		}
	default:
		return domain.InvalidParameter("kind", int(q.Kind), "unknown query kind")
	}
	return nil
}

// Key identifies the query target independent of paging.
func (q Query) Key() string {
	switch q.Kind {
	case QueryLocation:
		return fmt.Sprintf("loc:%.6f,%.6f|%g|%d", q.Point.Lat, q.Point.Lon, q.Radius, q.PageSize)
	default:
		return fmt.Sprintf("apt:%s|%d", q.AirportCode, q.PageSize)
	}
}

func (q Query) String() string {
	if q.Kind == QueryLocation {
		return fmt.Sprintf("(%g, %g) r=%gNM", q.Point.Lat, q.Point.Lon, q.Radius)
	}
	return q.AirportCode
}

func (q Query) values() url.Values {
	v := url.Values{
		"pageNum":  {strconv.Itoa(q.PageNum)},
		"pageSize": {strconv.Itoa(q.PageSize)},
	}
	switch q.Kind {
	case QueryLocation:
		v.Set("locationLatitude", formatFloat(q.Point.Lat))
		v.Set("locationLongitude", formatFloat(q.Point.Lon))
		v.Set("locationRadius", formatFloat(q.Radius))
	case QueryAirport:
		v.Set("icaoLocation", q.AirportCode)
	}
	return v
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
