// Package domain models NOTAM (Notice to Air Missions) briefings along a
// great-circle route between two airports.
//
// # Data Source
//
// NOTAMs come from the FAA NOTAM API (external-api.faa.gov/notamapi/v1/notams),
// queried either by point and radius or by ICAO location. Each response item
// wraps a "coreNOTAMData.notam" object; the adapter in internal/adapter/faa
// converts it into a [Notam].
//
// # NOTAM Field Conventions
//
// Type:
//
//	"N" new, "R" replacement, "C" cancellation.
//
// Purpose (a run of letters, e.g. "NBO"):
//
//	N  immediate attention of aircraft operators
//	B  selected for PIB entry
//	O  operationally significant for IFR flights
//	M  miscellaneous, not subject to briefing
//
// Scope (a run of letters, e.g. "AE"):
//
//	A aerodrome, E en-route, W navigation warning, K checklist.
//
// Effective end:
//
//	An RFC 3339 timestamp, or a sentinel such as "PERM" for notices with no
//	scheduled end. See [EffectiveEnd].
//
// Flight levels:
//
//	minimumFL / maximumFL are three-digit hundreds of feet, "000" to "999".
//	FL180 is the boundary between the climb/descent band and cruise.
//
// # Units
//
// All distances (waypoint gap, query radius) are nautical miles. Bearings are
// degrees true in [0, 360). Geodesy uses the WGS-84 ellipsoid.
//
// # Priority
//
// [Score] is the sum of independent contributions:
//
//	Purpose (best tier only):  N 50 | B 25 | O 10 | M 5
//	Type:                      R 50 | N 20 | other 10
//	Classification:            MIL or LMIL +10
//	Series R:                  +20
//	Scope (each code present): A +20 | E +10 | W +5 | K 0
//
// [SortByPriority] orders by descending score, then by the numeric value of
// the digits in the NOTAM number ("A2157/24" → 215724), stably.
package domain
